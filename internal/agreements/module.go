// Package agreements provides the agreements bounded context module.
package agreements

import (
	"supply_portal_backend/internal/agreements/handler"
	"supply_portal_backend/internal/agreements/repository"
	"supply_portal_backend/internal/agreements/service"
	"supply_portal_backend/internal/events"
	apphttp "supply_portal_backend/internal/http"
	"supply_portal_backend/platform/clock"
	"supply_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the agreements bounded context module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule creates and initializes the agreements module.
func NewModule(pool *pgxpool.Pool, bus events.Bus, val *validator.Validator, clk clock.Clock) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, bus, clk)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "agreements"
}

// RegisterRoutes mounts the agreement endpoints under /api/v1/agreements.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1.Group("/agreements"))
}

// Handler returns the HTTP handler for route registration.
func (m *Module) Handler() *handler.Handler {
	return m.handler
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository for direct access if needed.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}
