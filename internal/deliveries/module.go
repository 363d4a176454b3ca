// Package deliveries provides the deliveries bounded context module.
package deliveries

import (
	agreementrepo "supply_portal_backend/internal/agreements/repository"
	"supply_portal_backend/internal/deliveries/handler"
	"supply_portal_backend/internal/deliveries/repository"
	"supply_portal_backend/internal/deliveries/service"
	"supply_portal_backend/internal/events"
	apphttp "supply_portal_backend/internal/http"
	"supply_portal_backend/platform/clock"
	"supply_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the deliveries bounded context module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule creates and initializes the deliveries module. It reads
// agreements through the agreements repository rather than its service
// to avoid a module cycle.
func NewModule(pool *pgxpool.Pool, bus events.Bus, val *validator.Validator, clk clock.Clock) *Module {
	repo := repository.New(pool)
	agreements := agreementrepo.New(pool)
	svc := service.New(repo, agreements, bus, clk)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "deliveries"
}

// RegisterRoutes mounts confirmation endpoints under /api/v1/deliveries and
// generation and listing under /api/v1/agreements.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1.Group("/deliveries"), ctx.V1.Group("/agreements"))
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
