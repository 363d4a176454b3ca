package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"supply_portal_backend/internal/agreements/service"
	"supply_portal_backend/internal/agreements/transport"
	"supply_portal_backend/platform/httpkit"
	"supply_portal_backend/platform/validator"
)

// Handler handles HTTP requests for agreements.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid agreement ID"
)

// New creates a new agreements handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the agreement endpoints on the given group.
func (h *Handler) RegisterRoutes(g *gin.RouterGroup) {
	g.POST("", h.Create)
	g.GET("", h.ListActive)
	g.GET("/:id", h.GetByID)
	g.POST("/:id/pause", h.Pause)
	g.POST("/:id/resume", h.Resume)
	g.POST("/:id/terminate", h.Terminate)
}

// Create creates a new agreement.
// POST /api/v1/agreements
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateAgreementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Create(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, result)
}

// ListActive retrieves all active agreements.
// GET /api/v1/agreements
func (h *Handler) ListActive(c *gin.Context) {
	result, err := h.svc.ListActive(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetByID retrieves an agreement by ID.
// GET /api/v1/agreements/:id
func (h *Handler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	result, err := h.svc.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Pause pauses an agreement.
// POST /api/v1/agreements/:id/pause
func (h *Handler) Pause(c *gin.Context) {
	h.applyTransition(c, h.svc.Pause)
}

// Resume resumes an agreement.
// POST /api/v1/agreements/:id/resume
func (h *Handler) Resume(c *gin.Context) {
	h.applyTransition(c, h.svc.Resume)
}

// Terminate terminates an agreement.
// POST /api/v1/agreements/:id/terminate
func (h *Handler) Terminate(c *gin.Context) {
	h.applyTransition(c, h.svc.Terminate)
}

func (h *Handler) applyTransition(c *gin.Context, fn func(ctx context.Context, id uuid.UUID) (*transport.AgreementResponse, error)) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	result, err := fn(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return uuid.Nil, false
	}
	return id, true
}
