package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"supply_portal_backend/internal/deliveries/domain"
	"supply_portal_backend/internal/deliveries/service"
	"supply_portal_backend/internal/deliveries/transport"
	"supply_portal_backend/platform/httpkit"
	"supply_portal_backend/platform/validator"
)

// Handler handles HTTP requests for deliveries.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest    = "invalid request"
	msgValidationFailed  = "validation failed"
	msgInvalidID         = "invalid delivery ID"
	msgInvalidAgreement  = "invalid agreement ID"
	msgInvalidDateWindow = "invalid date window"
)

// New creates a new deliveries handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the delivery endpoints on the given group.
// Confirmation endpoints live under /deliveries; generation and listing
// are nested under the owning agreement.
func (h *Handler) RegisterRoutes(deliveries, agreements *gin.RouterGroup) {
	deliveries.POST("/:id/confirm-expected", h.ConfirmExpected)
	deliveries.POST("/:id/confirm-served", h.ConfirmServed)
	agreements.POST("/:id/deliveries/generate", h.Generate)
	agreements.GET("/:id/deliveries", h.ListByAgreement)
}

// ConfirmExpected records the expected quantity for a delivery.
// POST /api/v1/deliveries/:id/confirm-expected
func (h *Handler) ConfirmExpected(c *gin.Context) {
	h.confirm(c, h.svc.ConfirmExpected)
}

// ConfirmServed records the served quantity for a delivery.
// POST /api/v1/deliveries/:id/confirm-served
func (h *Handler) ConfirmServed(c *gin.Context) {
	h.confirm(c, h.svc.ConfirmServed)
}

// Generate creates pending deliveries for an agreement over a date window.
// POST /api/v1/agreements/:id/deliveries/generate
func (h *Handler) Generate(c *gin.Context) {
	agreementID, ok := h.parseAgreementID(c)
	if !ok {
		return
	}

	var req transport.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	from, to, ok := h.parseWindow(c, req.From, req.To)
	if !ok {
		return
	}

	created, err := h.svc.GenerateForAgreement(c.Request.Context(), agreementID, from, to)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, toListResponse(created))
}

// ListByAgreement retrieves deliveries for an agreement, optionally
// bounded by ?from and ?to dates.
// GET /api/v1/agreements/:id/deliveries
func (h *Handler) ListByAgreement(c *gin.Context) {
	agreementID, ok := h.parseAgreementID(c)
	if !ok {
		return
	}

	from, to, ok := h.parseWindow(c, c.DefaultQuery("from", "0001-01-01"), c.DefaultQuery("to", "9999-12-31"))
	if !ok {
		return
	}

	items, err := h.svc.ListByAgreement(c.Request.Context(), agreementID, from, to)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toListResponse(items))
}

func (h *Handler) confirm(c *gin.Context, fn func(ctx context.Context, id uuid.UUID, quantity int) (*domain.Delivery, error)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	var req transport.ConfirmQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	result, err := fn(c.Request.Context(), id, req.Quantity)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToResponse(result))
}

func (h *Handler) parseAgreementID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidAgreement, nil)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) parseWindow(c *gin.Context, fromStr, toStr string) (time.Time, time.Time, bool) {
	from, err := time.ParseInLocation("2006-01-02", fromStr, time.UTC)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidDateWindow, nil)
		return time.Time{}, time.Time{}, false
	}
	to, err := time.ParseInLocation("2006-01-02", toStr, time.UTC)
	if err != nil || to.Before(from) {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidDateWindow, nil)
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

func toListResponse(items []domain.Delivery) transport.DeliveryListResponse {
	out := transport.DeliveryListResponse{
		Items: make([]transport.DeliveryResponse, 0, len(items)),
		Total: len(items),
	}
	for i := range items {
		out.Items = append(out.Items, transport.ToResponse(&items[i]))
	}
	return out
}
