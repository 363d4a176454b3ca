package scheduler

import (
	"net/http"

	apphttp "supply_portal_backend/internal/http"
	"supply_portal_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// HTTPModule exposes manual job triggers on the admin route group. It
// enqueues the same tasks the cron scheduler produces, so a manual run
// goes through the worker and its cross-instance lock like any other.
type HTTPModule struct {
	client *Client
}

// NewHTTPModule creates the admin trigger module.
func NewHTTPModule(client *Client) *HTTPModule {
	return &HTTPModule{client: client}
}

// Name returns the module identifier.
func (m *HTTPModule) Name() string { return "scheduler" }

// RegisterRoutes mounts the job trigger endpoints under /api/v1/admin/jobs.
func (m *HTTPModule) RegisterRoutes(ctx *apphttp.RouterContext) {
	jobs := ctx.Admin.Group("/jobs")
	jobs.POST("/generate", m.triggerGeneration)
	jobs.POST("/fallback", m.triggerFallback)
}

type triggerGenerationRequest struct {
	WindowDays int `json:"windowDays"`
}

func (m *HTTPModule) triggerGeneration(c *gin.Context) {
	var req triggerGenerationRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
			return
		}
	}
	if req.WindowDays < 0 {
		httpkit.Error(c, http.StatusBadRequest, "windowDays must not be negative", nil)
		return
	}

	if err := m.client.TriggerGeneration(c.Request.Context(), req.WindowDays); err != nil {
		httpkit.Error(c, http.StatusServiceUnavailable, "could not enqueue generation run", nil)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "enqueued"})
}

func (m *HTTPModule) triggerFallback(c *gin.Context) {
	if err := m.client.TriggerFallback(c.Request.Context()); err != nil {
		httpkit.Error(c, http.StatusServiceUnavailable, "could not enqueue fallback run", nil)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "enqueued"})
}
