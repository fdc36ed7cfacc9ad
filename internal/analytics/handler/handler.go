package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"koppara_backend/internal/analytics/service"
	"koppara_backend/internal/analytics/transport"
	"koppara_backend/platform/httpkit"
	"koppara_backend/platform/validator"
)

// Handler handles HTTP requests for funnel analytics.
type Handler struct {
	svc *service.Service
	val *validator.Validator
	now func() time.Time
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// New creates a new analytics handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val, now: time.Now}
}

// MyStats returns the caller's own funnel figures.
// GET /api/v1/crm/stats
func (h *Handler) MyStats(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.DistributorStats(c.Request.Context(), identity.UserID(), h.now())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Report returns the full network report.
// GET /api/v1/admin/analytics
func (h *Handler) Report(c *gin.Context) {
	result, err := h.svc.ComputeDistributorStats(c.Request.Context(), h.now())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Leaderboard ranks distributors by revenue, conversions or SLA.
// GET /api/v1/admin/analytics/leaderboard
func (h *Handler) Leaderboard(c *gin.Context) {
	var req transport.LeaderboardRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Leaderboard(c.Request.Context(), req, h.now())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
