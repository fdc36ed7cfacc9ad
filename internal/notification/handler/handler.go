package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"koppara_backend/internal/notification/service"
	"koppara_backend/internal/notification/transport"
	"koppara_backend/platform/httpkit"
	"koppara_backend/platform/validator"
)

// Handler handles HTTP requests for notifications.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// New creates a new notification handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Create publishes a notification to a tier, one distributor or everyone.
// POST /api/v1/admin/notifications
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Enqueue(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// Feed lists the caller's notifications.
// GET /api/v1/notifications
func (h *Handler) Feed(c *gin.Context) {
	var req transport.ListFeedRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.ListFeed(c.Request.Context(), identity.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
