package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"koppara_backend/internal/lineage/service"
	"koppara_backend/internal/lineage/transport"
	"koppara_backend/platform/httpkit"
	"koppara_backend/platform/validator"
)

// Handler handles HTTP requests for the sponsor graph.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid distributor ID"
)

// New creates a new lineage handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// ReassignSponsor changes the sponsor of a distributor.
// PUT /api/v1/admin/distributors/:id/sponsor
func (h *Handler) ReassignSponsor(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	var req transport.ReassignSponsorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
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

	entry, err := h.svc.ReassignSponsor(c.Request.Context(), service.ReassignCommand{
		Actor:         identity.Actor(),
		DistributorID: id,
		NewSponsorID:  req.SponsorID,
		Reason:        req.Reason,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, service.ToAuditResponse(entry))
}

// GetLineage returns a distributor with its sponsor and downline.
// GET /api/v1/admin/distributors/:id/lineage
func (h *Handler) GetLineage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	var query transport.LineageQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lineage, err := h.svc.GetLineage(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	result, err := service.CollectLineage(lineage, query.MaxDepth)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ListAuditLog lists sponsor changes, newest first.
// GET /api/v1/admin/lineage/audit
func (h *Handler) ListAuditLog(c *gin.Context) {
	var req transport.ListAuditRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.ListAuditLog(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// VerifyIntegrity scans the sponsor graph for corruption.
// GET /api/v1/admin/lineage/integrity
func (h *Handler) VerifyIntegrity(c *gin.Context) {
	report, err := h.svc.VerifyIntegrity(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{
		"healthy": report.Healthy(),
		"report":  report,
	})
}
