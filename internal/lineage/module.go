// Package lineage provides the sponsor graph bounded context module.
// Every sponsor change goes through this module: it keeps the graph acyclic
// and writes exactly one audit entry per accepted change.
package lineage

import (
	"koppara_backend/internal/events"
	apphttp "koppara_backend/internal/http"
	"koppara_backend/internal/lineage/handler"
	"koppara_backend/internal/lineage/repository"
	"koppara_backend/internal/lineage/service"
	"koppara_backend/platform/logger"
	"koppara_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the lineage bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the lineage module with all its dependencies.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	store := repository.New(pool)
	svc := service.New(store, eventBus, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "lineage"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts lineage routes on the provided router context.
// All of them require the admin role.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Admin.PUT("/distributors/:id/sponsor", m.handler.ReassignSponsor)
	ctx.Admin.GET("/distributors/:id/lineage", m.handler.GetLineage)

	lineageGroup := ctx.Admin.Group("/lineage")
	lineageGroup.GET("/audit", m.handler.ListAuditLog)
	lineageGroup.GET("/integrity", m.handler.VerifyIntegrity)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
