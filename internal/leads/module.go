// Package leads provides the lead history bounded context module.
// Leads are append-only records of quotes shared with prospects.
package leads

import (
	apphttp "koppara_backend/internal/http"
	"koppara_backend/internal/leads/handler"
	"koppara_backend/internal/leads/ports"
	"koppara_backend/internal/leads/repository"
	"koppara_backend/internal/leads/service"
	"koppara_backend/platform/logger"
	"koppara_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the leads module. The prospect ledger is
// injected through its port.
func NewModule(pool *pgxpool.Pool, prospects ports.ProspectLedger, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, prospects, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts lead routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.POST("/crm/quotes", m.handler.ShareQuote)
	ctx.Protected.GET("/crm/leads", m.handler.List)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
