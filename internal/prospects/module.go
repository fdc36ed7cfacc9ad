// Package prospects provides the prospect ledger bounded context module.
package prospects

import (
	apphttp "koppara_backend/internal/http"
	"koppara_backend/internal/prospects/domain"
	"koppara_backend/internal/prospects/handler"
	"koppara_backend/internal/prospects/repository"
	"koppara_backend/internal/prospects/service"
	"koppara_backend/platform/config"
	"koppara_backend/platform/logger"
	"koppara_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ModuleConfig combines the config interfaces the ledger reads.
type ModuleConfig interface {
	config.ProspectConfig
	config.PhoneConfig
}

// Module is the prospects bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the prospects module with all its dependencies.
func NewModule(pool *pgxpool.Pool, cfg ModuleConfig, val *validator.Validator, log *logger.Logger) (*Module, error) {
	if err := val.RegisterEnum("prospect_state", domain.StateValues()...); err != nil {
		return nil, err
	}

	repo := repository.New(pool)
	svc := service.New(repo, cfg.GetProspectStrictTransitions(), cfg.GetPhoneDefaultRegion(), log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "prospects"
}

// Service returns the prospect ledger for other modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts prospect routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	crm := ctx.Protected.Group("/crm/prospects")
	crm.GET("", m.handler.List)
	crm.PATCH("/:id/state", m.handler.UpdateState)
	crm.POST("/:id/follow-up", m.handler.FollowUp)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
