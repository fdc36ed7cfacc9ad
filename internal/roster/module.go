// Package roster provides the distributor roster bounded context module.
// It owns distributor records, membership activation and referral codes.
// Sponsor edges are changed only through the lineage module.
package roster

import (
	"koppara_backend/internal/events"
	apphttp "koppara_backend/internal/http"
	"koppara_backend/internal/roster/domain"
	"koppara_backend/internal/roster/handler"
	"koppara_backend/internal/roster/repository"
	"koppara_backend/internal/roster/service"
	"koppara_backend/platform/logger"
	"koppara_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the roster bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the roster module with all its dependencies.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, phoneRegion string, log *logger.Logger) (*Module, error) {
	if err := val.RegisterEnum("tier", domain.TierValues()...); err != nil {
		return nil, err
	}

	repo := repository.New(pool)
	svc := service.New(repo, eventBus, phoneRegion, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "roster"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository for cross-module adapters.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// RegisterRoutes mounts roster routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/referrals/:code", ctx.PublicRateLimiter.RateLimit(), m.handler.LookupReferral)

	ctx.Protected.GET("/me", m.handler.Me)

	adminGroup := ctx.Admin.Group("/distributors")
	adminGroup.POST("", m.handler.Register)
	adminGroup.GET("", m.handler.List)
	adminGroup.GET("/:id", m.handler.GetByID)
	adminGroup.PATCH("/:id", m.handler.UpdateProfile)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
