// Package analytics provides the funnel analytics module. It owns no
// tables and reads the other contexts through its ports.
package analytics

import (
	"koppara_backend/internal/analytics/engine"
	"koppara_backend/internal/analytics/handler"
	"koppara_backend/internal/analytics/ports"
	"koppara_backend/internal/analytics/service"
	apphttp "koppara_backend/internal/http"
	"koppara_backend/platform/logger"
	"koppara_backend/platform/validator"
)

// Sources groups the read ports the aggregator consumes.
type Sources struct {
	Roster    ports.RosterReader
	Prospects ports.ProspectReader
	Leads     ports.LeadReader
	Catalog   ports.CatalogReader
}

// Module is the analytics module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates the analytics module.
func NewModule(src Sources, val *validator.Validator, log *logger.Logger) (*Module, error) {
	if err := val.RegisterEnum("ranking", engine.RankingValues()...); err != nil {
		return nil, err
	}

	svc := service.New(src.Roster, src.Prospects, src.Leads, src.Catalog, log)
	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "analytics"
}

// Service returns the analytics service.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts analytics routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/crm/stats", m.handler.MyStats)

	admin := ctx.Admin.Group("/analytics")
	admin.GET("", m.handler.Report)
	admin.GET("/leaderboard", m.handler.Leaderboard)
}

var _ apphttp.Module = (*Module)(nil)
