// Package notification provides the notification router: targeted
// announcements to distributors and their feed.
package notification

import (
	"context"

	"koppara_backend/internal/events"
	apphttp "koppara_backend/internal/http"
	"koppara_backend/internal/notification/domain"
	"koppara_backend/internal/notification/handler"
	"koppara_backend/internal/notification/ports"
	"koppara_backend/internal/notification/repository"
	"koppara_backend/internal/notification/service"
	"koppara_backend/platform/logger"
	"koppara_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the notification module implementing http.Module and
// events.Handler.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates the notification module. scheduler may be nil when no
// task queue is configured.
func NewModule(pool *pgxpool.Pool, directory ports.RecipientDirectory, scheduler ports.DispatchScheduler, val *validator.Validator, log *logger.Logger) (*Module, error) {
	if err := val.RegisterEnum("notification_category", domain.CategoryValues()...); err != nil {
		return nil, err
	}
	if err := val.RegisterEnum("target_tier", domain.TargetTierValues()...); err != nil {
		return nil, err
	}

	svc := service.New(repository.New(pool), directory, scheduler, log)
	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}, nil
}

func (m *Module) Name() string { return "notification" }

// Service exposes the router to the dispatch worker.
func (m *Module) Service() *service.Service { return m.service }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/notifications", m.handler.Feed)
	ctx.Admin.POST("/notifications", m.handler.Create)
}

// RegisterHandlers subscribes the module to roster and lineage events.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.DistributorRegistered{}.EventName(), m)
	bus.Subscribe(events.SponsorReassigned{}.EventName(), m)
}

// Handle implements events.Handler.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.DistributorRegistered:
		return m.service.NotifyDistributorRegistered(ctx, e)
	case events.SponsorReassigned:
		return m.service.NotifySponsorReassigned(ctx, e)
	default:
		return nil
	}
}

var (
	_ apphttp.Module = (*Module)(nil)
	_ events.Handler = (*Module)(nil)
)
