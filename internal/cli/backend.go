package cli

import (
	"context"
	"time"

	"koppara_backend/internal/adapters"
	"koppara_backend/internal/analytics"
	analyticstransport "koppara_backend/internal/analytics/transport"
	"koppara_backend/internal/catalog"
	"koppara_backend/internal/events"
	"koppara_backend/internal/leads"
	"koppara_backend/internal/lineage"
	lineagedomain "koppara_backend/internal/lineage/domain"
	lineagerepo "koppara_backend/internal/lineage/repository"
	lineageservice "koppara_backend/internal/lineage/service"
	"koppara_backend/internal/prospects"
	"koppara_backend/internal/roster"
	"koppara_backend/migrations"
	"koppara_backend/platform/config"
	"koppara_backend/platform/db"
	"koppara_backend/platform/logger"
	"koppara_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Backend is what the commands need from the running system.
type Backend interface {
	VerifyIntegrity(ctx context.Context) (lineagedomain.IntegrityReport, error)
	ReassignSponsor(ctx context.Context, cmd lineageservice.ReassignCommand) (lineagerepo.AuditEntry, error)
	Leaderboard(ctx context.Context, req analyticstransport.LeaderboardRequest, now time.Time) (analyticstransport.LeaderboardResponse, error)
	Migrate(ctx context.Context) error
	Close()
}

// openBackend is replaced in tests.
var openBackend = openPostgresBackend

type postgresBackend struct {
	*lineageservice.Service
	analytics *analytics.Module
	pool      *pgxpool.Pool
}

func openPostgresBackend(ctx context.Context) (Backend, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.New(cfg.Env)

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}

	bus := events.NewInMemoryBus(log)
	val := validator.New()

	rosterModule, err := roster.NewModule(pool, bus, val, cfg.GetPhoneDefaultRegion(), log)
	if err != nil {
		pool.Close()
		return nil, err
	}
	lineageModule := lineage.NewModule(pool, bus, val, log)
	prospectsModule, err := prospects.NewModule(pool, cfg, val, log)
	if err != nil {
		pool.Close()
		return nil, err
	}
	catalogModule := catalog.NewModule(pool)
	leadsModule := leads.NewModule(pool, adapters.NewProspectLedgerAdapter(prospectsModule.Service()), val, log)

	analyticsModule, err := analytics.NewModule(analytics.Sources{
		Roster:    adapters.NewRosterReportReader(rosterModule.Repository()),
		Prospects: adapters.NewProspectReportReader(prospectsModule.Service()),
		Leads:     adapters.NewLeadReportReader(leadsModule.Service()),
		Catalog:   adapters.NewCatalogReportReader(catalogModule.Repository()),
	}, val, log)
	if err != nil {
		pool.Close()
		return nil, err
	}

	return &postgresBackend{
		Service:   lineageModule.Service(),
		analytics: analyticsModule,
		pool:      pool,
	}, nil
}

func (b *postgresBackend) Leaderboard(ctx context.Context, req analyticstransport.LeaderboardRequest, now time.Time) (analyticstransport.LeaderboardResponse, error) {
	return b.analytics.Service().Leaderboard(ctx, req, now)
}

func (b *postgresBackend) Migrate(ctx context.Context) error {
	return db.RunMigrations(ctx, b.pool, migrations.FS)
}

func (b *postgresBackend) Close() {
	b.pool.Close()
}
