package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"koppara_backend/internal/adapters"
	"koppara_backend/internal/analytics"
	"koppara_backend/internal/catalog"
	"koppara_backend/internal/events"
	apphttp "koppara_backend/internal/http"
	"koppara_backend/internal/http/router"
	"koppara_backend/internal/leads"
	"koppara_backend/internal/lineage"
	"koppara_backend/internal/notification"
	notificationports "koppara_backend/internal/notification/ports"
	"koppara_backend/internal/prospects"
	"koppara_backend/internal/roster"
	"koppara_backend/internal/scheduler"
	"koppara_backend/migrations"
	"koppara_backend/platform/config"
	"koppara_backend/platform/db"
	"koppara_backend/platform/logger"
	"koppara_backend/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	pool, err := db.Connect(ctx, cfg, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	if err := db.Retry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, pool, migrations.FS)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	eventBus := events.NewInMemoryBus(log)

	dispatchScheduler, closeScheduler := initDispatchScheduler(cfg, log)
	if closeScheduler != nil {
		defer closeScheduler()
	}

	val := validator.New()

	// ========================================================================
	// Domain Modules
	// ========================================================================

	rosterModule, err := roster.NewModule(pool, eventBus, val, cfg.GetPhoneDefaultRegion(), log)
	if err != nil {
		panic("failed to initialize roster module: " + err.Error())
	}
	lineageModule := lineage.NewModule(pool, eventBus, val, log)
	// Referral signups attach the sponsor through the lineage mutation path.
	rosterModule.Service().SetSponsorAssigner(lineageModule.Service())

	prospectsModule, err := prospects.NewModule(pool, cfg, val, log)
	if err != nil {
		panic("failed to initialize prospects module: " + err.Error())
	}

	catalogModule := catalog.NewModule(pool)

	leadsModule := leads.NewModule(pool, adapters.NewProspectLedgerAdapter(prospectsModule.Service()), val, log)
	leadsModule.Service().SetProductCatalog(catalogModule.Repository())

	analyticsModule, err := analytics.NewModule(analytics.Sources{
		Roster:    adapters.NewRosterReportReader(rosterModule.Repository()),
		Prospects: adapters.NewProspectReportReader(prospectsModule.Service()),
		Leads:     adapters.NewLeadReportReader(leadsModule.Service()),
		Catalog:   adapters.NewCatalogReportReader(catalogModule.Repository()),
	}, val, log)
	if err != nil {
		panic("failed to initialize analytics module: " + err.Error())
	}

	notificationModule, err := notification.NewModule(pool, adapters.NewRecipientDirectoryAdapter(rosterModule.Repository()), dispatchScheduler, val, log)
	if err != nil {
		panic("failed to initialize notification module: " + err.Error())
	}
	notificationModule.RegisterHandlers(eventBus)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config: cfg,
		Logger: log,
		Health: pool,
		Modules: []apphttp.Module{
			rosterModule,
			lineageModule,
			prospectsModule,
			leadsModule,
			analyticsModule,
			notificationModule,
		},
	}

	engine := router.New(app)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func initDispatchScheduler(cfg config.SchedulerConfig, log *logger.Logger) (notificationports.DispatchScheduler, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; notifications are dispatched inline")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize dispatch scheduler client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}
