package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"koppara_backend/internal/adapters"
	"koppara_backend/internal/events"
	"koppara_backend/internal/lineage"
	"koppara_backend/internal/notification"
	rosterrepo "koppara_backend/internal/roster/repository"
	"koppara_backend/internal/scheduler"
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
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()

	// Worker-side notification wiring (no HTTP handlers required). A nil
	// scheduler keeps the worker from re-enqueueing its own tasks.
	directory := adapters.NewRecipientDirectoryAdapter(rosterrepo.New(pool))
	notificationModule, err := notification.NewModule(pool, directory, nil, val, log)
	if err != nil {
		log.Error("failed to initialize notification module", "error", err)
		panic("failed to initialize notification module: " + err.Error())
	}

	lineageModule := lineage.NewModule(pool, eventBus, val, log)
	integrityCheck := scheduler.NewIntegrityCheck(lineageModule.Service(), log, cfg.GetLineageIntegrityInterval())
	go integrityCheck.Run(ctx)

	worker, err := scheduler.NewWorker(cfg, notificationModule.Service(), log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}
	worker.Run(ctx)
}
