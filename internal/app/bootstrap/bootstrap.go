package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	issueservice "civicpulse/contexts/civic-reporting/issue-service"
	ledgergateway "civicpulse/contexts/civic-reporting/issue-service/adapters/ledger"
	issuepostgres "civicpulse/contexts/civic-reporting/issue-service/adapters/postgres"
	engagementledger "civicpulse/contexts/community-engagement/engagement-ledger"
	ledgerpostgres "civicpulse/contexts/community-engagement/engagement-ledger/adapters/postgres"
	ledgerworkers "civicpulse/contexts/community-engagement/engagement-ledger/application/workers"
	"civicpulse/internal/platform/config"
	"civicpulse/internal/platform/db"
	"civicpulse/internal/platform/httpserver"
	"civicpulse/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres  *db.Postgres
	scheduler *cron.Cron
	relay     ledgerworkers.OutboxRelay
	schedule  string
	logger    *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN, logger)
	if err != nil {
		return nil, err
	}

	bus := messaging.NewBus(logger)
	ledgerRepo := ledgerpostgres.NewRepository(pg.DB, logger)
	ledgerModule := engagementledger.NewModule(engagementledger.Dependencies{
		Engagements: ledgerRepo,
		Karma:       ledgerRepo,
		Clock:       ledgerpostgres.SystemClock{},
		IDGen:       ledgerpostgres.UUIDGenerator{},
		Notifier:    messaging.BusNotifier{Bus: bus},
		Logger:      logger,
	})

	issueRepo := issuepostgres.NewRepository(pg.DB, logger)
	issueModule := issueservice.NewModule(issueservice.Dependencies{
		Issues: issueRepo,
		Engagement: ledgergateway.Gateway{
			Ledger: ledgerModule.Ledger,
			Feed:   ledgerModule.Feed,
		},
		Clock:  issuepostgres.SystemClock{},
		IDGen:  issuepostgres.UUIDGenerator{},
		Logger: logger,
	})

	server := httpserver.New(
		issueModule,
		ledgerModule,
		logger,
		normalizeAddr(cfg.HTTPPort),
		time.Duration(cfg.TrendingWindowHours)*time.Hour,
	)
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN, logger)
	if err != nil {
		return nil, err
	}

	bus := messaging.NewBus(logger)
	repo := ledgerpostgres.NewRepository(pg.DB, logger)
	return &WorkerApp{
		postgres:  pg,
		scheduler: cron.New(),
		relay: ledgerworkers.OutboxRelay{
			Outbox:    repo,
			Publisher: bus,
			Clock:     ledgerpostgres.SystemClock{},
			BatchSize: cfg.OutboxBatchSize,
			Logger:    logger,
		},
		schedule: cfg.OutboxRelaySchedule,
		logger:   logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

// Run schedules the outbox relay on the configured cron expression and blocks
// until the context is cancelled.
func (w *WorkerApp) Run(ctx context.Context) error {
	_, err := w.scheduler.AddFunc(w.schedule, func() {
		if err := w.relay.RunOnce(ctx); err != nil {
			w.logger.Error("outbox relay cycle failed",
				"event", "bootstrap_relay_cycle_failed",
				"module", "internal/app/bootstrap",
				"layer", "platform",
				"error", err.Error(),
			)
		}
	})
	if err != nil {
		return err
	}

	w.scheduler.Start()
	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"schedule", w.schedule,
	)

	<-ctx.Done()
	stopped := w.scheduler.Stop()
	<-stopped.Done()
	return nil
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
