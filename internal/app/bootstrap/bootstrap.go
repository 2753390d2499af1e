package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	ballotservice "campuselect/contexts/election-operations/ballot-service"
	ballotpostgres "campuselect/contexts/election-operations/ballot-service/adapters/postgres"
	ballotworkers "campuselect/contexts/election-operations/ballot-service/application/workers"
	candidacyservice "campuselect/contexts/election-operations/candidacy-service"
	candidacypostgres "campuselect/contexts/election-operations/candidacy-service/adapters/postgres"
	resultsservice "campuselect/contexts/election-operations/results-service"
	resultsmemory "campuselect/contexts/election-operations/results-service/adapters/memory"
	resultspostgres "campuselect/contexts/election-operations/results-service/adapters/postgres"
	resultsworkers "campuselect/contexts/election-operations/results-service/application/workers"
	"campuselect/internal/platform/config"
	"campuselect/internal/platform/db"
	"campuselect/internal/platform/httpserver"
	"campuselect/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	outboxRelay  ballotworkers.OutboxRelay
	relayEnabled bool
	ballotCast   resultsworkers.BallotCastConsumer
	pollInterval time.Duration
	logger       *slog.Logger
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

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	ballotRepo := ballotpostgres.NewRepository(pg.DB, logger)
	ballotModule := ballotservice.NewModule(ballotservice.Dependencies{
		Snapshots:     ballotRepo,
		Ballots:       ballotRepo,
		Participation: ballotRepo,
		Outbox:        ballotRepo,
		Clock:         ballotpostgres.SystemClock{},
		IDGen:         ballotpostgres.UUIDGenerator{},
		Logger:        logger,
	})

	candidacyRepo := candidacypostgres.NewRepository(pg.DB, logger)
	candidacyModule := candidacyservice.NewModule(candidacyservice.Dependencies{
		Snapshots:  candidacyRepo,
		Candidates: candidacyRepo,
		Clock:      candidacypostgres.SystemClock{},
		IDGen:      candidacypostgres.UUIDGenerator{},
		Logger:     logger,
	})

	resultsRepo := resultspostgres.NewRepository(pg.DB, logger)
	resultsCache := resultsmemory.NewStore()
	resultsModule := resultsservice.NewModule(resultsservice.Dependencies{
		ReadModel: resultsRepo,
		Cache:     resultsCache,
		Logger:    logger,
	})

	server := httpserver.New(ballotModule, candidacyModule, resultsModule, logger, normalizeAddr(cfg.HTTPPort))
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

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	kafka, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		return nil, err
	}

	ballotRepo := ballotpostgres.NewRepository(pg.DB, logger)
	resultsRepo := resultspostgres.NewRepository(pg.DB, logger)
	resultsCache := resultsmemory.NewStore()

	return &WorkerApp{
		postgres: pg,
		outboxRelay: ballotworkers.OutboxRelay{
			Outbox:    ballotRepo,
			Publisher: kafka,
			Clock:     ballotpostgres.SystemClock{},
			BatchSize: 100,
			Logger:    logger,
		},
		relayEnabled: cfg.EnableBallotOutboxRelay,
		ballotCast: resultsworkers.BallotCastConsumer{
			Subscriber: kafka,
			Dedup:      resultsRepo,
			Cache:      resultsCache,
			Clock:      resultspostgres.SystemClock{},
			DedupTTL:   7 * 24 * time.Hour,
			Disabled:   !cfg.EnableResultCacheConsumer,
			Logger:     logger,
		},
		pollInterval: 2 * time.Second,
		logger:       logger,
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

func (w *WorkerApp) Run(ctx context.Context) error {
	if err := w.ballotCast.Start(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
		"outbox_relay_enabled", w.relayEnabled,
	)

	for {
		if w.relayEnabled {
			if err := w.outboxRelay.RunOnce(ctx); err != nil {
				return err
			}
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
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
