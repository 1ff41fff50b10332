package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	identitymetrics "lineage/internal/identity/metrics"
	"lineage/internal/identity/service"
	"lineage/internal/identity/store"
	"lineage/internal/identity/store/memory"
	pgstore "lineage/internal/identity/store/postgres"
	"lineage/internal/ingest"
	jwttoken "lineage/internal/jwt_token"
	"lineage/internal/platform/config"
	"lineage/internal/platform/httpserver"
	"lineage/internal/platform/logger"
	"lineage/internal/platform/metrics"
	"lineage/internal/platform/postgres"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	stores, db, err := openStores(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	svc := service.New(stores.uow, stores.counter,
		service.WithLogger(log),
		service.WithMetrics(identitymetrics.New()),
		service.WithThresholds(cfg.Resolution.MatchThreshold, cfg.Resolution.ReviewThreshold),
	)

	router := newRouter(routerDeps{
		service:  svc,
		tokens:   jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer, cfg.Auth.Audience),
		metrics:  metrics.New(),
		gatherer: prometheus.DefaultGatherer,
		db:       db,
		logger:   log,
	})
	srv := httpserver.New(cfg.Addr, router, httpserver.WithLogger(log))

	errCh := make(chan error, 2)
	if len(cfg.Kafka.Brokers) > 0 {
		consumer, err := ingest.NewConsumer(ingest.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
			Group:   cfg.Kafka.Group,
		}, ingest.NewOccurrenceHandler(svc, log), ingest.WithLogger(log))
		if err != nil {
			return err
		}
		defer consumer.Close()
		log.Info("starting occurrence consumer", "topic", cfg.Kafka.Topic, "group", cfg.Kafka.Group)
		go func() {
			if err := consumer.Run(ctx); err != nil {
				errCh <- err
			}
		}()
	}

	go func() {
		log.Info("starting lineage server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Join(runErr, err)
	}
	return runErr
}

type identityStores struct {
	uow     store.UnitOfWork
	counter store.Counter
}

// openStores uses Postgres when a database URL is configured and the
// in-memory store otherwise.
func openStores(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (identityStores, *sql.DB, error) {
	if cfg.URL == "" {
		log.Warn("DATABASE_URL not set, using in-memory store")
		db := memory.New()
		return identityStores{uow: db, counter: db}, nil, nil
	}

	db, err := postgres.Open(ctx, cfg)
	if err != nil {
		return identityStores{}, nil, err
	}
	if err := pgstore.Migrate(ctx, db); err != nil {
		db.Close()
		return identityStores{}, nil, err
	}
	st := pgstore.New(db, pgstore.WithTxTimeout(cfg.TxTimeout))
	return identityStores{uow: st, counter: st}, db, nil
}
