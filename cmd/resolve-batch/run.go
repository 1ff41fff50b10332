package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"lineage/internal/batch"
	"lineage/internal/identity/service"
	pgstore "lineage/internal/identity/store/postgres"
	"lineage/internal/platform/config"
	"lineage/internal/platform/logger"
	"lineage/internal/platform/postgres"
	"lineage/internal/platform/redis"
)

func runResolve(ctx context.Context, cfg runConfig, out, errOut io.Writer) error {
	if cfg.DatabaseURL == "" {
		return errors.New("--database-url (or LINEAGE_DATABASE_URL) is required")
	}
	if cfg.Checkpoint != "" && cfg.RedisURL == "" {
		return errors.New("--checkpoint requires --redis-url")
	}
	log := logger.NewWithWriter(errOut, cfg.LogLevel)

	db, err := postgres.Open(ctx, config.DatabaseConfig{
		URL:          cfg.DatabaseURL,
		MaxOpenConns: cfg.Workers + 2,
		MaxIdleConns: cfg.Workers,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	if err := pgstore.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	st := pgstore.New(db)
	svc := service.New(st, st,
		service.WithLogger(log),
		service.WithThresholds(cfg.MatchThreshold, cfg.ReviewThreshold),
	)

	opts := []batch.Option{batch.WithLogger(log), batch.WithOutput(out)}
	if cfg.Checkpoint != "" {
		rc, err := redis.New(ctx, config.RedisConfig{URL: cfg.RedisURL})
		if err != nil {
			return err
		}
		defer rc.Close()
		opts = append(opts, batch.WithCheckpoint(batch.NewRedisCheckpoint(rc.Client, cfg.Checkpoint)))
	}

	fmt.Fprintf(out, "Resolving leads from offset %d (batch size %d, workers %d)\n",
		cfg.StartOffset, cfg.BatchSize, cfg.Workers)
	_, err = batch.New(st, svc, st, cfg.batchOptions(), opts...).Run(ctx)
	return err
}
