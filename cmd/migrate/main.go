package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rodbv/clean-node-api/internal/app/migrate"
	"github.com/rodbv/clean-node-api/pkg/config"
	"github.com/rodbv/clean-node-api/pkg/logger"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		logger.New("migrate", slog.LevelInfo, logger.FormatJSON).Error("failed to load .env", "error", err)
		os.Exit(1)
	}
	cfg := config.LoadAPIConfig()
	log := logger.New("migrate", logger.ParseLevel(cfg.LogLevel), cfg.LogFormat)

	open := func(ctx context.Context) (migrator, error) {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		runner, err := migrate.New(pool, cfg.DatabaseURL, migrate.SourceFor(cfg.MigrationsDir), log)
		if err != nil {
			pool.Close()
			return nil, err
		}
		return runner, nil
	}

	if err := newRootCmd(open, log).Execute(); err != nil {
		log.Error("migration command failed", "error", err)
		os.Exit(1)
	}
}
