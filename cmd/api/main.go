package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redis "github.com/redis/go-redis/v9"

	"github.com/rodbv/clean-node-api/internal/adapter/emailvalidator"
	"github.com/rodbv/clean-node-api/internal/adapter/hasher"
	"github.com/rodbv/clean-node-api/internal/app/migrate"
	"github.com/rodbv/clean-node-api/internal/controller"
	httpx "github.com/rodbv/clean-node-api/internal/http"
	"github.com/rodbv/clean-node-api/internal/repository/postgres"
	"github.com/rodbv/clean-node-api/internal/service/account"
	"github.com/rodbv/clean-node-api/pkg/config"
	"github.com/rodbv/clean-node-api/pkg/logger"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		logger.New("api", slog.LevelInfo, logger.FormatJSON).Error("failed to load .env", "error", err)
		os.Exit(1)
	}
	cfg := config.LoadAPIConfig()
	log := logger.New("api", logger.ParseLevel(cfg.LogLevel), cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	runner, err := migrate.New(pool, cfg.DatabaseURL, migrate.SourceFor(cfg.MigrationsDir), log)
	if err != nil {
		log.Error("failed to configure migrations", "error", err)
		os.Exit(1)
	}
	defer runner.Close()
	if err := runner.Ping(ctx); err != nil {
		log.Error("database ping failed", "error", err)
		os.Exit(1)
	}
	if cfg.AutoMigrate {
		if err := runner.Ensure(ctx); err != nil {
			log.Error("migrations failed", "error", err)
			os.Exit(1)
		}
	}

	repo := postgres.New(pool)
	accountSvc := account.New(repo, hasher.New(cfg.BcryptCost), log)
	signup := controller.NewSignUpController(emailvalidator.New(), accountSvc)

	var rdb *redis.Client
	if addr := strings.TrimSpace(cfg.RateLimitRedisAddr); addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: addr, Password: cfg.RateLimitRedisPass, DB: cfg.RateLimitRedisDB})
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Warn("redis rate limiter unavailable, using in-memory limits", "addr", addr, "error", err)
			_ = rdb.Close()
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	router := httpx.NewRouter(log, signup, httpx.Options{
		Redis:        rdb,
		SignupLimit:  cfg.SignupRateLimit,
		SignupWindow: cfg.SignupRateWindow,
		DBHealth:     pool.Ping,
	})
	defer router.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errorCh := make(chan error, 1)
	go func() {
		log.Info("api server starting", "addr", cfg.Addr, "env", cfg.Environment)
		errorCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
		log.Info("api server stopped")
	case err := <-errorCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}
}
