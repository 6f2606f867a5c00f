package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/JonMunkholm/recon/internal/compare"
	"github.com/JonMunkholm/recon/internal/config"
	"github.com/JonMunkholm/recon/internal/database"
	"github.com/JonMunkholm/recon/internal/ingest"
	"github.com/JonMunkholm/recon/internal/jobs"
	"github.com/JonMunkholm/recon/internal/logging"
	"github.com/JonMunkholm/recon/internal/web"
)

func main() {
	// Overload lets a local .env win over variables already exported.
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("configuration loaded", "config", cfg.String())

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx := context.Background()

	pool, err := connect(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, pool); err != nil {
			return err
		}
		logger.Info("database schema applied")
	}

	registry, err := loadRegistry(cfg.Registry.Path)
	if err != nil {
		return err
	}
	logger.Info("schema registry loaded", "path", cfg.Registry.Path, "banks", registry.Banks())

	store := ingest.NewPostgresStore(pool)
	pipeline := ingest.NewPipeline(store, registry, logger)
	runner := jobs.NewRunner(pipeline, jobs.NewLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime), logger)

	loc, err := time.LoadLocation(cfg.Jobs.TimeZone)
	if err != nil {
		return fmt.Errorf("load time zone %q: %w", cfg.Jobs.TimeZone, err)
	}
	scheduler := jobs.NewScheduler(loc, logger)
	if err := scheduler.SchedulePrune(cfg.Jobs.PruneSchedule, runner, cfg.Jobs.Retention); err != nil {
		return err
	}
	scheduler.Start()

	server := web.NewServer(cfg, web.Deps{
		Registry: pipeline.Registry(),
		Runner:   runner,
		Records:  store,
		Comparer: compare.NotImplemented{},
		DB:       pool,
		Logger:   logger,
	})

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", "error", err)
	}

	if n := runner.Limiter().ActiveCount(); n > 0 {
		logger.Info("waiting for jobs to complete", "active", n)
	}
	if err := runner.Wait(shutdownCtx); err != nil {
		logger.Warn("jobs did not complete in time", "error", err)
	}

	if err := scheduler.Stop(shutdownCtx); err != nil {
		logger.Warn("scheduler did not stop in time", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

func connect(ctx context.Context, dc config.DatabaseConfig, logger *slog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dc.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = int32(dc.MaxConns)
	poolConfig.MinConns = int32(dc.MinConns)
	poolConfig.MaxConnLifetime = dc.MaxConnLifetime
	poolConfig.MaxConnIdleTime = dc.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if u, err := url.Parse(dc.URL); err == nil {
		logger.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		logger.Info("connected to database")
	}
	return pool, nil
}

// loadRegistry reads the schema file at path, or the built-in schemas when
// path is empty.
func loadRegistry(path string) (*ingest.Registry, error) {
	if path == "" {
		return ingest.DefaultRegistry()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open schema registry: %w", err)
	}
	defer f.Close()
	return ingest.LoadRegistry(f)
}
