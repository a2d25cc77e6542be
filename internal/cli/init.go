// Package cli provides common CLI initialization utilities shared by
// cmd/fracc and cmd/fracc-worker.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fracc/internal/api"
	"fracc/internal/cache"
	"fracc/internal/config"
	applog "fracc/internal/log"
	"fracc/internal/session"
	"fracc/internal/sheets"
	"fracc/internal/sheets/google"
	"fracc/internal/sheets/memory"
	"fracc/internal/telemetry"
)

// SetupLogger initializes structured logging from LOG_LEVEL and LOG_FORMAT
// and installs it as the slog default. Call it after LoadEnvFile.
func SetupLogger(component string) *applog.Logger {
	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(os.Getenv("LOG_LEVEL")),
		Format:    os.Getenv("LOG_FORMAT"),
		Component: component,
		Output:    os.Stdout,
	})
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// InitSessionStore opens the configured session backend or exits.
func InitSessionStore(logger *applog.Logger, cfg *config.Config) session.Store {
	if cfg.SessionBackend != "sqlite" {
		logger.Info("Using in-memory session store")
		return session.NewMemoryStore()
	}
	store, err := session.NewSQLiteStore(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite session store", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	logger.Info("Using SQLite session store", "path", cfg.SQLiteDBPath)
	return store
}

// InitAPIClient builds the residential API client with the catalog cache
// registered on mgr.
func InitAPIClient(logger *applog.Logger, cfg *config.Config, metrics *telemetry.Metrics, mgr *cache.Manager) *api.Client {
	client, err := api.New(cfg.APIBaseURL,
		api.WithTimeout(cfg.APITimeout),
		api.WithLogger(logger.WithComponent(applog.ComponentAPI).Slog()),
		api.WithMetrics(metrics),
		api.WithCatalogCache(cfg.CatalogCacheTTL, mgr),
	)
	if err != nil {
		logger.Error("Failed to create API client", "error", err, "base_url", cfg.APIBaseURL)
		os.Exit(1)
	}
	return client
}

// InitReportWriter returns the Google Sheets writer or the in-memory one,
// following REPORT_BACKEND.
func InitReportWriter(ctx context.Context, logger *applog.Logger, cfg *config.Config) sheets.ReportWriter {
	if cfg.ReportBackend != "sheets" {
		logger.Info("Using in-memory report writer")
		return memory.New()
	}
	w, err := google.New(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleReportSheet, logger.WithComponent(applog.ComponentSheets).Slog())
	if err != nil {
		logger.Error("Failed to initialize Google Sheets report writer", "error", err)
		os.Exit(1)
	}
	return w
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that signals when shutdown is complete.
func GracefulShutdown(logger *applog.Logger, timeout time.Duration, cleanup func(context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		cancel()

		finished := make(chan struct{})
		go func() {
			if cleanup != nil {
				cleanup(shutdownCtx)
			}
			close(finished)
		}()

		select {
		case <-shutdownCtx.Done():
			logger.Warn("Shutdown timeout reached")
		case <-finished:
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
