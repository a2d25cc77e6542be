package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"fracc/internal/amqp"
	"fracc/internal/cache"
	"fracc/internal/cli"
	apphttp "fracc/internal/http"
	applog "fracc/internal/log"
	"fracc/internal/screens"
	"fracc/internal/session"
	"fracc/internal/telemetry"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger("fracc")
	cfg := cli.LoadAndValidateConfig(logger)

	metrics := telemetry.New()

	caches := cache.NewManager(logger.WithComponent(applog.ComponentCache).Slog())
	caches.StartCleanup(time.Minute)
	defer caches.Stop()

	client := cli.InitAPIClient(logger, cfg, metrics, caches)
	loader := screens.NewLoader(client, cfg.Location(), cfg.PageSize)

	store := cli.InitSessionStore(logger, cfg)
	defer store.Close()
	sessions := session.NewManager(store, cfg.SessionCookie, cfg.SessionCookieSecure,
		logger.WithComponent(applog.ComponentSession).Slog())

	// Exports stay disabled without a broker; the dashboard hides the form.
	var reports apphttp.ReportPublisher
	if cfg.ExportsEnabled() {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue,
			logger.WithComponent(applog.ComponentAMQP).Slog())
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		reports = amqpClient
		logger.Info("Report exports enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("Report exports disabled - no AMQP_URL provided")
	}

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Loader:             loader,
		Auth:               client,
		Sessions:           sessions,
		Reports:            reports,
		Metrics:            metrics,
		Logger:             logger,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		GoogleClientID:     cfg.GoogleClientID,
	})

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	})

	logger.Info("Starting fracc console",
		"port", cfg.Port,
		"api", cfg.APIBaseURL,
		"timezone", cfg.Timezone,
		"sessions", cfg.SessionBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
