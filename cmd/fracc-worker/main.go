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
	applog "fracc/internal/log"
	"fracc/internal/telemetry"
	"fracc/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger("fracc-worker")
	logger.Info("Starting fracc-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if !cfg.ExportsEnabled() {
		logger.Error("AMQP_URL is required by the report worker")
		os.Exit(1)
	}

	metrics := telemetry.New()
	caches := cache.NewManager(logger.WithComponent(applog.ComponentCache).Slog())
	caches.StartCleanup(time.Minute)
	defer caches.Stop()

	client := cli.InitAPIClient(logger, cfg, metrics, caches)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	writer := cli.InitReportWriter(ctx, logger, cfg)
	reports := worker.NewReportWorker(client, writer, cfg.Location(),
		worker.WithMetrics(metrics),
		worker.WithLogger(logger.WithComponent(applog.ComponentWorker).Slog()))

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue,
		logger.WithComponent(applog.ComponentAMQP).Slog())
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	var metricsSrv *http.Server
	if cfg.WorkerMetricsPort != "" {
		mux := http.NewServeMux()
		mux.Handle("GET /metrics", metrics.Handler())
		mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		metricsSrv = &http.Server{
			Addr:              ":" + cfg.WorkerMetricsPort,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics server error", "error", err, "port", cfg.WorkerMetricsPort)
			}
		}()
	}

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		cancel()
		if metricsSrv != nil {
			_ = metricsSrv.Shutdown(ctx)
		}
	})

	go func() {
		if err := amqpClient.ConsumeReportRequests(ctx, reports.HandleReportRequest); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Report consumption failed", "error", err)
			os.Exit(1)
		}
	}()

	logger.Info("Consuming report requests",
		"queue", cfg.AMQPQueue,
		"report_backend", cfg.ReportBackend)
	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Worker stopped")
}
