package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kirillkom/docresult-viewer/internal/bootstrap"
	"github.com/kirillkom/docresult-viewer/internal/config"
	"github.com/kirillkom/docresult-viewer/internal/observability/logging"
	"github.com/kirillkom/docresult-viewer/internal/observability/metrics"
)

const serviceName = "worker"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.NewJSONLogger(serviceName, "info").Error("config_load_failed", "error", err)
		os.Exit(1)
	}
	logger := logging.NewJSONLogger(serviceName, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workerMetrics := metrics.NewWorkerMetrics(serviceName)
	clientMetrics := metrics.NewClientMetrics(serviceName, workerMetrics.Registerer())

	app := bootstrap.New(cfg, logger, clientMetrics)
	defer app.Close()

	queue, err := app.ConnectQueue(true)
	if err != nil {
		logger.Error("worker_bootstrap_failed", "error", err)
		os.Exit(1)
	}
	watcher := app.Watcher()

	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           workerMetrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("worker_metrics_server_error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	logger.Info("worker_subscribed", "subject", cfg.NATSSubject, "classified_subject", cfg.NATSClassifiedSubject)
	err = queue.SubscribeFileUploaded(ctx, func(handlerCtx context.Context, fileID string) error {
		workerMetrics.StartWatch()
		started := time.Now()

		out, watchErr := watcher.Watch(handlerCtx, fileID)
		workerMetrics.FinishWatch(serviceName, time.Since(started), out.Classification.Label(), watchErr)
		if watchErr != nil {
			return watchErr
		}

		logger.Info("result_classified", "file_id", fileID, "classification", out.Classification.Label())
		if err := queue.PublishResultClassified(handlerCtx, out.Event(fileID)); err != nil {
			workerMetrics.RecordPublishFailure(serviceName)
			return err
		}
		return nil
	})
	if err != nil {
		logger.Error("worker_subscribe_error", "error", err)
		os.Exit(1)
	}
}
