package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/kirillkom/docresult-viewer/internal/adapters/http"
	"github.com/kirillkom/docresult-viewer/internal/bootstrap"
	"github.com/kirillkom/docresult-viewer/internal/config"
	"github.com/kirillkom/docresult-viewer/internal/core/ports"
	"github.com/kirillkom/docresult-viewer/internal/core/usecase"
	"github.com/kirillkom/docresult-viewer/internal/observability/logging"
	"github.com/kirillkom/docresult-viewer/internal/observability/metrics"
)

const serviceName = "api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.NewJSONLogger(serviceName, "info").Error("config_load_failed", "error", err)
		os.Exit(1)
	}
	logger := logging.NewJSONLogger(serviceName, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpMetrics := metrics.NewHTTPServerMetrics(serviceName)
	clientMetrics := metrics.NewClientMetrics(serviceName, httpMetrics.Registerer())

	app := bootstrap.New(cfg, logger, clientMetrics)
	defer app.Close()

	var announcer ports.UploadAnnouncer
	queue, err := app.ConnectQueue(false)
	if err != nil {
		logger.Warn("nats_unavailable_pending_uploads_not_announced", "url", cfg.NATSURL, "error", err)
	} else {
		announcer = queue
	}

	viewer := usecase.NewViewerService(app.Backend, app.Inspector, announcer)
	router := httpadapter.NewRouter(viewer, httpadapter.Options{
		Service:        serviceName,
		MaxUploadBytes: cfg.MaxUploadBytes,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		MaxInFlight:    cfg.MaxInFlight,
		Metrics:        httpMetrics,
		Logger:         logger,
	})

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.UploadTimeout() + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("api_listening", "addr", server.Addr, "backend_url", cfg.BackendURL)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api_server_error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api_shutdown_error", "error", err)
	}
}
