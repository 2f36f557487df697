package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/kirillkom/docresult-viewer/internal/config"
	"github.com/kirillkom/docresult-viewer/internal/core/ports"
	"github.com/kirillkom/docresult-viewer/internal/core/usecase"
	"github.com/kirillkom/docresult-viewer/internal/infrastructure/backend"
	"github.com/kirillkom/docresult-viewer/internal/infrastructure/extractor/fileinfo"
	"github.com/kirillkom/docresult-viewer/internal/infrastructure/queue/nats"
	"github.com/kirillkom/docresult-viewer/internal/infrastructure/resilience"
	"github.com/kirillkom/docresult-viewer/internal/infrastructure/storage/localfs"
)

type App struct {
	Config config.Config
	Logger *slog.Logger

	Backend   *backend.Client
	Inspector *fileinfo.Inspector
	Executor  *resilience.Executor

	closeFns []func()
}

// New wires the backend client shared by every entrypoint. Observer may be
// nil when the process exports no metrics.
func New(cfg config.Config, logger *slog.Logger, observer ports.TransportObserver) *App {
	if logger == nil {
		logger = slog.Default()
	}
	executor := resilience.NewExecutor(ResilienceConfig(cfg), logger)

	client := backend.NewWithOptions(cfg.BackendURL, backend.Options{
		UploadTimeout: cfg.UploadTimeout(),
		FetchTimeout:  cfg.FetchTimeout(),
		ProbeTimeout:  cfg.ProbeTimeout(),
		Executor:      executor,
		Observer:      observer,
		Logger:        logger,
	})

	return &App{
		Config:    cfg,
		Logger:    logger,
		Backend:   client,
		Inspector: fileinfo.NewInspector(cfg.MaxUploadBytes),
		Executor:  executor,
	}
}

func ResilienceConfig(cfg config.Config) resilience.Config {
	rc := resilience.DefaultConfig()
	rc.BreakerEnabled = cfg.BreakerEnabled
	if cfg.BreakerMinRequests > 0 {
		rc.BreakerMinRequests = uint32(cfg.BreakerMinRequests)
	}
	rc.BreakerFailureRatio = cfg.BreakerFailureRatio
	rc.BreakerOpenTimeout = cfg.BreakerOpenTimeout()
	return rc
}

// QueueResilienceConfig retries publishes with backoff. Backend calls never
// retry, so the queue gets an executor of its own.
func QueueResilienceConfig(cfg config.Config) resilience.Config {
	rc := resilience.DefaultConfig()
	rc.RetryMaxAttempts = 3
	if cfg.NATSPublishAttempts > 0 {
		rc.RetryMaxAttempts = cfg.NATSPublishAttempts
	}
	rc.BreakerEnabled = cfg.BreakerEnabled
	return rc
}

// ConnectQueue dials NATS. With retry set the connection keeps trying in
// the background instead of failing when the server is down.
func (a *App) ConnectQueue(retry bool) (*nats.Queue, error) {
	queue, err := nats.NewWithOptions(a.Config.NATSURL, a.Config.NATSSubject, nats.Options{
		ClassifiedSubject:    a.Config.NATSClassifiedSubject,
		RetryOnFailedConnect: &retry,
		ResilienceExecutor:   resilience.NewExecutor(QueueResilienceConfig(a.Config), a.Logger),
		Logger:               a.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}
	a.closeFns = append(a.closeFns, queue.Close)
	return queue, nil
}

func (a *App) Storage() (*localfs.Storage, error) {
	storage, err := localfs.New(a.Config.ExportPath)
	if err != nil {
		return nil, fmt.Errorf("init export storage: %w", err)
	}
	return storage, nil
}

func (a *App) Session() *usecase.Session {
	return usecase.NewSession(a.Backend, a.Inspector)
}

func (a *App) Watcher() *usecase.Watcher {
	return usecase.NewWatcher(a.Backend, a.Config.PollInterval(), a.Config.PollMaxAttempts)
}

func (a *App) Close() {
	for i := len(a.closeFns) - 1; i >= 0; i-- {
		a.closeFns[i]()
	}
}
