package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kirillkom/docresult-viewer/internal/adapters/cli"
	"github.com/kirillkom/docresult-viewer/internal/bootstrap"
	"github.com/kirillkom/docresult-viewer/internal/config"
	"github.com/kirillkom/docresult-viewer/internal/core/usecase"
	"github.com/kirillkom/docresult-viewer/internal/observability/logging"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	logger := logging.NewTextLogger(os.Stderr, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := bootstrap.New(cfg, logger, nil)
	defer app.Close()

	storage, err := app.Storage()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	root := cli.NewRootCommand(cli.Dependencies{
		Session:    app.Session(),
		Watcher:    app.Watcher(),
		Exporter:   usecase.NewExporter(app.Backend, storage),
		Renderer:   cli.NewRenderer(cli.NewStyles(nil)),
		BackendURL: cfg.BackendURL,
		Version:    version,
	})
	root.SetOut(os.Stdout)

	if err := root.ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}
