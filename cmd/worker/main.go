// Command perfboard-worker relays outbox events to RabbitMQ, or to the
// in-process activity feed when no broker is configured, and serves health
// and metrics endpoints.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/perfboard/adapter/cli"
	"github.com/felixgeelhaar/perfboard/internal/app"
	"github.com/felixgeelhaar/perfboard/pkg/config"
	"github.com/felixgeelhaar/perfboard/pkg/observability"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration:\n%v\n", err)
		return 2
	}

	build := cli.CurrentBuild()
	logger := observability.NewLogger(observability.LogConfigFor(cfg.AppEnv, cfg.LogLevel, cfg.LogFormat, "perfboard-worker", build.Version))
	logger.Info("starting perfboard worker", "commit", build.Commit, "driver", cfg.DatabaseDriver, "broker", cfg.UsesBroker())

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("container setup failed", "error", err)
		return 1
	}
	defer container.Close()

	worker, err := app.NewWorker(container)
	if err != nil {
		logger.Error("worker setup failed", "error", err)
		return 1
	}
	if err := worker.Start(ctx); err != nil {
		logger.Error("outbox processor did not start", "error", err)
		return 1
	}
	defer worker.Stop()

	serveErr := make(chan error, 1)
	if cfg.WorkerHealthAddr != "" {
		go func() { serveErr <- worker.Serve(ctx, cfg.WorkerHealthAddr) }()
	}

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-serveErr:
		if err != nil {
			logger.Error("health server failed", "error", err)
			return 1
		}
	}
	return 0
}
