package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/perfboard/adapter/cli"
	"github.com/felixgeelhaar/perfboard/adapter/cli/project"
	"github.com/felixgeelhaar/perfboard/adapter/cli/report"
	"github.com/felixgeelhaar/perfboard/adapter/cli/task"
	"github.com/felixgeelhaar/perfboard/adapter/cli/team"
	"github.com/felixgeelhaar/perfboard/adapter/cli/user"
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
		// Without a usable environment only version and help work.
		logger := observability.NewLogger(observability.DefaultLogConfig())
		cli.SetLogger(logger)
		logger.Warn("failed to load config, running without a store", "error", err)
	} else {
		logger := observability.NewLogger(observability.LogConfigFor(cfg.AppEnv, cfg.LogLevel, cfg.LogFormat, "perfboard", cli.Version))
		cli.SetLogger(logger)

		container, err := app.NewContainer(ctx, cfg, logger)
		switch {
		case err != nil && cfg.IsProduction():
			logger.Error("failed to initialize container", "error", err)
			return 1
		case err != nil:
			logger.Warn("failed to initialize container, running without a store", "error", err)
		default:
			defer container.Close()
			cli.SetApp(cli.NewApp(container))
		}
	}

	cli.AddCommand(task.Cmd)
	cli.AddCommand(project.Cmd)
	cli.AddCommand(user.Cmd)
	cli.AddCommand(team.Cmd)
	cli.AddCommand(report.Cmd)
	cli.AddCommand(cli.SeedCmd)

	return cli.Execute(ctx)
}
