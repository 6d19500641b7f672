// Command finsmartctl is the finsmart admin tool: it creates users and
// prints budget and due-date reports straight from the configured store.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"

	"finsmart/internal/auth"
	"finsmart/internal/backend"
	"finsmart/internal/cli"
	applog "finsmart/internal/log"
	"finsmart/internal/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()

	// Logs go to stderr so reports stay pipeable.
	logger := applog.New(applog.Config{
		Component: applog.ComponentCLI,
		Handler: slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: applog.ParseLevel(cfg.LogLevel),
		}),
	})

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	res, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		return err
	}
	defer res.Cleanup()

	app := &App{
		Store:     res.Store,
		Auth:      auth.NewService(res.Store, logger),
		Dashboard: services.NewDashboardService(res.Store, nil, logger),
		Out:       os.Stdout,
		Color:     isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()),
	}

	return NewRootCmd(app).Execute()
}
