package main

import (
	"context"
	"os"
	"time"

	"github.com/robfig/cron/v3"

	"finsmart/internal/amqp"
	"finsmart/internal/cli"
	applog "finsmart/internal/log"
	"finsmart/internal/services"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(applog.ComponentAlerts, cfg.LogLevel)

	logger.Info("Starting alerts-worker", "schedule", cfg.AlertSchedule)

	if !cfg.AMQPEnabled() {
		logger.Error("AMQP_URL is required for alerts-worker")
		os.Exit(1)
	}

	backendResult := cli.InitStore(context.Background(), logger, cfg)
	store := backendResult.Store

	amqpClient, err := amqp.NewClient(amqp.Config{
		URL:        cfg.AMQPURL,
		Exchange:   cfg.AMQPExchange,
		SyncQueue:  cfg.AMQPSyncQueue,
		AlertQueue: cfg.AMQPAlertQueue,
	}, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}

	// Alerts read fresh data on every run; no summary cache.
	dashboard := services.NewDashboardService(store, nil, logger)
	processor := services.NewAlertProcessor(store, dashboard, amqpClient, logger)

	runCtx, cancelRuns := context.WithCancel(context.Background())
	run := func() {
		started := time.Now()
		count, err := processor.Run(runCtx, started)
		if err != nil {
			logger.Error("Alert processing failed", "error", err)
			return
		}
		logger.Info("Alert processing complete",
			"alerts_published", count,
			applog.FieldDuration, time.Since(started).Milliseconds())
	}

	scheduler := cron.New(cron.WithSeconds())
	if _, err := scheduler.AddFunc(cfg.AlertSchedule, run); err != nil {
		logger.Error("Invalid alert schedule", "error", err, "schedule", cfg.AlertSchedule)
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, shutdownTimeout, func(shutdownCtx context.Context) {
		stopped := scheduler.Stop()
		select {
		case <-stopped.Done():
		case <-shutdownCtx.Done():
		}
		cancelRuns()
		if err := amqpClient.Close(); err != nil {
			logger.Warn("AMQP close error", "error", err)
		}
		if backendResult.Cleanup != nil {
			if err := backendResult.Cleanup(); err != nil {
				logger.Warn("Store cleanup error", "error", err)
			}
		}
	})

	logger.Info("Running initial alert processing...")
	run()

	scheduler.Start()

	cli.WaitForShutdown(ctx, done)
	logger.Info("Alerts-worker shutdown complete")
}
