package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"finsmart/internal/amqp"
	"finsmart/internal/cli"
	applog "finsmart/internal/log"
	"finsmart/internal/notifier"
	gsheet "finsmart/internal/sheets/google"
	"finsmart/internal/worker"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(applog.ComponentWorker, cfg.LogLevel)

	logger.Info("Starting finsmart-worker")

	if !cfg.AMQPEnabled() {
		logger.Error("AMQP_URL is required for finsmart-worker")
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

	var syncWorker *worker.SyncWorker
	if cfg.SheetsEnabled() {
		exporter, err := gsheet.New(context.Background(), gsheet.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
			CredentialsFile: cfg.GoogleServiceAccountFile,
		}, logger)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets exporter", "error", err)
			os.Exit(1)
		}
		syncWorker = worker.NewSyncWorker(store, exporter, logger)
		logger.Info("Google Sheets exporter initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Google Sheets disabled - sync messages stay queued")
	}

	var n notifier.Notifier
	if cfg.TelegramEnabled() {
		tg, err := notifier.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID, logger)
		if err != nil {
			logger.Warn("Failed to initialize Telegram, alerts go to the log", "error", err)
			n = notifier.NewLog(logger)
		} else {
			n = tg
		}
	} else {
		n = notifier.NewLog(logger)
	}
	alertWorker := worker.NewAlertWorker(n, logger)

	ctx, done := cli.GracefulShutdown(logger, shutdownTimeout, func(context.Context) {
		if err := amqpClient.Close(); err != nil {
			logger.Warn("AMQP close error", "error", err)
		}
		if backendResult.Cleanup != nil {
			if err := backendResult.Cleanup(); err != nil {
				logger.Warn("Store cleanup error", "error", err)
			}
		}
	})

	if syncWorker != nil {
		logger.Info("Performing startup sync check...")
		if err := syncWorker.StartupSyncCheck(ctx); err != nil {
			logger.Error("Failed startup sync check", "error", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	if syncWorker != nil {
		g.Go(func() error {
			return amqpClient.ConsumeTransactionSync(gctx, syncWorker.HandleSyncMessage)
		})
	}
	g.Go(func() error {
		return amqpClient.ConsumeAlerts(gctx, alertWorker.HandleAlertMessage)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
}
