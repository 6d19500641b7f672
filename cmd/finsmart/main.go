package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"finsmart/internal/amqp"
	"finsmart/internal/assistant"
	"finsmart/internal/auth"
	"finsmart/internal/cache"
	"finsmart/internal/cli"
	"finsmart/internal/core"
	apphttp "finsmart/internal/http"
	applog "finsmart/internal/log"
	"finsmart/internal/services"
)

const (
	summaryCacheSize = 1000
	summaryCacheTTL  = 5 * time.Minute
	cacheCleanup     = 5 * time.Minute
	shutdownTimeout  = 30 * time.Second
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(applog.ComponentApp, cfg.LogLevel)

	logger.Info("Starting finsmart", "backend", cfg.DataBackend, "port", cfg.Port)

	backendResult := cli.InitStore(context.Background(), logger, cfg)
	store := backendResult.Store

	caches := cache.NewManager(logger)
	summaryCache := cache.NewLRUCache[core.MonthOverview](summaryCacheSize, summaryCacheTTL)
	sessions := auth.NewSessionManager(cfg.SessionTTL)
	caches.Register(summaryCache)
	caches.Register(sessions.Cache())
	caches.StartCleanup(cacheCleanup)

	dashboard := services.NewDashboardService(store, summaryCache, logger)

	// A nil *amqp.Client must not reach the interface field.
	var publisher services.SyncPublisher
	var amqpClient *amqp.Client
	if cfg.AMQPEnabled() {
		client, err := amqp.NewClient(amqp.Config{
			URL:        cfg.AMQPURL,
			Exchange:   cfg.AMQPExchange,
			SyncQueue:  cfg.AMQPSyncQueue,
			AlertQueue: cfg.AMQPAlertQueue,
		}, logger)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without sheet sync", "error", err)
		} else {
			amqpClient = client
			publisher = client
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPSyncQueue)
		}
	} else {
		logger.Info("AMQP disabled - transactions will not sync to Google Sheets")
	}

	transactions := services.NewTransactionService(store, publisher, dashboard, logger)
	authService := auth.NewService(store, logger)

	var completion assistant.CompletionClient
	if cfg.OpenAIAPIKey != "" {
		clientCfg := assistant.DefaultClientConfig()
		clientCfg.APIKey = cfg.OpenAIAPIKey
		clientCfg.Model = cfg.OpenAIModel
		clientCfg.BaseURL = cfg.OpenAIBaseURL
		completion = assistant.NewOpenAIClient(clientCfg)
	} else {
		logger.Info("OPENAI_API_KEY not set - assistant answers with fraud escalation only")
	}
	chat := assistant.New(completion, logger)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Store:        store,
		Auth:         authService,
		Sessions:     sessions,
		Dashboard:    dashboard,
		Transactions: transactions,
		Assistant:    chat,
		Caches:       caches,
		Logger:       logger,
	})

	ctx, done := cli.GracefulShutdown(logger, shutdownTimeout, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Warn("AMQP close error", "error", err)
			}
		}
		if backendResult.Cleanup != nil {
			if err := backendResult.Cleanup(); err != nil {
				logger.Warn("Store cleanup error", "error", err)
			}
		}
	})

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
