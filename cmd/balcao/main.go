package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"balcao/internal/amqp"
	"balcao/internal/backend"
	"balcao/internal/cache"
	"balcao/internal/config"
	apphttp "balcao/internal/http"
	"balcao/internal/log"
	"balcao/internal/schema"
	"balcao/internal/services"
	"balcao/internal/tablestore"
)

func main() {
	// Load .env for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	factory := backend.NewFactory(logger.Logger)
	result, err := factory.Create(ctx, backend.Config{
		Type:       backend.Type(cfg.Backend),
		SQLitePath: cfg.SQLitePath,
	})
	if err != nil {
		logger.Error("Failed to initialize data backend", "error", err, "backend", cfg.Backend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", "error", err)
			}
		}()
	}

	store := tablestore.NewCached(result.Store, cfg.CacheTTL)

	cacheManager := cache.NewManager()
	cacheManager.Register(store.ReadCache())
	cacheManager.StartCleanup(10 * time.Minute)
	defer cacheManager.Stop()

	// Create missing tables and repair drifted headers before serving.
	if err := schema.EnsureAll(ctx, store); err != nil {
		logger.Error("Schema bootstrap failed", "error", err)
		os.Exit(1)
	}

	catalog := services.NewCatalogService(store, logger)
	if err := catalog.EnsureConfigDefaults(ctx); err != nil {
		logger.Error("Config seeding failed", "error", err)
		os.Exit(1)
	}

	var notifier services.Notifier
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			// The register must keep selling without the broker.
			logger.Warn("AMQP unavailable, checkout notifications disabled", "error", err)
		} else {
			defer amqpClient.Close()
			notifier = amqpClient
			logger.Info("AMQP notifications enabled",
				"exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	stock := services.NewStockService(store, logger)
	fiado := services.NewFiadoService(store, logger)
	checkout := services.NewCheckoutService(store, stock, fiado, catalog, notifier, logger)
	report := services.NewReportService(store, catalog, logger)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Catalog:  catalog,
		Stock:    stock,
		Checkout: checkout,
		Fiado:    fiado,
		Report:   report,
	}, logger)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting balcao server", "port", cfg.Port, "backend", cfg.Backend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
