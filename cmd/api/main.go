package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/avelar-labs/mixfeed/internal/adapters/catalog"
	"github.com/avelar-labs/mixfeed/internal/adapters/memcache"
	"github.com/avelar-labs/mixfeed/internal/adapters/rest"
	"github.com/avelar-labs/mixfeed/internal/adapters/sqlite"
	"github.com/avelar-labs/mixfeed/internal/config"
	"github.com/avelar-labs/mixfeed/internal/core/services"
	"github.com/avelar-labs/mixfeed/internal/metrics"
	"github.com/avelar-labs/mixfeed/internal/worker"
)

func main() {
	// 1. Logging
	var logger *zap.Logger
	var err error
	if os.Getenv("DEBUG") == "true" {
		logger, err = zap.NewDevelopment()
		if err != nil {
			panic(err)
		}
		if err := godotenv.Load(); err != nil {
			logger.Warn(".env file not found, using system environment variables")
		}
	} else {
		gin.SetMode(gin.ReleaseMode)
		logger, err = zap.NewProduction()
		if err != nil {
			panic(err)
		}
	}
	defer logger.Sync()

	// 2. Configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	// 3. Driven adapters
	store, err := sqlite.NewAdapter(cfg.DatabasePath)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer store.Close()

	catalogClient := catalog.NewClient(catalog.Config{
		BaseURL:      cfg.CatalogBaseURL,
		ClientID:     cfg.CatalogClientID,
		ClientSecret: cfg.CatalogClientSecret,
		TokenURL:     cfg.CatalogTokenURL,
		Timeout:      cfg.CatalogTimeout,
	}, logger)

	feedCache := memcache.New()

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	// 4. Core service
	generator := services.NewGenerator(catalogClient, store, feedCache, logger, m)
	generator.SetTTL(cfg.FeedCacheTTL)

	// 5. Driving adapters
	handler := rest.NewHandler(generator, store, logger, registry)
	refresher := worker.NewRefresher(generator, store, logger, cfg.RefreshInterval)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go refresher.Run(ctx, cfg.RefreshWorkers)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
	}

	logger.Info("mixfeed API is running", zap.String("addr", cfg.Addr))

	serverErr := make(chan error, 1)
	go func() {
		err := srv.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", zap.Error(err))
		}
	}
}
