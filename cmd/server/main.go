package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"telar/internal/cache"
	"telar/internal/config"
	"telar/internal/database"
	"telar/internal/repositories"
	"telar/internal/response"
	"telar/internal/router"
	"telar/internal/services"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := initLogger(&cfg.Logging)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("Starting telar API",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
	)

	// Database
	db, err := database.NewManager(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Migrate(cfg.Database.MigrationsPath); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	logger.Info("Database ready")

	// Cache
	cacheClient, err := cache.New(&cfg.Cache, logger)
	if err != nil {
		logger.Fatal("Failed to initialize cache", zap.Error(err))
	}
	defer cacheClient.Close()
	logger.Info("Cache ready", zap.String("provider", cfg.Cache.Provider))

	// Repositories
	progressRepo := repositories.NewProgressRepository(db, logger)
	achievementRepo := repositories.NewAchievementRepository(db, logger)
	maturityRepo := repositories.NewMaturityScoreRepository(db, logger)
	productRepo := repositories.NewProductRepository(db, logger)
	categoryRepo := repositories.NewCategoryRepository(db, logger)

	// Services
	achievementService := services.NewAchievementService(achievementRepo, maturityRepo, cacheClient, logger)
	serviceCollection := &services.ServiceCollection{
		Progress:    services.NewProgressService(progressRepo, achievementService, cacheClient, logger),
		Achievement: achievementService,
		Product:     services.NewProductService(productRepo, categoryRepo, cacheClient, logger),
		Category:    services.NewCategoryService(categoryRepo, productRepo, cacheClient, logger),
	}

	builder := response.NewBuilder(response.DefaultConfig(), logger)

	handler := router.New(&router.Dependencies{
		Config:   cfg,
		Logger:   logger,
		DB:       db,
		Cache:    cacheClient,
		Services: serviceCollection,
		Builder:  builder,
	})

	server := &http.Server{
		Addr:           net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:        handler,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}

	logger.Info("Server stopped")
}

func initLogger(cfg *config.LoggingConfig) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	if level, err := zap.ParseAtomicLevel(cfg.Level); err == nil {
		zapCfg.Level = level
	}

	return zapCfg.Build()
}
