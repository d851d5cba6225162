package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"careerquest/internal/cache"
	"careerquest/internal/config"
	"careerquest/internal/database"
	"careerquest/internal/events"
	"careerquest/internal/handlers/ws"
	"careerquest/internal/middleware"
	"careerquest/internal/repositories"
	"careerquest/internal/response"
	"careerquest/internal/router"
	"careerquest/internal/services"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	startedAt := time.Now()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Server.Environment, &cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting CareerQuest mission service",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
		zap.Bool("auth_enabled", cfg.Auth.Enabled()),
		zap.String("cache_provider", cfg.Cache.Provider),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Storage
	dbManager, err := database.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbManager.Close()

	store, err := repositories.NewCollection(dbManager, logger)
	if err != nil {
		logger.Fatal("Failed to create repositories", zap.Error(err))
	}

	badgeCache, err := cache.NewCache(&cfg.Cache, logger)
	if err != nil {
		logger.Fatal("Failed to initialize cache", zap.Error(err))
	}
	defer badgeCache.Close()

	// Events
	bus := events.NewEventBus(&events.EventBusConfig{
		BufferSize:  cfg.Events.BufferSize,
		WorkerCount: cfg.Events.Workers,
	}, logger)
	if err := bus.Start(ctx); err != nil {
		logger.Fatal("Failed to start event bus", zap.Error(err))
	}

	hub := ws.NewHub(cfg.Server.CORSOrigin, logger)
	if err := hub.Attach(bus); err != nil {
		logger.Fatal("Failed to attach websocket hub", zap.Error(err))
	}

	// Services
	badges := services.NewBadgeCatalog(store.Badges(), badgeCache, cfg.Cache.BadgeTTL, logger)
	missionService := services.NewMissionService(store, badges, bus, logger)
	taskService := services.NewTaskService(store, bus, logger)

	handler := router.SetupRouter(router.Dependencies{
		Config:    cfg,
		Missions:  missionService,
		Tasks:     taskService,
		Auth:      middleware.NewAuthMiddleware(&cfg.Auth, logger),
		Responses: response.NewBuilder(response.ConfigForEnvironment(cfg.Server.Environment), logger),
		Hub:       hub,
		Database:  dbManager,
		Cache:     badgeCache,
		Events:    bus,
		StartedAt: startedAt,
		Logger:    logger,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:           handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		MaxHeaderBytes:    cfg.Server.MaxHeaderBytes,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down application...")
	case err := <-serverErr:
		logger.Error("HTTP server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()

	hub.Close()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	} else {
		logger.Info("Server shutdown completed")
	}

	if err := bus.Stop(shutdownCtx); err != nil {
		logger.Warn("Event bus did not drain before shutdown", zap.Error(err))
	}

	metrics := dbManager.Metrics()
	busStats := bus.Stats()
	logger.Info("Final application metrics",
		zap.Int64("total_queries", metrics.QueryCount),
		zap.Int64("total_errors", metrics.ErrorCount),
		zap.Int64("slow_queries", metrics.SlowQueryCount),
		zap.Duration("avg_query_duration", metrics.AvgQueryDuration),
		zap.Int64("events_published", busStats.EventsPublished),
		zap.Int64("events_dropped", busStats.EventsDropped),
		zap.Duration("uptime", time.Since(startedAt)),
	)
}

// initLogger builds a JSON production logger or a console development
// logger; LOG_LEVEL overrides the environment default
func initLogger(env string, cfg *config.LoggingConfig) (*zap.Logger, error) {
	var zc zap.Config
	switch env {
	case "production", "staging":
		zc = zap.NewProductionConfig()
	default:
		zc = zap.NewDevelopmentConfig()
	}

	if cfg.Format != "" {
		zc.Encoding = cfg.Format
	}
	if cfg.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		zc.Level = zap.NewAtomicLevelAt(level)
	}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}
