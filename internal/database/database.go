package database

import (
	"context"
	"fmt"
	"time"

	"careerquest/internal/config"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// Open connects to Postgres, applies migrations and waits until the schema
// answers health probes. Each stage retries with exponential backoff.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Manager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	logger.Info("Starting database initialization",
		zap.String("environment", cfg.Server.Environment))

	var manager *Manager
	connect := func() error {
		m, err := NewManager(&cfg.Database, logger)
		if err != nil {
			return err
		}
		manager = m
		return nil
	}
	if err := retry(ctx, "connect", cfg.Database.ConnectRetries, logger, connect); err != nil {
		return nil, fmt.Errorf("failed to create database manager: %w", err)
	}

	if cfg.Database.RunMigrations {
		if err := retry(ctx, "migrate", cfg.Database.ConnectRetries, logger, manager.Migrate); err != nil {
			manager.Close()
			return nil, fmt.Errorf("failed to run database migrations: %w", err)
		}
	}

	if err := waitForHealth(ctx, manager, cfg.Database.ConnectRetries, logger); err != nil {
		manager.Close()
		return nil, fmt.Errorf("database failed to become healthy: %w", err)
	}

	logger.Info("Database initialized",
		zap.Int("open_connections", manager.Stats().OpenConnections),
		zap.Bool("migrations", cfg.Database.RunMigrations),
	)
	return manager, nil
}

// waitForHealth accepts healthy and degraded states; only unhealthy retries.
func waitForHealth(ctx context.Context, manager *Manager, retries int, logger *zap.Logger) error {
	return retry(ctx, "health", retries, logger, func() error {
		status := manager.Health(ctx)
		if status.Status == StatusUnhealthy {
			return fmt.Errorf("database unhealthy: %v", status.Errors)
		}
		logger.Info("Database is healthy",
			zap.String("status", status.Status),
			zap.Duration("response_time", status.ResponseTime))
		return nil
	})
}

func retry(ctx context.Context, stage string, retries int, logger *zap.Logger, op func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 500 * time.Millisecond
	policy.MaxInterval = 10 * time.Second
	policy.MaxElapsedTime = 2 * time.Minute

	var b backoff.BackOff = policy
	if retries >= 0 {
		b = backoff.WithMaxRetries(policy, uint64(retries))
	}

	notify := func(err error, wait time.Duration) {
		logger.Warn("Database initialization step failed, retrying",
			zap.String("stage", stage),
			zap.Error(err),
			zap.Duration("retry_in", wait))
	}

	return backoff.RetryNotify(op, backoff.WithContext(b, ctx), notify)
}
