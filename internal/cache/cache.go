// internal/cache/cache.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"careerquest/internal/config"

	"go.uber.org/zap"
)

// ErrCacheMiss is returned by Get when the key is absent or expired
var ErrCacheMiss = errors.New("cache: miss")

// ErrClosed is reported by Health after Close
var ErrClosed = errors.New("cache: closed")

// ===============================
// CACHE INTERFACE
// ===============================

// Cache stores opaque values under string keys. Implementations apply
// their key prefix themselves.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeletePattern(ctx context.Context, pattern string) error

	Stats(ctx context.Context) (*CacheStats, error)
	Health(ctx context.Context) error
	Close() error
}

// CacheStats represents cache statistics
type CacheStats struct {
	Provider string        `json:"provider"`
	Hits     int64         `json:"hits"`
	Misses   int64         `json:"misses"`
	Sets     int64         `json:"sets"`
	Deletes  int64         `json:"deletes"`
	Keys     int64         `json:"keys"`
	HitRatio float64       `json:"hit_ratio"`
	Uptime   time.Duration `json:"uptime"`
}

func (s *CacheStats) computeHitRatio() {
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRatio = float64(s.Hits) / float64(total)
	}
}

// ===============================
// FACTORY FUNCTION
// ===============================

// NewCache creates a cache for the configured provider
func NewCache(cfg *config.CacheConfig, logger *zap.Logger) (Cache, error) {
	if cfg == nil {
		return nil, fmt.Errorf("cache config cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Provider {
	case "redis":
		return NewRedisCache(cfg, logger)
	case "memory", "":
		logger.Info("Using in-memory cache")
		return NewMemoryCache(cfg.KeyPrefix, 1000, time.Minute, logger), nil
	case "none":
		logger.Info("Caching disabled")
		return NewNoopCache(), nil
	default:
		return nil, fmt.Errorf("unsupported cache provider: %s", cfg.Provider)
	}
}

// ===============================
// TYPED HELPERS
// ===============================

// GetJSON decodes a cached JSON value into dest
func GetJSON(ctx context.Context, c Cache, key string, dest interface{}) error {
	data, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to decode cached value for %s: %w", key, err)
	}
	return nil
}

// SetJSON encodes value as JSON and stores it
func SetJSON(ctx context.Context, c Cache, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return c.Set(ctx, key, data, ttl)
}

// Remember returns the cached value for key, or calls load and caches its
// result. Cache errors are logged and never fail the call.
func Remember[T any](ctx context.Context, c Cache, logger *zap.Logger, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	var cached T
	err := GetJSON(ctx, c, key, &cached)
	switch {
	case err == nil:
		logger.Debug("Cache hit", zap.String("key", key))
		return cached, nil
	case !errors.Is(err, ErrCacheMiss):
		logger.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
	}

	result, err := load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	if err := SetJSON(ctx, c, key, result, ttl); err != nil {
		logger.Warn("Failed to cache result", zap.String("key", key), zap.Error(err))
	}

	return result, nil
}

// ===============================
// NOOP CACHE
// ===============================

type noopCache struct {
	startTime time.Time
}

// NewNoopCache returns a cache that stores nothing
func NewNoopCache() Cache {
	return &noopCache{startTime: time.Now()}
}

func (noopCache) Get(ctx context.Context, key string) ([]byte, error) { return nil, ErrCacheMiss }

func (noopCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return nil
}

func (noopCache) Delete(ctx context.Context, keys ...string) error { return nil }

func (noopCache) DeletePattern(ctx context.Context, pattern string) error { return nil }

func (n *noopCache) Stats(ctx context.Context) (*CacheStats, error) {
	return &CacheStats{Provider: "none", Uptime: time.Since(n.startTime)}, nil
}

func (noopCache) Health(ctx context.Context) error { return nil }

func (noopCache) Close() error { return nil }
