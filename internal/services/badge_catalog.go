package services

import (
	"context"
	"time"

	"careerquest/internal/cache"
	"careerquest/internal/models"
	"careerquest/internal/repositories"

	"go.uber.org/zap"
)

const badgeCatalogKey = "badges:all"

// BadgeCatalog reads the badge catalog, optionally through a cache. The
// catalog is reference data, so a stale copy up to ttl old is acceptable.
type BadgeCatalog struct {
	repo   repositories.BadgeRepository
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewBadgeCatalog creates a catalog reader. A nil cache or zero ttl reads
// the store every time.
func NewBadgeCatalog(repo repositories.BadgeRepository, c cache.Cache, ttl time.Duration, logger *zap.Logger) *BadgeCatalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BadgeCatalog{
		repo:   repo,
		cache:  c,
		ttl:    ttl,
		logger: logger,
	}
}

// List returns every badge ordered by name
func (b *BadgeCatalog) List(ctx context.Context) ([]*models.Badge, error) {
	if b.cache == nil || b.ttl <= 0 {
		return b.load(ctx)
	}
	return cache.Remember(ctx, b.cache, b.logger, badgeCatalogKey, b.ttl, b.load)
}

// Invalidate drops the cached catalog
func (b *BadgeCatalog) Invalidate(ctx context.Context) error {
	if b.cache == nil {
		return nil
	}
	return b.cache.Delete(ctx, badgeCatalogKey)
}

func (b *BadgeCatalog) load(ctx context.Context) ([]*models.Badge, error) {
	badges, err := b.repo.List(ctx)
	if err != nil {
		return nil, classify("list badges", err)
	}
	if badges == nil {
		badges = []*models.Badge{}
	}
	return badges, nil
}
