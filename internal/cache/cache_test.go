package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"careerquest/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestMemoryCache(t *testing.T) *memoryCache {
	t.Helper()
	c := NewMemoryCache("test:", 2, 0, zap.NewNop()).(*memoryCache)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestMemoryCacheSetGetExpire(t *testing.T) {
	c := newTestMemoryCache(t)
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "badges", []byte(`["a"]`), time.Minute))

	got, err := c.Get(ctx, "badges")
	require.NoError(t, err)
	assert.Equal(t, `["a"]`, string(got))

	now = now.Add(2 * time.Minute)
	_, err = c.Get(ctx, "badges")
	assert.ErrorIs(t, err, ErrCacheMiss)

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.InDelta(t, 0.5, stats.HitRatio, 0.0001)
}

func TestMemoryCacheZeroTTLStoresNothing(t *testing.T) {
	c := newTestMemoryCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := newTestMemoryCache(t)
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "a", []byte("1"), time.Hour))
	now = now.Add(time.Second)
	require.NoError(t, c.Set(ctx, "b", []byte("2"), time.Hour))
	now = now.Add(time.Second)
	_, err := c.Get(ctx, "a")
	require.NoError(t, err)

	now = now.Add(time.Second)
	require.NoError(t, c.Set(ctx, "c", []byte("3"), time.Hour))

	_, err = c.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = c.Get(ctx, "a")
	assert.NoError(t, err)
}

func TestMemoryCacheDeletePattern(t *testing.T) {
	c := NewMemoryCache("", 10, 0, zap.NewNop())
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "badges:all", []byte("x"), time.Minute))
	require.NoError(t, c.Set(ctx, "badges:rare", []byte("y"), time.Minute))
	require.NoError(t, c.Set(ctx, "other", []byte("z"), time.Minute))

	require.NoError(t, c.DeletePattern(ctx, "badges:*"))

	_, err := c.Get(ctx, "badges:all")
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = c.Get(ctx, "other")
	assert.NoError(t, err)
}

func TestMemoryCacheHealthAfterClose(t *testing.T) {
	c := NewMemoryCache("", 10, time.Hour, zap.NewNop())
	assert.NoError(t, c.Health(context.Background()))
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.ErrorIs(t, c.Health(context.Background()), ErrClosed)
}

func TestRememberLoadsOnceThenHits(t *testing.T) {
	c := NewMemoryCache("", 10, 0, zap.NewNop())
	defer c.Close()
	ctx := context.Background()

	calls := 0
	load := func(context.Context) ([]string, error) {
		calls++
		return []string{"Bug Hunter", "Mentor"}, nil
	}

	first, err := Remember(ctx, c, zap.NewNop(), "badges", time.Minute, load)
	require.NoError(t, err)
	second, err := Remember(ctx, c, zap.NewNop(), "badges", time.Minute, load)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestRememberDoesNotCacheFailures(t *testing.T) {
	c := NewMemoryCache("", 10, 0, zap.NewNop())
	defer c.Close()
	ctx := context.Background()

	boom := errors.New("db down")
	_, err := Remember(ctx, c, zap.NewNop(), "badges", time.Minute, func(context.Context) ([]string, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)

	_, err = c.Get(ctx, "badges")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestNoopCacheAlwaysMisses(t *testing.T) {
	c := NewNoopCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestNewCacheSelectsProvider(t *testing.T) {
	c, err := NewCache(&config.CacheConfig{Provider: "none"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &noopCache{}, c)

	c, err = NewCache(&config.CacheConfig{Provider: "memory"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &memoryCache{}, c)
	c.Close()

	_, err = NewCache(&config.CacheConfig{Provider: "memcached"}, nil)
	assert.Error(t, err)
}

func TestParseRedisStats(t *testing.T) {
	info := "# Stats\r\ntotal_connections_received:3\r\nkeyspace_hits:40\r\nkeyspace_misses:10\r\n"
	stats := &CacheStats{}

	parseRedisStats(info, stats)
	stats.computeHitRatio()

	assert.Equal(t, int64(40), stats.Hits)
	assert.Equal(t, int64(10), stats.Misses)
	assert.InDelta(t, 0.8, stats.HitRatio, 0.0001)
}

func TestRedisCacheRoundTrip(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}

	c, err := NewRedisCache(&config.CacheConfig{RedisURL: url, KeyPrefix: "careerquest-test:"}, zap.NewNop())
	require.NoError(t, err)
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "badges", []byte("[]"), time.Minute))
	got, err := c.Get(ctx, "badges")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))

	require.NoError(t, c.Delete(ctx, "badges"))
	_, err = c.Get(ctx, "badges")
	assert.ErrorIs(t, err, ErrCacheMiss)
}
