package cache

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// memoryCache implements Cache using in-memory storage
type memoryCache struct {
	mu              sync.Mutex
	items           map[string]*cacheItem
	prefix          string
	maxKeys         int
	cleanupInterval time.Duration
	logger          *zap.Logger
	startTime       time.Time
	stopCh          chan struct{}
	closeOnce       sync.Once
	now             func() time.Time

	hits    int64
	misses  int64
	sets    int64
	deletes int64
}

type cacheItem struct {
	value      []byte
	expiresAt  time.Time
	accessedAt time.Time
}

// NewMemoryCache creates an in-memory cache holding at most maxKeys
// entries. Expired entries are swept every cleanupInterval.
func NewMemoryCache(prefix string, maxKeys int, cleanupInterval time.Duration, logger *zap.Logger) Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxKeys <= 0 {
		maxKeys = 1000
	}

	c := &memoryCache{
		items:           make(map[string]*cacheItem),
		prefix:          prefix,
		maxKeys:         maxKeys,
		cleanupInterval: cleanupInterval,
		logger:          logger,
		startTime:       time.Now(),
		stopCh:          make(chan struct{}),
		now:             time.Now,
	}

	if cleanupInterval > 0 {
		go c.cleanup()
	}

	return c
}

// Get retrieves a copy of the stored value
func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key = c.prefix + key
	item, exists := c.items[key]
	if !exists {
		atomic.AddInt64(&c.misses, 1)
		return nil, ErrCacheMiss
	}

	now := c.now()
	if now.After(item.expiresAt) {
		delete(c.items, key)
		atomic.AddInt64(&c.misses, 1)
		return nil, ErrCacheMiss
	}

	item.accessedAt = now
	atomic.AddInt64(&c.hits, 1)

	return append([]byte(nil), item.value...), nil
}

// Set stores a value; a non-positive ttl stores nothing
func (c *memoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	key = c.prefix + key
	if _, exists := c.items[key]; !exists && len(c.items) >= c.maxKeys {
		c.evictLRU()
	}

	now := c.now()
	c.items[key] = &cacheItem{
		value:      append([]byte(nil), value...),
		expiresAt:  now.Add(ttl),
		accessedAt: now,
	}
	atomic.AddInt64(&c.sets, 1)

	return nil
}

// Delete removes keys from the cache
func (c *memoryCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, key := range keys {
		if _, exists := c.items[c.prefix+key]; exists {
			delete(c.items, c.prefix+key)
			atomic.AddInt64(&c.deletes, 1)
		}
	}
	return nil
}

// DeletePattern removes all keys matching a trailing-wildcard pattern
func (c *memoryCache) DeletePattern(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	pattern = c.prefix + pattern
	for key := range c.items {
		if matchPattern(key, pattern) {
			delete(c.items, key)
			atomic.AddInt64(&c.deletes, 1)
		}
	}
	return nil
}

// Stats returns cache statistics
func (c *memoryCache) Stats(ctx context.Context) (*CacheStats, error) {
	c.mu.Lock()
	keys := int64(len(c.items))
	c.mu.Unlock()

	stats := &CacheStats{
		Provider: "memory",
		Hits:     atomic.LoadInt64(&c.hits),
		Misses:   atomic.LoadInt64(&c.misses),
		Sets:     atomic.LoadInt64(&c.sets),
		Deletes:  atomic.LoadInt64(&c.deletes),
		Keys:     keys,
		Uptime:   time.Since(c.startTime),
	}
	stats.computeHitRatio()

	return stats, nil
}

// Health reports whether the cache is still open
func (c *memoryCache) Health(ctx context.Context) error {
	select {
	case <-c.stopCh:
		return ErrClosed
	default:
		return nil
	}
}

// Close stops the cleanup goroutine
func (c *memoryCache) Close() error {
	c.closeOnce.Do(func() { close(c.stopCh) })
	return nil
}

func (c *memoryCache) cleanup() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if removed := c.cleanupExpired(); removed > 0 {
				c.logger.Debug("Cleaned up expired cache items", zap.Int("removed", removed))
			}
		case <-c.stopCh:
			return
		}
	}
}

func (c *memoryCache) cleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, item := range c.items {
		if now.After(item.expiresAt) {
			delete(c.items, key)
			removed++
		}
	}
	return removed
}

// evictLRU evicts the least recently used item. Caller holds mu.
func (c *memoryCache) evictLRU() {
	var oldestKey string
	var oldest time.Time

	for key, item := range c.items {
		if oldestKey == "" || item.accessedAt.Before(oldest) {
			oldestKey = key
			oldest = item.accessedAt
		}
	}

	if oldestKey != "" {
		delete(c.items, oldestKey)
	}
}

// matchPattern supports a single trailing "*"
func matchPattern(str, pattern string) bool {
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(str, strings.TrimSuffix(pattern, "*"))
	}
	return str == pattern
}
