package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultCleanupInterval = 30 * time.Second

// Stats reports cache effectiveness
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

// RedisJSONCache stores JSON-encoded values in Redis under a key prefix
type RedisJSONCache struct {
	client    redis.Cmdable
	keyPrefix string
	logger    *zap.Logger
	hits      atomic.Int64
	misses    atomic.Int64
}

// NewRedisJSONCache creates a cache on an existing client
func NewRedisJSONCache(client redis.Cmdable, keyPrefix string, logger *zap.Logger) *RedisJSONCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisJSONCache{client: client, keyPrefix: keyPrefix, logger: logger}
}

// Get loads key into dest and reports whether it was present
func (c *RedisJSONCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.misses.Add(1)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		// a stale shape is treated as a miss
		c.logger.Warn("discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		c.misses.Add(1)
		return false, nil
	}
	c.hits.Add(1)
	return true, nil
}

// Set stores value under key for ttl
func (c *RedisJSONCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, c.keyPrefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// Delete removes key
func (c *RedisJSONCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.keyPrefix+key).Err()
}

// Stats returns hit and miss counters
func (c *RedisJSONCache) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}

// cacheEntry wraps an encoded value with its expiration time
type cacheEntry struct {
	raw       []byte
	expiresAt time.Time
}

func (e *cacheEntry) isExpired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// InMemoryJSONCache is a process-local JSONCache for single-instance
// deployments and tests. Values are stored encoded so callers never share
// mutable state with the cache.
type InMemoryJSONCache struct {
	entries  sync.Map // map[string]*cacheEntry
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
	hits     atomic.Int64
	misses   atomic.Int64
}

// NewInMemoryJSONCache creates a cache and starts its cleanup loop
func NewInMemoryJSONCache() *InMemoryJSONCache {
	c := &InMemoryJSONCache{now: time.Now, stopCh: make(chan struct{})}
	go c.cleanupExpired(defaultCleanupInterval)
	return c
}

// Get loads key into dest and reports whether it was present
func (c *InMemoryJSONCache) Get(_ context.Context, key string, dest any) (bool, error) {
	if v, ok := c.entries.Load(key); ok {
		entry := v.(*cacheEntry)
		if !entry.isExpired(c.now()) {
			if err := json.Unmarshal(entry.raw, dest); err != nil {
				return false, fmt.Errorf("cache decode %s: %w", key, err)
			}
			c.hits.Add(1)
			return true, nil
		}
		c.entries.Delete(key)
	}
	c.misses.Add(1)
	return false, nil
}

// Set stores value under key for ttl
func (c *InMemoryJSONCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	c.entries.Store(key, &cacheEntry{raw: raw, expiresAt: c.now().Add(ttl)})
	return nil
}

// Delete removes key
func (c *InMemoryJSONCache) Delete(_ context.Context, key string) error {
	c.entries.Delete(key)
	return nil
}

// Stats returns hit and miss counters
func (c *InMemoryJSONCache) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}

// Close stops the cleanup loop
func (c *InMemoryJSONCache) Close() {
	c.stopOnce.Do(func() { close(c.stopCh) })
}

func (c *InMemoryJSONCache) cleanupExpired(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			now := c.now()
			c.entries.Range(func(k, v any) bool {
				if v.(*cacheEntry).isExpired(now) {
					c.entries.Delete(k)
				}
				return true
			})
		case <-c.stopCh:
			return
		}
	}
}
