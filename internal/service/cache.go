package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when a key is absent or its entry has expired.
var ErrCacheMiss = errors.New("cache miss")

// ContentCache deduplicates generated media keyed by content. At most one
// live entry exists per key; expired entries read as misses.
type ContentCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// CacheKey derives a deterministic key from the identifying fields of a
// piece of content, so repeated requests for the same logical content
// collapse onto one entry.
func CacheKey(fields ...string) string {
	h := sha256.Sum256([]byte(strings.Join(fields, "\x1f")))
	return hex.EncodeToString(h[:])
}

// RedisContentCache stores cached media in Redis with native TTL expiry.
type RedisContentCache struct {
	redis  *redis.Client
	prefix string
}

// NewRedisContentCache creates a Redis-backed content cache. Keys are
// namespaced by prefix.
func NewRedisContentCache(client *redis.Client, prefix string) *RedisContentCache {
	if prefix == "" {
		prefix = "media:cache"
	}
	return &RedisContentCache{redis: client, prefix: prefix}
}

func (c *RedisContentCache) Get(ctx context.Context, key string) (string, error) {
	val, err := c.redis.Get(ctx, c.prefix+":"+key).Result()
	if err == redis.Nil {
		return "", ErrCacheMiss
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (c *RedisContentCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.redis.Set(ctx, c.prefix+":"+key, value, ttl).Err()
}

// MemoryContentCache is an in-process content cache with lazy TTL
// eviction. It backs tests and deployments without Redis.
type MemoryContentCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// NewMemoryContentCache creates an empty in-memory content cache.
func NewMemoryContentCache() *MemoryContentCache {
	return &MemoryContentCache{entries: make(map[string]memoryEntry)}
}

func (c *MemoryContentCache) Get(_ context.Context, key string) (string, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return "", ErrCacheMiss
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return "", ErrCacheMiss
	}
	return entry.value, nil
}

func (c *MemoryContentCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
	return nil
}
