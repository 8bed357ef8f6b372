package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const resolverKeyPrefix = "ziwen:resolver:"

// ResolverCache backs the language resolver's token cache with Redis.
// Resolved tokens recur constantly (the same handful of language names
// appears in most titles), so even a short TTL removes most lookups.
type ResolverCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewResolverCache(client *redis.Client, ttl time.Duration) *ResolverCache {
	return &ResolverCache{client: client, ttl: ttl}
}

func (c *ResolverCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, resolverKeyPrefix+key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get resolver cache entry: %w", err)
	}
	return val, true, nil
}

func (c *ResolverCache) Set(ctx context.Context, key, value string) error {
	if err := c.client.Set(ctx, resolverKeyPrefix+key, value, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set resolver cache entry: %w", err)
	}
	return nil
}

// MemoryResolverCache is the in-process fallback used when Redis is
// disabled. Entries never expire; the key space is bounded by the
// registry's vocabulary.
type MemoryResolverCache struct {
	mu      sync.RWMutex
	entries map[string]string
}

func NewMemoryResolverCache() *MemoryResolverCache {
	return &MemoryResolverCache{entries: map[string]string{}}
}

func (c *MemoryResolverCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	val, ok := c.entries[key]
	return val, ok, nil
}

func (c *MemoryResolverCache) Set(_ context.Context, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}
