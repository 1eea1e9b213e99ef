// Package services provides external service integrations and technical concerns like tokens and lookups
package services

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// LinkCache caches short code to original URL mappings to keep the hot
// redirect path off the database. All operations are best-effort: cache
// errors fall through to the database.
type LinkCache interface {
	Get(ctx context.Context, shortCode string) (string, bool)
	Set(ctx context.Context, shortCode, originalURL string)
	Invalidate(ctx context.Context, shortCode string)
}

// RedisLinkCache implements LinkCache on a Redis client
type RedisLinkCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisLinkCache creates a new Redis-backed link cache
func NewRedisLinkCache(client *redis.Client, prefix string, ttl time.Duration) LinkCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisLinkCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (c *RedisLinkCache) key(shortCode string) string {
	return c.prefix + "link:" + shortCode
}

func (c *RedisLinkCache) Get(ctx context.Context, shortCode string) (string, bool) {
	val, err := c.client.Get(ctx, c.key(shortCode)).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

func (c *RedisLinkCache) Set(ctx context.Context, shortCode, originalURL string) {
	_ = c.client.Set(ctx, c.key(shortCode), originalURL, c.ttl).Err()
}

func (c *RedisLinkCache) Invalidate(ctx context.Context, shortCode string) {
	_ = c.client.Del(ctx, c.key(shortCode)).Err()
}

// NoopLinkCache implements LinkCache when caching is disabled
type NoopLinkCache struct{}

// NewNoopLinkCache creates a cache that never hits
func NewNoopLinkCache() LinkCache {
	return &NoopLinkCache{}
}

func (NoopLinkCache) Get(ctx context.Context, shortCode string) (string, bool) { return "", false }
func (NoopLinkCache) Set(ctx context.Context, shortCode, originalURL string)  {}
func (NoopLinkCache) Invalidate(ctx context.Context, shortCode string)        {}
