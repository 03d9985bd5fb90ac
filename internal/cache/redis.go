// Package cache holds the Redis-backed token cache and rate limiter.
// Both are optional; the API runs without Redis.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultAuthTTL is how long a resolved token stays cached.
	DefaultAuthTTL = 5 * time.Minute

	// keyPrefix namespaces every key this package writes.
	keyPrefix = "recipe:"
)

// Cache provides Redis cache access methods.
type Cache struct {
	client  *redis.Client
	authTTL time.Duration
}

// New creates a new Cache with a Redis client.
func New(ctx context.Context, redisURL string, authTTL time.Duration) (*Cache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	// Connection pool settings
	opt.PoolSize = 10
	opt.MinIdleConns = 2
	opt.PoolTimeout = 4 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opt)

	// Verify connection
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return NewWithClient(client, authTTL), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, authTTL time.Duration) *Cache {
	if authTTL <= 0 {
		authTTL = DefaultAuthTTL
	}
	return &Cache{client: client, authTTL: authTTL}
}

// Ping checks Redis connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}

