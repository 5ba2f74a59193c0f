// Package cache holds the Redis read-through cache for short-link lookups.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const linkKeyPrefix = "shortlink:token:"

// LinkCache caches token→URL. A nil *LinkCache, or one without a client,
// is a valid no-op cache that always misses.
type LinkCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewLinkCache connects to redisURL. An empty URL disables caching.
func NewLinkCache(redisURL, password string, ttl time.Duration) (*LinkCache, error) {
	if redisURL == "" {
		return &LinkCache{}, nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if password != "" {
		opts.Password = password
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	rdb := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewLinkCacheWithClient(rdb, ttl), nil
}

// NewLinkCacheWithClient wraps an existing client.
func NewLinkCacheWithClient(client *redis.Client, ttl time.Duration) *LinkCache {
	return &LinkCache{client: client, ttl: ttl}
}

// Enabled reports whether lookups can hit Redis.
func (c *LinkCache) Enabled() bool {
	return c != nil && c.client != nil
}

// Get returns the cached URL. ok is false on a miss.
func (c *LinkCache) Get(ctx context.Context, token string) (url string, ok bool, err error) {
	if !c.Enabled() {
		return "", false, nil
	}
	url, err = c.client.Get(ctx, linkKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cache get %s: %w", token, err)
	}
	return url, true, nil
}

// Set stores token→url with the configured TTL.
func (c *LinkCache) Set(ctx context.Context, token, url string) error {
	if !c.Enabled() {
		return nil
	}
	if err := c.client.Set(ctx, linkKey(token), url, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", token, err)
	}
	return nil
}

// Close releases the client.
func (c *LinkCache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

func linkKey(token string) string {
	return linkKeyPrefix + token
}
