package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkCache_NilIsNoop(t *testing.T) {
	var c *LinkCache
	ctx := context.Background()

	assert.False(t, c.Enabled())
	require.NoError(t, c.Set(ctx, "abc", "https://x"))

	url, ok, err := c.Get(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, url)
	assert.NoError(t, c.Close())
}

func TestNewLinkCache_EmptyURLDisables(t *testing.T) {
	c, err := NewLinkCache("", "", time.Hour)
	require.NoError(t, err)
	assert.False(t, c.Enabled())
}

func TestNewLinkCache_BadURL(t *testing.T) {
	_, err := NewLinkCache("not-a-redis-url", "", time.Hour)
	assert.Error(t, err)
}

func TestLinkCache_UnreachableSurfacesError(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	c := NewLinkCacheWithClient(client, time.Minute)
	defer c.Close()

	_, ok, err := c.Get(context.Background(), "abc")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestLinkKey(t *testing.T) {
	assert.Equal(t, "shortlink:token:AbC123", linkKey("AbC123"))
}
