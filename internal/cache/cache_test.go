package cache_test

import (
	"context"
	"testing"
	"time"

	"cardapio/internal/cache"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoop(t *testing.T) {
	var c cache.MenuCache = cache.Noop{}
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", map[string]int{"a": 1}))
	var dst map[string]int
	hit, err := c.Get(ctx, "k", &dst)
	assert.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, c.Invalidate(ctx))
}

func TestNewRedis_BadURL(t *testing.T) {
	_, err := cache.NewRedis(context.Background(), "not-a-url", time.Minute)
	assert.Error(t, err)
}

func TestRedis_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	c := cache.NewRedisWithClient(client, time.Minute)

	var dst []string
	hit, err := c.Get(context.Background(), "items", &dst)
	assert.Error(t, err)
	assert.False(t, hit)
}
