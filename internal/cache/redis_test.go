package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisCache(t *testing.T) *RedisCache {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client)
}

func TestRedisCacheSetGet(t *testing.T) {
	ctx := context.Background()
	c := newTestRedisCache(t)

	require.NoError(t, c.Set(ctx, "jwks", []byte(`{"keys":[]}`), time.Minute))

	value, ok, err := c.Get(ctx, "jwks")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"keys":[]}`, string(value))
}

func TestRedisCacheMiss(t *testing.T) {
	c := newTestRedisCache(t)
	_, ok, err := c.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCacheDelete(t *testing.T) {
	ctx := context.Background()
	c := newTestRedisCache(t)
	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, c.Delete(ctx, "k"))

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}
