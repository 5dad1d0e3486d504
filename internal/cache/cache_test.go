package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheSetGet(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	require.NoError(t, c.Set(ctx, "discovery", []byte(`{"issuer":"fantasma"}`), time.Minute))

	value, ok, err := c.Get(ctx, "discovery")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"issuer":"fantasma"}`, string(value))
}

func TestMemoryCacheMiss(t *testing.T) {
	c := NewMemoryCache()
	_, ok, err := c.Get(context.Background(), "jwks")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	frozen := time.Now()
	c.now = func() time.Time { return frozen }

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Second))

	c.now = func() time.Time { return frozen.Add(2 * time.Second) }
	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCacheDelete(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, c.Delete(ctx, "k"))

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}
