package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiterBurstThenReject(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLimiter(Config{MaxRequests: 5, Window: time.Second, Burst: 2})

	for i := 0; i < 7; i++ {
		_, err := l.Check(ctx, "test_client")
		require.NoError(t, err, "request %d should be within limit+burst", i)
	}

	_, err := l.Check(ctx, "test_client")
	require.Error(t, err)
	assert.True(t, IsRateLimited(err))
}

func TestMemoryLimiterWindowResets(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLimiter(Config{MaxRequests: 5, Window: time.Second, Burst: 2})
	frozen := time.Now()
	l.now = func() time.Time { return frozen }

	for i := 0; i < 7; i++ {
		_, err := l.Check(ctx, "c")
		require.NoError(t, err)
	}
	_, err := l.Check(ctx, "c")
	require.Error(t, err)

	l.now = func() time.Time { return frozen.Add(2 * time.Second) }
	_, err = l.Check(ctx, "c")
	assert.NoError(t, err)
}

func TestMemoryLimiterKeysIndependent(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLimiter(Config{MaxRequests: 1, Window: time.Minute, Burst: 0})

	_, err := l.Check(ctx, "a")
	require.NoError(t, err)
	_, err = l.Check(ctx, "b")
	require.NoError(t, err, "distinct keys must not share a counter")
}

func TestMemoryLimiterCleanup(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLimiter(Config{MaxRequests: 1, Window: time.Second, Burst: 0})
	frozen := time.Now()
	l.now = func() time.Time { return frozen }

	_, err := l.Check(ctx, "stale")
	require.NoError(t, err)

	l.now = func() time.Time { return frozen.Add(3 * time.Second) }
	l.Cleanup(ctx)

	l.mu.Lock()
	_, exists := l.state["stale"]
	l.mu.Unlock()
	assert.False(t, exists)
}
