package proofstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackfredericksen/fantasma/internal/apperr"
	"github.com/jackfredericksen/fantasma/internal/core/domain"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	p, err := s.Store(ctx, domain.CircuitAgeVerificationV1, []byte("proof bytes"), time.Hour)
	require.NoError(t, err)

	got, err := s.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("proof bytes"), got.Bytes)
}

func TestMemoryStoreGetExpired(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	frozen := time.Now()
	s.now = func() time.Time { return frozen }

	p, err := s.Store(ctx, domain.CircuitAgeVerificationV1, []byte("x"), time.Second)
	require.NoError(t, err)

	s.now = func() time.Time { return frozen.Add(2 * time.Second) }
	_, err = s.Get(ctx, p.ID)
	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindResource, appErr.Kind)
}

func TestMemoryStoreGetMissing(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.Get(context.Background(), "nonexistent")
	assert.Error(t, err)
}

func TestMemoryStoreCleanupExpired(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	frozen := time.Now()
	s.now = func() time.Time { return frozen }

	_, err := s.Store(ctx, domain.CircuitAgeVerificationV1, []byte("a"), time.Second)
	require.NoError(t, err)
	_, err = s.Store(ctx, domain.CircuitAgeVerificationV1, []byte("b"), time.Hour)
	require.NoError(t, err)

	s.now = func() time.Time { return frozen.Add(2 * time.Second) }
	count, err := s.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
