package kms

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalProviderGeneratesAndPersistsKey(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "signing.key")

	p1 := NewLocal(path, "test-passphrase")
	require.NoError(t, p1.Init(ctx))
	pub1, err := p1.PublicKey(ctx)
	require.NoError(t, err)

	p2 := NewLocal(path, "test-passphrase")
	require.NoError(t, p2.Init(ctx))
	pub2, err := p2.PublicKey(ctx)
	require.NoError(t, err)

	assert.Equal(t, pub1, pub2)
}

func TestLocalProviderSignIsVerifiableAgainstPublicKey(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "signing.key")

	p := NewLocal(path, "test-passphrase")
	require.NoError(t, p.Init(ctx))

	pub, err := p.PublicKey(ctx)
	require.NoError(t, err)

	sig, err := p.Sign(ctx, []byte("token payload"))
	require.NoError(t, err)
	assert.Len(t, sig, 64)
	assert.NotNil(t, pub)
}

func TestRegistryResolvesLocalBackend(t *testing.T) {
	provider, err := New("local")
	require.NoError(t, err)
	assert.NotNil(t, provider)
}

func TestRegistryRejectsUnknownBackend(t *testing.T) {
	_, err := New("nonexistent")
	assert.Error(t, err)
}
