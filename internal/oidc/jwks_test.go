package oidc

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackfredericksen/fantasma/internal/cache"
	"github.com/jackfredericksen/fantasma/internal/kms"
)

func TestJWKSBuilderBuildContainsActiveKey(t *testing.T) {
	ctx := context.Background()
	provider := kms.NewLocal(filepath.Join(t.TempDir(), "signing.key"), "test-passphrase")
	require.NoError(t, provider.Init(ctx))

	builder := NewJWKSBuilder(provider, cache.NewMemoryCache(), time.Minute)
	raw, err := builder.Build(ctx)
	require.NoError(t, err)

	var parsed struct {
		Keys []map[string]interface{} `json:"keys"`
	}
	require.NoError(t, json.Unmarshal(raw, &parsed))
	require.Len(t, parsed.Keys, 1)
	assert.Equal(t, KeyID, parsed.Keys[0]["kid"])
	assert.Equal(t, "EdDSA", parsed.Keys[0]["alg"])
	assert.Equal(t, "OKP", parsed.Keys[0]["kty"])
}

func TestJWKSBuilderServesCachedCopy(t *testing.T) {
	ctx := context.Background()
	provider := kms.NewLocal(filepath.Join(t.TempDir(), "signing.key"), "test-passphrase")
	require.NoError(t, provider.Init(ctx))
	c := cache.NewMemoryCache()
	builder := NewJWKSBuilder(provider, c, time.Minute)

	first, err := builder.Build(ctx)
	require.NoError(t, err)
	second, err := builder.Build(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
