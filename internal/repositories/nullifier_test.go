package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackfredericksen/fantasma/internal/core/domain"
)

func TestMemoryNullifierLedgerGlobalUniqueness(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryNullifierLedger()
	var hash [32]byte
	hash[0] = 0xAB

	require.NoError(t, l.Insert(ctx, hash, "relying-party-a.example.com", domain.CircuitAgeVerificationV1))

	// Same hash, a *different* domain, is still a global replay: the
	// resolved Open Question enforces uniqueness on hash alone.
	err := l.Insert(ctx, hash, "relying-party-b.example.com", domain.CircuitAgeVerificationV1)
	assert.Error(t, err)
}

func TestMemoryNullifierLedgerExists(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryNullifierLedger()
	var hash [32]byte
	hash[0] = 0xCD

	ok, err := l.Exists(ctx, hash)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, l.Insert(ctx, hash, "dom.example.com", domain.CircuitKycStatusV1))

	ok, err = l.Exists(ctx, hash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryNullifierLedgerExistsForDomain(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryNullifierLedger()
	var hash [32]byte
	hash[0] = 0xEF
	require.NoError(t, l.Insert(ctx, hash, "dom-a.example.com", domain.CircuitHoldsCredentialV1))

	ok, err := l.ExistsForDomain(ctx, hash, "dom-a.example.com")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.ExistsForDomain(ctx, hash, "dom-b.example.com")
	require.NoError(t, err)
	assert.False(t, ok)
}
