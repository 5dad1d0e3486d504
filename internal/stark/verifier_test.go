package stark

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackfredericksen/fantasma/internal/core/domain"
)

func TestVerifierServiceRejectsUnknownCircuit(t *testing.T) {
	v := NewVerifierService(NewMockBackend())
	_, err := v.Verify(context.Background(), domain.CircuitID("nonexistent"), []byte("STARK_PROOF_V1xxxxxxxxxxxxxxxxxxxxxxxxxxxxxx"), nil)
	assert.Error(t, err)
}

func TestVerifierServiceDelegatesToBackend(t *testing.T) {
	ctx := context.Background()
	backend := NewMockBackend()
	v := NewVerifierService(backend)

	public := []domain.Value{domain.NewU8Value(21)}
	proveResult, err := backend.Prove(ctx, domain.CircuitAgeVerificationV1, nil, public)
	require.NoError(t, err)

	result, err := v.Verify(ctx, domain.CircuitAgeVerificationV1, proveResult.ProofBytes, public)
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, domain.CircuitAgeVerificationV1, result.Circuit)
}
