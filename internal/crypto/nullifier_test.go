package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveNullifierIsPureFunctionOfInputs(t *testing.T) {
	var commitment [32]byte
	commitment[0] = 0x42
	secret := []byte("user-secret")

	n1, err := DeriveNullifier(commitment, secret, "relying-party-a", []byte("nonce-1"))
	require.NoError(t, err)
	n2, err := DeriveNullifier(commitment, secret, "relying-party-a", []byte("nonce-1"))
	require.NoError(t, err)

	assert.Equal(t, n1, n2)
}

func TestDeriveNullifierDiffersByDomain(t *testing.T) {
	var commitment [32]byte
	commitment[0] = 0x42
	secret := []byte("user-secret")
	nonce := []byte("nonce-1")

	n1, err := DeriveNullifier(commitment, secret, "relying-party-a", nonce)
	require.NoError(t, err)
	n2, err := DeriveNullifier(commitment, secret, "relying-party-b", nonce)
	require.NoError(t, err)

	assert.NotEqual(t, n1, n2)
}

func TestDeriveNullifierDiffersByNonce(t *testing.T) {
	var commitment [32]byte
	commitment[0] = 0x42
	secret := []byte("user-secret")

	n1, err := DeriveNullifier(commitment, secret, "relying-party-a", []byte("nonce-1"))
	require.NoError(t, err)
	n2, err := DeriveNullifier(commitment, secret, "relying-party-a", []byte("nonce-2"))
	require.NoError(t, err)

	assert.NotEqual(t, n1, n2)
}
