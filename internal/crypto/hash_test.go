package crypto

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoseidonPairIsDeterministic(t *testing.T) {
	a := big.NewInt(42)
	b := big.NewInt(7)

	h1, err := PoseidonPair(a, b)
	require.NoError(t, err)
	h2, err := PoseidonPair(a, b)
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
}

func TestPoseidonPairOrderSensitive(t *testing.T) {
	a := big.NewInt(1)
	b := big.NewInt(2)

	h1, err := PoseidonPair(a, b)
	require.NoError(t, err)
	h2, err := PoseidonPair(b, a)
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestFieldToBytes32RoundTrip(t *testing.T) {
	f := big.NewInt(123456789)
	b := FieldToBytes32(f)
	got := BytesToField(b[:])
	assert.Equal(t, 0, f.Cmp(got))
}

func TestSHA3_256Deterministic(t *testing.T) {
	assert.Equal(t, SHA3_256([]byte("hello")), SHA3_256([]byte("hello")))
	assert.NotEqual(t, SHA3_256([]byte("hello")), SHA3_256([]byte("world")))
}
