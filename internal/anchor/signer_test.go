package anchor

import (
	"context"
	"path/filepath"
	"testing"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEVMSignerGenerateThenReload(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "evm.keystore")

	first, err := EVMSigner(ctx, path, "passphrase")
	require.NoError(t, err)

	second, err := EVMSigner(ctx, path, "passphrase")
	require.NoError(t, err)

	assert.Equal(t, ethcrypto.FromECDSA(first), ethcrypto.FromECDSA(second), "reloading the same keystore must yield the same key")
}

func TestEVMSignerWrongPassphraseFails(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "evm.keystore")

	_, err := EVMSigner(ctx, path, "correct")
	require.NoError(t, err)

	_, err = EVMSigner(ctx, path, "incorrect")
	assert.Error(t, err)
}

func TestSolanaSignerGenerateThenReload(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "solana.keystore")

	first, err := SolanaSigner(ctx, path, "passphrase")
	require.NoError(t, err)

	second, err := SolanaSigner(ctx, path, "passphrase")
	require.NoError(t, err)

	assert.True(t, first.PublicKey().Equals(second.PublicKey()))
}
