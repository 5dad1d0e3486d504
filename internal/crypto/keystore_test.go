package crypto

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeystoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "signing.key")

	kp, err := GenerateKeyPair()
	require.NoError(t, err)

	require.NoError(t, SaveKeystore(path, "correct horse battery staple", kp.PrivateKey.Seed()))

	loadedSeed, err := LoadKeystore(path, "correct horse battery staple")
	require.NoError(t, err)

	loadedKP, err := KeyPairFromSeed(loadedSeed)
	require.NoError(t, err)

	msg := []byte("sign me")
	sig := kp.Sign(msg)
	assert.NoError(t, Verify(loadedKP.PublicKey, msg, sig))

	loadedSig := loadedKP.Sign(msg)
	assert.NoError(t, Verify(kp.PublicKey, msg, loadedSig))
}

func TestKeystoreWrongPassphraseFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "signing.key")
	kp, err := GenerateKeyPair()
	require.NoError(t, err)

	require.NoError(t, SaveKeystore(path, "right-passphrase", kp.PrivateKey.Seed()))

	_, err = LoadKeystore(path, "wrong-passphrase")
	require.Error(t, err)
}
