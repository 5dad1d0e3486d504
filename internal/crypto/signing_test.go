package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndVerifyRoundTrip(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)

	msg := []byte("credential commitment bytes")
	sig := kp.Sign(msg)

	assert.NoError(t, Verify(kp.PublicKey, msg, sig))
}

func TestVerifyRejectsTamperedMessage(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)

	sig := kp.Sign([]byte("original"))
	assert.Error(t, Verify(kp.PublicKey, []byte("tampered"), sig))
}
