package crypto

import (
	"crypto/ed25519"
	"crypto/rand"

	"github.com/jackfredericksen/fantasma/internal/apperr"
)

// SignatureAlgorithm names the post-quantum-style issuer signature scheme.
// No ML-DSA/Dilithium implementation exists anywhere in the retrieved
// reference pack, so — exactly as the distillation source documents its own
// Poseidon stand-in — this is an explicitly labelled ed25519 placeholder
// pending a real PQC library.
const SignatureAlgorithm = "PQ-ED25519-PLACEholder"

// KeyPair is a post-quantum-style issuer signing keypair.
type KeyPair struct {
	PublicKey  ed25519.PublicKey
	PrivateKey ed25519.PrivateKey
}

// GenerateKeyPair creates a new KeyPair.
func GenerateKeyPair() (*KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, apperr.ServerError("keypair generation failed", err)
	}
	return &KeyPair{PublicKey: pub, PrivateKey: priv}, nil
}

// KeyPairFromSeed reconstructs a KeyPair from a 32-byte seed, e.g. one
// decrypted from the keystore.
func KeyPairFromSeed(seed []byte) (*KeyPair, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, apperr.ServerError("invalid seed size for keypair", nil)
	}
	priv := ed25519.NewKeyFromSeed(seed)
	pub, ok := priv.Public().(ed25519.PublicKey)
	if !ok {
		return nil, apperr.ServerError("unable to derive public key from seed", nil)
	}
	return &KeyPair{PublicKey: pub, PrivateKey: priv}, nil
}

// Sign signs msg with kp's private key.
func (kp *KeyPair) Sign(msg []byte) []byte {
	return ed25519.Sign(kp.PrivateKey, msg)
}

// Verify checks sig over msg against pub. Returns apperr-wrapped
// VerificationFailed on mismatch.
func Verify(pub ed25519.PublicKey, msg, sig []byte) error {
	if len(pub) != ed25519.PublicKeySize {
		return apperr.Input("invalid public key length", nil)
	}
	if !ed25519.Verify(pub, msg, sig) {
		return apperr.Credential("signature verification failed", nil)
	}
	return nil
}
