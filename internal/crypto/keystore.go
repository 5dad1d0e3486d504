package crypto

import (
	"crypto/rand"
	"encoding/binary"
	"io"
	"os"

	"golang.org/x/crypto/sha3"

	"github.com/jackfredericksen/fantasma/internal/apperr"
)

const (
	keystoreNonceSize = 12
	keystoreTagSize   = 32
)

// SaveKeystore writes secretKey to path, encrypted under a key derived from
// passphrase: key = sha3("prefix"‖passphrase), stream-ciphered by XOR-ing
// against a SHA3 keystream seeded with key‖nonce‖counter, with an
// authentication tag tag = sha3(key‖nonce‖ciphertext). On-disk layout:
// nonce(12)‖tag(32)‖ciphertext.
//
// The single-SHA3-round KDF is a known weakness flagged for a future
// version bump (a memory-hard KDF such as golang.org/x/crypto/argon2 should
// replace it without changing the on-disk layout); this implementation
// matches the distillation source's own documented caveat rather than
// silently strengthening it.
func SaveKeystore(path, passphrase string, secretKey []byte) error {
	nonce := make([]byte, keystoreNonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return apperr.ServerError("keystore nonce generation failed", err)
	}

	key := deriveKeystoreKey(passphrase)
	ciphertext := xorStream(key, nonce, secretKey)
	tag := authTag(key, nonce, ciphertext)

	out := make([]byte, 0, keystoreNonceSize+keystoreTagSize+len(ciphertext))
	out = append(out, nonce...)
	out = append(out, tag...)
	out = append(out, ciphertext...)

	if err := os.WriteFile(path, out, 0o600); err != nil {
		return apperr.ServerError("keystore write failed", err)
	}
	return nil
}

// LoadKeystore reads and decrypts the secret key stored at path. Returns an
// Encryption(authentication) disposition (apperr.Credential) if passphrase
// is wrong.
func LoadKeystore(path, passphrase string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.ServerError("keystore read failed", err)
	}
	if len(raw) < keystoreNonceSize+keystoreTagSize {
		return nil, apperr.Credential("keystore file truncated", nil)
	}

	nonce := raw[:keystoreNonceSize]
	tag := raw[keystoreNonceSize : keystoreNonceSize+keystoreTagSize]
	ciphertext := raw[keystoreNonceSize+keystoreTagSize:]

	key := deriveKeystoreKey(passphrase)
	wantTag := authTag(key, nonce, ciphertext)
	if !constantTimeEqual(tag, wantTag) {
		return nil, apperr.Credential("keystore authentication failed: wrong passphrase", nil)
	}

	return xorStream(key, nonce, ciphertext), nil
}

func deriveKeystoreKey(passphrase string) [32]byte {
	return SHA3_256(append([]byte("prefix"), []byte(passphrase)...))
}

// xorStream XOR-encrypts (and, symmetrically, decrypts) data against a
// SHA3-derived keystream seeded by key‖nonce‖counter, 32 bytes per block.
func xorStream(key [32]byte, nonce []byte, data []byte) []byte {
	out := make([]byte, len(data))
	var counter uint64
	block := make([]byte, 0, 32+len(nonce)+8)
	for offset := 0; offset < len(data); offset += 32 {
		block = block[:0]
		block = append(block, key[:]...)
		block = append(block, nonce...)
		ctr := make([]byte, 8)
		binary.BigEndian.PutUint64(ctr, counter)
		block = append(block, ctr...)

		keystream := sha3.Sum256(block)
		end := offset + 32
		if end > len(data) {
			end = len(data)
		}
		for i := offset; i < end; i++ {
			out[i] = data[i] ^ keystream[i-offset]
		}
		counter++
	}
	return out
}

func authTag(key [32]byte, nonce, ciphertext []byte) []byte {
	buf := make([]byte, 0, 32+len(nonce)+len(ciphertext))
	buf = append(buf, key[:]...)
	buf = append(buf, nonce...)
	buf = append(buf, ciphertext...)
	tag := SHA3_256(buf)
	return tag[:]
}

func constantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	var diff byte
	for i := range a {
		diff |= a[i] ^ b[i]
	}
	return diff == 0
}
