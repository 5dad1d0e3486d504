// Package crypto implements the service's cryptographic primitives:
// SHA3-256, the Poseidon STARK-friendly hash, a sparse Merkle tree, nullifier
// derivation, a password-protected keystore, and post-quantum-style signing.
package crypto

import (
	"math/big"

	"github.com/iden3/go-iden3-crypto/poseidon"
	"golang.org/x/crypto/sha3"
)

// SHA3_256 returns the 32-byte SHA3-256 digest of data.
func SHA3_256(data []byte) [32]byte {
	var out [32]byte
	h := sha3.Sum256(data)
	copy(out[:], h[:])
	return out
}

// PoseidonPair hashes two field elements with Poseidon, the STARK-friendly
// hash backing the sparse Merkle tree. Backed by github.com/iden3/go-iden3-crypto,
// a real implementation replacing the SHA3-prefixed Poseidon stand-in this
// spec's own distillation source ships — the "_v1 → _v2" bump its Design
// Notes anticipate.
func PoseidonPair(a, b *big.Int) (*big.Int, error) {
	return poseidon.Hash([]*big.Int{a, b})
}

// Poseidon hashes an arbitrary number of field elements with Poseidon.
func Poseidon(values ...*big.Int) (*big.Int, error) {
	return poseidon.Hash(values)
}

// BytesToField interprets b as a big-endian unsigned integer field element.
func BytesToField(b []byte) *big.Int {
	return new(big.Int).SetBytes(b)
}

// FieldToBytes32 renders f as a big-endian, left-padded 32-byte array.
func FieldToBytes32(f *big.Int) [32]byte {
	var out [32]byte
	b := f.Bytes()
	if len(b) > 32 {
		b = b[len(b)-32:]
	}
	copy(out[32-len(b):], b)
	return out
}
