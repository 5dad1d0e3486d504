package stark

import (
	"bytes"
	"context"
	"time"

	"golang.org/x/crypto/sha3"

	"github.com/jackfredericksen/fantasma/internal/apperr"
	"github.com/jackfredericksen/fantasma/internal/core/domain"
	"github.com/jackfredericksen/fantasma/internal/core/ports"
)

const (
	mockProofPrefix = "STARK_PROOF_V1"
	mockProofSize   = 100_000
)

// MockBackend produces and verifies deterministic, realistically-sized
// fixed-format proofs: "STARK_PROOF_V1" ‖ sha3(circuit_id ‖ public...),
// iterated-SHA3-padded to exactly 100000 bytes. Intended for deterministic
// tests and for any deployment without external prover artifacts
// configured.
type MockBackend struct{}

// NewMockBackend constructs a MockBackend.
func NewMockBackend() *MockBackend { return &MockBackend{} }

func (b *MockBackend) Name() string { return "mock" }

func (b *MockBackend) IsAvailable(circuit domain.CircuitID) bool {
	_, ok := Registry[circuit]
	return ok
}

func (b *MockBackend) Prove(ctx context.Context, circuit domain.CircuitID, private, public []domain.Value) (ports.ProveResult, error) {
	start := time.Now()
	if !b.IsAvailable(circuit) {
		return ports.ProveResult{}, apperr.ProofFailed("unknown circuit for mock backend", nil)
	}

	digest := digestOf(circuit, public)
	proof := make([]byte, 0, mockProofSize)
	proof = append(proof, []byte(mockProofPrefix)...)
	proof = append(proof, digest[:]...)
	proof = padIteratedSHA3(proof, mockProofSize)

	return ports.ProveResult{
		ProofBytes:   proof,
		PublicInputs: public,
		SizeBytes:    len(proof),
		ProveMS:      time.Since(start).Milliseconds(),
	}, nil
}

func (b *MockBackend) Verify(ctx context.Context, circuit domain.CircuitID, proofBytes []byte, public []domain.Value) (ports.VerifyResult, error) {
	start := time.Now()
	if len(proofBytes) < 100 {
		return ports.VerifyResult{Valid: false, Error: "proof too short"}, nil
	}
	if !bytes.HasPrefix(proofBytes, []byte(mockProofPrefix)) {
		return ports.VerifyResult{Valid: false, Error: "bad magic prefix"}, nil
	}

	digest := digestOf(circuit, public)
	wantPrefix := append([]byte(mockProofPrefix), digest[:]...)
	if !bytes.HasPrefix(proofBytes, wantPrefix) {
		return ports.VerifyResult{Valid: false, Error: "digest mismatch"}, nil
	}

	return ports.VerifyResult{Valid: true, VerifyMS: time.Since(start).Milliseconds()}, nil
}

func digestOf(circuit domain.CircuitID, public []domain.Value) [32]byte {
	h := sha3.New256()
	h.Write([]byte(circuit))
	for _, v := range public {
		enc := v.Encode()
		h.Write(enc)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// padIteratedSHA3 grows buf to exactly size bytes by repeatedly appending
// sha3_256(buf) until the target length is reached, then truncating.
func padIteratedSHA3(buf []byte, size int) []byte {
	for len(buf) < size {
		h := sha3.Sum256(buf)
		buf = append(buf, h[:]...)
	}
	return buf[:size]
}
