package stark

import (
	"context"

	"github.com/jackfredericksen/fantasma/internal/apperr"
	"github.com/jackfredericksen/fantasma/internal/core/domain"
	"github.com/jackfredericksen/fantasma/internal/core/ports"
)

// VerifierService wraps a ProverBackend with the per-circuit
// verification-key map populated at startup (the keys themselves are
// resolved and held by the backend; this layer only validates circuit
// identity and proof-format shape before delegating).
type VerifierService struct {
	backend  ports.ProverBackend
	circuits map[domain.CircuitID]CircuitSchema
}

// NewVerifierService constructs a VerifierService over backend, populated
// from the package-level circuit Registry.
func NewVerifierService(backend ports.ProverBackend) *VerifierService {
	return &VerifierService{backend: backend, circuits: Registry}
}

// Verify rejects with CircuitMismatch on an unknown circuit, InvalidProofFormat
// on a size/magic-number failure, and otherwise delegates to the backend,
// returning a structured VerificationResult.
func (v *VerifierService) Verify(ctx context.Context, circuit domain.CircuitID, proofBytes []byte, public []domain.Value) (domain.VerificationResult, error) {
	if _, ok := v.circuits[circuit]; !ok {
		return domain.VerificationResult{}, apperr.Input("circuit mismatch: unknown circuit "+string(circuit), nil)
	}
	if len(proofBytes) < 4 {
		return domain.VerificationResult{}, apperr.Input("invalid proof format: too short", nil)
	}

	result, err := v.backend.Verify(ctx, circuit, proofBytes, public)
	if err != nil {
		return domain.VerificationResult{}, apperr.ProofFailed("proof verification failed", err)
	}

	return domain.VerificationResult{
		Valid:        result.Valid,
		Circuit:      circuit,
		PublicInputs: public,
		Error:        result.Error,
	}, nil
}
