// Package stark implements the pluggable STARK/Groth16 proving pipeline:
// circuit public-signal schemas, the mock and external (wasm+Groth16)
// prover backends, and the verifier service.
package stark

import (
	"github.com/jackfredericksen/fantasma/internal/core/domain"
)

// CircuitSchema declares a circuit's ordered public-signal name list, the
// same way github.com/iden3/go-circuits/v2 declares its own circuits'
// public-signal schemas.
type CircuitSchema struct {
	ID            domain.CircuitID
	Description   string
	PublicSignals []string
}

// Registry is the startup-populated map of known circuit schemas.
var Registry = map[domain.CircuitID]CircuitSchema{
	domain.CircuitAgeVerificationV1: {
		ID:            domain.CircuitAgeVerificationV1,
		Description:   "proves date-of-birth implies age >= threshold without revealing the date",
		PublicSignals: []string{"threshold", "today", "commitment", "issuerPublicKeyHash"},
	},
	domain.CircuitKycStatusV1: {
		ID:            domain.CircuitKycStatusV1,
		Description:   "proves a KYC attestation meets a requested level within a max age",
		PublicSignals: []string{"requestedLevel", "maxAgeSeconds", "now", "providerPublicKeyHash", "commitment"},
	},
	domain.CircuitHoldsCredentialV1: {
		ID:            domain.CircuitHoldsCredentialV1,
		Description:   "proves membership of a credential commitment in a per-type Merkle registry",
		PublicSignals: []string{"typeHash", "merkleRoot", "issuerPublicKeyHash", "nullifier", "domainHash", "nonce"},
	},
	domain.CircuitSetMembershipV1: {
		ID:            domain.CircuitSetMembershipV1,
		Description:   "proves membership of a credential commitment in a named Merkle set, without a per-type binding",
		PublicSignals: []string{"setIDHash", "merkleRoot", "nullifier", "domainHash", "nonce"},
	},
}
