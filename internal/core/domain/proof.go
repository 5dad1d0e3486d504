package domain

import "time"

// StoredProof is a TTL-keyed proof blob held by the proof store.
type StoredProof struct {
	ID        string
	Bytes     []byte
	Hash      [32]byte
	CircuitID CircuitID
	StoredAt  time.Time
	ExpiresAt time.Time
	URL       string // populated when offloaded to a blob backend (e.g. IPFS)
}

// Expired reports whether now is past ExpiresAt.
func (p *StoredProof) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}

// ProofRef is the small, token-embeddable link sufficient to fetch and
// verify the out-of-band STARK proof.
type ProofRef struct {
	ID   string  `json:"id"`
	Hash string  `json:"sha3"`
	URL  *string `json:"url,omitempty"`
}

// Nullifier is the 32-byte anti-replay value keyed by (hash, domain,
// circuit). Global uniqueness on Hash is enforced per the resolved Open
// Question; Domain/Circuit remain available for a secondary, non-authoritative
// per-domain query.
type Nullifier struct {
	Hash      [32]byte
	Domain    string
	Circuit   CircuitID
	CreatedAt time.Time
}

// VerificationResult is the verifier's structured outcome.
type VerificationResult struct {
	Valid        bool
	Circuit      CircuitID
	PublicInputs []Value
	Error        string
}

// ZKClaim is the per-predicate claim object embedded in the ID token.
type ZKClaim struct {
	Verified      bool       `json:"verified"`
	Threshold     *uint8     `json:"threshold,omitempty"`
	CredentialType *string   `json:"credential_type,omitempty"`
	Level         *string    `json:"level,omitempty"`
	SetID         *string    `json:"set_id,omitempty"`
	ProofRef      *ProofRef  `json:"proof_ref,omitempty"`
	CircuitVersion string    `json:"circuit_version"`
}

// IDTokenClaims is the set of standard plus ZK claims carried by the issued
// ID token.
type IDTokenClaims struct {
	Issuer    string   `json:"iss"`
	Subject   string   `json:"sub"`
	Audience  string   `json:"aud"`
	ExpiresAt int64    `json:"exp"`
	IssuedAt  int64    `json:"iat"`
	Nonce     string   `json:"nonce,omitempty"`

	AgeClaim        *ZKClaim `json:"zk_age_claim,omitempty"`
	KycClaim        *ZKClaim `json:"zk_kyc_claim,omitempty"`
	CredentialClaim *ZKClaim `json:"zk_credential_claim,omitempty"`
	SetMembershipClaim *ZKClaim `json:"zk_set_claim,omitempty"`
}
