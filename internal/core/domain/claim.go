package domain

// PredicateKind tags the ClaimPredicate sum type.
type PredicateKind string

const (
	PredicateAgeAtLeast     PredicateKind = "age_at_least"
	PredicateHoldsCredential PredicateKind = "holds_credential"
	PredicateKycStatus      PredicateKind = "kyc_status"
	PredicateSetMembership  PredicateKind = "set_membership"
)

// ClaimPredicate is the tagged variant over the four supported ZK claim
// shapes. Only the fields relevant to Kind are meaningful.
type ClaimPredicate struct {
	Kind PredicateKind

	// AgeAtLeast
	Threshold uint8

	// HoldsCredential
	CredentialType string
	Issuer         string // empty ⇒ any issuer

	// KycStatus
	Provider      string // "*" or issuer id
	Level         KYCLevel
	MaxAgeSeconds *uint64

	// SetMembership (supplemented fourth circuit)
	SetID string
}

// CircuitID is the deterministic circuit_id a ClaimPredicate maps to.
type CircuitID string

const (
	CircuitAgeVerificationV1 CircuitID = "age_verification_v1"
	CircuitKycStatusV1       CircuitID = "kyc_status_v1"
	CircuitHoldsCredentialV1 CircuitID = "holds_credential_v1"
	CircuitSetMembershipV1   CircuitID = "set_membership_v1"
)

// CircuitID returns the deterministic circuit identifier for this predicate.
func (p ClaimPredicate) CircuitID() CircuitID {
	switch p.Kind {
	case PredicateAgeAtLeast:
		return CircuitAgeVerificationV1
	case PredicateKycStatus:
		return CircuitKycStatusV1
	case PredicateHoldsCredential:
		return CircuitHoldsCredentialV1
	case PredicateSetMembership:
		return CircuitSetMembershipV1
	default:
		return ""
	}
}
