// Package domain holds the wire-level data model: credentials, issuer
// registry entries, claim predicates, witnesses, auth codes, stored proofs
// and nullifiers.
package domain

import "time"

// CredentialType names the one of {identity,kyc,degree,license,membership}
// schema variants a credential body implements.
type CredentialType string

const (
	CredentialIdentityV1   CredentialType = "identity-v1"
	CredentialKYCV1        CredentialType = "kyc-v1"
	CredentialDegreeV1     CredentialType = "degree-v1"
	CredentialLicenseV1    CredentialType = "license-v1"
	CredentialMembershipV1 CredentialType = "membership-v1"
)

// Body is implemented by every credential schema's typed payload. It exists
// purely to document the sum type; witness builders type-switch on the
// concrete type rather than calling methods on this interface.
type Body interface {
	isBody()
}

// IdentityBody carries a single date of birth.
type IdentityBody struct {
	BirthdateYYYYMMDD uint32
}

func (IdentityBody) isBody() {}

// KYCLevel is an ordered trust level for KYC attestations.
type KYCLevel uint8

const (
	KYCLevelBasic      KYCLevel = 1
	KYCLevelEnhanced   KYCLevel = 2
	KYCLevelAccredited KYCLevel = 3
)

// KYCBody carries a provider, level and verification timestamp.
type KYCBody struct {
	Provider       string
	Level          KYCLevel
	VerifiedAtUnix uint64
}

func (KYCBody) isBody() {}

// DegreeBody carries an institution/type/field/date.
type DegreeBody struct {
	Institution     string
	DegreeType      string
	Field           string
	ConferredYYYYMMDD uint32
}

func (DegreeBody) isBody() {}

// LicenseBody carries a type/jurisdiction/number-hash/dates.
type LicenseBody struct {
	LicenseType    string
	Jurisdiction   string
	NumberHash     [32]byte
	IssuedYYYYMMDD  uint32
	ExpiresYYYYMMDD uint32
}

func (LicenseBody) isBody() {}

// MembershipBody carries an org/type/dates.
type MembershipBody struct {
	Organization    string
	MembershipType  string
	JoinedYYYYMMDD  uint32
	ExpiresYYYYMMDD uint32
}

func (MembershipBody) isBody() {}

// Credential is the signed attestation held by a user.
type Credential struct {
	ID             [32]byte
	Issuer         string
	Schema         CredentialType
	Body           Body
	CommitmentSalt [32]byte
	Commitment     [32]byte
	Signature      []byte
	SignatureAlg   string
	IssuedAt       time.Time
	ExpiresAt      *time.Time
}

// Expired reports whether the credential's expires_at, if set, is in the
// past relative to now.
func (c *Credential) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && now.After(*c.ExpiresAt)
}

// TrustAnchor orders issuer trust: government > accredited > trust-framework
// > self-declared.
type TrustAnchor string

const (
	TrustAnchorGovernment     TrustAnchor = "government"
	TrustAnchorAccredited     TrustAnchor = "accredited"
	TrustAnchorTrustFramework TrustAnchor = "trust-framework"
	TrustAnchorSelfDeclared   TrustAnchor = "self-declared"
)

// TrustLevel returns an ordered ranking for a TrustAnchor, higher is more
// trusted.
func (t TrustAnchor) TrustLevel() int {
	switch t {
	case TrustAnchorGovernment:
		return 4
	case TrustAnchorAccredited:
		return 3
	case TrustAnchorTrustFramework:
		return 2
	case TrustAnchorSelfDeclared:
		return 1
	default:
		return 0
	}
}

// IssuerInfo is a registered credential issuer.
type IssuerInfo struct {
	ID               string
	Name             string
	PublicKey        []byte
	TrustAnchor      TrustAnchor
	SupportedSchemas []CredentialType
	Trusted          bool
}

// DID renders the issuer ID as a did:iden3-shaped identifier when it is not
// already DID-formed, per the issuer-DID domain-stack supplement.
func (i *IssuerInfo) DID() string {
	if len(i.ID) >= 4 && i.ID[:4] == "did:" {
		return i.ID
	}
	return "did:iden3:fantasma:" + i.ID
}
