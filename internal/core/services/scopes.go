package services

import (
	"strconv"
	"strings"

	"github.com/jackfredericksen/fantasma/internal/core/domain"
)

// ScopeMapper implements the bidirectional scope-string ↔ ClaimPredicate
// grammar.
type ScopeMapper struct{}

// NewScopeMapper constructs a ScopeMapper.
func NewScopeMapper() *ScopeMapper { return &ScopeMapper{} }

// FromScope parses a single scope token into a ClaimPredicate. ok is false
// for "openid" (no predicate) and for unrecognized tokens.
func (ScopeMapper) FromScope(token string) (domain.ClaimPredicate, bool) {
	switch {
	case token == "openid":
		return domain.ClaimPredicate{}, false

	case strings.HasPrefix(token, "zk:age:") && strings.HasSuffix(token, "+"):
		numStr := strings.TrimSuffix(strings.TrimPrefix(token, "zk:age:"), "+")
		n, err := strconv.Atoi(numStr)
		if err != nil || n < 0 || n > 255 {
			return domain.ClaimPredicate{}, false
		}
		return domain.ClaimPredicate{Kind: domain.PredicateAgeAtLeast, Threshold: uint8(n)}, true

	case token == "zk:credential":
		return domain.ClaimPredicate{Kind: domain.PredicateHoldsCredential, CredentialType: "*"}, true

	case strings.HasPrefix(token, "zk:credential:"):
		t := strings.TrimPrefix(token, "zk:credential:")
		if t == "" {
			return domain.ClaimPredicate{}, false
		}
		return domain.ClaimPredicate{Kind: domain.PredicateHoldsCredential, CredentialType: t}, true

	case strings.HasPrefix(token, "zk:kyc:"):
		level := strings.TrimPrefix(token, "zk:kyc:")
		lvl, ok := kycLevelFromName(level)
		if !ok {
			return domain.ClaimPredicate{}, false
		}
		return domain.ClaimPredicate{Kind: domain.PredicateKycStatus, Provider: "*", Level: lvl}, true

	case strings.HasPrefix(token, "zk:set:"):
		setID := strings.TrimPrefix(token, "zk:set:")
		if setID == "" {
			return domain.ClaimPredicate{}, false
		}
		return domain.ClaimPredicate{Kind: domain.PredicateSetMembership, SetID: setID}, true

	default:
		return domain.ClaimPredicate{}, false
	}
}

func kycLevelFromName(name string) (domain.KYCLevel, bool) {
	switch name {
	case "basic":
		return domain.KYCLevelBasic, true
	case "enhanced":
		return domain.KYCLevelEnhanced, true
	case "accredited":
		return domain.KYCLevelAccredited, true
	default:
		return 0, false
	}
}

func kycLevelName(lvl domain.KYCLevel) string {
	switch lvl {
	case domain.KYCLevelBasic:
		return "basic"
	case domain.KYCLevelEnhanced:
		return "enhanced"
	case domain.KYCLevelAccredited:
		return "accredited"
	default:
		return ""
	}
}

// ToScope renders a ClaimPredicate back to its canonical scope token.
func (ScopeMapper) ToScope(p domain.ClaimPredicate) (string, bool) {
	switch p.Kind {
	case domain.PredicateAgeAtLeast:
		return "zk:age:" + strconv.Itoa(int(p.Threshold)) + "+", true
	case domain.PredicateHoldsCredential:
		if p.CredentialType == "*" || p.CredentialType == "" {
			return "zk:credential", true
		}
		return "zk:credential:" + p.CredentialType, true
	case domain.PredicateKycStatus:
		name := kycLevelName(p.Level)
		if name == "" {
			return "", false
		}
		return "zk:kyc:" + name, true
	case domain.PredicateSetMembership:
		if p.SetID == "" {
			return "", false
		}
		return "zk:set:" + p.SetID, true
	default:
		return "", false
	}
}

// ParseScopeString splits a space-separated scope string into an ordered
// list of predicates, silently dropping unknown tokens and "openid".
func (m ScopeMapper) ParseScopeString(scope string) []domain.ClaimPredicate {
	tokens := strings.Fields(scope)
	predicates := make([]domain.ClaimPredicate, 0, len(tokens))
	for _, tok := range tokens {
		if p, ok := m.FromScope(tok); ok {
			predicates = append(predicates, p)
		}
	}
	return predicates
}

// RequiresProof reports whether a scope token requires a ZK proof
// (everything except "openid").
func RequiresProof(token string) bool {
	return token != "openid"
}
