// Package oidc builds the two static, cacheable documents an OIDC relying
// party fetches before driving the authorization-code flow: the discovery
// document and the JWKS. Both are computed once per cache TTL and served
// from internal/cache, matching the teacher's pattern of wrapping a
// deterministically-derived payload behind a short-TTL cache entry rather
// than recomputing it per request.
package oidc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/jackfredericksen/fantasma/internal/cache"
	"github.com/jackfredericksen/fantasma/internal/core/domain"
	"github.com/jackfredericksen/fantasma/internal/loader"
	"github.com/jackfredericksen/fantasma/internal/log"
)

const discoveryCacheKey = "oidc:discovery"

// ZkCircuitInfo describes one of the four supported circuits in the
// discovery document, closing the original_source gap where these fields
// were hardcoded placeholder strings (§4.10).
type ZkCircuitInfo struct {
	Description  string `json:"description"`
	BytecodeHash string `json:"bytecode_hash"`
	VKHash       string `json:"vk_hash"`
}

// Discovery is the `/.well-known/openid-configuration` document shape.
type Discovery struct {
	Issuer                           string                             `json:"issuer"`
	AuthorizationEndpoint            string                             `json:"authorization_endpoint"`
	TokenEndpoint                    string                             `json:"token_endpoint"`
	JWKSURI                          string                             `json:"jwks_uri"`
	ScopesSupported                  []string                           `json:"scopes_supported"`
	ResponseTypesSupported           []string                           `json:"response_types_supported"`
	GrantTypesSupported              []string                           `json:"grant_types_supported"`
	SubjectTypesSupported            []string                           `json:"subject_types_supported"`
	IDTokenSigningAlgValuesSupported []string                           `json:"id_token_signing_alg_values_supported"`
	CodeChallengeMethodsSupported    []string                           `json:"code_challenge_methods_supported"`
	ZkCircuits                       map[domain.CircuitID]ZkCircuitInfo `json:"zk_circuits"`
}

var circuitDescriptions = map[domain.CircuitID]string{
	domain.CircuitAgeVerificationV1: "proves subject's age exceeds a threshold without revealing birthdate",
	domain.CircuitKycStatusV1:       "proves a KYC credential meets a provider/level/freshness predicate without revealing the credential",
	domain.CircuitHoldsCredentialV1: "proves possession of a credential of a given schema without revealing its contents",
	domain.CircuitSetMembershipV1:   "proves subject's commitment is a member of a registry's Merkle set without revealing which leaf",
}

var allCircuits = []domain.CircuitID{
	domain.CircuitAgeVerificationV1,
	domain.CircuitKycStatusV1,
	domain.CircuitHoldsCredentialV1,
	domain.CircuitSetMembershipV1,
}

var supportedScopes = []string{
	"openid",
	"zk:age:18+",
	"zk:age:21+",
	"zk:credential",
	"zk:kyc:basic",
	"zk:kyc:enhanced",
	"zk:set:*",
}

// DiscoveryBuilder assembles the discovery document once at load time (hash
// fields computed from on-disk circuit artifacts) and serves it from cache
// thereafter.
type DiscoveryBuilder struct {
	issuerURL    string
	signingAlg   string
	circuits     *loader.CircuitLoader
	cache        cache.Cache
	ttl          time.Duration
}

// NewDiscoveryBuilder constructs a DiscoveryBuilder. signingAlg should match
// config.OIDC.SigningAlg (e.g. "EdDSA").
func NewDiscoveryBuilder(issuerURL, signingAlg string, circuits *loader.CircuitLoader, c cache.Cache, ttl time.Duration) *DiscoveryBuilder {
	return &DiscoveryBuilder{issuerURL: issuerURL, signingAlg: signingAlg, circuits: circuits, cache: c, ttl: ttl}
}

// Build returns the discovery document, serving a cached copy when present.
func (b *DiscoveryBuilder) Build(ctx context.Context) (*Discovery, error) {
	if cached, ok, err := b.cache.Get(ctx, discoveryCacheKey); err == nil && ok {
		var doc Discovery
		if json.Unmarshal(cached, &doc) == nil {
			return &doc, nil
		}
	}

	doc := &Discovery{
		Issuer:                            b.issuerURL,
		AuthorizationEndpoint:             b.issuerURL + "/authorize",
		TokenEndpoint:                     b.issuerURL + "/token",
		JWKSURI:                           b.issuerURL + "/.well-known/jwks.json",
		ScopesSupported:                   supportedScopes,
		ResponseTypesSupported:           []string{"code"},
		GrantTypesSupported:              []string{"authorization_code"},
		SubjectTypesSupported:            []string{"pairwise"},
		IDTokenSigningAlgValuesSupported: []string{b.signingAlg},
		CodeChallengeMethodsSupported:    []string{"S256"},
		ZkCircuits:                       make(map[domain.CircuitID]ZkCircuitInfo, len(allCircuits)),
	}

	for _, id := range allCircuits {
		info := ZkCircuitInfo{Description: circuitDescriptions[id]}
		artifacts, err := b.circuits.Load(id)
		if err != nil {
			log.Error(ctx, "circuit artifacts unavailable for discovery document", "err", err, "circuit", id)
			info.BytecodeHash = zeroHash
			info.VKHash = zeroHash
		} else {
			info.BytecodeHash = hashHex(artifacts.WasmBytes)
			if len(artifacts.VerificationKeyBytes) > 0 {
				info.VKHash = hashHex(artifacts.VerificationKeyBytes)
			} else {
				info.VKHash = zeroHash
			}
		}
		doc.ZkCircuits[id] = info
	}

	if raw, err := json.Marshal(doc); err == nil {
		if err := b.cache.Set(ctx, discoveryCacheKey, raw, b.ttl); err != nil {
			log.Error(ctx, "failed to cache discovery document", "err", err)
		}
	}

	return doc, nil
}

var zeroHash = strings.Repeat("0", 64)

func hashHex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
