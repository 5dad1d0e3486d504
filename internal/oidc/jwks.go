package oidc

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"

	"github.com/jackfredericksen/fantasma/internal/cache"
	"github.com/jackfredericksen/fantasma/internal/core/ports"
	"github.com/jackfredericksen/fantasma/internal/log"
)

const jwksCacheKey = "oidc:jwks"

// KeyID is the fixed key identifier for the single active signing key, as
// only one key is ever active at a time (§4.10, §7 "signing keys are loaded
// once at startup and thereafter immutable").
const KeyID = "fantasma-issuer-1"

// JWKSBuilder marshals the active signing key's public half into a JWK set,
// populated for real from internal/kms — closing the Design Notes gap where
// the source returns an always-empty key set.
type JWKSBuilder struct {
	keys  ports.KeyProvider
	cache cache.Cache
	ttl   time.Duration
}

// NewJWKSBuilder constructs a JWKSBuilder.
func NewJWKSBuilder(keys ports.KeyProvider, c cache.Cache, ttl time.Duration) *JWKSBuilder {
	return &JWKSBuilder{keys: keys, cache: c, ttl: ttl}
}

// Build returns the raw JSON of `{keys:[...]}`, serving a cached copy when
// present.
func (b *JWKSBuilder) Build(ctx context.Context) ([]byte, error) {
	if cached, ok, err := b.cache.Get(ctx, jwksCacheKey); err == nil && ok {
		return cached, nil
	}

	pub, err := b.keys.PublicKey(ctx)
	if err != nil {
		log.Error(ctx, "signing key unavailable for jwks", "err", err)
		return emptyKeySet(), nil
	}

	key, err := jwk.Import(ed25519.PublicKey(pub))
	if err != nil {
		log.Error(ctx, "failed to import ed25519 public key into jwk", "err", err)
		return emptyKeySet(), nil
	}
	if err := key.Set(jwk.KeyIDKey, KeyID); err != nil {
		return nil, err
	}
	if err := key.Set(jwk.AlgorithmKey, jwa.EdDSA()); err != nil {
		return nil, err
	}
	if err := key.Set(jwk.KeyUsageKey, "sig"); err != nil {
		return nil, err
	}

	set := jwk.NewSet()
	if err := set.AddKey(key); err != nil {
		return nil, err
	}

	raw, err := json.Marshal(set)
	if err != nil {
		return nil, err
	}

	if err := b.cache.Set(ctx, jwksCacheKey, raw, b.ttl); err != nil {
		log.Error(ctx, "failed to cache jwks", "err", err)
	}
	return raw, nil
}

func emptyKeySet() []byte {
	return []byte(`{"keys":[]}`)
}
