// Package kms is the signing-key provider registry: a pluggable KeyProvider
// behind the single active OIDC token-signing key, selected once at startup
// from configuration (local|vault|awskms). Adapted from the teacher's
// per-identity Ed25519 KeyProvider idiom, generalized here to the single
// issuer signing key the token issuer needs rather than a per-identity key
// set.
package kms

import (
	"context"
	"errors"
	"fmt"
)

// KeyType distinguishes provider-local key material shapes.
type KeyType string

const (
	KeyTypeEd25519 KeyType = "ed25519"
)

var (
	// ErrKeyNotFound is returned when no key material exists yet for the
	// configured backend.
	ErrKeyNotFound = errors.New("kms: key not found")
	// ErrIncorrectKeyType is returned when a provider is asked to operate on
	// a KeyType it doesn't support.
	ErrIncorrectKeyType = errors.New("kms: incorrect key type")
)

// Provider is the signing-key abstraction: generate-or-load once at
// startup, then serve PublicKey/Sign for the lifetime of the process.
// Implements core/ports.KeyProvider.
type Provider interface {
	// Init generates a new key (first run) or loads the existing one,
	// idempotently.
	Init(ctx context.Context) error
	PublicKey(ctx context.Context) ([]byte, error)
	Sign(ctx context.Context, data []byte) ([]byte, error)
}

// registry holds the known provider constructors, keyed by backend name, so
// callers can select one from configuration without a type switch at every
// call site.
var registry = map[string]func() Provider{}

// Register makes a provider constructor available under backend name. Called
// from each provider's init().
func Register(backend string, ctor func() Provider) {
	registry[backend] = ctor
}

// New constructs the provider registered under backend, or ErrKeyNotFound if
// no such backend was registered.
func New(backend string) (Provider, error) {
	ctor, ok := registry[backend]
	if !ok {
		return nil, fmt.Errorf("kms: unknown backend %q", backend)
	}
	return ctor(), nil
}
