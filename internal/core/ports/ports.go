// Package ports declares the interfaces the core services depend on:
// repositories, the prover backend, the verifier, the proof store and the
// nullifier ledger. Concrete implementations live in internal/repositories,
// internal/stark and internal/proofstore.
package ports

import (
	"context"
	"time"

	"github.com/jackfredericksen/fantasma/internal/core/domain"
)

// ProverBackend is the polymorphic prove/verify contract implemented by the
// mock and external (wasm+Groth16) backends. No reflective dispatch: exactly
// one concrete implementation is selected once at startup.
type ProverBackend interface {
	Name() string
	IsAvailable(circuit domain.CircuitID) bool
	Prove(ctx context.Context, circuit domain.CircuitID, private, public []domain.Value) (ProveResult, error)
	Verify(ctx context.Context, circuit domain.CircuitID, proofBytes []byte, public []domain.Value) (VerifyResult, error)
}

// ProveResult is the backend's prove() outcome.
type ProveResult struct {
	ProofBytes   []byte
	PublicInputs []domain.Value
	SizeBytes    int
	ProveMS      int64
}

// VerifyResult is the backend's verify() outcome.
type VerifyResult struct {
	Valid    bool
	VerifyMS int64
	Error    string
}

// Verifier wraps a ProverBackend with a per-circuit verification-key map
// populated at startup.
type Verifier interface {
	Verify(ctx context.Context, circuit domain.CircuitID, proofBytes []byte, public []domain.Value) (domain.VerificationResult, error)
}

// ProofStore is the TTL-keyed proof blob store.
type ProofStore interface {
	Store(ctx context.Context, circuit domain.CircuitID, bytes []byte, ttl time.Duration) (*domain.StoredProof, error)
	Get(ctx context.Context, id string) (*domain.StoredProof, error)
	Delete(ctx context.Context, id string) error
	CleanupExpired(ctx context.Context) (int, error)
}

// NullifierLedger enforces the replay-prevention anti-double-spend
// invariant.
type NullifierLedger interface {
	Insert(ctx context.Context, hash [32]byte, domainName string, circuit domain.CircuitID) error
	Exists(ctx context.Context, hash [32]byte) (bool, error)
	ExistsForDomain(ctx context.Context, hash [32]byte, domainName string) (bool, error)
}

// AuthCodeRepository persists the auth-code state machine.
type AuthCodeRepository interface {
	Issue(ctx context.Context, code *domain.AuthCode) error
	Consume(ctx context.Context, code string, now time.Time) (*domain.AuthCode, error)
	CleanupExpired(ctx context.Context, now time.Time) (int, error)
}

// ClientRepository persists registered OAuth2 clients.
type ClientRepository interface {
	Get(ctx context.Context, clientID string) (*domain.ClientInfo, error)
	List(ctx context.Context) ([]*domain.ClientInfo, error)
	Register(ctx context.Context, client *domain.ClientInfo) error
}

// CredentialRepository persists credentials and issuer registry entries
// used to build witnesses.
type CredentialRepository interface {
	GetBySubject(ctx context.Context, subjectID string) ([]*domain.Credential, error)
	Issuer(ctx context.Context, issuerID string) (*domain.IssuerInfo, error)
	RegisterIssuer(ctx context.Context, issuer *domain.IssuerInfo) error
}

// KeyProvider is the signing-key abstraction implemented by internal/kms.
type KeyProvider interface {
	PublicKey(ctx context.Context) ([]byte, error)
	Sign(ctx context.Context, data []byte) ([]byte, error)
}

// MerkleRegistry is the sparse-Merkle-tree-backed set-membership registry
// used by both the HoldsCredential and SetMembership witness builders.
type MerkleRegistry interface {
	SetLeaf(ctx context.Context, registry string, index uint64, leaf [32]byte) error
	Root(ctx context.Context, registry string) ([32]byte, error)
	Prove(ctx context.Context, registry string, index uint64) (siblings [][]byte, pathBits []bool, err error)
}
