package domain

import "time"

// AnchorRootKind names which registry root an AnchorRecord publishes.
type AnchorRootKind string

const (
	AnchorRootNullifierLedger    AnchorRootKind = "nullifier_ledger"
	AnchorRootCredentialRegistry AnchorRootKind = "credential_registry"
)

// AnchorChain names the chain family a root was published to.
type AnchorChain string

const (
	AnchorChainEVM    AnchorChain = "evm"
	AnchorChainSolana AnchorChain = "solana"
)

// AnchorRecord is the on-chain anchor audit row: a sparse-Merkle root,
// published to a configured chain, optionally fetched back by relying
// parties to audit a SetMembership proof's registry state at a point in
// time. Publishing a root is never required by the core off-chain ZK
// pipeline.
type AnchorRecord struct {
	ID         [16]byte
	RootKind   AnchorRootKind
	Root       [32]byte
	Chain      AnchorChain
	ChainID    int
	TxRef      string
	AnchoredAt time.Time
}

// RevocationStatus is the revocation-status-stub record resolved through an
// on-chain status resolver when one is configured; otherwise credentials
// are always treated as Valid (checking against *external* status services
// remains out of scope).
type RevocationStatus string

const (
	RevocationValid   RevocationStatus = "valid"
	RevocationRevoked RevocationStatus = "revoked"
)

// RevocationRecord is the result of a revocation-status check.
type RevocationRecord struct {
	CredentialID [32]byte
	Status       RevocationStatus
	CheckedAt    time.Time
}
