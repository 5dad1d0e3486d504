package server

import (
	"context"

	"github.com/jackfredericksen/fantasma/internal/anchor"
	"github.com/jackfredericksen/fantasma/internal/config"
	"github.com/jackfredericksen/fantasma/internal/core/ports"
	"github.com/jackfredericksen/fantasma/internal/core/services"
	"github.com/jackfredericksen/fantasma/internal/oidc"
	"github.com/jackfredericksen/fantasma/internal/ratelimit"
)

// counter is satisfied by any repository/store that can report how many
// rows it holds; used only by the admin stats route via a type assertion,
// implemented by both the memory and postgres variants of
// AuthCodeRepository, ProofStore and NullifierLedger, without widening
// ports.go's interfaces for a single admin-only concern.
type counter interface {
	Count(ctx context.Context) (int, error)
}

// Dependencies bundles every wired component the router's handlers need.
// Built once at startup in cmd/fantasma and passed to NewRouter.
type Dependencies struct {
	Config *config.Configuration

	Discovery *oidc.DiscoveryBuilder
	JWKS      *oidc.JWKSBuilder

	Auth   *services.AuthorizationService
	Tokens *services.TokenService
	Issuer *oidc.TokenIssuer

	Clients    ports.ClientRepository
	AuthCodes  ports.AuthCodeRepository
	Nullifiers ports.NullifierLedger
	Proofs     ports.ProofStore

	Merkle ports.MerkleRegistry
	Anchor *anchor.Service // nil when no chain is configured

	Limiter ratelimit.Limiter
}
