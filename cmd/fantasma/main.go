// Command fantasma runs the privacy-preserving ZK-claim OIDC identity
// provider: an HTTP server issuing ID tokens whose claims are backed by
// STARK proofs instead of raw attribute disclosure. Bootstrap sequence
// adapted from fantasma-server/src/main.rs: load configuration, bring up
// the signing key, storage, prover and anchor backends, then serve until
// signaled.
package main

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	gethcrypto "github.com/ethereum/go-ethereum/crypto"
	solanago "github.com/gagliardetto/solana-go"

	"github.com/jackfredericksen/fantasma/internal/anchor"
	"github.com/jackfredericksen/fantasma/internal/cache"
	"github.com/jackfredericksen/fantasma/internal/config"
	"github.com/jackfredericksen/fantasma/internal/core/domain"
	"github.com/jackfredericksen/fantasma/internal/core/ports"
	"github.com/jackfredericksen/fantasma/internal/core/services"
	fcrypto "github.com/jackfredericksen/fantasma/internal/crypto"
	dblib "github.com/jackfredericksen/fantasma/internal/db"
	"github.com/jackfredericksen/fantasma/internal/kms"
	"github.com/jackfredericksen/fantasma/internal/loader"
	"github.com/jackfredericksen/fantasma/internal/log"
	"github.com/jackfredericksen/fantasma/internal/network"
	"github.com/jackfredericksen/fantasma/internal/oidc"
	"github.com/jackfredericksen/fantasma/internal/proofstore"
	"github.com/jackfredericksen/fantasma/internal/ratelimit"
	"github.com/jackfredericksen/fantasma/internal/repositories"
	"github.com/jackfredericksen/fantasma/internal/server"
	"github.com/jackfredericksen/fantasma/internal/stark"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Config(log.LevelInfo, log.FormatJSON, os.Stdout)

	cfg, err := config.Load(".env", os.Getenv("FANTASMA_CONFIG_OVERRIDE"))
	if err != nil {
		log.Error(ctx, "configuration load failed", "err", err)
		os.Exit(1)
	}

	keyProvider, err := buildKeyProvider(ctx, cfg.KeyStore)
	if err != nil {
		log.Error(ctx, "keystore init failed", "err", err)
		os.Exit(1)
	}

	merkle := fcrypto.NewMerkleRegistry()

	var (
		storage     *dblib.Storage
		clients     ports.ClientRepository
		authCodes   ports.AuthCodeRepository
		credentials ports.CredentialRepository
		nullifiers  ports.NullifierLedger
		proofs      ports.ProofStore
	)

	if cfg.Database.URL != "" {
		if err := dblib.Migrate(ctx, cfg.Database.URL); err != nil {
			log.Error(ctx, "database migration failed", "err", err)
			os.Exit(1)
		}
		storage, err = dblib.New(ctx, cfg.Database.URL)
		if err != nil {
			log.Error(ctx, "database connect failed", "err", err)
			os.Exit(1)
		}
		defer storage.Close()

		pgClients := repositories.NewPostgresClientRepository(storage)
		if err := pgClients.SeedDemoClients(ctx); err != nil {
			log.Error(ctx, "demo client seed failed", "err", err)
		}
		clients = pgClients
		authCodes = repositories.NewPostgresAuthCodeRepository(storage)
		credentials = repositories.NewPostgresCredentialRepository(storage)
		nullifiers = repositories.NewPostgresNullifierLedger(storage)
		proofs = proofstore.NewPostgresStore(storage)
	} else {
		memClients := repositories.NewMemoryClientRepository()
		memCredentials := repositories.NewMemoryCredentialRepository()
		seedDemoData(ctx, memCredentials)
		clients = memClients
		authCodes = repositories.NewMemoryAuthCodeRepository()
		credentials = memCredentials
		nullifiers = repositories.NewMemoryNullifierLedger()
		proofs = proofstore.NewMemoryStore()
	}

	var prover ports.ProverBackend
	switch cfg.Prover.Backend {
	case "external":
		prover = stark.NewExternalBackend(cfg.Prover.CircuitsPath)
	default:
		prover = stark.NewMockBackend()
	}
	verifier := stark.NewVerifierService(prover)

	circuits := loader.NewCircuitLoader(cfg.Prover.CircuitsPath)
	discoveryCache := cache.NewMemoryCache()
	jwksCache := cache.NewMemoryCache()

	discovery := oidc.NewDiscoveryBuilder(cfg.Server.IssuerURL, cfg.OIDC.SigningAlg, circuits, discoveryCache, cfg.Cache.TTL)
	jwks := oidc.NewJWKSBuilder(keyProvider, jwksCache, cfg.Cache.TTL)
	issuer := oidc.NewTokenIssuer(keyProvider)

	witness := services.NewWitnessBuilder(merkle)
	authService := services.NewAuthorizationService(clients, authCodes, cfg.OIDC.AuthCodeTTL)
	tokenService := services.NewTokenService(authCodes, credentials, nullifiers, proofs, prover, verifier, witness, issuer, cfg.Server.IssuerURL, cfg.OIDC.AccessTTL)

	anchorService := buildAnchorService(ctx, cfg.Chains)

	server.ValidateOpenAPISpec(ctx)

	deps := &server.Dependencies{
		Config:     cfg,
		Discovery:  discovery,
		JWKS:       jwks,
		Auth:       authService,
		Tokens:     tokenService,
		Issuer:     issuer,
		Clients:    clients,
		AuthCodes:  authCodes,
		Nullifiers: nullifiers,
		Proofs:     proofs,
		Merkle:     merkle,
		Anchor:     anchorService,
		Limiter:    ratelimit.NewMemoryLimiter(ratelimit.DefaultConfig()),
	}

	router := server.NewRouter(deps)
	httpServer := server.NewServer(&cfg.Server, router)
	if err := httpServer.Run(ctx); err != nil {
		log.Error(ctx, "http server exited with error", "err", err)
		os.Exit(1)
	}
}

func buildKeyProvider(ctx context.Context, cfg config.KeyStore) (kms.Provider, error) {
	var provider kms.Provider
	switch cfg.Backend {
	case "vault":
		provider = kms.NewVault(kms.VaultConfig{
			Address:  cfg.VaultAddress,
			Username: cfg.VaultUsername,
			Password: cfg.VaultPassword,
		})
	case "awskms":
		provider = kms.NewAWSKMS(kms.AWSConfig{Region: cfg.AWSRegion, SecretName: cfg.AWSKMSKeyID})
	default:
		provider = kms.NewLocal(cfg.LocalPath, cfg.LocalPassword)
	}
	if err := provider.Init(ctx); err != nil {
		return nil, err
	}
	return provider, nil
}

// buildAnchorService constructs the optional on-chain anchor component. A
// missing signer for a chain family disables that family but never the
// whole service: §7's disposition is 503-on-use, not startup failure.
func buildAnchorService(ctx context.Context, cfg config.Chains) *anchor.Service {
	if cfg.EVMSignerHex == "" && cfg.SolanaSignerSeed == "" {
		return nil
	}

	var evmSigner *ecdsa.PrivateKey
	if cfg.EVMSignerHex != "" {
		key, err := gethcrypto.HexToECDSA(cfg.EVMSignerHex)
		if err != nil {
			log.Error(ctx, "evm signer key parse failed, anchoring disabled for evm", "err", err)
		} else {
			evmSigner = key
		}
	}

	var solSigner solanago.PrivateKey
	if cfg.SolanaSignerSeed != "" {
		key, err := solanago.PrivateKeyFromBase58(cfg.SolanaSignerSeed)
		if err != nil {
			log.Error(ctx, "solana signer key parse failed, anchoring disabled for solana", "err", err)
		} else {
			solSigner = key
		}
	}

	resolver := network.NewResolver(
		[]network.EVMChain{{ChainID: cfg.EVMChainID, RPCURL: cfg.EVMRPCURL}},
		[]network.SolanaCluster{{ChainID: cfg.SolanaChainID, RPCURL: cfg.SolanaRPCURL}},
	)

	svc, err := anchor.NewService(resolver, evmSigner, solSigner, common.HexToAddress(cfg.EVMRegistryAddr), solAddr(cfg.SolanaProgramID))
	if err != nil {
		log.Error(ctx, "anchor service construction failed, anchoring disabled", "err", err)
		return nil
	}
	return svc
}

func solAddr(s string) solanago.PublicKey {
	if s == "" {
		return solanago.PublicKey{}
	}
	pub, err := solanago.PublicKeyFromBase58(s)
	if err != nil {
		return solanago.PublicKey{}
	}
	return pub
}

// seedDemoData populates the in-memory credential repository with the two
// demo subjects §8's scenarios exercise: alice (age 1990-05-15, basic KYC —
// both predicates verify) and bob (no credentials on file — every
// predicate falls back to the unverified disposition).
func seedDemoData(ctx context.Context, creds *repositories.MemoryCredentialRepository) {
	issuerKeys, err := fcrypto.GenerateKeyPair()
	if err != nil {
		log.Error(ctx, "demo issuer key generation failed, demo data not seeded", "err", err)
		return
	}

	issuer := &domain.IssuerInfo{
		ID:               "demo-issuer",
		Name:             "Demo Identity Issuer",
		PublicKey:        issuerKeys.PublicKey,
		TrustAnchor:      domain.TrustAnchorGovernment,
		SupportedSchemas: []domain.CredentialType{domain.CredentialIdentityV1, domain.CredentialKYCV1},
		Trusted:          true,
	}
	if err := creds.RegisterIssuer(ctx, issuer); err != nil {
		log.Error(ctx, "demo issuer registration failed", "err", err)
		return
	}

	now := time.Now()
	creds.Seed("demo-user:alice", &domain.Credential{
		ID:             fcrypto.SHA3_256([]byte("alice-identity")),
		Issuer:         issuer.ID,
		Schema:         domain.CredentialIdentityV1,
		Body:           domain.IdentityBody{BirthdateYYYYMMDD: 19900515},
		CommitmentSalt: fcrypto.SHA3_256([]byte("alice-identity-salt")),
		Commitment:     fcrypto.SHA3_256([]byte("alice-identity-commitment")),
		Signature:      issuerKeys.Sign([]byte("alice-identity")),
		SignatureAlg:   "Ed25519",
		IssuedAt:       now,
	})
	creds.Seed("demo-user:alice", &domain.Credential{
		ID:             fcrypto.SHA3_256([]byte("alice-kyc")),
		Issuer:         issuer.ID,
		Schema:         domain.CredentialKYCV1,
		Body:           domain.KYCBody{Provider: "demo-kyc", Level: domain.KYCLevelBasic, VerifiedAtUnix: uint64(now.Unix())},
		CommitmentSalt: fcrypto.SHA3_256([]byte("alice-kyc-salt")),
		Commitment:     fcrypto.SHA3_256([]byte("alice-kyc-commitment")),
		Signature:      issuerKeys.Sign([]byte("alice-kyc")),
		SignatureAlg:   "Ed25519",
		IssuedAt:       now,
	})

	fmt.Fprintln(os.Stderr, "seeded demo credentials for demo-user:alice; demo-user:bob holds none")
}
