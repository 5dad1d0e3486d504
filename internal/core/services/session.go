package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/jackfredericksen/fantasma/internal/apperr"
	"github.com/jackfredericksen/fantasma/internal/core/domain"
	"github.com/jackfredericksen/fantasma/internal/core/ports"
	fcrypto "github.com/jackfredericksen/fantasma/internal/crypto"
	"github.com/jackfredericksen/fantasma/internal/log"
	"github.com/jackfredericksen/fantasma/internal/oidc"
)

const authCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// randomCode generates an n-char alphanumeric code from crypto/rand. No
// ecosystem library in the reference pack does bare random-string
// generation; this is the one place the module reaches past crypto/rand,
// which is the correct boundary primitive for it.
func randomCode(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", apperr.ServerError("random code generation failed", err)
	}
	out := make([]byte, n)
	for i, b := range buf {
		out[i] = authCodeAlphabet[int(b)%len(authCodeAlphabet)]
	}
	return string(out), nil
}

// AuthorizeRequest is the parsed `/authorize` query per §6.
type AuthorizeRequest struct {
	ResponseType        string
	ClientID            string
	RedirectURI         string
	Scope               string
	State               string
	Nonce               string
	CodeChallenge       string
	CodeChallengeMethod string
}

// AuthorizationService validates `/authorize` requests and issues auth codes
// on consent, grounded on the auth-code state machine (§4.8).
type AuthorizationService struct {
	clients ports.ClientRepository
	codes   ports.AuthCodeRepository
	ttl     time.Duration
	now     func() time.Time
}

// NewAuthorizationService constructs an AuthorizationService.
func NewAuthorizationService(clients ports.ClientRepository, codes ports.AuthCodeRepository, ttl time.Duration) *AuthorizationService {
	return &AuthorizationService{clients: clients, codes: codes, ttl: ttl, now: time.Now}
}

// ValidateClient resolves and validates req's client_id/redirect_uri/response_type,
// returning the ClientInfo to render the consent view against.
func (s *AuthorizationService) ValidateClient(ctx context.Context, req AuthorizeRequest) (*domain.ClientInfo, error) {
	if req.ResponseType != "code" {
		return nil, apperr.Input("unsupported response_type", nil)
	}
	client, err := s.clients.Get(ctx, req.ClientID)
	if err != nil {
		return nil, apperr.Input("unknown client_id", err)
	}
	if !client.AllowsRedirect(req.RedirectURI) {
		return nil, apperr.Input("redirect_uri not registered for client", nil)
	}
	if req.CodeChallengeMethod != "" && req.CodeChallengeMethod != "S256" {
		return nil, apperr.Input("unsupported code_challenge_method", nil)
	}
	return client, nil
}

// Approve re-validates req and issues a single-use auth code bound to
// subjectID, per the Issued transition in §4.8. The scope string carries a
// synthetic `demo_user:<id>` marker appended when demoUserID is non-empty.
func (s *AuthorizationService) Approve(ctx context.Context, req AuthorizeRequest, subjectID, demoUserID string) (*domain.AuthCode, error) {
	if _, err := s.ValidateClient(ctx, req); err != nil {
		return nil, err
	}

	scope := req.Scope
	if demoUserID != "" {
		scope = strings.TrimSpace(scope + " demo_user:" + demoUserID)
	}

	code, err := randomCode(32)
	if err != nil {
		return nil, err
	}

	now := s.now()
	ac := &domain.AuthCode{
		Code:                code,
		ClientID:            req.ClientID,
		RedirectURI:         req.RedirectURI,
		Scopes:              strings.Fields(scope),
		Nonce:               req.Nonce,
		SubjectID:           subjectID,
		CodeChallenge:       req.CodeChallenge,
		CodeChallengeMethod: req.CodeChallengeMethod,
		IssuedAt:            now,
		ExpiresAt:           now.Add(s.ttl),
	}
	if err := s.codes.Issue(ctx, ac); err != nil {
		return nil, err
	}
	return ac, nil
}

// Deny reports the user-denied-consent disposition (access_denied, §6).
func (s *AuthorizationService) Deny() *apperr.Error {
	return apperr.AccessDenied("user denied consent", nil)
}

// ExchangeRequest is the parsed `/token` form body per §6.
type ExchangeRequest struct {
	GrantType    string
	Code         string
	RedirectURI  string
	ClientID     string
	CodeVerifier string
}

// TokenResponse is the `/token` success body per §6.
type TokenResponse struct {
	AccessToken  string
	TokenType    string
	ExpiresIn    int64
	IDToken      string
	RefreshToken string
}

// TokenService drives the full scope→predicate→witness→prove→store→nullify→claim
// pipeline at token-exchange time (§4.9) — the from-scratch implementation
// closing original_source's gap where its token() handler hardcodes
// verified=true with no proof at all.
type TokenService struct {
	codes       ports.AuthCodeRepository
	credentials ports.CredentialRepository
	nullifiers  ports.NullifierLedger
	proofStore  ports.ProofStore
	prover      ports.ProverBackend
	verifier    ports.Verifier
	witness     *WitnessBuilder
	scopeMapper *ScopeMapper
	issuer      *oidc.TokenIssuer
	issuerURL   string
	accessTTL   time.Duration
	now         func() time.Time
}

// NewTokenService constructs a TokenService.
func NewTokenService(
	codes ports.AuthCodeRepository,
	credentials ports.CredentialRepository,
	nullifiers ports.NullifierLedger,
	proofStore ports.ProofStore,
	prover ports.ProverBackend,
	verifier ports.Verifier,
	witness *WitnessBuilder,
	issuer *oidc.TokenIssuer,
	issuerURL string,
	accessTTL time.Duration,
) *TokenService {
	return &TokenService{
		codes:       codes,
		credentials: credentials,
		nullifiers:  nullifiers,
		proofStore:  proofStore,
		prover:      prover,
		verifier:    verifier,
		witness:     witness,
		scopeMapper: NewScopeMapper(),
		issuer:      issuer,
		issuerURL:   issuerURL,
		accessTTL:   accessTTL,
		now:         time.Now,
	}
}

// Exchange performs the authorization_code grant.
func (s *TokenService) Exchange(ctx context.Context, req ExchangeRequest) (*TokenResponse, error) {
	if req.GrantType != "authorization_code" {
		return nil, newGrantError(apperr.GrantUnsupportedGrantType, "unsupported grant_type")
	}

	now := s.now()
	ac, err := s.codes.Consume(ctx, req.Code, now)
	if err != nil {
		return nil, err
	}

	// Rigor fix over original_source: validate client_id/redirect_uri match
	// the auth code's own record before proceeding (§4.8).
	if ac.ClientID != req.ClientID || ac.RedirectURI != req.RedirectURI {
		return nil, apperr.InvalidGrant("client_id or redirect_uri mismatch", nil)
	}

	if err := verifyPKCE(ac, req.CodeVerifier); err != nil {
		return nil, err
	}

	claims := domain.IDTokenClaims{
		Issuer:    s.issuerURL,
		Subject:   ac.SubjectID,
		Audience:  ac.ClientID,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(s.accessTTL).Unix(),
		Nonce:     ac.Nonce,
	}

	creds, err := s.credentials.GetBySubject(ctx, ac.SubjectID)
	if err != nil {
		if appErr, ok := apperr.As(err); !ok || appErr.Kind != apperr.KindResource {
			return nil, apperr.ServerError("credential lookup failed", err)
		}
		creds = nil // subject has no credentials on file; predicates fall through to unverified claims
	}

	predicates := s.scopeMapper.ParseScopeString(strings.Join(ac.Scopes, " "))
	for _, predicate := range predicates {
		claim, err := s.satisfyPredicate(ctx, predicate, creds, ac, now)
		if err != nil {
			return nil, err
		}
		attachClaim(&claims, predicate.Kind, claim)
	}

	idToken, err := s.issuer.Sign(ctx, claims)
	if err != nil {
		return nil, err
	}
	accessToken, err := s.issuer.Sign(ctx, claims)
	if err != nil {
		return nil, err
	}

	return &TokenResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.accessTTL.Seconds()),
		IDToken:     idToken,
	}, nil
}

// satisfyPredicate runs one predicate's full witness→prove→store→nullify
// pipeline, implementing the three dispositions of §4.9.
func (s *TokenService) satisfyPredicate(ctx context.Context, predicate domain.ClaimPredicate, creds []*domain.Credential, ac *domain.AuthCode, now time.Time) (domain.ZKClaim, error) {
	claim := domain.ZKClaim{CircuitVersion: string(predicate.CircuitID())}
	annotatePredicate(&claim, predicate)

	cred := selectCredential(creds, predicate)
	issuer, err := s.resolveIssuer(ctx, cred)
	if err != nil {
		return claim, nil // disposition: witness-stage failure -> verified=false, no proof_ref
	}

	userSecret := subjectSecret(ac.SubjectID, cred)
	// The nullifier's replay scope is (domain=client, nonce); the OIDC
	// request nonce is the natural source for it, since a relying party
	// supplies a fresh one per login attempt to scope id_token replay
	// protection, the same property the ZK nullifier needs (§3).
	nonce := fcrypto.SHA3_256([]byte(ac.Nonce))

	witness, err := s.witness.Build(ctx, predicate, cred, issuer, userSecret, ac.ClientID, nonce[:], leafIndexFor(cred), now)
	if err != nil {
		log.Warn(ctx, "witness build failed, emitting unverified claim", "err", err, "circuit", predicate.CircuitID())
		return claim, nil
	}

	proveResult, err := s.prover.Prove(ctx, predicate.CircuitID(), witness.Private, witness.Public)
	if err != nil {
		return claim, apperr.ProofFailed("proof build failed", err)
	}

	verification, err := s.verifier.Verify(ctx, predicate.CircuitID(), proveResult.ProofBytes, witness.Public)
	if err != nil || !verification.Valid {
		return claim, apperr.ProofFailed("proof failed self-verification", err)
	}

	stored, err := s.proofStore.Store(ctx, predicate.CircuitID(), proveResult.ProofBytes, s.accessTTL)
	if err != nil {
		return claim, apperr.ProofFailed("proof store write failed", err)
	}

	nullifierHash, err := fcrypto.DeriveNullifier(cred.Commitment, userSecret, ac.ClientID, nonce[:])
	if err != nil {
		return claim, apperr.ProofFailed("nullifier derivation failed", err)
	}
	if err := s.nullifiers.Insert(ctx, nullifierHash, ac.ClientID, predicate.CircuitID()); err != nil {
		return claim, err // apperr.NullifierReplay already carries invalid_grant
	}

	claim.Verified = true
	claim.ProofRef = &domain.ProofRef{ID: stored.ID, Hash: hex.EncodeToString(stored.Hash[:])}
	return claim, nil
}

func (s *TokenService) resolveIssuer(ctx context.Context, cred *domain.Credential) (*domain.IssuerInfo, error) {
	if cred == nil {
		return nil, apperr.Credential("no matching credential for predicate", nil)
	}
	return s.credentials.Issuer(ctx, cred.Issuer)
}

// selectCredential picks the subject's credential best matching predicate's
// schema requirement. Returns nil when none match.
func selectCredential(creds []*domain.Credential, predicate domain.ClaimPredicate) *domain.Credential {
	wantSchema := func() domain.CredentialType {
		switch predicate.Kind {
		case domain.PredicateAgeAtLeast:
			return domain.CredentialIdentityV1
		case domain.PredicateKycStatus:
			return domain.CredentialKYCV1
		case domain.PredicateHoldsCredential:
			if predicate.CredentialType != "" && predicate.CredentialType != "*" {
				return domain.CredentialType(predicate.CredentialType)
			}
		}
		return ""
	}()

	for _, c := range creds {
		if wantSchema == "" || c.Schema == wantSchema {
			return c
		}
	}
	return nil
}

// subjectSecret derives a deterministic per-subject witness secret. The
// distilled HTTP surface has no channel for a wallet-held user_secret to
// reach this server (the full protocol's wallet-side key exchange is out of
// this OIDC surface's scope), so this demo-issuer server derives one
// deterministically from the subject and credential identifiers instead of
// requiring an additional out-of-band secret registry.
func subjectSecret(subjectID string, cred *domain.Credential) []byte {
	if cred == nil {
		h := fcrypto.SHA3_256([]byte(subjectID))
		return h[:]
	}
	h := fcrypto.SHA3_256(append([]byte(subjectID), cred.ID[:]...))
	return h[:]
}

// leafIndexFor derives a stable Merkle leaf index from the credential's ID,
// since no explicit registry-assignment channel exists in the HTTP surface.
func leafIndexFor(cred *domain.Credential) uint64 {
	if cred == nil {
		return 0
	}
	h := fcrypto.SHA3_256(cred.ID[:])
	var idx uint64
	for _, b := range h[:8] {
		idx = idx<<8 | uint64(b)
	}
	return idx
}

func annotatePredicate(claim *domain.ZKClaim, p domain.ClaimPredicate) {
	switch p.Kind {
	case domain.PredicateAgeAtLeast:
		t := p.Threshold
		claim.Threshold = &t
	case domain.PredicateHoldsCredential:
		t := p.CredentialType
		claim.CredentialType = &t
	case domain.PredicateKycStatus:
		lvl := kycLevelName(p.Level)
		claim.Level = &lvl
	case domain.PredicateSetMembership:
		set := p.SetID
		claim.SetID = &set
	}
}

func attachClaim(claims *domain.IDTokenClaims, kind domain.PredicateKind, claim domain.ZKClaim) {
	switch kind {
	case domain.PredicateAgeAtLeast:
		claims.AgeClaim = &claim
	case domain.PredicateKycStatus:
		claims.KycClaim = &claim
	case domain.PredicateHoldsCredential:
		claims.CredentialClaim = &claim
	case domain.PredicateSetMembership:
		claims.SetMembershipClaim = &claim
	}
}

// verifyPKCE checks RFC 7636 S256 when the auth code carries a
// code_challenge; a missing/mismatched verifier rejects with invalid_grant.
func verifyPKCE(ac *domain.AuthCode, verifier string) error {
	if ac.CodeChallenge == "" {
		return nil
	}
	if verifier == "" {
		return apperr.InvalidGrant("code_verifier required", nil)
	}
	sum := sha256.Sum256([]byte(verifier))
	computed := base64.RawURLEncoding.EncodeToString(sum[:])
	if subtle.ConstantTimeCompare([]byte(computed), []byte(ac.CodeChallenge)) != 1 {
		return apperr.InvalidGrant("code_verifier does not match code_challenge", nil)
	}
	return nil
}

func newGrantError(grant apperr.GrantError, desc string) *apperr.Error {
	switch grant {
	case apperr.GrantUnsupportedGrantType:
		return &apperr.Error{Kind: apperr.KindInput, Status: http.StatusBadRequest, Grant: grant, Description: desc}
	default:
		return apperr.Input(desc, nil)
	}
}
