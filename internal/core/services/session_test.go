package services

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackfredericksen/fantasma/internal/apperr"
	"github.com/jackfredericksen/fantasma/internal/core/domain"
	fcrypto "github.com/jackfredericksen/fantasma/internal/crypto"
	"github.com/jackfredericksen/fantasma/internal/kms"
	"github.com/jackfredericksen/fantasma/internal/oidc"
	"github.com/jackfredericksen/fantasma/internal/proofstore"
	"github.com/jackfredericksen/fantasma/internal/repositories"
	"github.com/jackfredericksen/fantasma/internal/stark"
)

type sessionFixture struct {
	clients     *repositories.MemoryClientRepository
	codes       *repositories.MemoryAuthCodeRepository
	credentials *repositories.MemoryCredentialRepository
	nullifiers  *repositories.MemoryNullifierLedger
	tokens      *TokenService
	auth        *AuthorizationService
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()
	ctx := context.Background()

	clients := repositories.NewMemoryClientRepository()
	codes := repositories.NewMemoryAuthCodeRepository()
	credentials := repositories.NewMemoryCredentialRepository()
	nullifiers := repositories.NewMemoryNullifierLedger()
	proofStore := proofstore.NewMemoryStore()
	prover := stark.NewMockBackend()
	verifier := stark.NewVerifierService(prover)
	merkle := fcrypto.NewMerkleRegistry()
	witness := NewWitnessBuilder(merkle)

	keyProvider := kms.NewLocal(filepath.Join(t.TempDir(), "signing.key"), "test-passphrase")
	require.NoError(t, keyProvider.Init(ctx))
	issuer := oidc.NewTokenIssuer(keyProvider)

	tokens := NewTokenService(codes, credentials, nullifiers, proofStore, prover, verifier, witness, issuer, "https://issuer.example", time.Hour)
	auth := NewAuthorizationService(clients, codes, 10*time.Minute)

	return &sessionFixture{clients: clients, codes: codes, credentials: credentials, nullifiers: nullifiers, tokens: tokens, auth: auth}
}

func seedIdentityCredential(f *sessionFixture, subjectID string) *domain.Credential {
	issuer := &domain.IssuerInfo{
		ID: "gov-issuer", Name: "Gov", PublicKey: []byte("gov-pubkey"),
		TrustAnchor: domain.TrustAnchorGovernment, SupportedSchemas: []domain.CredentialType{domain.CredentialIdentityV1}, Trusted: true,
	}
	_ = f.credentials.RegisterIssuer(context.Background(), issuer)

	cred := &domain.Credential{
		ID: [32]byte{1, 2, 3}, Issuer: "gov-issuer", Schema: domain.CredentialIdentityV1,
		Body:           domain.IdentityBody{BirthdateYYYYMMDD: 19900101},
		CommitmentSalt: [32]byte{4, 5, 6}, Commitment: [32]byte{7, 8, 9},
		Signature: []byte("sig"), SignatureAlg: "ed25519", IssuedAt: time.Now(),
	}
	f.credentials.Seed(subjectID, cred)
	return cred
}

func TestAuthorizationServiceApproveIssuesCode(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	req := AuthorizeRequest{
		ResponseType: "code", ClientID: "demo-relying-party", RedirectURI: "https://relay.example.com/callback",
		Scope: "openid zk:age:18+", Nonce: "session-nonce-1",
	}
	ac, err := f.auth.Approve(ctx, req, "subject-1", "")
	require.NoError(t, err)
	assert.Len(t, ac.Code, 32)
	assert.Equal(t, domain.AuthCodeIssued, ac.State)
}

func TestAuthorizationServiceValidateClientRejectsUnknownClient(t *testing.T) {
	f := newSessionFixture(t)
	_, err := f.auth.ValidateClient(context.Background(), AuthorizeRequest{ResponseType: "code", ClientID: "nope", RedirectURI: "https://x"})
	require.Error(t, err)
}

func TestAuthorizationServiceValidateClientRejectsBadRedirect(t *testing.T) {
	f := newSessionFixture(t)
	_, err := f.auth.ValidateClient(context.Background(), AuthorizeRequest{ResponseType: "code", ClientID: "demo-relying-party", RedirectURI: "https://evil.example.com"})
	require.Error(t, err)
}

func TestTokenServiceExchangeIssuesVerifiedAgeClaim(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	seedIdentityCredential(f, "subject-1")

	req := AuthorizeRequest{
		ResponseType: "code", ClientID: "demo-relying-party", RedirectURI: "https://relay.example.com/callback",
		Scope: "openid zk:age:18+", Nonce: "session-nonce-1",
	}
	ac, err := f.auth.Approve(ctx, req, "subject-1", "")
	require.NoError(t, err)

	resp, err := f.tokens.Exchange(ctx, ExchangeRequest{
		GrantType: "authorization_code", Code: ac.Code, RedirectURI: ac.RedirectURI, ClientID: ac.ClientID,
	})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, 3, len(strings.Split(resp.IDToken, ".")))
	assert.Positive(t, resp.ExpiresIn)
}

func TestTokenServiceExchangeRejectsClientIDMismatch(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	seedIdentityCredential(f, "subject-1")

	req := AuthorizeRequest{ResponseType: "code", ClientID: "demo-relying-party", RedirectURI: "https://relay.example.com/callback", Scope: "openid"}
	ac, err := f.auth.Approve(ctx, req, "subject-1", "")
	require.NoError(t, err)

	_, err = f.tokens.Exchange(ctx, ExchangeRequest{GrantType: "authorization_code", Code: ac.Code, RedirectURI: ac.RedirectURI, ClientID: "someone-else"})
	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.GrantInvalidGrant, appErr.Grant)
}

func TestTokenServiceExchangeEmitsUnverifiedClaimWhenNoCredential(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	// no credential seeded for this subject

	req := AuthorizeRequest{ResponseType: "code", ClientID: "demo-relying-party", RedirectURI: "https://relay.example.com/callback", Scope: "openid zk:age:21+"}
	ac, err := f.auth.Approve(ctx, req, "subject-no-creds", "")
	require.NoError(t, err)

	resp, err := f.tokens.Exchange(ctx, ExchangeRequest{GrantType: "authorization_code", Code: ac.Code, RedirectURI: ac.RedirectURI, ClientID: ac.ClientID})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.IDToken)
}

func TestTokenServiceExchangeRejectsReplayedNullifier(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	seedIdentityCredential(f, "subject-1")

	req := AuthorizeRequest{
		ResponseType: "code", ClientID: "demo-relying-party", RedirectURI: "https://relay.example.com/callback",
		Scope: "openid zk:age:18+", Nonce: "same-nonce-both-times",
	}

	ac1, err := f.auth.Approve(ctx, req, "subject-1", "")
	require.NoError(t, err)
	_, err = f.tokens.Exchange(ctx, ExchangeRequest{GrantType: "authorization_code", Code: ac1.Code, RedirectURI: ac1.RedirectURI, ClientID: ac1.ClientID})
	require.NoError(t, err)

	ac2, err := f.auth.Approve(ctx, req, "subject-1", "")
	require.NoError(t, err)
	_, err = f.tokens.Exchange(ctx, ExchangeRequest{GrantType: "authorization_code", Code: ac2.Code, RedirectURI: ac2.RedirectURI, ClientID: ac2.ClientID})
	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.GrantInvalidGrant, appErr.Grant)
}

func TestTokenServiceExchangeRejectsBadPKCEVerifier(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	ac := &domain.AuthCode{
		Code: "pkce-code-0123456789abcdef0123", ClientID: "demo-relying-party", RedirectURI: "https://relay.example.com/callback",
		Scopes: []string{"openid"}, SubjectID: "subject-1",
		CodeChallenge: "wrong-challenge-value", CodeChallengeMethod: "S256",
		IssuedAt: time.Now(), ExpiresAt: time.Now().Add(time.Minute),
	}
	require.NoError(t, f.codes.Issue(ctx, ac))

	_, err := f.tokens.Exchange(ctx, ExchangeRequest{
		GrantType: "authorization_code", Code: ac.Code, RedirectURI: ac.RedirectURI, ClientID: ac.ClientID, CodeVerifier: "some-verifier",
	})
	require.Error(t, err)
}

func TestTokenServiceExchangeRejectsUnsupportedGrantType(t *testing.T) {
	f := newSessionFixture(t)
	_, err := f.tokens.Exchange(context.Background(), ExchangeRequest{GrantType: "client_credentials"})
	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.GrantUnsupportedGrantType, appErr.Grant)
}
