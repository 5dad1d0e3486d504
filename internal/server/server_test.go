package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackfredericksen/fantasma/internal/config"
	"github.com/jackfredericksen/fantasma/internal/core/domain"
	"github.com/jackfredericksen/fantasma/internal/core/services"
	fcrypto "github.com/jackfredericksen/fantasma/internal/crypto"
	"github.com/jackfredericksen/fantasma/internal/kms"
	"github.com/jackfredericksen/fantasma/internal/oidc"
	"github.com/jackfredericksen/fantasma/internal/proofstore"
	"github.com/jackfredericksen/fantasma/internal/ratelimit"
	"github.com/jackfredericksen/fantasma/internal/repositories"
	"github.com/jackfredericksen/fantasma/internal/stark"
)

const (
	testClientID    = "demo-client"
	testRedirectURI = "http://localhost:8080/callback"
)

func newTestFixture(t *testing.T) (*httptest.Server, *Dependencies) {
	t.Helper()
	ctx := context.Background()

	clients := repositories.NewMemoryClientRepository()
	authCodes := repositories.NewMemoryAuthCodeRepository()
	credentials := repositories.NewMemoryCredentialRepository()
	nullifiers := repositories.NewMemoryNullifierLedger()
	proofStore := proofstore.NewMemoryStore()
	prover := stark.NewMockBackend()
	verifier := stark.NewVerifierService(prover)
	merkle := fcrypto.NewMerkleRegistry()
	witness := services.NewWitnessBuilder(merkle)

	keyProvider := kms.NewLocal(filepath.Join(t.TempDir(), "signing.key"), "test-passphrase")
	require.NoError(t, keyProvider.Init(ctx))
	issuer := oidc.NewTokenIssuer(keyProvider)

	seedAliceCredentials(t, credentials)

	tokens := services.NewTokenService(authCodes, credentials, nullifiers, proofStore, prover, verifier, witness, issuer, "https://issuer.example", time.Hour)
	auth := services.NewAuthorizationService(clients, authCodes, 10*time.Minute)

	cfg := &config.Configuration{}
	cfg.Admin.Key = "test-admin-key"

	deps := &Dependencies{
		Config:     cfg,
		Auth:       auth,
		Tokens:     tokens,
		Issuer:     issuer,
		Clients:    clients,
		AuthCodes:  authCodes,
		Nullifiers: nullifiers,
		Proofs:     proofStore,
		Merkle:     merkle,
		Limiter:    ratelimit.NewMemoryLimiter(ratelimit.Config{MaxRequests: 1000, Window: time.Minute, Burst: 1000}),
	}

	srv := httptest.NewServer(NewRouter(deps))
	t.Cleanup(srv.Close)
	return srv, deps
}

func seedAliceCredentials(t *testing.T, creds *repositories.MemoryCredentialRepository) {
	t.Helper()
	issuerInfo := &domain.IssuerInfo{
		ID: "demo-issuer", Name: "Demo Issuer", PublicKey: []byte("demo-issuer-pubkey"),
		TrustAnchor:      domain.TrustAnchorGovernment,
		SupportedSchemas: []domain.CredentialType{domain.CredentialIdentityV1, domain.CredentialKYCV1},
		Trusted:          true,
	}
	require.NoError(t, creds.RegisterIssuer(context.Background(), issuerInfo))

	creds.Seed("demo-user:alice", &domain.Credential{
		ID: [32]byte{1}, Issuer: issuerInfo.ID, Schema: domain.CredentialIdentityV1,
		Body:           domain.IdentityBody{BirthdateYYYYMMDD: 19900515},
		CommitmentSalt: [32]byte{2}, Commitment: [32]byte{3},
		Signature: []byte("sig"), SignatureAlg: "ed25519", IssuedAt: time.Now(),
	})
	creds.Seed("demo-user:alice", &domain.Credential{
		ID: [32]byte{4}, Issuer: issuerInfo.ID, Schema: domain.CredentialKYCV1,
		Body:           domain.KYCBody{Provider: "demo-kyc", Level: domain.KYCLevelBasic, VerifiedAtUnix: uint64(time.Now().Unix())},
		CommitmentSalt: [32]byte{5}, Commitment: [32]byte{6},
		Signature: []byte("sig"), SignatureAlg: "ed25519", IssuedAt: time.Now(),
	})
}

// runAuthorizeConsentFlow drives /authorize/consent directly (skipping the
// GET /authorize render step, which is a pure presentation concern already
// exercised by TestHandleAuthorizeRendersConsentPage) and returns the auth
// code minted on approval, or the error query params on denial.
func runAuthorizeConsentFlow(t *testing.T, srv *httptest.Server, demoUser, action string) url.Values {
	t.Helper()
	form := url.Values{
		"client_id":             {testClientID},
		"redirect_uri":          {testRedirectURI},
		"scope":                 {"openid zk:age:18+ zk:kyc:basic"},
		"state":                 {"xyz"},
		"nonce":                 {"nonce-1"},
		"action":                {action},
		"demo_user":             {demoUser},
	}

	client := &http.Client{CheckRedirect: func(req *http.Request, via []*http.Request) error { return http.ErrUseLastResponse }}
	resp, err := client.PostForm(srv.URL+"/authorize/consent", form)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusFound, resp.StatusCode)
	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	return loc.Query()
}

func exchangeToken(t *testing.T, srv *httptest.Server, code string) (*http.Response, map[string]any) {
	t.Helper()
	form := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"redirect_uri":  {testRedirectURI},
		"client_id":     {testClientID},
	}
	resp, err := http.PostForm(srv.URL+"/token", form)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &body))
	}
	return resp, body
}

func decodeIDTokenClaims(t *testing.T, idToken string) domain.IDTokenClaims {
	t.Helper()
	parts := strings.Split(idToken, ".")
	require.Len(t, parts, 3)
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	var claims domain.IDTokenClaims
	require.NoError(t, json.Unmarshal(payload, &claims))
	return claims
}

func TestScenarioAliceVerifiedAgeAndKYC(t *testing.T) {
	srv, _ := newTestFixture(t)

	q := runAuthorizeConsentFlow(t, srv, "alice", "approve")
	require.NotEmpty(t, q.Get("code"))
	assert.Equal(t, "xyz", q.Get("state"))

	resp, body := exchangeToken(t, srv, q.Get("code"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	claims := decodeIDTokenClaims(t, body["id_token"].(string))
	require.NotNil(t, claims.AgeClaim)
	assert.True(t, claims.AgeClaim.Verified)
	require.NotNil(t, claims.KycClaim)
	assert.True(t, claims.KycClaim.Verified)
}

func TestScenarioBobUnverifiedAge(t *testing.T) {
	srv, _ := newTestFixture(t)

	q := runAuthorizeConsentFlow(t, srv, "bob", "approve")
	require.NotEmpty(t, q.Get("code"))

	resp, body := exchangeToken(t, srv, q.Get("code"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	claims := decodeIDTokenClaims(t, body["id_token"].(string))
	require.NotNil(t, claims.AgeClaim)
	assert.False(t, claims.AgeClaim.Verified)
}

func TestScenarioDeniedConsentRedirectsWithAccessDenied(t *testing.T) {
	srv, _ := newTestFixture(t)
	q := runAuthorizeConsentFlow(t, srv, "alice", "deny")
	assert.Equal(t, "access_denied", q.Get("error"))
}

func TestScenarioInvalidCodeRejectedWithBadRequest(t *testing.T) {
	srv, _ := newTestFixture(t)
	resp, body := exchangeToken(t, srv, "not-a-real-code")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_grant", body["error"])
}

func TestScenarioConcurrentSameCodeExactlyOneSucceeds(t *testing.T) {
	srv, _ := newTestFixture(t)
	q := runAuthorizeConsentFlow(t, srv, "alice", "approve")
	code := q.Get("code")

	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, _ := exchangeToken(t, srv, code)
			if resp.StatusCode == http.StatusOK {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, successes)
}

func TestScenarioProofSubmitFetchAndNotFound(t *testing.T) {
	srv, _ := newTestFixture(t)

	submitBody := strings.NewReader(`{"proof_bytes":"YWJjZA==","circuit_type":"age_verification_v1"}`)
	resp, err := http.Post(srv.URL+"/proofs", "application/json", submitBody)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	proofID := created["proof_id"].(string)
	require.NotEmpty(t, proofID)

	getResp, err := http.Get(srv.URL + "/proofs/" + proofID)
	require.NoError(t, err)
	defer getResp.Body.Close()
	assert.Equal(t, http.StatusOK, getResp.StatusCode)

	missingResp, err := http.Get(srv.URL + "/proofs/does-not-exist")
	require.NoError(t, err)
	defer missingResp.Body.Close()
	assert.Equal(t, http.StatusNotFound, missingResp.StatusCode)
}

func TestScenarioAdminStatsKeyGating(t *testing.T) {
	srv, deps := newTestFixture(t)

	noKeyResp, err := http.Get(srv.URL + "/admin/stats")
	require.NoError(t, err)
	defer noKeyResp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, noKeyResp.StatusCode)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/admin/stats", nil)
	req.Header.Set("X-Admin-Key", deps.Config.Admin.Key)
	okResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer okResp.Body.Close()
	assert.Equal(t, http.StatusOK, okResp.StatusCode)

	deps.Config.Admin.Key = ""
	req2, _ := http.NewRequest(http.MethodGet, srv.URL+"/admin/stats", nil)
	req2.Header.Set("X-Admin-Key", "test-admin-key")
	unavailableResp, err := http.DefaultClient.Do(req2)
	require.NoError(t, err)
	defer unavailableResp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, unavailableResp.StatusCode)
}
