package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackfredericksen/fantasma/internal/core/domain"
)

func TestMemoryCredentialRepositorySeedAndFetch(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryCredentialRepository()

	cred := &domain.Credential{
		Issuer: "did:iden3:fantasma:demo-issuer",
		Schema: domain.CredentialIdentityV1,
		Body:   domain.IdentityBody{BirthdateYYYYMMDD: 20000101},
	}
	repo.Seed("user-1", cred)

	got, err := repo.GetBySubject(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	body, ok := got[0].Body.(domain.IdentityBody)
	require.True(t, ok)
	assert.Equal(t, uint32(20000101), body.BirthdateYYYYMMDD)
}

func TestMemoryCredentialRepositoryMissingSubject(t *testing.T) {
	repo := NewMemoryCredentialRepository()
	_, err := repo.GetBySubject(context.Background(), "nobody")
	assert.Error(t, err)
}

func TestMemoryCredentialRepositoryIssuerRegistry(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryCredentialRepository()

	issuer := &domain.IssuerInfo{
		ID:          "demo-issuer",
		Name:        "Demo Issuer",
		TrustAnchor: domain.TrustAnchorGovernment,
		Trusted:     true,
	}
	require.NoError(t, repo.RegisterIssuer(ctx, issuer))

	got, err := repo.Issuer(ctx, "demo-issuer")
	require.NoError(t, err)
	assert.Equal(t, "Demo Issuer", got.Name)
	assert.Equal(t, "did:iden3:fantasma:demo-issuer", got.DID())

	_, err = repo.Issuer(ctx, "unknown-issuer")
	assert.Error(t, err)
}

func TestBodyJSONRoundTrip(t *testing.T) {
	body := domain.KYCBody{Provider: "jumio", Level: domain.KYCLevelEnhanced, VerifiedAtUnix: uint64(time.Now().Unix())}
	raw, err := bodyJSON(domain.CredentialKYCV1, body)
	require.NoError(t, err)

	decoded, err := bodyFromJSON(domain.CredentialKYCV1, raw)
	require.NoError(t, err)
	kyc, ok := decoded.(domain.KYCBody)
	require.True(t, ok)
	assert.Equal(t, body.Provider, kyc.Provider)
	assert.Equal(t, body.Level, kyc.Level)
}
