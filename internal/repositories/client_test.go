package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackfredericksen/fantasma/internal/core/domain"
)

func TestMemoryClientRepositorySeeded(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryClientRepository()

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	c, err := repo.Get(ctx, "demo-relying-party")
	require.NoError(t, err)
	assert.True(t, c.AllowsRedirect("https://relay.example.com/callback"))
	assert.False(t, c.AllowsRedirect("https://evil.example.com/callback"))
}

func TestMemoryClientRepositoryUnknown(t *testing.T) {
	repo := NewMemoryClientRepository()
	_, err := repo.Get(context.Background(), "does-not-exist")
	assert.Error(t, err)
}

func TestMemoryClientRepositoryRegister(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryClientRepository()

	require.NoError(t, repo.Register(ctx, &domain.ClientInfo{
		ClientID:     "new-client",
		ClientName:   "New Client",
		RedirectURIs: []string{"https://new.example.com/cb"},
	}))

	c, err := repo.Get(ctx, "new-client")
	require.NoError(t, err)
	assert.Equal(t, "New Client", c.ClientName)
}
