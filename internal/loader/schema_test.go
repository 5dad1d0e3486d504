package loader

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackfredericksen/fantasma/internal/core/domain"
)

func TestSchemaLoaderResolvesEmbeddedContext(t *testing.T) {
	loader := NewSchemaLoader("")
	doc, err := loader.LoadDocument(contextURL(domain.CredentialIdentityV1))
	require.NoError(t, err)

	asMap, ok := doc.Document.(map[string]interface{})
	require.True(t, ok)
	_, hasContext := asMap["@context"]
	assert.True(t, hasContext)
}

func TestCredentialSchemaIDMatchesContextURL(t *testing.T) {
	schema := CredentialSchema(domain.CredentialKYCV1)
	assert.Equal(t, contextURL(domain.CredentialKYCV1), schema.ID)
	assert.Equal(t, "JsonSchemaValidator2018", schema.Type)
}

func TestExpandRunsOverEmbeddedContext(t *testing.T) {
	loader := NewSchemaLoader("")
	var doc map[string]interface{}
	raw := `{"@context": ` + mustContextOnly(t, domain.CredentialIdentityV1) + `, "birthdate_yyyymmdd": 20000101}`
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	expanded, err := Expand(context.Background(), loader, doc)
	require.NoError(t, err)
	assert.NotEmpty(t, expanded)
}

func mustContextOnly(t *testing.T, credType domain.CredentialType) string {
	t.Helper()
	return `"` + contextURL(credType) + `"`
}
