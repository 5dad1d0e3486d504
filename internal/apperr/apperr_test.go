package apperr

import (
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvalidGrantDisposition(t *testing.T) {
	cause := errors.New("code not found")
	err := InvalidGrant("auth code invalid", cause)

	assert.Equal(t, GrantInvalidGrant, err.Grant)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Contains(t, err.Error(), "code not found")
}

func TestAsUnwrapsWrappedError(t *testing.T) {
	var err error = ProofFailed("witness build failed", errors.New("bad witness"))
	wrapped := errors.Wrap(err, "token exchange")

	got, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, KindProof, got.Kind)
	assert.Equal(t, GrantServerError, got.Grant)
}

func TestCredentialErrorNeverCarriesGrantCode(t *testing.T) {
	err := Credential("signature invalid", errors.New("bad sig"))
	assert.Empty(t, err.Grant)
}
