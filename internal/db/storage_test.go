package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNoRowsRecognizesSQLErrNoRows(t *testing.T) {
	assert.True(t, IsNoRows(sql.ErrNoRows))
}

func TestIsNoRowsFalseForNil(t *testing.T) {
	assert.False(t, IsNoRows(nil))
}

func TestIsNoRowsFalseForOtherErrors(t *testing.T) {
	assert.False(t, IsNoRows(assert.AnError))
}
