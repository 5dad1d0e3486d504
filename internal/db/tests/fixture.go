// Package tests provides fixture storage construction for repository tests
// requiring a real database connection, mirroring the teacher's own
// internal/repositories test-fixture convention.
package tests

import (
	"context"
	"os"
	"testing"

	"github.com/jackfredericksen/fantasma/internal/db"
)

// NewFixtureStorage connects to TEST_DATABASE_URL (skipping the test when
// unset) and registers a t.Cleanup that closes the pool.
func NewFixtureStorage(t *testing.T) *db.Storage {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping database-backed test")
	}

	ctx := context.Background()
	storage, err := db.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connecting to test database: %v", err)
	}

	t.Cleanup(storage.Close)
	return storage
}
