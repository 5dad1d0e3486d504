// Package db provides the relational persistence layer: a pgx connection
// pool wrapper, goose-driven migrations, and (in internal/db/tests) fixture
// storage constructors for tests.
package db

import (
	"context"
	"database/sql"
	"embed"

	_ "github.com/lib/pq" // database/sql driver backing goose migrations
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"

	"github.com/jackfredericksen/fantasma/internal/log"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Storage wraps the pgx connection pool used by every relational
// repository implementation.
type Storage struct {
	Pgx *pgxpool.Pool
}

// New connects to dsn and returns a ready Storage. A nil/empty dsn is not
// valid here — callers fall back to in-memory repositories instead of
// calling New, per the spec's own "either is acceptable" persistence model.
func New(ctx context.Context, dsn string) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errors.Wrap(err, "parsing database dsn")
	}

	pool, err := pgxpool.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to database")
	}

	return &Storage{Pgx: pool}, nil
}

// Close releases the underlying connection pool.
func (s *Storage) Close() {
	if s.Pgx != nil {
		s.Pgx.Close()
	}
}

// Migrate runs the embedded goose migrations against dsn using a
// database/sql handle (goose itself is sql.DB-based, not pgx-pool-based).
func Migrate(ctx context.Context, dsn string) error {
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return errors.Wrap(err, "opening database/sql handle for migrations")
	}
	defer sqlDB.Close()

	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Wrap(err, "setting goose dialect")
	}

	if err := goose.UpContext(ctx, sqlDB, "migrations"); err != nil {
		log.Error(ctx, "migration failed", "err", err)
		return errors.Wrap(err, "running migrations")
	}
	return nil
}

// IsNoRows reports whether err represents a "no rows" condition from either
// database/sql or pgconn, so repository callers don't need to know which
// driver surfaced it.
func IsNoRows(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, sql.ErrNoRows) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "P0002"
}
