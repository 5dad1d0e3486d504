package repositories

import (
	"context"
	"sync"

	"github.com/jackfredericksen/fantasma/internal/apperr"
	"github.com/jackfredericksen/fantasma/internal/core/domain"
	dblib "github.com/jackfredericksen/fantasma/internal/db"
)

// MemoryNullifierLedger implements ports.NullifierLedger with a
// uniqueness-constrained in-memory set, linearizable under a single mutex.
// Global uniqueness on hash is enforced (the resolved Open Question):
// exists_for_domain remains a secondary, non-authoritative query.
type MemoryNullifierLedger struct {
	mu      sync.Mutex
	byHash  map[[32]byte]*domain.Nullifier
}

// NewMemoryNullifierLedger constructs an empty MemoryNullifierLedger.
func NewMemoryNullifierLedger() *MemoryNullifierLedger {
	return &MemoryNullifierLedger{byHash: make(map[[32]byte]*domain.Nullifier)}
}

func (l *MemoryNullifierLedger) Insert(ctx context.Context, hash [32]byte, domainName string, circuit domain.CircuitID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.byHash[hash]; exists {
		return apperr.NullifierReplay("nullifier already recorded", nil)
	}
	l.byHash[hash] = &domain.Nullifier{Hash: hash, Domain: domainName, Circuit: circuit}
	return nil
}

func (l *MemoryNullifierLedger) Exists(ctx context.Context, hash [32]byte) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.byHash[hash]
	return ok, nil
}

func (l *MemoryNullifierLedger) ExistsForDomain(ctx context.Context, hash [32]byte, domainName string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	n, ok := l.byHash[hash]
	return ok && n.Domain == domainName, nil
}

// Count reports the number of nullifiers recorded — used by the admin
// stats route.
func (l *MemoryNullifierLedger) Count(ctx context.Context) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.byHash), nil
}

// PostgresNullifierLedger implements ports.NullifierLedger with a unique
// index on hash (global uniqueness, per the resolved Open Question) plus
// transactional insertion alongside auth-code consumption.
type PostgresNullifierLedger struct {
	storage *dblib.Storage
}

// NewPostgresNullifierLedger constructs a PostgresNullifierLedger.
func NewPostgresNullifierLedger(storage *dblib.Storage) *PostgresNullifierLedger {
	return &PostgresNullifierLedger{storage: storage}
}

func (l *PostgresNullifierLedger) Insert(ctx context.Context, hash [32]byte, domainName string, circuit domain.CircuitID) error {
	_, err := l.storage.Pgx.Exec(ctx,
		`INSERT INTO nullifiers (hash, domain, circuit, created_at) VALUES ($1, $2, $3, now())`,
		hash[:], domainName, string(circuit))
	if err != nil {
		// A unique-constraint violation on the hash column is a replay.
		return apperr.NullifierReplay("nullifier already recorded", err)
	}
	return nil
}

func (l *PostgresNullifierLedger) Exists(ctx context.Context, hash [32]byte) (bool, error) {
	var count int
	err := l.storage.Pgx.QueryRow(ctx, `SELECT count(*) FROM nullifiers WHERE hash = $1`, hash[:]).Scan(&count)
	if err != nil {
		return false, apperr.ServerError("nullifier lookup failed", err)
	}
	return count > 0, nil
}

func (l *PostgresNullifierLedger) ExistsForDomain(ctx context.Context, hash [32]byte, domainName string) (bool, error) {
	var count int
	err := l.storage.Pgx.QueryRow(ctx, `SELECT count(*) FROM nullifiers WHERE hash = $1 AND domain = $2`, hash[:], domainName).Scan(&count)
	if err != nil {
		return false, apperr.ServerError("nullifier lookup failed", err)
	}
	return count > 0, nil
}

// Count reports the total number of nullifier rows — used by the admin
// stats route.
func (l *PostgresNullifierLedger) Count(ctx context.Context) (int, error) {
	var count int
	if err := l.storage.Pgx.QueryRow(ctx, `SELECT count(*) FROM nullifiers`).Scan(&count); err != nil {
		return 0, apperr.ServerError("nullifier count failed", err)
	}
	return count, nil
}
