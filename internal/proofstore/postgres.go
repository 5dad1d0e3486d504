package proofstore

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jackfredericksen/fantasma/internal/apperr"
	"github.com/jackfredericksen/fantasma/internal/core/domain"
	dblib "github.com/jackfredericksen/fantasma/internal/db"
	fcrypto "github.com/jackfredericksen/fantasma/internal/crypto"
)

// PostgresStore is the relational proof store: a table keyed by proof_id
// with an expires_at index, satisfying the same contract as MemoryStore.
type PostgresStore struct {
	storage *dblib.Storage
	now     func() time.Time
}

// NewPostgresStore constructs a PostgresStore over an already-migrated
// Storage.
func NewPostgresStore(storage *dblib.Storage) *PostgresStore {
	return &PostgresStore{storage: storage, now: time.Now}
}

func (s *PostgresStore) Store(ctx context.Context, circuit domain.CircuitID, bytes []byte, ttl time.Duration) (*domain.StoredProof, error) {
	now := s.now()
	p := &domain.StoredProof{
		ID:        uuid.NewString(),
		Bytes:     bytes,
		Hash:      fcrypto.SHA3_256(bytes),
		CircuitID: circuit,
		StoredAt:  now,
		ExpiresAt: now.Add(ttl),
	}

	_, err := s.storage.Pgx.Exec(ctx,
		`INSERT INTO proofs (id, bytes, hash, circuit_id, stored_at, expires_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.Bytes, p.Hash[:], string(p.CircuitID), p.StoredAt, p.ExpiresAt)
	if err != nil {
		return nil, apperr.ServerError("proof insert failed", err)
	}
	return p, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*domain.StoredProof, error) {
	row := s.storage.Pgx.QueryRow(ctx,
		`SELECT bytes, hash, circuit_id, url, stored_at, expires_at FROM proofs WHERE id = $1`, id)

	var p domain.StoredProof
	p.ID = id
	var hash []byte
	var circuitID, url string
	if err := row.Scan(&p.Bytes, &hash, &circuitID, &url, &p.StoredAt, &p.ExpiresAt); err != nil {
		if dblib.IsNoRows(err) {
			return nil, apperr.NotFound("proof not found", nil)
		}
		return nil, apperr.ServerError("proof fetch failed", err)
	}
	copy(p.Hash[:], hash)
	p.CircuitID = domain.CircuitID(circuitID)
	p.URL = url

	if p.Expired(s.now()) {
		return nil, apperr.NotFound("proof expired", nil)
	}
	return &p, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	_, err := s.storage.Pgx.Exec(ctx, `DELETE FROM proofs WHERE id = $1`, id)
	if err != nil {
		return apperr.ServerError("proof delete failed", err)
	}
	return nil
}

// Count reports the total number of proof rows — used by the admin stats
// route.
func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.storage.Pgx.QueryRow(ctx, `SELECT count(*) FROM proofs`).Scan(&count); err != nil {
		return 0, apperr.ServerError("proof count failed", err)
	}
	return count, nil
}

func (s *PostgresStore) CleanupExpired(ctx context.Context) (int, error) {
	tag, err := s.storage.Pgx.Exec(ctx, `DELETE FROM proofs WHERE expires_at < $1`, s.now())
	if err != nil {
		return 0, apperr.ServerError("proof cleanup failed", err)
	}
	return int(tag.RowsAffected()), nil
}
