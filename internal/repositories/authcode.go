// Package repositories implements the ports interfaces over both an
// in-memory backend (the default — no database required, per the spec's
// "in-memory and relational are both acceptable" persistence model) and a
// relational backend over internal/db, following the teacher's
// constructor-per-entity repository pattern.
package repositories

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jackfredericksen/fantasma/internal/apperr"
	"github.com/jackfredericksen/fantasma/internal/core/domain"
	dblib "github.com/jackfredericksen/fantasma/internal/db"
)

// MemoryAuthCodeRepository implements ports.AuthCodeRepository with a
// single exclusive-writer map, matching the spec's own "single
// exclusive-writer map" in-memory design.
type MemoryAuthCodeRepository struct {
	mu    sync.Mutex
	codes map[string]*domain.AuthCode
}

// NewMemoryAuthCodeRepository constructs an empty MemoryAuthCodeRepository.
func NewMemoryAuthCodeRepository() *MemoryAuthCodeRepository {
	return &MemoryAuthCodeRepository{codes: make(map[string]*domain.AuthCode)}
}

func (r *MemoryAuthCodeRepository) Issue(ctx context.Context, code *domain.AuthCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	code.State = domain.AuthCodeIssued
	r.codes[code.Code] = code
	return nil
}

// Consume performs an atomic find-and-mark-used: a race between two
// concurrent exchanges of the same code observes exactly one success.
func (r *MemoryAuthCodeRepository) Consume(ctx context.Context, code string, now time.Time) (*domain.AuthCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ac, ok := r.codes[code]
	if !ok {
		return nil, apperr.InvalidGrant("auth code not found", nil)
	}
	if ac.State == domain.AuthCodeConsumed {
		return nil, apperr.InvalidGrant("auth code already consumed", nil)
	}
	if ac.Expired(now) {
		return nil, apperr.InvalidGrant("auth code expired", nil)
	}

	ac.State = domain.AuthCodeConsumed
	consumedAt := now
	ac.ConsumedAt = &consumedAt
	return ac, nil
}

func (r *MemoryAuthCodeRepository) CleanupExpired(ctx context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for code, ac := range r.codes {
		if ac.State != domain.AuthCodeConsumed && ac.Expired(now) {
			delete(r.codes, code)
			count++
		}
	}
	return count, nil
}

// Count reports the number of auth codes currently tracked — used by the
// admin stats route.
func (r *MemoryAuthCodeRepository) Count(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.codes), nil
}

// PostgresAuthCodeRepository implements ports.AuthCodeRepository using SQL
// atomicity (UPDATE ... WHERE code = $1 AND consumed_at IS NULL RETURNING
// ...) instead of an in-process mutex.
type PostgresAuthCodeRepository struct {
	storage *dblib.Storage
}

// NewPostgresAuthCodeRepository constructs a PostgresAuthCodeRepository.
func NewPostgresAuthCodeRepository(storage *dblib.Storage) *PostgresAuthCodeRepository {
	return &PostgresAuthCodeRepository{storage: storage}
}

func (r *PostgresAuthCodeRepository) Issue(ctx context.Context, code *domain.AuthCode) error {
	code.State = domain.AuthCodeIssued
	_, err := r.storage.Pgx.Exec(ctx,
		`INSERT INTO auth_codes (code, client_id, redirect_uri, scopes, nonce, subject_id, code_challenge, code_challenge_method, issued_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		code.Code, code.ClientID, code.RedirectURI, strings.Join(code.Scopes, " "), code.Nonce, code.SubjectID,
		code.CodeChallenge, code.CodeChallengeMethod, code.IssuedAt, code.ExpiresAt)
	if err != nil {
		return apperr.ServerError("auth code insert failed", err)
	}
	return nil
}

func (r *PostgresAuthCodeRepository) Consume(ctx context.Context, code string, now time.Time) (*domain.AuthCode, error) {
	row := r.storage.Pgx.QueryRow(ctx,
		`UPDATE auth_codes SET consumed_at = $2
		 WHERE code = $1 AND consumed_at IS NULL AND expires_at > $2
		 RETURNING client_id, redirect_uri, scopes, nonce, subject_id, code_challenge, code_challenge_method, issued_at, expires_at`,
		code, now)

	var ac domain.AuthCode
	ac.Code = code
	var scopes string
	if err := row.Scan(&ac.ClientID, &ac.RedirectURI, &scopes, &ac.Nonce, &ac.SubjectID,
		&ac.CodeChallenge, &ac.CodeChallengeMethod, &ac.IssuedAt, &ac.ExpiresAt); err != nil {
		if dblib.IsNoRows(err) {
			return nil, apperr.InvalidGrant("auth code not found, expired, or already consumed", nil)
		}
		return nil, apperr.ServerError("auth code consumption failed", err)
	}

	ac.Scopes = strings.Fields(scopes)
	ac.State = domain.AuthCodeConsumed
	ac.ConsumedAt = &now
	return &ac, nil
}

// Count reports the total number of auth-code rows — used by the admin
// stats route.
func (r *PostgresAuthCodeRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.storage.Pgx.QueryRow(ctx, `SELECT count(*) FROM auth_codes`).Scan(&count); err != nil {
		return 0, apperr.ServerError("auth code count failed", err)
	}
	return count, nil
}

func (r *PostgresAuthCodeRepository) CleanupExpired(ctx context.Context, now time.Time) (int, error) {
	tag, err := r.storage.Pgx.Exec(ctx,
		`DELETE FROM auth_codes WHERE consumed_at IS NULL AND expires_at < $1`, now)
	if err != nil {
		return 0, apperr.ServerError("auth code cleanup failed", err)
	}
	return int(tag.RowsAffected()), nil
}
