package repositories

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/jackfredericksen/fantasma/internal/apperr"
	"github.com/jackfredericksen/fantasma/internal/core/domain"
	dblib "github.com/jackfredericksen/fantasma/internal/db"
)

// bodyJSON encodes/decodes a domain.Body by schema discriminator, matching
// the spec's "credential file format: JSON with fields per §3" on-disk
// shape.
func bodyJSON(schema domain.CredentialType, body domain.Body) ([]byte, error) {
	return json.Marshal(body)
}

func bodyFromJSON(schema domain.CredentialType, raw []byte) (domain.Body, error) {
	switch schema {
	case domain.CredentialIdentityV1:
		var b domain.IdentityBody
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, err
		}
		return b, nil
	case domain.CredentialKYCV1:
		var b domain.KYCBody
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, err
		}
		return b, nil
	case domain.CredentialDegreeV1:
		var b domain.DegreeBody
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, err
		}
		return b, nil
	case domain.CredentialLicenseV1:
		var b domain.LicenseBody
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, err
		}
		return b, nil
	case domain.CredentialMembershipV1:
		var b domain.MembershipBody
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, apperr.Credential("unknown credential schema", nil)
	}
}

// MemoryCredentialRepository implements ports.CredentialRepository over an
// in-memory map keyed by subject, plus an issuer registry map. Intended for
// demo/test seeding (the file-backed loader described in the spec's
// credential file format populates these maps at startup).
type MemoryCredentialRepository struct {
	mu          sync.RWMutex
	bySubject   map[string][]*domain.Credential
	issuers     map[string]*domain.IssuerInfo
}

// NewMemoryCredentialRepository constructs an empty MemoryCredentialRepository.
func NewMemoryCredentialRepository() *MemoryCredentialRepository {
	return &MemoryCredentialRepository{
		bySubject: make(map[string][]*domain.Credential),
		issuers:   make(map[string]*domain.IssuerInfo),
	}
}

// Seed registers a credential under a subject, for use by test fixtures and
// the startup loader.
func (r *MemoryCredentialRepository) Seed(subjectID string, c *domain.Credential) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bySubject[subjectID] = append(r.bySubject[subjectID], c)
}

func (r *MemoryCredentialRepository) GetBySubject(ctx context.Context, subjectID string) ([]*domain.Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	creds, ok := r.bySubject[subjectID]
	if !ok {
		return nil, apperr.NotFound("no credentials for subject", nil)
	}
	return creds, nil
}

func (r *MemoryCredentialRepository) Issuer(ctx context.Context, issuerID string) (*domain.IssuerInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	iss, ok := r.issuers[issuerID]
	if !ok {
		return nil, apperr.Credential("unknown issuer", nil)
	}
	return iss, nil
}

func (r *MemoryCredentialRepository) RegisterIssuer(ctx context.Context, issuer *domain.IssuerInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.issuers[issuer.ID] = issuer
	return nil
}

// PostgresCredentialRepository implements ports.CredentialRepository over
// the credentials and issuers tables.
type PostgresCredentialRepository struct {
	storage *dblib.Storage
}

// NewPostgresCredentialRepository constructs a PostgresCredentialRepository.
func NewPostgresCredentialRepository(storage *dblib.Storage) *PostgresCredentialRepository {
	return &PostgresCredentialRepository{storage: storage}
}

// Store persists a credential under subjectID.
func (r *PostgresCredentialRepository) Store(ctx context.Context, subjectID string, c *domain.Credential) error {
	raw, err := bodyJSON(c.Schema, c.Body)
	if err != nil {
		return apperr.ServerError("credential body encode failed", err)
	}

	_, err = r.storage.Pgx.Exec(ctx,
		`INSERT INTO credentials (id, issuer, subject_id, schema, body, commitment_salt, commitment, signature, signature_alg, issued_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		c.ID[:], c.Issuer, subjectID, string(c.Schema), raw, c.CommitmentSalt[:], c.Commitment[:], c.Signature, c.SignatureAlg, c.IssuedAt, c.ExpiresAt)
	if err != nil {
		return apperr.ServerError("credential insert failed", err)
	}
	return nil
}

func (r *PostgresCredentialRepository) GetBySubject(ctx context.Context, subjectID string) ([]*domain.Credential, error) {
	rows, err := r.storage.Pgx.Query(ctx,
		`SELECT id, issuer, schema, body, commitment_salt, commitment, signature, signature_alg, issued_at, expires_at
		 FROM credentials WHERE subject_id = $1`, subjectID)
	if err != nil {
		return nil, apperr.ServerError("credential fetch failed", err)
	}
	defer rows.Close()

	var out []*domain.Credential
	for rows.Next() {
		var c domain.Credential
		var id, salt, commitment []byte
		var schema string
		var body []byte
		var expiresAt *time.Time
		if err := rows.Scan(&id, &c.Issuer, &schema, &body, &salt, &commitment, &c.Signature, &c.SignatureAlg, &c.IssuedAt, &expiresAt); err != nil {
			return nil, apperr.ServerError("credential scan failed", err)
		}
		copy(c.ID[:], id)
		copy(c.CommitmentSalt[:], salt)
		copy(c.Commitment[:], commitment)
		c.Schema = domain.CredentialType(schema)
		c.ExpiresAt = expiresAt

		b, err := bodyFromJSON(c.Schema, body)
		if err != nil {
			return nil, apperr.ServerError("credential body decode failed", err)
		}
		c.Body = b
		out = append(out, &c)
	}
	if len(out) == 0 {
		return nil, apperr.NotFound("no credentials for subject", nil)
	}
	return out, nil
}

func (r *PostgresCredentialRepository) Issuer(ctx context.Context, issuerID string) (*domain.IssuerInfo, error) {
	row := r.storage.Pgx.QueryRow(ctx,
		`SELECT id, name, public_key, trust_anchor, supported_schemas, trusted FROM issuers WHERE id = $1`, issuerID)

	var iss domain.IssuerInfo
	var trustAnchor, schemas string
	if err := row.Scan(&iss.ID, &iss.Name, &iss.PublicKey, &trustAnchor, &schemas, &iss.Trusted); err != nil {
		if dblib.IsNoRows(err) {
			return nil, apperr.Credential("unknown issuer", nil)
		}
		return nil, apperr.ServerError("issuer fetch failed", err)
	}
	iss.TrustAnchor = domain.TrustAnchor(trustAnchor)
	for _, s := range splitSchemas(schemas) {
		iss.SupportedSchemas = append(iss.SupportedSchemas, domain.CredentialType(s))
	}
	return &iss, nil
}

func (r *PostgresCredentialRepository) RegisterIssuer(ctx context.Context, issuer *domain.IssuerInfo) error {
	_, err := r.storage.Pgx.Exec(ctx,
		`INSERT INTO issuers (id, name, public_key, trust_anchor, supported_schemas, trusted) VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET name = $2, public_key = $3, trust_anchor = $4, supported_schemas = $5, trusted = $6`,
		issuer.ID, issuer.Name, issuer.PublicKey, string(issuer.TrustAnchor), joinSchemas(issuer.SupportedSchemas), issuer.Trusted)
	if err != nil {
		return apperr.ServerError("issuer register failed", err)
	}
	return nil
}

func splitSchemas(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func joinSchemas(schemas []domain.CredentialType) string {
	parts := make([]string, len(schemas))
	for i, s := range schemas {
		parts[i] = string(s)
	}
	return strings.Join(parts, ",")
}
