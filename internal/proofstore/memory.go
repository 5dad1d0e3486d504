// Package proofstore implements the TTL-keyed proof blob store: an
// in-memory reference implementation, a relational one backed by
// internal/db, and an optional IPFS blob-offload wrapper.
package proofstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jackfredericksen/fantasma/internal/apperr"
	fcrypto "github.com/jackfredericksen/fantasma/internal/crypto"
	"github.com/jackfredericksen/fantasma/internal/core/domain"
)

// MemoryStore is the in-memory proof store: a single exclusive-writer map
// guarding get/put/delete/cleanup, matching the distillation source's own
// RwLock-map discipline.
type MemoryStore struct {
	mu    sync.Mutex
	proofs map[string]*domain.StoredProof
	now    func() time.Time
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{proofs: make(map[string]*domain.StoredProof), now: time.Now}
}

// Store inserts bytes under a new proof id, with expires_at = now + ttl.
func (s *MemoryStore) Store(ctx context.Context, circuit domain.CircuitID, bytes []byte, ttl time.Duration) (*domain.StoredProof, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	p := &domain.StoredProof{
		ID:        uuid.NewString(),
		Bytes:     bytes,
		Hash:      fcrypto.SHA3_256(bytes),
		CircuitID: circuit,
		StoredAt:  now,
		ExpiresAt: now.Add(ttl),
	}
	s.proofs[p.ID] = p
	return p, nil
}

// Get returns the proof for id. Expired returns Expired; missing returns
// NotFound.
func (s *MemoryStore) Get(ctx context.Context, id string) (*domain.StoredProof, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.proofs[id]
	if !ok {
		return nil, apperr.NotFound("proof not found", nil)
	}
	if p.Expired(s.now()) {
		return nil, apperr.NotFound("proof expired", nil)
	}
	return p, nil
}

// Delete removes the proof for id, if present.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.proofs, id)
	return nil
}

// Count reports the number of proofs currently held, expired or not —
// used by the admin stats route.
func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.proofs), nil
}

// CleanupExpired removes and counts all proofs whose expires_at has
// elapsed.
func (s *MemoryStore) CleanupExpired(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	count := 0
	for id, p := range s.proofs {
		if p.Expired(now) {
			delete(s.proofs, id)
			count++
		}
	}
	return count, nil
}
