package proofstore

import (
	"bytes"
	"context"
	"time"

	ipfsapi "github.com/ipfs/go-ipfs-api"

	"github.com/jackfredericksen/fantasma/internal/core/domain"
	"github.com/jackfredericksen/fantasma/internal/core/ports"
	"github.com/jackfredericksen/fantasma/internal/log"
)

// IPFSOffloadStore wraps another ProofStore (memory or postgres) and, when
// a gateway is configured, offloads the proof bytes to IPFS via
// github.com/ipfs/go-ipfs-api, populating StoredProof.URL with the
// resulting content address. The wrapped store retains the authoritative
// {id, sha3, expires_at} metadata row regardless — this exercises the
// spec's own ProofRef.url field literally, without making IPFS a
// requirement of the core pipeline.
type IPFSOffloadStore struct {
	underlying ports.ProofStore
	shell      *ipfsapi.Shell
	gatewayURL string
}

// NewIPFSOffloadStore constructs an IPFSOffloadStore talking to the node at
// apiURL, rendering public links under gatewayURL (e.g.
// "https://ipfs.io/ipfs/").
func NewIPFSOffloadStore(underlying ports.ProofStore, apiURL, gatewayURL string) *IPFSOffloadStore {
	return &IPFSOffloadStore{
		underlying: underlying,
		shell:      ipfsapi.NewShell(apiURL),
		gatewayURL: gatewayURL,
	}
}

func (s *IPFSOffloadStore) Store(ctx context.Context, circuit domain.CircuitID, data []byte, ttl time.Duration) (*domain.StoredProof, error) {
	p, err := s.underlying.Store(ctx, circuit, data, ttl)
	if err != nil {
		return nil, err
	}

	cid, err := s.shell.Add(bytes.NewReader(data))
	if err != nil {
		log.Warn(ctx, "ipfs offload failed, proof remains local-only", "err", err, "proof_id", p.ID)
		return p, nil
	}

	p.URL = s.gatewayURL + cid
	return p, nil
}

func (s *IPFSOffloadStore) Get(ctx context.Context, id string) (*domain.StoredProof, error) {
	return s.underlying.Get(ctx, id)
}

func (s *IPFSOffloadStore) Delete(ctx context.Context, id string) error {
	return s.underlying.Delete(ctx, id)
}

func (s *IPFSOffloadStore) CleanupExpired(ctx context.Context) (int, error) {
	return s.underlying.CleanupExpired(ctx)
}
