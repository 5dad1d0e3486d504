package crypto

import (
	"context"
	"math/big"
	"sync"

	"github.com/iden3/go-merkletree-sql/db/memory"
	merkletree "github.com/iden3/go-merkletree-sql/v2"

	"github.com/jackfredericksen/fantasma/internal/apperr"
)

// MerkleDepth is the sparse Merkle tree's fixed depth, matching
// fantasma-crypto/src/merkle.rs's MERKLE_DEPTH constant.
const MerkleDepth = 20

// MerkleRegistry is a named collection of sparse Merkle trees — one per
// credential-type or named-set registry key — each backed by
// github.com/iden3/go-merkletree-sql/v2 at MerkleDepth levels. This is the
// production equivalent of the distillation source's in-memory
// MerkleTree{depth, nodes, default_hashes, leaf_count}.
type MerkleRegistry struct {
	mu         sync.Mutex
	trees      map[string]*merkletree.MerkleTree
	newStorage func() merkletree.Storage
}

// NewMerkleRegistry builds a registry backed by in-memory tree storage.
// Pass a pgx-backed storage constructor (db/pgx/v2) to persist trees
// relationally instead.
func NewMerkleRegistry() *MerkleRegistry {
	return &MerkleRegistry{
		trees:      make(map[string]*merkletree.MerkleTree),
		newStorage: func() merkletree.Storage { return memory.NewMemoryStorage() },
	}
}

// NewMerkleRegistryWithStorage allows injecting a custom per-tree storage
// constructor, e.g. one backed by db/pgx/v2 for a configured database.
func NewMerkleRegistryWithStorage(newStorage func() merkletree.Storage) *MerkleRegistry {
	return &MerkleRegistry{trees: make(map[string]*merkletree.MerkleTree), newStorage: newStorage}
}

func (m *MerkleRegistry) tree(ctx context.Context, registry string) (*merkletree.MerkleTree, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if t, ok := m.trees[registry]; ok {
		return t, nil
	}
	t, err := merkletree.NewMerkleTree(ctx, m.newStorage(), MerkleDepth)
	if err != nil {
		return nil, apperr.ServerError("merkle tree initialization failed", err)
	}
	m.trees[registry] = t
	return t, nil
}

// SetLeaf inserts or updates the leaf at index in the named registry.
func (m *MerkleRegistry) SetLeaf(ctx context.Context, registry string, index uint64, leaf [32]byte) error {
	t, err := m.tree(ctx, registry)
	if err != nil {
		return err
	}
	k := new(big.Int).SetUint64(index)
	v := new(big.Int).SetBytes(leaf[:])
	if err := t.Add(ctx, k, v); err != nil {
		return apperr.ServerError("merkle leaf insertion failed", err)
	}
	return nil
}

// Root returns the current root of the named registry's tree. An empty,
// never-populated registry returns the tree's empty-root value.
func (m *MerkleRegistry) Root(ctx context.Context, registry string) ([32]byte, error) {
	t, err := m.tree(ctx, registry)
	if err != nil {
		return [32]byte{}, err
	}
	return FieldToBytes32(t.Root().BigInt()), nil
}

// Prove returns the sibling hashes and path bits for the leaf at index in
// the named registry, suitable for embedding in a witness's private vector.
func (m *MerkleRegistry) Prove(ctx context.Context, registry string, index uint64) (siblings [][]byte, pathBits []bool, err error) {
	t, err := m.tree(ctx, registry)
	if err != nil {
		return nil, nil, err
	}

	k := new(big.Int).SetUint64(index)
	proof, _, err := t.GenerateProof(ctx, k, nil)
	if err != nil {
		return nil, nil, apperr.ServerError("merkle proof generation failed", err)
	}

	all := proof.AllSiblings()
	siblings = make([][]byte, len(all))
	pathBits = make([]bool, len(all))
	for i, s := range all {
		b := FieldToBytes32(s.BigInt())
		siblings[i] = b[:]
		pathBits[i] = (index>>uint(i))&1 == 1
	}
	return siblings, pathBits, nil
}
