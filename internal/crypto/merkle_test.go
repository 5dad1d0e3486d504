package crypto

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerkleRegistrySetLeafAndProve(t *testing.T) {
	ctx := context.Background()
	reg := NewMerkleRegistry()

	var leaf0, leaf1 [32]byte
	leaf0[0] = 0xAA
	leaf1[0] = 0xBB

	require.NoError(t, reg.SetLeaf(ctx, "degree-v1", 0, leaf0))
	require.NoError(t, reg.SetLeaf(ctx, "degree-v1", 1, leaf1))

	root, err := reg.Root(ctx, "degree-v1")
	require.NoError(t, err)
	assert.NotEqual(t, [32]byte{}, root)

	siblings, pathBits, err := reg.Prove(ctx, "degree-v1", 0)
	require.NoError(t, err)
	assert.Len(t, siblings, MerkleDepth)
	assert.Len(t, pathBits, MerkleDepth)
}

func TestMerkleRegistryKeepsSeparateRegistriesIndependent(t *testing.T) {
	ctx := context.Background()
	reg := NewMerkleRegistry()

	var leaf [32]byte
	leaf[0] = 0x01
	require.NoError(t, reg.SetLeaf(ctx, "set-a", 0, leaf))

	rootA, err := reg.Root(ctx, "set-a")
	require.NoError(t, err)
	rootB, err := reg.Root(ctx, "set-b")
	require.NoError(t, err)

	assert.NotEqual(t, rootA, rootB)
}
