package anchor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnchorRegistryABIParses(t *testing.T) {
	svc, err := NewService(nil, nil, nil, [20]byte{}, [32]byte{})
	require.NoError(t, err)
	require.NotNil(t, svc)

	_, ok := svc.registryABI.Methods["publishRoot"]
	assert.True(t, ok)
	_, ok = svc.registryABI.Methods["lastRoot"]
	assert.True(t, ok)
}
