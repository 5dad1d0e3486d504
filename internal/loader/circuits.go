// Package loader loads startup artifacts: per-circuit proving/verification
// material from disk, and JSON-LD credential schema documents, grounded on
// internal/packagemanager/package_manager.go's circuitsLoaderService.Load
// pattern (load a named circuit's files once at startup and hold them in
// memory for the process lifetime).
package loader

import (
	"os"
	"path/filepath"

	"github.com/jackfredericksen/fantasma/internal/apperr"
	"github.com/jackfredericksen/fantasma/internal/core/domain"
)

// CircuitArtifacts holds one circuit's wasm witness calculator, proving
// key (zkey) and verification key, as loaded from circuitsPath/<circuit_id>/.
type CircuitArtifacts struct {
	WasmBytes           []byte
	ProvingKeyBytes      []byte
	VerificationKeyBytes []byte
}

// CircuitLoader loads CircuitArtifacts from a directory tree, mirroring
// package_manager.go's loaders.NewCircuits(circuitsPath).Load(circuitID)
// call shape.
type CircuitLoader struct {
	basePath string
	cache    map[domain.CircuitID]*CircuitArtifacts
}

// NewCircuitLoader constructs a CircuitLoader rooted at basePath.
func NewCircuitLoader(basePath string) *CircuitLoader {
	return &CircuitLoader{basePath: basePath, cache: make(map[domain.CircuitID]*CircuitArtifacts)}
}

// Load reads circuitID's wasm/zkey/verification_key.json files, caching the
// result for subsequent calls. A missing verification key is tolerated
// (the external backend falls back to mock verification, per §4.3); a
// missing wasm or zkey file is fatal.
func (l *CircuitLoader) Load(circuitID domain.CircuitID) (*CircuitArtifacts, error) {
	if a, ok := l.cache[circuitID]; ok {
		return a, nil
	}

	dir := filepath.Join(l.basePath, string(circuitID))

	wasmBytes, err := os.ReadFile(filepath.Join(dir, "circuit.wasm"))
	if err != nil {
		return nil, apperr.Configuration("circuit wasm artifact missing", err)
	}

	zkeyBytes, err := os.ReadFile(filepath.Join(dir, "circuit_final.zkey"))
	if err != nil {
		return nil, apperr.Configuration("circuit proving key artifact missing", err)
	}

	vkBytes, err := os.ReadFile(filepath.Join(dir, "verification_key.json"))
	if err != nil {
		vkBytes = nil
	}

	artifacts := &CircuitArtifacts{WasmBytes: wasmBytes, ProvingKeyBytes: zkeyBytes, VerificationKeyBytes: vkBytes}
	l.cache[circuitID] = artifacts
	return artifacts, nil
}
