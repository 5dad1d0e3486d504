package server

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jackfredericksen/fantasma/internal/apperr"
	"github.com/jackfredericksen/fantasma/internal/core/domain"
)

const proofTTL = 10 * time.Minute

type submitProofRequest struct {
	ProofBytes  string `json:"proof_bytes"`
	CircuitType string `json:"circuit_type"`
}

type submitProofResponse struct {
	ProofID string `json:"proof_id"`
	Hash    string `json:"hash"`
}

// handleSubmitProof accepts an out-of-band-built proof blob, grounded on
// §6's /proofs endpoint for storing proofs independent of the token flow.
func handleSubmitProof(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submitProofRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, apperr.Input("malformed proof submission body", err))
			return
		}
		raw, err := base64.StdEncoding.DecodeString(req.ProofBytes)
		if err != nil {
			writeError(w, r, apperr.Input("proof_bytes must be base64", err))
			return
		}
		if req.CircuitType == "" {
			writeError(w, r, apperr.Input("circuit_type is required", nil))
			return
		}

		stored, err := deps.Proofs.Store(r.Context(), domain.CircuitID(req.CircuitType), raw, proofTTL)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, submitProofResponse{
			ProofID: stored.ID,
			Hash:    hex.EncodeToString(stored.Hash[:]),
		})
	}
}

// handleGetProof fetches a previously stored proof blob by ID.
func handleGetProof(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		stored, err := deps.Proofs.Get(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"proof_id":   stored.ID,
			"circuit":    stored.CircuitID,
			"hash":       hex.EncodeToString(stored.Hash[:]),
			"expires_at": stored.ExpiresAt,
			"proof_bytes": base64.StdEncoding.EncodeToString(stored.Bytes),
		})
	}
}
