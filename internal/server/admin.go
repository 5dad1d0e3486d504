package server

import (
	"encoding/hex"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/jackfredericksen/fantasma/internal/apperr"
	"github.com/jackfredericksen/fantasma/internal/core/domain"
)

const statsCacheKey = "admin_stats"

// statsCache holds the last computed /admin/stats snapshot for a few
// seconds so a dashboard polling on an interval doesn't recompute four
// repository counts per request.
var statsCache = gocache.New(5*time.Second, 30*time.Second)

type adminStats struct {
	ClientCount    int `json:"client_count"`
	AuthCodeCount  int `json:"auth_code_count"`
	ProofCount     int `json:"proof_count"`
	NullifierCount int `json:"nullifier_count"`
}

func handleAdminStats(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cached, ok := statsCache.Get(statsCacheKey); ok {
			writeJSON(w, http.StatusOK, cached)
			return
		}

		stats := adminStats{}

		clients, err := deps.Clients.List(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		stats.ClientCount = len(clients)

		if c, ok := deps.AuthCodes.(counter); ok {
			n, err := c.Count(r.Context())
			if err != nil {
				writeError(w, r, err)
				return
			}
			stats.AuthCodeCount = n
		}
		if c, ok := deps.Proofs.(counter); ok {
			n, err := c.Count(r.Context())
			if err != nil {
				writeError(w, r, err)
				return
			}
			stats.ProofCount = n
		}
		if c, ok := deps.Nullifiers.(counter); ok {
			n, err := c.Count(r.Context())
			if err != nil {
				writeError(w, r, err)
				return
			}
			stats.NullifierCount = n
		}

		statsCache.SetDefault(statsCacheKey, stats)
		writeJSON(w, http.StatusOK, stats)
	}
}

func handleAdminListClients(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clients, err := deps.Clients.List(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, clients)
	}
}

type registerClientRequest struct {
	ClientID     string   `json:"client_id"`
	ClientName   string   `json:"client_name"`
	RedirectURIs []string `json:"redirect_uris"`
}

func handleAdminRegisterClient(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerClientRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		if req.ClientID == "" || len(req.RedirectURIs) == 0 {
			writeError(w, r, apperr.Input("client_id and redirect_uris are required", nil))
			return
		}

		client := &domain.ClientInfo{
			ClientID:     req.ClientID,
			ClientName:   req.ClientName,
			RedirectURIs: req.RedirectURIs,
		}
		if err := deps.Clients.Register(r.Context(), client); err != nil {
			writeError(w, r, err)
			return
		}
		statsCache.Delete(statsCacheKey)
		writeJSON(w, http.StatusCreated, client)
	}
}

type anchorRequest struct {
	Chain  string `json:"chain"`  // "evm" | "solana"
	Kind   string `json:"kind"`   // matches domain.AnchorRootKind
	Nonce  uint64 `json:"nonce"`  // solana only
}

// handleAdminAnchor publishes the current registry root to whichever chain
// the request names, 503ing when no signer is configured for either chain
// (the anchor subsystem is optional, per internal/anchor's package doc).
func handleAdminAnchor(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Anchor == nil {
			writeError(w, r, apperr.Configuration("no chain signer configured for anchoring", nil))
			return
		}

		var req anchorRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		kind := domain.AnchorRootKind(req.Kind)
		registry := string(kind)

		root, err := deps.Merkle.Root(r.Context(), registry)
		if err != nil {
			writeError(w, r, err)
			return
		}

		var record *domain.AnchorRecord
		switch req.Chain {
		case "evm":
			record, err = deps.Anchor.PublishEVM(r.Context(), deps.Config.Chains.EVMChainID, kind, root)
		case "solana":
			record, err = deps.Anchor.PublishSolana(r.Context(), deps.Config.Chains.SolanaChainID, kind, root, req.Nonce)
		default:
			writeError(w, r, apperr.Input("chain must be \"evm\" or \"solana\"", nil))
			return
		}
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"root_kind":   record.RootKind,
			"root":        hex.EncodeToString(root[:]),
			"chain":       record.Chain,
			"chain_id":    record.ChainID,
			"tx_ref":      record.TxRef,
			"anchored_at": record.AnchoredAt,
		})
	}
}
