package server

import (
	"net/http"

	"github.com/jackfredericksen/fantasma/internal/apperr"
)

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func handleDiscovery(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := deps.Discovery.Build(r.Context())
		if err != nil {
			writeError(w, r, apperr.ServerError("discovery document build failed", err))
			return
		}
		writeJSON(w, http.StatusOK, doc)
	}
}

func handleJWKS(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := deps.JWKS.Build(r.Context())
		if err != nil {
			writeError(w, r, apperr.ServerError("jwks build failed", err))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	}
}
