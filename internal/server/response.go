// Package server wires the core services (internal/core/services),
// discovery/JWKS builders (internal/oidc) and proof store into the HTTP
// surface described in the spec's external-interfaces section: the chi
// router, its middleware stack and every route handler. Grounded on
// fantasma-server/src/{lib,routes,admin,middleware}.rs for control flow and
// response shapes, translated into the teacher's own chi+cors router idiom.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/jackfredericksen/fantasma/internal/apperr"
	"github.com/jackfredericksen/fantasma/internal/log"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Input("malformed JSON body", err)
	}
	return nil
}

// writeError renders err as the {error, error_description} shape the grant
// spec requires, using the apperr taxonomy's HTTP status and grant code
// when err carries one.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperr.As(err)
	if !ok {
		log.Error(r.Context(), "unclassified error reached HTTP layer", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":             "server_error",
			"error_description": "internal error",
		})
		return
	}

	grant := string(appErr.Grant)
	if grant == "" {
		grant = "server_error"
	}
	if appErr.Status >= 500 {
		log.Error(r.Context(), "request failed", "err", appErr, "kind", appErr.Kind)
	}
	writeJSON(w, appErr.Status, map[string]string{
		"error":             grant,
		"error_description": appErr.Description,
	})
}
