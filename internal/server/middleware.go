package server

import (
	"net"
	"net/http"

	"github.com/jackfredericksen/fantasma/internal/apperr"
	"github.com/jackfredericksen/fantasma/internal/ratelimit"
)

// rateLimitMiddleware enforces the sliding-window-plus-burst limiter
// (internal/ratelimit) per client IP, mirroring
// fantasma-server/src/middleware.rs's per-request rate check ahead of
// every route.
func rateLimitMiddleware(limiter ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)
			info, err := limiter.Check(r.Context(), key)
			if err != nil {
				w.Header().Set("Retry-After", info.ResetAfter.String())
				writeJSON(w, http.StatusTooManyRequests, map[string]string{
					"error":             "rate_limited",
					"error_description": err.Error(),
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// adminAuth gates the /admin namespace behind X-Admin-Key, responding 503
// when no admin key is configured at all (a configuration error, per §7)
// and 401 on a missing/wrong header.
func adminAuth(deps *Dependencies) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if deps.Config.Admin.Key == "" {
				writeError(w, r, apperr.Configuration("admin key not configured", nil))
				return
			}
			if r.Header.Get("X-Admin-Key") != deps.Config.Admin.Key {
				writeJSON(w, http.StatusUnauthorized, map[string]string{
					"error":             "unauthorized",
					"error_description": "missing or incorrect X-Admin-Key",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
