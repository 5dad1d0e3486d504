package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/jackfredericksen/fantasma/internal/log"
)

// NewRouter builds the chi.Mux serving every route in §6: discovery/JWKS,
// the authorization-code grant endpoints, proof storage, health, and the
// admin namespace. Grounded on fantasma-server/src/lib.rs's create_router
// (route table, CORS-then-trace middleware ordering), translated into the
// teacher's own go-chi/chi + go-chi/cors idiom.
func NewRouter(deps *Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   splitOrigins(deps.Config.CORS.AllowedOrigins),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Admin-Key"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if deps.Limiter != nil {
		r.Use(rateLimitMiddleware(deps.Limiter))
	}

	r.Get("/health", handleHealth)
	r.Get("/.well-known/openid-configuration", handleDiscovery(deps))
	r.Get("/.well-known/jwks.json", handleJWKS(deps))

	r.Get("/authorize", handleAuthorize(deps))
	r.Post("/authorize/consent", handleConsent(deps))
	r.Post("/token", handleToken(deps))
	r.Get("/userinfo", handleUserInfo(deps))

	r.Post("/proofs", handleSubmitProof(deps))
	r.Get("/proofs/{id}", handleGetProof(deps))

	r.Route("/admin", func(admin chi.Router) {
		admin.Use(adminAuth(deps))
		admin.Get("/stats", handleAdminStats(deps))
		admin.Get("/clients", handleAdminListClients(deps))
		admin.Post("/clients", handleAdminRegisterClient(deps))
		admin.Post("/anchor", handleAdminAnchor(deps))
	})

	return r
}

func splitOrigins(raw string) []string {
	if raw == "" || raw == "*" {
		return []string{"*"}
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// requestLogger logs each request's method/path/status/duration through
// internal/log, matching the teacher's log.Info(ctx, msg, "k", v, ...)
// call shape rather than chi's own text logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, req.ProtoMajor)
		next.ServeHTTP(ww, req)
		log.Info(req.Context(), "http request",
			"method", req.Method, "path", req.URL.Path,
			"status", ww.Status(), "duration_ms", time.Since(start).Milliseconds())
	})
}
