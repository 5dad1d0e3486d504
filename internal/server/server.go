package server

import (
	"context"
	"net/http"
	"time"

	"github.com/jackfredericksen/fantasma/internal/config"
	"github.com/jackfredericksen/fantasma/internal/log"
)

// Server wraps an http.Server configured from config.Server, providing a
// Run method that blocks until ctx is cancelled and then drains in-flight
// requests before returning, mirroring fantasma-server/src/main.rs's
// bind-then-serve-with-graceful-shutdown startup sequence.
type Server struct {
	httpServer *http.Server
}

// NewServer constructs a Server serving handler at cfg's bind address.
func NewServer(cfg *config.Server, handler http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.BindAddress,
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
	}
}

// Run serves until ctx is cancelled, then shuts down with a 10s grace
// period. Returns nil on a clean shutdown.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "http server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info(ctx, "http server shutting down")
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-errCh
	}
}
