// Package server wraps the HTTP listener with the shared middleware chain and
// graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"surveyd/internal/config"
)

// Server runs the HTTP API.
type Server struct {
	cfg    config.ServerConfig
	logger *slog.Logger
	httpd  *http.Server
}

// New creates a server serving the given mux behind the middleware chain.
func New(cfg config.ServerConfig, logger *slog.Logger, mux http.Handler) *Server {
	s := &Server{cfg: cfg, logger: logger}
	s.httpd = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.wrapMiddleware(mux),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", s.httpd.Addr)
		if err := s.httpd.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Shutting down HTTP server")
	return s.httpd.Shutdown(shutdownCtx)
}
