// Package server provides the plain HTTP server that exposes the batch
// resolve and cache-invalidation endpoints (spec.md §6), replacing the
// teacher's Connect-RPC transport since this service has no protobuf
// service definitions.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"log/slog"

	adapterhttp "github.com/talivision/where-am-i-listening/internal/adapter/http"
	"github.com/talivision/where-am-i-listening/pkg/config"

	"github.com/pannpers/go-logging/logging"
)

// Server serves the batch resolve and cache-invalidation REST endpoints.
type Server struct {
	server  *http.Server
	logger  *logging.Logger
	cfg     *config.Config
	address string
}

// NewServer creates a new Server instance, routing the spec's batch
// resolve, single-artist read, and cache-invalidation endpoints through a
// CORS-wrapped mux (spec.md §6, §4.10).
func NewServer(cfg *config.Config, logger *logging.Logger, handler *adapterhttp.Handler) *Server {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/artists", handler.ResolveArtists)
	mux.HandleFunc("GET /api/artists/{name}", handler.GetArtist)
	mux.HandleFunc("DELETE /api/cache", handler.DeleteCache)

	address := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))

	wrapped := NewCORSHandler(mux, &cfg.Server)

	srv := &http.Server{
		Addr:              address,
		Handler:           wrapped,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	return &Server{
		server:  srv,
		logger:  logger,
		cfg:     cfg,
		address: address,
	}
}

// Start begins listening and serving. It blocks until the server is stopped.
func (s *Server) Start() error {
	s.logger.Info(context.Background(), fmt.Sprintf("server starting on %s", s.address))

	return s.server.ListenAndServe()
}

// Stop gracefully stops the server, honoring the configured shutdown timeout.
func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}

	timeout := s.cfg.ShutdownTimeout

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info(ctx, "shutting down server gracefully...", slog.Duration("timeout", timeout))

	return s.server.Shutdown(ctx)
}

// Close implements io.Closer so Stop can be registered with the shutdown
// package's Drain phase.
func (s *Server) Close() error {
	return s.Stop()
}
