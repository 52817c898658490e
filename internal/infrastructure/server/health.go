package server

import (
	"context"
	"net"
	"net/http"
	"sync/atomic"
	"time"
)

// HealthServer provides a lightweight HTTP server for liveness probes. It
// exposes a single /health endpoint (spec.md §6), replacing the teacher's
// split /healthz + /readyz pair since this service has no readiness
// dependency (database, queue) worth distinguishing from liveness.
type HealthServer struct {
	srv          *http.Server
	shuttingDown atomic.Bool
}

// NewHealthServer creates a health probe server listening on the given address.
func NewHealthServer(addr string) *HealthServer {
	h := &HealthServer{}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		if h.shuttingDown.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("shutting down"))
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	h.srv = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return h
}

// Start begins listening and serving. It blocks until the server is stopped.
// It returns http.ErrServerClosed when Shutdown is called.
func (h *HealthServer) Start() error {
	ln, err := net.Listen("tcp", h.srv.Addr)
	if err != nil {
		return err
	}
	return h.srv.Serve(ln)
}

// SetShuttingDown transitions /health to return 503.
func (h *HealthServer) SetShuttingDown() {
	h.shuttingDown.Store(true)
}

// healthShutdownTimeout is the maximum time to wait for the health server
// to drain active connections.
const healthShutdownTimeout = 5 * time.Second

// Close transitions /health to 503 and gracefully stops the health server.
// It implements [io.Closer] so the server can be registered with the
// shutdown package's Drain phase.
func (h *HealthServer) Close() error {
	h.SetShuttingDown()
	ctx, cancel := context.WithTimeout(context.Background(), healthShutdownTimeout)
	defer cancel()
	return h.srv.Shutdown(ctx)
}
