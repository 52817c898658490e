package server

import (
	"net/http"

	"github.com/rs/cors"

	"github.com/talivision/where-am-i-listening/pkg/config"
)

// NewCORSHandler wraps mu with CORS preflight handling for the plain REST
// surface (spec.md §6): GET for the single-artist read endpoint, POST for
// the batch resolve endpoint, DELETE for cache invalidation, and the
// OPTIONS preflight itself.
func NewCORSHandler(mu http.Handler, srvConfig *config.ServerConfig) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: srvConfig.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(mu)
}
