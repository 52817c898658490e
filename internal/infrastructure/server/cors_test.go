package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/talivision/where-am-i-listening/pkg/config"
)

func TestNewCORSHandler(t *testing.T) {
	srvConfig := &config.ServerConfig{AllowedOrigins: []string{"http://localhost:1234"}}
	inner := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := NewCORSHandler(inner, srvConfig)
	assert.NotNil(t, handler)

	req := httptest.NewRequest(http.MethodOptions, "/api/artists", nil)
	req.Header.Set("Origin", "http://localhost:1234")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:1234", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
}

func TestNewCORSHandler_RejectsDisallowedOrigin(t *testing.T) {
	srvConfig := &config.ServerConfig{AllowedOrigins: []string{"http://localhost:1234"}}
	inner := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := NewCORSHandler(inner, srvConfig)

	req := httptest.NewRequest(http.MethodOptions, "/api/artists", nil)
	req.Header.Set("Origin", "http://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
