package photon_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pannpers/go-logging/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talivision/where-am-i-listening/internal/infrastructure/geocode/photon"
)

func TestClient_Geocode(t *testing.T) {
	logger, err := logging.New()
	require.NoError(t, err)

	t.Run("hit swaps lon,lat", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"features": []any{
					map[string]any{
						"geometry":   map[string]any{"coordinates": []float64{-75.9263, 40.3354}},
						"properties": map[string]any{"type": "city"},
					},
				},
			})
		}))
		defer server.Close()

		client := photon.NewClient(server.Client(), logger, 50)
		client.SetBaseURL(server.URL)

		got, err := client.Geocode(context.Background(), "West Reading, United States")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.InDelta(t, 40.3354, got.Lat, 0.0001)
		assert.InDelta(t, -75.9263, got.Lon, 0.0001)
		assert.Equal(t, "West Reading, United States", got.DisplayName)
	})

	t.Run("miss", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{"features": []any{}})
		}))
		defer server.Close()

		client := photon.NewClient(server.Client(), logger, 50)
		client.SetBaseURL(server.URL)

		got, err := client.Geocode(context.Background(), "Nowhere")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}
