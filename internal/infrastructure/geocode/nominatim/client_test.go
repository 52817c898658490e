package nominatim_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pannpers/go-logging/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talivision/where-am-i-listening/internal/infrastructure/geocode/nominatim"
)

func TestClient_Geocode(t *testing.T) {
	logger, err := logging.New()
	require.NoError(t, err)

	t.Run("hit", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Contains(t, r.Header.Get("User-Agent"), "WhereAmIListening")
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode([]map[string]any{
				{
					"lat":          "40.3354",
					"lon":          "-75.9263",
					"display_name": "West Reading, Berks County, Pennsylvania, United States",
					"addresstype":  "city",
				},
			})
		}))
		defer server.Close()

		client := nominatim.NewClient(server.Client(), logger, 50)
		client.SetBaseURL(server.URL)

		got, err := client.Geocode(context.Background(), "West Reading, United States")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.InDelta(t, 40.3354, got.Lat, 0.0001)
		assert.InDelta(t, -75.9263, got.Lon, 0.0001)
		assert.Equal(t, "West Reading, United States", got.DisplayName)
		assert.Equal(t, "city", got.AddressType)
	})

	t.Run("miss", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode([]map[string]any{})
		}))
		defer server.Close()

		client := nominatim.NewClient(server.Client(), logger, 50)
		client.SetBaseURL(server.URL)

		got, err := client.Geocode(context.Background(), "Completely Unknown Place XYZ123")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}
