package musicbrainz_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pannpers/go-logging/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talivision/where-am-i-listening/internal/infrastructure/music/musicbrainz"
)

func TestClient_SearchArtist(t *testing.T) {
	logger, err := logging.New()
	require.NoError(t, err)

	tests := []struct {
		name         string
		query        string
		responseBody map[string]any
	}{
		{
			name:  "no candidates",
			query: "Completely Unknown Artist XYZ123",
			responseBody: map[string]any{
				"artists": []any{},
			},
		},
		{
			name:  "all rejected by score",
			query: "GREG",
			responseBody: map[string]any{
				"artists": []any{
					map[string]any{"id": "1", "name": "Greg Brown", "sort-name": "Brown, Greg", "score": 50},
				},
			},
		},
		{
			name:  "exact match no area flags exactMatch",
			query: "Aphex Twin",
			responseBody: map[string]any{
				"artists": []any{
					map[string]any{"id": "1", "name": "Aphex Twin", "sort-name": "Aphex Twin", "score": 100},
				},
			},
		},
		{
			name:  "candidate with begin-area and area",
			query: "Taylor Swift",
			responseBody: map[string]any{
				"artists": []any{
					map[string]any{
						"id": "1", "name": "Taylor Swift", "sort-name": "Swift, Taylor", "score": 100,
						"begin-area": map[string]any{"id": "ba", "name": "West Reading", "type": "City"},
						"area":       map[string]any{"id": "a", "name": "United States", "type": "Country", "iso-3166-1-codes": []string{"US"}},
					},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Contains(t, r.Header.Get("User-Agent"), "WhereAmIListening")
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(tt.responseBody)
			}))
			defer server.Close()

			client := musicbrainz.NewClient(server.Client(), logger, 0)
			client.SetArtistBaseURL(server.URL + "/")
			defer client.Close()

			outcome, err := client.SearchArtist(context.Background(), tt.query)
			require.NoError(t, err)

			switch tt.name {
			case "no candidates":
				assert.True(t, outcome.NoCandidates)
			case "all rejected by score":
				assert.True(t, outcome.AllRejected)
			case "exact match no area flags exactMatch":
				require.NotNil(t, outcome.Candidate)
				assert.True(t, outcome.Candidate.ExactMatch)
				assert.Nil(t, outcome.Candidate.Area)
			case "candidate with begin-area and area":
				require.NotNil(t, outcome.Candidate)
				assert.Equal(t, "West Reading", outcome.Candidate.BeginArea.Name)
				assert.Equal(t, "United States", outcome.Candidate.Area.Name)
				assert.False(t, outcome.Candidate.ExactMatch)
			}
		})
	}
}

func TestClient_ResolveAreaContext(t *testing.T) {
	logger, err := logging.New()
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/western-australia":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id": "western-australia", "name": "Western Australia", "type": "Subdivision",
				"relations": []any{
					map[string]any{
						"type": "part of", "direction": "backward",
						"area": map[string]any{"id": "au", "name": "Australia", "type": "Country", "iso-3166-1-codes": []string{"AU"}},
					},
				},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := musicbrainz.NewClient(server.Client(), logger, 0)
	client.SetAreaBaseURL(server.URL + "/")
	defer client.Close()

	got, err := client.ResolveAreaContext(context.Background(), "western-australia")
	require.NoError(t, err)
	assert.Equal(t, "Australia", got.Country)
	// The ISO-bearing parent is a Country, not a Subdivision, so no
	// subdivision is reported.
	assert.Equal(t, "", got.Subdivision)
}

func TestClient_ResolveViaRelationship(t *testing.T) {
	logger, err := logging.New()
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/keli-holiday":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id": "keli-holiday", "name": "Keli Holiday",
				"relations": []any{
					map[string]any{
						"type": "is person", "type-id": "dd9886f2-1dfe-4270-97db-283f6839a666",
						"artist": map[string]any{"id": "adam-hyde"},
					},
				},
			})
		case "/adam-hyde":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id": "adam-hyde", "name": "Adam Hyde",
				"begin-area": map[string]any{"id": "canberra", "name": "Canberra", "type": "City"},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := musicbrainz.NewClient(server.Client(), logger, 0)
	client.SetArtistBaseURL(server.URL + "/")
	defer client.Close()

	got, err := client.ResolveViaRelationship(context.Background(), "keli-holiday")
	require.NoError(t, err)
	assert.Equal(t, "Adam Hyde", got.Name)
	require.NotNil(t, got.BeginArea)
	assert.Equal(t, "Canberra", got.BeginArea.Name)
}
