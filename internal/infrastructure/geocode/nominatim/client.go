// Package nominatim provides a client for OpenStreetMap's Nominatim search
// endpoint, the first leg of the geocoder cascade (spec.md §4.8).
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/pannpers/go-apperr/apperr"
	"github.com/pannpers/go-apperr/apperr/codes"
	"github.com/pannpers/go-logging/logging"

	"github.com/talivision/where-am-i-listening/internal/entity"
	"github.com/talivision/where-am-i-listening/internal/infrastructure/httpfetch"
	"github.com/talivision/where-am-i-listening/internal/resolver"
	"github.com/talivision/where-am-i-listening/pkg/api"
)

const (
	searchEndpoint = "https://nominatim.openstreetmap.org/search"
	userAgent      = "WhereAmIListening/1.0.0 ( contact: where-am-i-listening@talivision.example )"
)

// result is a single Nominatim search hit. Lat/Lon are strings, a
// documented Nominatim quirk.
type result struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	AddressType string `json:"addresstype"`
	Type        string `json:"type"`
}

// Client is a Nominatim search client rate-limited to Nominatim's usage
// policy (interactive use, no bulk queries).
type Client struct {
	fetcher *httpfetch.Fetcher
	baseURL string
	limiter *rate.Limiter
	logger  *logging.Logger
}

// NewClient creates a Nominatim client. A nil httpClient falls back to a
// client with a 10-second timeout. ratePerSecond bounds request frequency
// with a soft, burst-tolerant token bucket (spec.md §4.5: "softer" limits
// than MusicBrainz's documented 1 req/s).
func NewClient(httpClient *http.Client, logger *logging.Logger, ratePerSecond float64) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		fetcher: httpfetch.New(httpClient),
		baseURL: searchEndpoint,
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), 1),
		logger:  logger.With(slog.String("component", "nominatim")),
	}
}

// Geocode searches Nominatim for locationText and returns the first hit as
// a GeoResult, or nil if Nominatim returned no results.
func (c *Client) Geocode(ctx context.Context, locationText string) (*entity.GeoResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, apperr.Wrap(err, codes.Canceled, "nominatim rate limiter wait failed")
	}

	params := url.Values{}
	params.Set("q", locationText)
	params.Set("format", "json")
	params.Set("limit", "1")
	endpoint := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, apperr.Wrap(err, codes.Internal, "failed to create nominatim request")
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.fetcher.Do(ctx, req)
	if resp != nil {
		defer func() { _ = resp.Body.Close() }()
	}
	if apiErr := api.FromHTTP(err, resp, "nominatim api request failed"); apiErr != nil {
		c.logger.Error(ctx, "nominatim geocode failed", apiErr, slog.String("query", locationText))
		return nil, apiErr
	}

	var results []result
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, apperr.Wrap(err, codes.DataLoss, "failed to decode nominatim response")
	}
	if len(results) == 0 {
		return nil, nil
	}

	r := results[0]
	lat, err := strconv.ParseFloat(r.Lat, 64)
	if err != nil {
		return nil, apperr.Wrap(err, codes.DataLoss, "failed to parse nominatim latitude")
	}
	lon, err := strconv.ParseFloat(r.Lon, 64)
	if err != nil {
		return nil, apperr.Wrap(err, codes.DataLoss, "failed to parse nominatim longitude")
	}

	addressType := r.AddressType
	if addressType == "" {
		addressType = r.Type
	}

	return &entity.GeoResult{
		Lat:         lat,
		Lon:         lon,
		DisplayName: resolver.NormalizeDisplayName(r.DisplayName),
		AddressType: addressType,
	}, nil
}

// SetBaseURL overrides the search endpoint base URL. Intended for tests.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = u
}

var _ entity.Geocoder = (*Client)(nil)
