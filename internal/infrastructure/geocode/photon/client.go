// Package photon provides a client for the Photon (GeoJSON) geocoder, the
// second leg of the geocoder cascade (spec.md §4.8).
package photon

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/pannpers/go-apperr/apperr"
	"github.com/pannpers/go-apperr/apperr/codes"
	"github.com/pannpers/go-logging/logging"

	"github.com/talivision/where-am-i-listening/internal/entity"
	"github.com/talivision/where-am-i-listening/internal/infrastructure/httpfetch"
	"github.com/talivision/where-am-i-listening/pkg/api"
)

const searchEndpoint = "https://photon.komoot.io/api/"

// featureCollection mirrors the subset of GeoJSON Photon returns.
type featureCollection struct {
	Features []struct {
		Geometry struct {
			// Coordinates is [lon, lat], the GeoJSON convention Photon
			// follows — the caller must swap these before use.
			Coordinates [2]float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			Type string `json:"type"`
		} `json:"properties"`
	} `json:"features"`
}

// Client is a Photon search client.
type Client struct {
	fetcher *httpfetch.Fetcher
	baseURL string
	limiter *rate.Limiter
	logger  *logging.Logger
}

// NewClient creates a Photon client. A nil httpClient falls back to a
// client with a 10-second timeout.
func NewClient(httpClient *http.Client, logger *logging.Logger, ratePerSecond float64) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		fetcher: httpfetch.New(httpClient),
		baseURL: searchEndpoint,
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), 1),
		logger:  logger.With(slog.String("component", "photon")),
	}
}

// Geocode searches Photon for locationText and returns the first feature as
// a GeoResult. Photon does not return a display string, so DisplayName is
// set to the original query as given; it is not normalized. Returns nil if
// Photon returned no features.
func (c *Client) Geocode(ctx context.Context, locationText string) (*entity.GeoResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, apperr.Wrap(err, codes.Canceled, "photon rate limiter wait failed")
	}

	params := url.Values{}
	params.Set("q", locationText)
	params.Set("limit", "1")
	endpoint := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, apperr.Wrap(err, codes.Internal, "failed to create photon request")
	}

	resp, err := c.fetcher.Do(ctx, req)
	if resp != nil {
		defer func() { _ = resp.Body.Close() }()
	}
	if apiErr := api.FromHTTP(err, resp, "photon api request failed"); apiErr != nil {
		c.logger.Error(ctx, "photon geocode failed", apiErr, slog.String("query", locationText))
		return nil, apiErr
	}

	var fc featureCollection
	if err := json.NewDecoder(resp.Body).Decode(&fc); err != nil {
		return nil, apperr.Wrap(err, codes.DataLoss, "failed to decode photon response")
	}
	if len(fc.Features) == 0 {
		return nil, nil
	}

	f := fc.Features[0]
	return &entity.GeoResult{
		Lat:         f.Geometry.Coordinates[1],
		Lon:         f.Geometry.Coordinates[0],
		DisplayName: locationText,
		AddressType: f.Properties.Type,
	}, nil
}

// SetBaseURL overrides the search endpoint base URL. Intended for tests.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = u
}

var _ entity.Geocoder = (*Client)(nil)
