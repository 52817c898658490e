// Package wikipedia provides a client that searches Wikipedia's article
// index and extracts an infobox location field from the top hit's
// section-0 wikitext (spec.md §4.6).
package wikipedia

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
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

const apiEndpoint = "https://en.wikipedia.org/w/api.php"

// infoboxFieldPatterns are tried in order; the first match wins. Each value
// is terminated by a newline or another "|", per spec.md §4.6 — a known
// source of imprecision for values that legitimately contain piped
// templates, which CleanWikipediaLocation's template-stripping only
// partially compensates for.
var infoboxFieldPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\|\s*origin\s*=\s*([^|\n]*)`),
	regexp.MustCompile(`(?i)\|\s*birth_place\s*=\s*([^|\n]*)`),
	regexp.MustCompile(`(?i)\|\s*birthplace\s*=\s*([^|\n]*)`),
}

type searchResponse struct {
	Query struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

type parseResponse struct {
	Parse struct {
		Wikitext struct {
			Value string `json:"*"`
		} `json:"wikitext"`
	} `json:"parse"`
}

// Client searches and scrapes Wikipedia articles.
type Client struct {
	fetcher  *httpfetch.Fetcher
	endpoint string
	limiter  *rate.Limiter
	logger   *logging.Logger
}

// NewClient creates a Wikipedia client. A nil httpClient falls back to a
// client with a 10-second timeout.
func NewClient(httpClient *http.Client, logger *logging.Logger, ratePerSecond float64) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		fetcher:  httpfetch.New(httpClient),
		endpoint: apiEndpoint,
		limiter:  rate.NewLimiter(rate.Limit(ratePerSecond), 1),
		logger:   logger.With(slog.String("component", "wikipedia")),
	}
}

// SearchLocation searches for query, takes the first hit's title, fetches
// its section-0 wikitext, and extracts the first matching infobox location
// field. Returns "" if the search is empty or no field matches. See
// entity.EncyclopediaSearcher.
func (c *Client) SearchLocation(ctx context.Context, query string) (string, error) {
	title, err := c.searchTitle(ctx, query)
	if err != nil {
		return "", err
	}
	if title == "" {
		return "", nil
	}

	wikitext, err := c.fetchSection0(ctx, title)
	if err != nil {
		return "", err
	}

	for _, pattern := range infoboxFieldPatterns {
		if m := pattern.FindStringSubmatch(wikitext); m != nil {
			return resolver.CleanWikipediaLocation(m[1]), nil
		}
	}
	return "", nil
}

func (c *Client) searchTitle(ctx context.Context, query string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", apperr.Wrap(err, codes.Canceled, "wikipedia rate limiter wait failed")
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", query)
	params.Set("srlimit", "1")
	params.Set("format", "json")
	endpoint := fmt.Sprintf("%s?%s", c.endpoint, params.Encode())

	resp, err := c.do(ctx, endpoint)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	var data searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", apperr.Wrap(err, codes.DataLoss, "failed to decode wikipedia search response")
	}
	if len(data.Query.Search) == 0 {
		return "", nil
	}
	return data.Query.Search[0].Title, nil
}

func (c *Client) fetchSection0(ctx context.Context, title string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", apperr.Wrap(err, codes.Canceled, "wikipedia rate limiter wait failed")
	}

	params := url.Values{}
	params.Set("action", "parse")
	params.Set("page", title)
	params.Set("prop", "wikitext")
	params.Set("section", "0")
	params.Set("format", "json")
	endpoint := fmt.Sprintf("%s?%s", c.endpoint, params.Encode())

	resp, err := c.do(ctx, endpoint)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	var data parseResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", apperr.Wrap(err, codes.DataLoss, "failed to decode wikipedia parse response")
	}
	return data.Parse.Wikitext.Value, nil
}

func (c *Client) do(ctx context.Context, endpoint string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, apperr.Wrap(err, codes.Internal, "failed to create wikipedia request")
	}

	resp, err := c.fetcher.Do(ctx, req)
	if apiErr := api.FromHTTP(err, resp, "wikipedia api request failed"); apiErr != nil {
		if resp != nil {
			_ = resp.Body.Close()
		}
		c.logger.Error(ctx, "wikipedia request failed", apiErr, slog.String("endpoint", endpoint))
		return nil, apiErr
	}
	return resp, nil
}

// SetEndpoint overrides the API endpoint base URL. Intended for tests.
func (c *Client) SetEndpoint(u string) {
	c.endpoint = u
}

var _ entity.EncyclopediaSearcher = (*Client)(nil)
