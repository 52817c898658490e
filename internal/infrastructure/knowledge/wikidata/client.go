// Package wikidata provides a SPARQL client over Wikidata's query service,
// answering the person-birthplace, band-formation, and subdivision-capital
// questions the resolver's fallback chain needs (spec.md §4.7).
package wikidata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pannpers/go-apperr/apperr"
	"github.com/pannpers/go-apperr/apperr/codes"
	"github.com/pannpers/go-logging/logging"

	"github.com/talivision/where-am-i-listening/internal/entity"
	"github.com/talivision/where-am-i-listening/internal/infrastructure/httpfetch"
	"github.com/talivision/where-am-i-listening/pkg/api"
)

const sparqlEndpoint = "https://query.wikidata.org/sparql"

// sparqlResponse mirrors the SPARQL-results-JSON shape this client needs:
// only the "bindings" array under results.
type sparqlResponse struct {
	Results struct {
		Bindings []map[string]struct {
			Value string `json:"value"`
		} `json:"bindings"`
	} `json:"results"`
}

// Client queries the Wikidata SPARQL endpoint.
type Client struct {
	fetcher  *httpfetch.Fetcher
	endpoint string
	limiter  *rate.Limiter
	logger   *logging.Logger
}

// NewClient creates a Wikidata SPARQL client. A nil httpClient falls back to
// a client with a 15-second timeout (SPARQL queries can be slow).
func NewClient(httpClient *http.Client, logger *logging.Logger, ratePerSecond float64) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		fetcher:  httpfetch.New(httpClient),
		endpoint: sparqlEndpoint,
		limiter:  rate.NewLimiter(rate.Limit(ratePerSecond), 1),
		logger:   logger.With(slog.String("component", "wikidata")),
	}
}

// PersonOrBandOrigin asks for a human entity's birthplace/formation
// location (P19 or P740 on a P31=Q5 entity) matching name, falling back to
// a musical-group's formation location (P31=Q215380, P740) if the person
// query yields nothing. See entity.KnowledgeGraphClient.
func (c *Client) PersonOrBandOrigin(ctx context.Context, name string) (string, error) {
	if label, err := c.queryLabel(ctx, personBirthplaceQuery(name)); err != nil {
		return "", err
	} else if label != "" {
		return label, nil
	}
	return c.queryLabel(ctx, bandFormationQuery(name))
}

// SubdivisionCapital asks for the capital (P36) of a named subdivision. See
// entity.KnowledgeGraphClient.
func (c *Client) SubdivisionCapital(ctx context.Context, subdivision string) (string, error) {
	return c.queryLabel(ctx, subdivisionCapitalQuery(subdivision))
}

// queryLabel executes query and returns the "placeLabel" binding of the
// first result row, or "" if the query produced no bindings.
func (c *Client) queryLabel(ctx context.Context, query string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", apperr.Wrap(err, codes.Canceled, "wikidata rate limiter wait failed")
	}

	form := url.Values{}
	form.Set("query", query)
	form.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", apperr.Wrap(err, codes.Internal, "failed to create wikidata request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/sparql-results+json")

	resp, err := c.fetcher.Do(ctx, req)
	if resp != nil {
		defer func() { _ = resp.Body.Close() }()
	}
	if apiErr := api.FromHTTP(err, resp, "wikidata sparql request failed"); apiErr != nil {
		c.logger.Error(ctx, "wikidata query failed", apiErr)
		return "", apiErr
	}

	var data sparqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", apperr.Wrap(err, codes.DataLoss, "failed to decode wikidata response")
	}

	if len(data.Results.Bindings) == 0 {
		return "", nil
	}
	return data.Results.Bindings[0]["placeLabel"].Value, nil
}

// escapeSPARQLLiteral escapes double quotes for interpolation into a SPARQL
// string literal, per spec.md §4.7.
func escapeSPARQLLiteral(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}

func personBirthplaceQuery(name string) string {
	return fmt.Sprintf(`SELECT ?placeLabel WHERE {
  ?person wdt:P31 wd:Q5 ;
          rdfs:label "%s"@en .
  OPTIONAL { ?person wdt:P19 ?place . }
  OPTIONAL { ?person wdt:P740 ?place . }
  FILTER(BOUND(?place))
  SERVICE wikibase:label { bd:serviceParam wikibase:language "en". }
} LIMIT 1`, escapeSPARQLLiteral(name))
}

func bandFormationQuery(name string) string {
	return fmt.Sprintf(`SELECT ?placeLabel WHERE {
  ?band wdt:P31 wd:Q215380 ;
        wdt:P740 ?place ;
        rdfs:label "%s"@en .
  SERVICE wikibase:label { bd:serviceParam wikibase:language "en". }
} LIMIT 1`, escapeSPARQLLiteral(name))
}

func subdivisionCapitalQuery(subdivision string) string {
	return fmt.Sprintf(`SELECT ?placeLabel WHERE {
  ?subdivision rdfs:label "%s"@en ;
               wdt:P36 ?place .
  SERVICE wikibase:label { bd:serviceParam wikibase:language "en". }
} LIMIT 1`, escapeSPARQLLiteral(subdivision))
}

// SetEndpoint overrides the SPARQL endpoint URL. Intended for tests.
func (c *Client) SetEndpoint(u string) {
	c.endpoint = u
}

var _ entity.KnowledgeGraphClient = (*Client)(nil)
