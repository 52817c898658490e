// Package musicbrainz provides a client for the MusicBrainz XML/JSON Web
// Service's artist search, area, and relationship-traversal endpoints.
//
// Usage Guidelines and Constraints (based on MusicBrainz API TOS and Social
// Contract):
//
//  1. Rate Limiting (The "1.0s" Rule)
//     MusicBrainz enforces a strict rate limit of 1 request per second per
//     IP address. Exceeding this limit will result in a 503 Service
//     Unavailable error and potential temporary IP blocking. This client
//     throttles every request to honor that limit.
//
//  2. User-Agent Identification
//     A descriptive User-Agent header is MANDATORY, of the form
//     "ApplicationName/Version ( ContactEmailOrWebsite )". Generic
//     User-Agents are frequently blocked to prevent anonymous scraping.
//
//  3. Caching and Efficiency
//     Callers are expected to cache data locally (e.g. using MBIDs as keys)
//     to avoid redundant requests for static metadata.
//
// For more details, refer to: https://musicbrainz.org/doc/MusicBrainz_API/Ethics
package musicbrainz

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/pannpers/go-apperr/apperr"
	"github.com/pannpers/go-apperr/apperr/codes"
	"github.com/pannpers/go-logging/logging"

	"github.com/talivision/where-am-i-listening/internal/entity"
	"github.com/talivision/where-am-i-listening/internal/resolver"
	"github.com/talivision/where-am-i-listening/pkg/api"
	"github.com/talivision/where-am-i-listening/pkg/throttle"
)

const (
	artistBaseURL = "https://musicbrainz.org/ws/2/artist/"
	areaBaseURL   = "https://musicbrainz.org/ws/2/area/"
	userAgent     = "WhereAmIListening/1.0.0 ( contact: where-am-i-listening@talivision.example )"

	// isPersonRelationTypeID is the well-known MusicBrainz relationship type
	// that links a performance name (e.g. a stage name or alias) to the
	// underlying person.
	isPersonRelationTypeID = "dd9886f2-1dfe-4270-97db-283f6839a666"

	// defaultRateLimitInterval matches the upstream's documented 1
	// request/second limit, applied with a small margin (spec calls for
	// >=1,100ms pacing). Used when NewClient is given a non-positive pace.
	defaultRateLimitInterval = 1100 * time.Millisecond

	// searchLimit bounds the artist search to the top 5 hits.
	searchLimit = 5

	// minScore is the minimum MusicBrainz relevance score a candidate must
	// carry to be considered.
	minScore = 70

	// maxAreaContextDepth bounds the backward "part of" walk against cyclic
	// or pathological area hierarchies.
	maxAreaContextDepth = 5
)

type areaJSON struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Type           string   `json:"type"`
	ISO31661Codes  []string `json:"iso-3166-1-codes"`
	ISO31662Codes  []string `json:"iso-3166-2-codes"`
}

type artistSearchResponse struct {
	Artists []struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		SortName  string    `json:"sort-name"`
		Score     int       `json:"score"`
		BeginArea *areaJSON `json:"begin-area"`
		Area      *areaJSON `json:"area"`
	} `json:"artists"`
}

type areaRelationsResponse struct {
	areaJSON
	Relations []struct {
		Type      string   `json:"type"`
		Direction string   `json:"direction"`
		Area      areaJSON `json:"area"`
	} `json:"relations"`
}

type artistRelationsResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	BeginArea *areaJSON `json:"begin-area"`
	Area      *areaJSON `json:"area"`
	Relations []struct {
		Type   string `json:"type"`
		TypeID string `json:"type-id"`
		Artist struct {
			ID string `json:"id"`
		} `json:"artist"`
	} `json:"relations"`
}

// Client is a MusicBrainz artist/area client implementing
// entity.MetadataSearcher, entity.RelationshipResolver, and
// entity.AreaContextResolver.
type Client struct {
	httpClient    *http.Client
	artistBaseURL string
	areaBaseURL   string
	throttler     *throttle.Throttler
	logger        *logging.Logger
}

// NewClient creates a MusicBrainz client. A nil httpClient falls back to a
// client with a 10-second timeout. pace is the minimum interval enforced
// between successive requests across search, area-context, and
// relationship lookups (spec.md §4.5); a non-positive value falls back to
// defaultRateLimitInterval.
func NewClient(httpClient *http.Client, logger *logging.Logger, pace time.Duration) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if pace <= 0 {
		pace = defaultRateLimitInterval
	}
	return &Client{
		httpClient:    httpClient,
		artistBaseURL: artistBaseURL,
		areaBaseURL:   areaBaseURL,
		throttler:     throttle.New(pace, 100),
		logger:        logger.With(slog.String("component", "musicbrainz")),
	}
}

func (c *Client) do(ctx context.Context, endpoint string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, apperr.Wrap(err, codes.Internal, "failed to create musicbrainz request")
	}
	req.Header.Set("User-Agent", userAgent)

	var resp *http.Response
	err = c.throttler.Do(ctx, func() error {
		var doErr error
		resp, doErr = c.httpClient.Do(req)
		return doErr
	})
	if apiErr := api.FromHTTP(err, resp, "musicbrainz api request failed"); apiErr != nil {
		if resp != nil {
			_ = resp.Body.Close()
		}
		return nil, apiErr
	}
	return resp, nil
}

// SearchArtist searches the artist endpoint with a quoted phrase query and
// walks results in returned order, skipping candidates that score below 70
// or fail the name-match gate against their sort-name (falling back to
// name). See entity.MetadataSearcher.
func (c *Client) SearchArtist(ctx context.Context, name string) (entity.CandidateOutcome, error) {
	c.logger.Info(ctx, "searching artist", slog.String("name", name))

	params := url.Values{}
	params.Set("query", fmt.Sprintf(`artist:"%s"`, escapeLucenePhrase(name)))
	params.Set("limit", fmt.Sprintf("%d", searchLimit))
	params.Set("fmt", "json")
	endpoint := fmt.Sprintf("%s?%s", c.artistBaseURL, params.Encode())

	resp, err := c.do(ctx, endpoint)
	if err != nil {
		c.logger.Error(ctx, "musicbrainz artist search failed", err, slog.String("name", name))
		return entity.CandidateOutcome{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	var data artistSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return entity.CandidateOutcome{}, apperr.Wrap(err, codes.DataLoss, "failed to decode musicbrainz search response")
	}

	if len(data.Artists) == 0 {
		return entity.CandidateOutcome{NoCandidates: true}, nil
	}

	for _, a := range data.Artists {
		if a.Score < minScore {
			continue
		}
		matchTarget := a.SortName
		if matchTarget == "" {
			matchTarget = a.Name
		}
		if !resolver.VerifyArtistMatch(name, matchTarget) {
			continue
		}

		cand := &entity.ArtistCandidate{
			Name:      a.Name,
			SortName:  a.SortName,
			Score:     a.Score,
			MBID:      a.ID,
			BeginArea: toEntityArea(a.BeginArea),
			Area:      toEntityArea(a.Area),
		}
		if cand.BeginArea == nil && cand.Area == nil && resolver.IsExactMatch(name, matchTarget) {
			cand.ExactMatch = true
		}

		return entity.CandidateOutcome{Candidate: cand}, nil
	}

	return entity.CandidateOutcome{AllRejected: true}, nil
}

// ResolveViaRelationship fetches the artist's relationships, follows the
// well-known "is person" link from a performance name to the underlying
// person, and returns the person's raw area fields.
func (c *Client) ResolveViaRelationship(ctx context.Context, mbid string) (*entity.ArtistCandidate, error) {
	c.logger.Info(ctx, "resolving via relationship", slog.String("mbid", mbid))

	endpoint := fmt.Sprintf("%s%s?inc=artist-rels&fmt=json", c.artistBaseURL, mbid)
	resp, err := c.do(ctx, endpoint)
	if err != nil {
		c.logger.Error(ctx, "musicbrainz relationship lookup failed", err, slog.String("mbid", mbid))
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var data artistRelationsResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, apperr.Wrap(err, codes.DataLoss, "failed to decode musicbrainz relationship response")
	}

	var personID string
	for _, rel := range data.Relations {
		if rel.TypeID == isPersonRelationTypeID {
			personID = rel.Artist.ID
			break
		}
	}
	if personID == "" {
		return nil, apperr.New(codes.NotFound, "no is-person relationship found")
	}

	personEndpoint := fmt.Sprintf("%s%s?fmt=json", c.artistBaseURL, personID)
	personResp, err := c.do(ctx, personEndpoint)
	if err != nil {
		c.logger.Error(ctx, "musicbrainz person lookup failed", err, slog.String("personID", personID))
		return nil, err
	}
	defer func() { _ = personResp.Body.Close() }()

	var person artistRelationsResponse
	if err := json.NewDecoder(personResp.Body).Decode(&person); err != nil {
		return nil, apperr.Wrap(err, codes.DataLoss, "failed to decode musicbrainz person response")
	}

	return &entity.ArtistCandidate{
		Name:      person.Name,
		MBID:      person.ID,
		BeginArea: toEntityArea(person.BeginArea),
		Area:      toEntityArea(person.Area),
	}, nil
}

// ResolveAreaContext fetches areaID with its backward "part of"
// relationships and derives the enclosing country (and, when known,
// subdivision). See entity.AreaContextResolver.
func (c *Client) ResolveAreaContext(ctx context.Context, areaID string) (*entity.AreaContext, error) {
	return c.resolveAreaContext(ctx, areaID, 0)
}

func (c *Client) resolveAreaContext(ctx context.Context, areaID string, depth int) (*entity.AreaContext, error) {
	if depth > maxAreaContextDepth {
		return nil, apperr.New(codes.NotFound, "area context depth exceeded")
	}

	endpoint := fmt.Sprintf("%s%s?inc=area-rels&fmt=json", c.areaBaseURL, areaID)
	resp, err := c.do(ctx, endpoint)
	if err != nil {
		c.logger.Error(ctx, "musicbrainz area lookup failed", err, slog.String("areaID", areaID))
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var data areaRelationsResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, apperr.Wrap(err, codes.DataLoss, "failed to decode musicbrainz area response")
	}

	if country := countryNameFromISO1(data.ISO31661Codes); country != "" {
		return &entity.AreaContext{Country: country}, nil
	}

	var firstParentID string
	for _, rel := range data.Relations {
		if rel.Direction != "backward" {
			continue
		}
		if firstParentID == "" {
			firstParentID = rel.Area.ID
		}
		if country := countryNameFromISO1(rel.Area.ISO31661Codes); country != "" {
			ctxOut := &entity.AreaContext{Country: country}
			if rel.Area.Type == string(entity.AreaTypeSubdivision) {
				ctxOut.Subdivision = rel.Area.Name
			}
			return ctxOut, nil
		}
		if country := countryNameFromISO2(rel.Area.ISO31662Codes); country != "" {
			ctxOut := &entity.AreaContext{Country: country}
			if rel.Area.Type == string(entity.AreaTypeSubdivision) {
				ctxOut.Subdivision = rel.Area.Name
			}
			return ctxOut, nil
		}
	}

	if firstParentID == "" {
		return nil, apperr.New(codes.NotFound, "no area context found")
	}
	return c.resolveAreaContext(ctx, firstParentID, depth+1)
}

// toEntityArea converts the wire representation into an entity.Area,
// returning nil for an absent field.
func toEntityArea(a *areaJSON) *entity.Area {
	if a == nil {
		return nil
	}
	return &entity.Area{
		ID:   a.ID,
		Name: a.Name,
		Type: entity.AreaType(a.Type),
		ISO1: a.ISO31661Codes,
		ISO2: a.ISO31662Codes,
	}
}

// countryNameFromISO1 resolves the first ISO 3166-1 code to a display
// country name via the locale display-name facility.
func countryNameFromISO1(codes []string) string {
	if len(codes) == 0 {
		return ""
	}
	region, err := language.ParseRegion(codes[0])
	if err != nil {
		return ""
	}
	return display.English.Regions().Name(region)
}

// countryNameFromISO2 treats an ISO 3166-2 code as a last-resort source of
// a country code by taking its first two characters.
func countryNameFromISO2(codes []string) string {
	if len(codes) == 0 {
		return ""
	}
	code := codes[0]
	if len(code) < 2 {
		return ""
	}
	return countryNameFromISO1([]string{strings.ToUpper(code[:2])})
}

// escapeLucenePhrase escapes characters that are special inside a Lucene
// double-quoted phrase (backslash and double-quote).
func escapeLucenePhrase(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return r.Replace(s)
}

// Compile-time interface compliance checks.
var (
	_ entity.MetadataSearcher      = (*Client)(nil)
	_ entity.RelationshipResolver  = (*Client)(nil)
	_ entity.AreaContextResolver   = (*Client)(nil)
)

// SetArtistBaseURL overrides the artist endpoint base URL. Intended for tests.
func (c *Client) SetArtistBaseURL(u string) {
	c.artistBaseURL = u
}

// SetAreaBaseURL overrides the area endpoint base URL. Intended for tests.
func (c *Client) SetAreaBaseURL(u string) {
	c.areaBaseURL = u
}

// Close stops the background throttler goroutine and releases resources.
func (c *Client) Close() error {
	if c.throttler != nil {
		c.throttler.Close()
	}
	return nil
}
