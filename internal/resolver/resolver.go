package resolver

import (
	"context"
	"log/slog"
	"strings"

	"github.com/pannpers/go-logging/logging"

	"github.com/talivision/where-am-i-listening/internal/entity"
)

// Resolver implements the multi-source fallback chain (spec.md §4.9): an
// artist name enters through the music-metadata client and, depending on
// what area data surfaces, cascades through relationship traversal, the
// SPARQL endpoint, the encyclopedia scraper, and a capital-snap before
// geocoding. Structurally the closest teacher analog is
// usecase/venue_enrichment_uc.go's multi-searcher fallback chain, adapted
// here to artist-origin collaborators instead of venue place-searchers.
type Resolver struct {
	metadata      entity.MetadataSearcher
	relationships entity.RelationshipResolver
	areaContext   entity.AreaContextResolver
	encyclopedia  entity.EncyclopediaSearcher
	knowledge     entity.KnowledgeGraphClient
	geocoder      entity.Geocoder
	logger        *logging.Logger
}

// New creates a Resolver from its collaborators.
func New(
	metadata entity.MetadataSearcher,
	relationships entity.RelationshipResolver,
	areaContext entity.AreaContextResolver,
	encyclopedia entity.EncyclopediaSearcher,
	knowledge entity.KnowledgeGraphClient,
	geocoder entity.Geocoder,
	logger *logging.Logger,
) *Resolver {
	return &Resolver{
		metadata:      metadata,
		relationships: relationships,
		areaContext:   areaContext,
		encyclopedia:  encyclopedia,
		knowledge:     knowledge,
		geocoder:      geocoder,
		logger:        logger.With(slog.String("component", "resolver")),
	}
}

// Resolve runs the fallback chain for a single artist name and returns its
// best-effort location, or the Unknown sentinel. A non-nil error means the
// music-metadata search itself failed outright (not merely found no
// matches); every other collaborator failure is treated as a miss, logged,
// and the chain moves to the next fallback.
func (r *Resolver) Resolve(ctx context.Context, name string) (entity.ResolvedLocation, error) {
	outcome, err := r.metadata.SearchArtist(ctx, name)
	if err != nil {
		r.logger.Error(ctx, "music-metadata search failed", err, slog.String("name", name))
		return entity.ResolvedLocation{}, err
	}

	// All candidates existed but were rejected: trusting encyclopedic
	// fallbacks here tends to surface famous homonyms, so the pipeline
	// commits to Unknown (spec.md §3, §4.9 step 1).
	if outcome.AllRejected {
		return entity.UnknownLocation(), nil
	}

	var cand *entity.ArtistCandidate
	if !outcome.NoCandidates {
		cand = outcome.Candidate
	}

	if cand != nil {
		area := chooseBestArea(cand.BeginArea, cand.Area)
		if area != nil && isCityLevel(area.Type) {
			return r.geocodeMusicBrainzResult(ctx, area), nil
		}

		if cand.MBID != "" {
			if rel, err := r.relationships.ResolveViaRelationship(ctx, cand.MBID); err != nil {
				r.logger.Error(ctx, "relationship traversal failed", err, slog.String("mbid", cand.MBID))
			} else if rel != nil {
				relArea := chooseBestArea(rel.BeginArea, rel.Area)
				if relArea != nil && isCityLevel(relArea.Type) {
					return r.geocodeMusicBrainzResult(ctx, relArea), nil
				}
			}
		}

		// Same homonym-avoidance as the AllRejected case above: an exact
		// name match with no area at all could be an unrelated person.
		if cand.ExactMatch && area == nil {
			return entity.UnknownLocation(), nil
		}
	}

	if label, err := r.knowledge.PersonOrBandOrigin(ctx, name); err != nil {
		r.logger.Error(ctx, "sparql person/band origin query failed", err, slog.String("name", name))
	} else if label != "" {
		return r.geocodeOrRaw(ctx, label), nil
	}

	if wikiLoc := r.searchEncyclopedia(ctx, name); wikiLoc != "" {
		return r.resolveWikipediaLocation(ctx, wikiLoc), nil
	}

	if cand != nil {
		if area := chooseBestArea(cand.BeginArea, cand.Area); area != nil {
			return r.geocodeMusicBrainzResult(ctx, area), nil
		}
	}

	return entity.UnknownLocation(), nil
}

// searchEncyclopedia tries three progressively broader queries against the
// encyclopedia scraper and returns the first non-empty hit.
func (r *Resolver) searchEncyclopedia(ctx context.Context, name string) string {
	queries := []string{name + " musician", name + " band", name}
	for _, q := range queries {
		loc, err := r.encyclopedia.SearchLocation(ctx, q)
		if err != nil {
			r.logger.Error(ctx, "encyclopedia search failed", err, slog.String("query", q))
			continue
		}
		if loc != "" {
			return loc
		}
	}
	return ""
}

// resolveWikipediaLocation geocodes a location string scraped from an
// infobox. If the direct geocode isn't city-level (or fails outright), it
// attempts a capital-snap before falling back to whatever it has.
func (r *Resolver) resolveWikipediaLocation(ctx context.Context, location string) entity.ResolvedLocation {
	geo, err := r.geocoder.Geocode(ctx, location)
	if err != nil {
		r.logger.Error(ctx, "geocode failed", err, slog.String("location", location))
	}
	if geo != nil && isCityLevelGeocode(geo) {
		return buildResolved(geo)
	}

	if snapped, ok := r.capitalSnap(ctx, location); ok {
		return snapped
	}
	if geo != nil {
		return buildResolved(geo)
	}
	return entity.ResolvedLocation{LocationName: location}
}

// capitalSnap treats the first comma-separated segment of location as a
// putative subdivision, looks up its capital, and re-geocodes
// "<capital>, <original>" — avoiding a marker dropped at the geographic
// centre of enormous administrative regions.
func (r *Resolver) capitalSnap(ctx context.Context, location string) (entity.ResolvedLocation, bool) {
	segments := strings.SplitN(location, ",", 2)
	subdivision := strings.TrimSpace(segments[0])
	if subdivision == "" {
		return entity.ResolvedLocation{}, false
	}

	capital, err := r.knowledge.SubdivisionCapital(ctx, subdivision)
	if err != nil {
		r.logger.Error(ctx, "subdivision capital lookup failed", err, slog.String("subdivision", subdivision))
		return entity.ResolvedLocation{}, false
	}
	if capital == "" {
		return entity.ResolvedLocation{}, false
	}

	geo, err := r.geocoder.Geocode(ctx, capital+", "+location)
	if err != nil || geo == nil {
		if err != nil {
			r.logger.Error(ctx, "capital-snap geocode failed", err, slog.String("capital", capital))
		}
		return entity.ResolvedLocation{}, false
	}
	return buildResolved(geo), true
}

// geocodeOrRaw geocodes location and falls back to a partial entry (raw
// name, nil coord) if geocoding fails — eligible for retry on next read
// (spec.md §4.10's secondary single-artist path).
func (r *Resolver) geocodeOrRaw(ctx context.Context, location string) entity.ResolvedLocation {
	geo, err := r.geocoder.Geocode(ctx, location)
	if err != nil {
		r.logger.Error(ctx, "geocode failed", err, slog.String("location", location))
	}
	if geo == nil {
		return entity.ResolvedLocation{LocationName: location}
	}
	return buildResolved(geo)
}

// geocodeMusicBrainzResult implements spec.md §4.9's
// geocodeMusicBrainzResult: subdivisions snap to their capital; every other
// area type tries progressively less specific "<name>, <subdivision>,
// <country>" combinations until one geocodes.
func (r *Resolver) geocodeMusicBrainzResult(ctx context.Context, area *entity.Area) entity.ResolvedLocation {
	areaCtx, err := r.areaContext.ResolveAreaContext(ctx, area.ID)
	if err != nil {
		r.logger.Error(ctx, "area context resolution failed", err, slog.String("areaID", area.ID))
		areaCtx = &entity.AreaContext{}
	}
	if areaCtx == nil {
		areaCtx = &entity.AreaContext{}
	}

	if area.Type == entity.AreaTypeSubdivision {
		if capital, err := r.knowledge.SubdivisionCapital(ctx, area.Name); err != nil {
			r.logger.Error(ctx, "subdivision capital lookup failed", err, slog.String("subdivision", area.Name))
		} else if capital != "" {
			query := capital
			if areaCtx.Country != "" {
				query = capital + ", " + areaCtx.Country
			}
			if geo, err := r.geocoder.Geocode(ctx, query); err == nil && geo != nil {
				return buildResolved(geo)
			}
		}
	}

	var candidates []string
	if areaCtx.Subdivision != "" && areaCtx.Country != "" {
		candidates = append(candidates, area.Name+", "+areaCtx.Subdivision+", "+areaCtx.Country)
	}
	if areaCtx.Subdivision != "" {
		candidates = append(candidates, area.Name+", "+areaCtx.Subdivision)
	}
	if areaCtx.Country != "" {
		candidates = append(candidates, area.Name+", "+areaCtx.Country)
	}
	candidates = append(candidates, area.Name)

	for _, q := range candidates {
		geo, err := r.geocoder.Geocode(ctx, q)
		if err != nil {
			r.logger.Error(ctx, "geocode failed", err, slog.String("query", q))
			continue
		}
		if geo != nil {
			return buildResolved(geo)
		}
	}

	return entity.ResolvedLocation{LocationName: area.Name}
}

// buildResolved converts a geocoder hit into the wire-level result form.
func buildResolved(geo *entity.GeoResult) entity.ResolvedLocation {
	coord := [2]float64{geo.Lat, geo.Lon}
	return entity.ResolvedLocation{LocationName: geo.DisplayName, LocationCoord: &coord}
}
