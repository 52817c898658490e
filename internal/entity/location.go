package entity

import "context"

// Unknown is the sentinel location name recorded when the resolution
// pipeline could not place an artist anywhere. A [ResolvedLocation] with
// this name always carries a nil coordinate, and is itself a valid
// terminal result — not an error.
const Unknown = "Unknown"

// ArtistCandidate is a single hit returned by a music-metadata search.
// BeginArea and Area are the raw administrative areas MusicBrainz attaches
// to an artist; either, both, or neither may be present.
type ArtistCandidate struct {
	Name     string
	SortName string
	Score    int
	MBID     string

	BeginArea *Area
	Area      *Area

	// ExactMatch is set when the candidate's name matched the query exactly
	// but no area was attached. The orchestrator still attempts relationship
	// traversal for such a candidate but must not fall through to
	// encyclopedic fallbacks (to avoid surfacing a different, unrelated
	// person who happens to share the name).
	ExactMatch bool
}

// AreaType enumerates the administrative levels a music-metadata service
// attaches to an Area. Upstream values outside this list are kept as their
// raw string; AreaTypeOther (empty) stands for an area with no type.
type AreaType string

const (
	AreaTypeCountry      AreaType = "Country"
	AreaTypeSubdivision  AreaType = "Subdivision"
	AreaTypeCounty       AreaType = "County"
	AreaTypeCity         AreaType = "City"
	AreaTypeMunicipality AreaType = "Municipality"
	AreaTypeDistrict     AreaType = "District"
	AreaTypeTown         AreaType = "Town"
	AreaTypeVillage      AreaType = "Village"
	AreaTypeIsland       AreaType = "Island"
	AreaTypeOther        AreaType = ""
)

// Area is an administrative region as recorded by the music-metadata
// service. ISO1 and ISO2 carry ISO 3166-1 / ISO 3166-2 codes when the
// upstream record supplies them; both are empty for most non-country areas.
type Area struct {
	ID   string
	Name string
	Type AreaType
	ISO1 []string
	ISO2 []string
}

// AreaContext is the country (and, when known, the enclosing subdivision)
// derived by walking an Area's backward "part of" hierarchy.
type AreaContext struct {
	Country     string
	Subdivision string
}

// GeoResult is a single geocoder hit, normalized to a uniform shape
// regardless of which provider produced it.
type GeoResult struct {
	Lat, Lon    float64
	DisplayName string
	AddressType string
}

// ResolvedLocation is the wire-level, cached form of a location resolution.
// LocationName is never empty; LocationCoord is nil exactly when
// LocationName is [Unknown] or when geocoding of a known name failed (a
// "partial" entry — see [IsPartial]).
type ResolvedLocation struct {
	LocationName  string     `json:"location_name"`
	LocationCoord *[2]float64 `json:"location_coord"`
}

// IsUnknown reports whether this is the terminal Unknown sentinel.
func (r ResolvedLocation) IsUnknown() bool {
	return r.LocationName == Unknown
}

// IsPartial reports whether this is a non-Unknown entry missing
// coordinates — eligible for a geocode-only retry on next read.
func (r ResolvedLocation) IsPartial() bool {
	return !r.IsUnknown() && r.LocationCoord == nil
}

// IsServiceable reports whether this entry can be returned to a client
// as-is: it either carries coordinates or is the Unknown sentinel.
func (r ResolvedLocation) IsServiceable() bool {
	return r.LocationCoord != nil || r.IsUnknown()
}

// UnknownLocation is the canonical Unknown terminal result.
func UnknownLocation() ResolvedLocation {
	return ResolvedLocation{LocationName: Unknown}
}

// MetadataSearcher searches a music-metadata catalog for artist candidates.
// Following a candidate's MBID to its relationships is RelationshipResolver's
// job.
//
// # Possible errors
//
//   - Unavailable: the upstream is down or rate-limited beyond retry.
type MetadataSearcher interface {
	// SearchArtist returns the first candidate that survives the score and
	// name-match gates, or a CandidateOutcome reporting why none did.
	SearchArtist(ctx context.Context, name string) (CandidateOutcome, error)
}

// CandidateOutcome is the tagged result of a candidate search: exactly one
// of NoCandidates, AllRejected, or a populated Candidate is meaningful.
type CandidateOutcome struct {
	NoCandidates bool
	AllRejected  bool
	Candidate    *ArtistCandidate
}

// RelationshipResolver follows artist-relationship links (e.g. a
// performance-name → person link) to a more specific area.
//
// # Possible errors
//
//   - Unavailable: the upstream is down or rate-limited beyond retry.
type RelationshipResolver interface {
	ResolveViaRelationship(ctx context.Context, mbid string) (*ArtistCandidate, error)
}

// AreaContextResolver walks an area's backward "part of" hierarchy to
// derive its enclosing country and subdivision.
//
// # Possible errors
//
//   - Unavailable: the upstream is down or rate-limited beyond retry.
type AreaContextResolver interface {
	ResolveAreaContext(ctx context.Context, areaID string) (*AreaContext, error)
}

// EncyclopediaSearcher searches an encyclopedic article index and extracts
// an infobox location field from the top hit.
//
// # Possible errors
//
//   - Unavailable: the upstream is down or rate-limited beyond retry.
type EncyclopediaSearcher interface {
	SearchLocation(ctx context.Context, query string) (string, error)
}

// KnowledgeGraphClient answers structured location questions via a SPARQL
// endpoint: a person's or band's origin, and a subdivision's capital.
//
// # Possible errors
//
//   - Unavailable: the upstream is down or rate-limited beyond retry.
type KnowledgeGraphClient interface {
	PersonOrBandOrigin(ctx context.Context, name string) (string, error)
	SubdivisionCapital(ctx context.Context, subdivision string) (string, error)
}

// Geocoder converts a free-text location string into coordinates. A nil
// result with a nil error means no provider produced a match.
//
// # Possible errors
//
//   - Unavailable: the upstream is down or rate-limited beyond retry.
type Geocoder interface {
	Geocode(ctx context.Context, locationText string) (*GeoResult, error)
}

// Cache is the persistence boundary for resolved locations. Implementations
// are expected to apply a TTL themselves; callers do not manage expiry.
// Get returns (nil, nil) when no entry exists for key.
//
// # Possible errors
//
//   - Unavailable: the backing store is unreachable.
type Cache interface {
	Get(ctx context.Context, key string) (*ResolvedLocation, error)
	Set(ctx context.Context, key string, value ResolvedLocation) error
	Delete(ctx context.Context, key string) error
	Close() error
}
