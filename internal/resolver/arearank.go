package resolver

import (
	"strings"

	"github.com/talivision/where-am-i-listening/internal/entity"
)

// areaSpecificity is a total function over administrative area types used
// to pick between an artist's begin-area and area, and to decide whether a
// resolved area is specific enough to geocode directly.
func areaSpecificity(t entity.AreaType) int {
	switch t {
	case entity.AreaTypeCountry:
		return 0
	case entity.AreaTypeSubdivision:
		return 1
	case entity.AreaTypeCounty:
		return 2
	case entity.AreaTypeCity, entity.AreaTypeMunicipality, entity.AreaTypeDistrict,
		entity.AreaTypeTown, entity.AreaTypeVillage, entity.AreaTypeIsland:
		return 3
	case entity.AreaTypeOther:
		return -1
	default:
		return 1
	}
}

// isCityLevel reports whether an area type is specific enough to geocode to
// a single populated place.
func isCityLevel(t entity.AreaType) bool {
	return areaSpecificity(t) >= 3
}

// chooseBestArea picks the more specific of an artist's begin-area and area.
// Both fields are frequently populated; area tends to be the country while
// begin-area tends to be the city. Ties (e.g. both countries for a
// single-country act) favor area.
func chooseBestArea(begin, area *entity.Area) *entity.Area {
	if area == nil {
		return begin
	}
	if begin == nil {
		return area
	}
	if areaSpecificity(area.Type) >= areaSpecificity(begin.Type) {
		return area
	}
	return begin
}

// cityLevelAddressTypes are the geocoder address-type classifications
// considered city-level.
var cityLevelAddressTypes = map[string]struct{}{
	"city": {}, "town": {}, "village": {}, "municipality": {},
	"suburb": {}, "neighbourhood": {}, "district": {}, "borough": {}, "locality": {},
}

// isCityLevelGeocode reports whether a geocoder result's address type
// classifies as city-level.
func isCityLevelGeocode(g *entity.GeoResult) bool {
	if g == nil {
		return false
	}
	_, ok := cityLevelAddressTypes[strings.ToLower(g.AddressType)]
	return ok
}
