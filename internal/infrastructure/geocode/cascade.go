// Package geocode composes Nominatim and Photon into a two-provider cascade
// with a country-level fallback (spec.md §4.8).
package geocode

import (
	"context"
	"log/slog"
	"strings"

	"github.com/pannpers/go-logging/logging"

	"github.com/talivision/where-am-i-listening/internal/entity"
)

// Cascade tries Nominatim, then Photon, then — if the query contains a
// comma — retries both against the last (country) segment. Two providers
// tolerates provider-specific coverage gaps; the country fallback ensures a
// usable dot on the globe even for obscure localities.
type Cascade struct {
	primary   entity.Geocoder
	secondary entity.Geocoder
	logger    *logging.Logger
}

// NewCascade composes primary (Nominatim) and secondary (Photon) geocoders
// into a single entity.Geocoder.
func NewCascade(primary, secondary entity.Geocoder, logger *logging.Logger) *Cascade {
	return &Cascade{
		primary:   primary,
		secondary: secondary,
		logger:    logger.With(slog.String("component", "geocode-cascade")),
	}
}

// Geocode implements entity.Geocoder.
func (c *Cascade) Geocode(ctx context.Context, locationText string) (*entity.GeoResult, error) {
	if result, err := c.tryProviders(ctx, locationText); err != nil {
		return nil, err
	} else if result != nil {
		return result, nil
	}

	idx := strings.LastIndex(locationText, ",")
	if idx < 0 {
		return nil, nil
	}
	country := strings.TrimSpace(locationText[idx+1:])
	if country == "" {
		return nil, nil
	}

	c.logger.Info(ctx, "geocode cascade falling back to country segment",
		slog.String("original", locationText), slog.String("country", country))
	return c.tryProviders(ctx, country)
}

// tryProviders attempts Nominatim then Photon against locationText,
// returning the first non-nil result. A provider error is treated as a
// miss: a primary failure falls through to the secondary, and a secondary
// failure yields a nil result. Only a canceled or expired context is
// returned as an error.
func (c *Cascade) tryProviders(ctx context.Context, locationText string) (*entity.GeoResult, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	result, err := c.primary.Geocode(ctx, locationText)
	if err == nil && result != nil {
		return result, nil
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Error(ctx, "primary geocoder failed, falling back", err, slog.String("query", locationText))
	}

	result, err = c.secondary.Geocode(ctx, locationText)
	if err != nil {
		// Per spec.md §7, an upstream error is treated as a miss, not
		// propagated — callers already interpret a nil result as "try the
		// next fallback".
		c.logger.Error(ctx, "secondary geocoder failed", err, slog.String("query", locationText))
		return nil, nil
	}
	return result, nil
}

var _ entity.Geocoder = (*Cascade)(nil)
