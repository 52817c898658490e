// Package http adapts the resolver orchestrator and cache to a plain REST
// surface: a batch NDJSON-streaming resolve endpoint, a single-artist read
// endpoint with partial-entry retry, and a cache invalidation endpoint
// (spec.md §4.10, §6).
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pannpers/go-logging/logging"

	"github.com/talivision/where-am-i-listening/internal/entity"
)

// Resolver is the subset of *resolver.Resolver the handler depends on,
// narrowed to ease testing with a hand-written fake.
type Resolver interface {
	Resolve(ctx context.Context, name string) (entity.ResolvedLocation, error)
}

// Geocoder is the subset of the geocoder cascade the handler depends on, to
// re-geocode a partial cache entry's stored location_name (spec.md §4.10's
// single-artist read path).
type Geocoder interface {
	Geocode(ctx context.Context, locationText string) (*entity.GeoResult, error)
}

// Handler serves the artist-resolution and cache-invalidation endpoints.
type Handler struct {
	resolver          Resolver
	geocoder          Geocoder
	cache             entity.Cache
	maxBatchSize      int
	interResolveSleep time.Duration
	logger            *logging.Logger
}

// NewHandler creates a Handler. cache may be nil, in which case every
// request resolves fully with no persistence (spec.md §6's "the handler
// reads an optional cache namespace ... if absent it runs cache-less").
// geocoder backs the single-artist read path's partial-entry retry and may
// also be nil, in which case a partial entry is returned as-is.
func NewHandler(resolver Resolver, geocoder Geocoder, cache entity.Cache, maxBatchSize int, interResolveSleep time.Duration, logger *logging.Logger) *Handler {
	return &Handler{
		resolver:          resolver,
		geocoder:          geocoder,
		cache:             cache,
		maxBatchSize:      maxBatchSize,
		interResolveSleep: interResolveSleep,
		logger:            logger.With(slog.String("component", "http-handler")),
	}
}

type artistsRequest struct {
	Artists []string `json:"artists"`
}

type resultLine struct {
	Artist        string      `json:"artist"`
	LocationName  string      `json:"location_name"`
	LocationCoord *[2]float64 `json:"location_coord"`
}

type deleteResponse struct {
	Deleted []string `json:"deleted"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func cacheKey(name string) string {
	return "artist:" + strings.ToLower(strings.TrimSpace(name))
}

func toLine(artist string, loc entity.ResolvedLocation) resultLine {
	return resultLine{Artist: artist, LocationName: loc.LocationName, LocationCoord: loc.LocationCoord}
}

// ResolveArtists implements POST /api/artists: streams NDJSON, flushing
// serviceable cached results first, then resolving and caching the rest
// sequentially (spec.md §4.10).
func (h *Handler) ResolveArtists(w http.ResponseWriter, r *http.Request) {
	var req artistsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Artists) == 0 {
		writeJSONError(w, http.StatusBadRequest, "Invalid artists array")
		return
	}

	names := req.Artists
	if len(names) > h.maxBatchSize {
		names = names[:h.maxBatchSize]
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)

	ctx := r.Context()
	enc := json.NewEncoder(w)

	var uncached []string
	for _, name := range names {
		loc, ok := h.serviceableCacheHit(ctx, name)
		if !ok {
			uncached = append(uncached, name)
			continue
		}
		if err := enc.Encode(toLine(name, loc)); err != nil {
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}

	for i, name := range uncached {
		if ctx.Err() != nil {
			h.logger.Info(ctx, "client disconnected, aborting batch resolve", slog.String("artist", name))
			return
		}

		loc, err := h.resolver.Resolve(ctx, name)
		if err != nil {
			h.logger.Error(ctx, "resolve failed, closing stream", err, slog.String("artist", name))
			return
		}

		if err := enc.Encode(toLine(name, loc)); err != nil {
			return
		}
		if flusher != nil {
			flusher.Flush()
		}

		if h.cache != nil {
			if err := h.cache.Set(ctx, cacheKey(name), loc); err != nil {
				h.logger.Error(ctx, "cache write failed", err, slog.String("artist", name))
			}
		}

		if i < len(uncached)-1 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(h.interResolveSleep):
			}
		}
	}
}

// serviceableCacheHit returns the cached location for name if one exists
// and is serviceable (has coordinates, or is Unknown). Partial entries and
// cache-read errors are both treated as misses.
func (h *Handler) serviceableCacheHit(ctx context.Context, name string) (entity.ResolvedLocation, bool) {
	if h.cache == nil {
		return entity.ResolvedLocation{}, false
	}
	loc, err := h.cache.Get(ctx, cacheKey(name))
	if err != nil {
		h.logger.Error(ctx, "cache read failed", err, slog.String("artist", name))
		return entity.ResolvedLocation{}, false
	}
	if loc == nil || !loc.IsServiceable() {
		return entity.ResolvedLocation{}, false
	}
	return *loc, true
}

// DeleteCache implements DELETE /api/cache: removes the given artists'
// cache entries.
func (h *Handler) DeleteCache(w http.ResponseWriter, r *http.Request) {
	var req artistsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Artists) == 0 {
		writeJSONError(w, http.StatusBadRequest, "Invalid artists array")
		return
	}

	ctx := r.Context()
	deleted := make([]string, 0, len(req.Artists))
	for _, name := range req.Artists {
		if h.cache != nil {
			if err := h.cache.Delete(ctx, cacheKey(name)); err != nil {
				h.logger.Error(ctx, "cache delete failed", err, slog.String("artist", name))
				continue
			}
		}
		deleted = append(deleted, name)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(deleteResponse{Deleted: deleted})
}

// GetArtist implements the secondary single-artist read path (spec.md
// §4.10): a cache hit with coordinates or the Unknown sentinel is returned
// as-is; a partial hit (a stored location_name with no coordinates) is
// retried by re-geocoding that name, persisting the upgrade on success; a
// miss runs the full resolver, the same as the batch path.
func (h *Handler) GetArtist(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name == "" {
		writeJSONError(w, http.StatusBadRequest, "Invalid artists array")
		return
	}

	ctx := r.Context()
	key := cacheKey(name)

	if h.cache != nil {
		cached, err := h.cache.Get(ctx, key)
		if err != nil {
			h.logger.Error(ctx, "cache read failed", err, slog.String("artist", name))
		} else if cached != nil {
			if cached.IsServiceable() {
				writeJSON(w, toLine(name, *cached))
				return
			}
			if cached.IsPartial() {
				writeJSON(w, toLine(name, h.retryPartial(ctx, name, key, *cached)))
				return
			}
		}
	}

	loc, err := h.resolver.Resolve(ctx, name)
	if err != nil {
		h.logger.Error(ctx, "resolve failed", err, slog.String("artist", name))
		writeJSONError(w, http.StatusInternalServerError, "resolve failed")
		return
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, key, loc); err != nil {
			h.logger.Error(ctx, "cache write failed", err, slog.String("artist", name))
		}
	}

	writeJSON(w, toLine(name, loc))
}

// retryPartial re-geocodes a partial entry's stored location_name. On
// success it persists and returns the upgraded location; otherwise it
// returns the partial entry unchanged.
func (h *Handler) retryPartial(ctx context.Context, name, key string, partial entity.ResolvedLocation) entity.ResolvedLocation {
	if h.geocoder == nil {
		return partial
	}

	geo, err := h.geocoder.Geocode(ctx, partial.LocationName)
	if err != nil {
		h.logger.Error(ctx, "partial-entry geocode retry failed", err, slog.String("artist", name))
		return partial
	}
	if geo == nil {
		return partial
	}

	coord := [2]float64{geo.Lat, geo.Lon}
	updated := entity.ResolvedLocation{LocationName: geo.DisplayName, LocationCoord: &coord}
	if err := h.cache.Set(ctx, key, updated); err != nil {
		h.logger.Error(ctx, "cache write failed after partial-entry retry", err, slog.String("artist", name))
	}
	return updated
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: message})
}
