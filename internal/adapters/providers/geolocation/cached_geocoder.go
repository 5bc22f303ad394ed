package geolocation

import (
	"context"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/domain/providers"
	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/infrastructure/observability"
	apperrors "github.com/nextopson-repo/Dhikcar-backend-sub001/pkg/errors"
)

const (
	defaultCacheTTL  = 24 * time.Hour
	defaultCacheSize = 10000
)

// GeocodeKey is a normalized locality tuple
type GeocodeKey struct {
	Locality string
	City     string
	State    string
}

// NewGeocodeKey lower-cases and trims each part
func NewGeocodeKey(locality, city, state string) GeocodeKey {
	return GeocodeKey{
		Locality: normalize(locality),
		City:     normalize(city),
		State:    normalize(state),
	}
}

// geocodeAddress joins the trimmed, non-blank parts from most to least specific.
// Case is kept as given; only the cache key is lower-cased.
func geocodeAddress(locality, city, state string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{locality, city, state} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

type geocodeEntry struct {
	coords     providers.Coordinates
	resolvedAt time.Time
}

// CachedGeocoder resolves localities through a GeolocationProvider and keeps
// successful answers in a bounded in-process cache. Failures are not cached.
// Concurrent misses on one key may each call the provider; the last write wins.
type CachedGeocoder struct {
	provider providers.GeolocationProvider
	entries  *lru.Cache[GeocodeKey, geocodeEntry]
	ttl      time.Duration
	now      func() time.Time
	metrics  *observability.Metrics
}

// CachedGeocoderOption configures a CachedGeocoder
type CachedGeocoderOption func(*CachedGeocoder)

// WithTTL sets how long a resolved entry stays valid
func WithTTL(ttl time.Duration) CachedGeocoderOption {
	return func(c *CachedGeocoder) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) CachedGeocoderOption {
	return func(c *CachedGeocoder) {
		if now != nil {
			c.now = now
		}
	}
}

// WithMetrics records cache hits and misses
func WithMetrics(metrics *observability.Metrics) CachedGeocoderOption {
	return func(c *CachedGeocoder) {
		c.metrics = metrics
	}
}

// NewCachedGeocoder creates a geocode cache holding at most size entries.
func NewCachedGeocoder(provider providers.GeolocationProvider, size int, opts ...CachedGeocoderOption) (*CachedGeocoder, error) {
	if size <= 0 {
		size = defaultCacheSize
	}
	entries, err := lru.New[GeocodeKey, geocodeEntry](size)
	if err != nil {
		return nil, err
	}

	c := &CachedGeocoder{
		provider: provider,
		entries:  entries,
		ttl:      defaultCacheTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Resolve returns coordinates for the locality, calling the provider only on a miss.
func (c *CachedGeocoder) Resolve(ctx context.Context, locality, city, state string) (*providers.Coordinates, error) {
	key := NewGeocodeKey(locality, city, state)
	address := geocodeAddress(locality, city, state)
	if address == "" {
		return nil, apperrors.NewGeocodeError("no address to resolve", nil)
	}

	if entry, ok := c.entries.Get(key); ok && c.now().Sub(entry.resolvedAt) < c.ttl {
		observability.RecordGeocodeLookup(ctx, c.metrics, true)
		coords := entry.coords
		return &coords, nil
	}
	observability.RecordGeocodeLookup(ctx, c.metrics, false)

	coords, err := c.provider.Geocode(ctx, address)
	if err != nil {
		observability.RecordGeocodeFailure(ctx, c.metrics)
		if apperrors.IsType(err, apperrors.ErrorTypeGeocode) {
			return nil, err
		}
		return nil, apperrors.NewGeocodeError("geocode lookup failed", err)
	}
	if coords == nil {
		observability.RecordGeocodeFailure(ctx, c.metrics)
		return nil, apperrors.NewGeocodeError("geocode lookup returned no coordinates", nil)
	}

	c.entries.Add(key, geocodeEntry{coords: *coords, resolvedAt: c.now()})

	result := *coords
	return &result, nil
}

// Len returns the number of cached entries, expired ones included
func (c *CachedGeocoder) Len() int {
	return c.entries.Len()
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
