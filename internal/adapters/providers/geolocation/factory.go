package geolocation

import (
	"fmt"

	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/domain/providers"
	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/infrastructure/observability"
	"github.com/nextopson-repo/Dhikcar-backend-sub001/pkg/config"
)

// NewResolver builds the configured geocoding provider behind the shared cache.
func NewResolver(cfg *config.GeolocationConfig, metrics *observability.Metrics) (*CachedGeocoder, error) {
	var provider providers.GeolocationProvider
	switch cfg.Provider {
	case "google":
		provider = NewGoogleGeolocationProviderWithOptions(cfg.APIKey, cfg.BaseURL, cfg.Timeout, nil)
	case "mock", "":
		provider = NewMockGeolocationProvider()
	default:
		return nil, fmt.Errorf("unknown geolocation provider %q", cfg.Provider)
	}

	return NewCachedGeocoder(provider, cfg.CacheSize, WithTTL(cfg.CacheTTL), WithMetrics(metrics))
}
