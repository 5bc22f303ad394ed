package providers

import (
	"context"
)

// GeolocationProvider defines the interface for geocoding services
type GeolocationProvider interface {
	// Geocode converts a free-text address to coordinates
	Geocode(ctx context.Context, address string) (*Coordinates, error)
}

// LocalityResolver resolves a structured locality to coordinates, usually through a cache
type LocalityResolver interface {
	Resolve(ctx context.Context, locality, city, state string) (*Coordinates, error)
}

// Coordinates represents geographical coordinates
type Coordinates struct {
	Latitude  float64
	Longitude float64
}
