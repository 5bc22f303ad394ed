package geolocation

import (
	"context"
	"strings"

	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/domain/providers"
	apperrors "github.com/nextopson-repo/Dhikcar-backend-sub001/pkg/errors"
)

// MockGeolocationProvider implements a mock geolocation provider for local runs and tests
type MockGeolocationProvider struct {
	places map[string]providers.Coordinates
}

// NewMockGeolocationProvider creates a new mock geolocation provider
func NewMockGeolocationProvider() providers.GeolocationProvider {
	return &MockGeolocationProvider{
		places: map[string]providers.Coordinates{
			"koramangala": {Latitude: 12.9352, Longitude: 77.6245},
			"indiranagar": {Latitude: 12.9784, Longitude: 77.6408},
			"bengaluru":   {Latitude: 12.9716, Longitude: 77.5946},
			"andheri":     {Latitude: 19.1136, Longitude: 72.8697},
			"mumbai":      {Latitude: 19.0760, Longitude: 72.8777},
			"connaught":   {Latitude: 28.6315, Longitude: 77.2167},
			"delhi":       {Latitude: 28.6139, Longitude: 77.2090},
			"gurugram":    {Latitude: 28.4595, Longitude: 77.0266},
			"jaipur":      {Latitude: 26.9124, Longitude: 75.7873},
			"pune":        {Latitude: 18.5204, Longitude: 73.8567},
			"hyderabad":   {Latitude: 17.3850, Longitude: 78.4867},
			"chennai":     {Latitude: 13.0827, Longitude: 80.2707},
		},
	}
}

// Geocode matches the most specific known place mentioned in the address.
// Address parts are ordered from most to least specific.
func (m *MockGeolocationProvider) Geocode(ctx context.Context, address string) (*providers.Coordinates, error) {
	for _, part := range strings.Split(strings.ToLower(address), ",") {
		part = strings.TrimSpace(part)
		for name, coords := range m.places {
			if part != "" && strings.Contains(part, name) {
				c := coords
				return &c, nil
			}
		}
	}
	return nil, apperrors.NewGeocodeError("ZERO_RESULTS", nil)
}
