package geolocation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/domain/providers"
	apperrors "github.com/nextopson-repo/Dhikcar-backend-sub001/pkg/errors"
)

const (
	googleMapsBaseURL     = "https://maps.googleapis.com/maps/api"
	defaultGeocodeTimeout = 5 * time.Second
)

// GoogleGeolocationProvider implements the GeolocationProvider using the Google Geocoding API.
type GoogleGeolocationProvider struct {
	apiKey     string
	httpClient *http.Client
	geocodeURL string
	timeout    time.Duration
	region     string
}

// NewGoogleGeolocationProvider creates a new Google geolocation provider.
func NewGoogleGeolocationProvider(apiKey string, timeout time.Duration) providers.GeolocationProvider {
	return NewGoogleGeolocationProviderWithOptions(apiKey, googleMapsBaseURL, timeout, nil)
}

// NewGoogleGeolocationProviderWithOptions allows overriding base URL and HTTP client (used for tests).
func NewGoogleGeolocationProviderWithOptions(apiKey, baseURL string, timeout time.Duration, httpClient *http.Client) providers.GeolocationProvider {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = googleMapsBaseURL
	}
	if timeout <= 0 {
		timeout = defaultGeocodeTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &GoogleGeolocationProvider{
		apiKey:     apiKey,
		httpClient: httpClient,
		geocodeURL: strings.TrimSuffix(baseURL, "/") + "/geocode/json",
		timeout:    timeout,
		region:     "in",
	}
}

// Geocode converts an address to coordinates. Every failure, including the
// per-call timeout, is reported as a geocode error.
func (g *GoogleGeolocationProvider) Geocode(ctx context.Context, address string) (*providers.Coordinates, error) {
	trimmed := strings.TrimSpace(address)
	if trimmed == "" {
		return nil, apperrors.NewGeocodeError("address is required", nil)
	}
	if g.apiKey == "" {
		return nil, apperrors.NewGeocodeError("google maps api key is required", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	params := url.Values{}
	params.Set("address", trimmed)
	params.Set("region", g.region)
	params.Set("key", g.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.geocodeURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, apperrors.NewGeocodeError("failed to build geocode request", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewGeocodeError("geocode request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.NewGeocodeError(fmt.Sprintf("geocode request returned status %d", resp.StatusCode), nil)
	}

	var payload googleGeocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, apperrors.NewGeocodeError("failed to decode geocode response", err)
	}

	if payload.Status != "OK" {
		if payload.ErrorMessage != "" {
			return nil, apperrors.NewGeocodeError(fmt.Sprintf("geocode request failed: %s - %s", payload.Status, payload.ErrorMessage), nil)
		}
		return nil, apperrors.NewGeocodeError("geocode request failed: "+payload.Status, nil)
	}
	if len(payload.Results) == 0 {
		return nil, apperrors.NewGeocodeError("no results for address", nil)
	}

	loc := payload.Results[0].Geometry.Location
	return &providers.Coordinates{Latitude: loc.Lat, Longitude: loc.Lng}, nil
}

type googleGeocodeResponse struct {
	Status       string                `json:"status"`
	ErrorMessage string                `json:"error_message,omitempty"`
	Results      []googleGeocodeResult `json:"results"`
}

type googleGeocodeResult struct {
	FormattedAddress string         `json:"formatted_address"`
	Geometry         googleGeometry `json:"geometry"`
}

type googleGeometry struct {
	Location googleLocation `json:"location"`
}

type googleLocation struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
