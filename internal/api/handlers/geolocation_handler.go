package handlers

import (
	"net/http"
	"strings"

	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/domain/providers"
	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/infrastructure/observability"
)

// GeolocationHandler exposes the cached locality resolver
type GeolocationHandler struct {
	resolver providers.LocalityResolver
}

// NewGeolocationHandler creates a new geolocation handler.
func NewGeolocationHandler(resolver providers.LocalityResolver) *GeolocationHandler {
	return &GeolocationHandler{resolver: resolver}
}

// ResolveLocality handles GET /api/geocode?locality=...&city=...&state=...
func (h *GeolocationHandler) ResolveLocality(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	locality := strings.TrimSpace(q.Get("locality"))
	city := strings.TrimSpace(q.Get("city"))
	state := strings.TrimSpace(q.Get("state"))
	if locality == "" {
		respondWithError(w, http.StatusBadRequest, "locality parameter is required")
		return
	}

	coords, err := h.resolver.Resolve(r.Context(), locality, city, state)
	if err != nil {
		observability.LoggerFromContext(r.Context()).Warn().Err(err).Str("locality", locality).Msg("locality resolve failed")
		respondWithError(w, http.StatusBadGateway, "failed to geocode locality")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"locality": locality,
		"city":     city,
		"state":    state,
		"lat":      coords.Latitude,
		"lng":      coords.Longitude,
	})
}
