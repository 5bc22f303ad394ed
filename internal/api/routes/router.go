package routes

import (
	"net/http"

	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/api/handlers"
	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/api/middleware"
	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	listingSearchHandler *handlers.ListingSearchHandler
	geolocationHandler   *handlers.GeolocationHandler
	healthHandler        *handlers.HealthHandler

	searchLimiter  *middleware.RateLimiter
	allowedOrigins []string
	metrics        *observability.Metrics
}

// NewRouter creates a new router. searchLimiter may be nil.
func NewRouter(
	listingSearchHandler *handlers.ListingSearchHandler,
	geolocationHandler *handlers.GeolocationHandler,
	healthHandler *handlers.HealthHandler,
	searchLimiter *middleware.RateLimiter,
	allowedOrigins []string,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:                  http.NewServeMux(),
		listingSearchHandler: listingSearchHandler,
		geolocationHandler:   geolocationHandler,
		healthHandler:        healthHandler,
		searchLimiter:        searchLimiter,
		allowedOrigins:       allowedOrigins,
		metrics:              metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", r.healthHandler.Health)
	r.mux.HandleFunc("GET /ready", r.healthHandler.Ready)

	// Listing search endpoints
	search := http.Handler(http.HandlerFunc(r.listingSearchHandler.SearchListings))
	if r.searchLimiter != nil {
		search = r.searchLimiter.Middleware(search)
	}
	r.mux.Handle("POST /api/listings/search", search)

	// Geolocation endpoints
	if r.geolocationHandler != nil {
		r.mux.HandleFunc("GET /api/geocode", r.geolocationHandler.ResolveLocality)
	}

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.RequestIDMiddleware(handler)

	// CORS wraps everything so rejected requests carry headers too
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
