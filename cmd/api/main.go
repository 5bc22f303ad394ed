package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/adapters/cache"
	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/adapters/database"
	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/adapters/providers/geolocation"
	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/api/handlers"
	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/api/middleware"
	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/api/routes"
	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/application/services"
	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/domain/providers"
	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/infrastructure/clients/postgres"
	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/infrastructure/clients/redis"
	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/infrastructure/observability"
	"github.com/nextopson-repo/Dhikcar-backend-sub001/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Environment)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()
	log.Info().Msg("PostgreSQL client initialized")

	// Redis is optional: without it there is no rate limiting and no backfill claims
	var cacheProvider providers.CacheProvider
	readiness := map[string]handlers.Pinger{"postgres": pgClient}
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, continuing without rate limiting")
		} else {
			defer redisClient.Close()
			cacheProvider = cache.NewRedisAdapter(redisClient)
			readiness["redis"] = redisClient
			log.Info().Msg("Redis client initialized")
		}
	}

	// Initialize adapters
	listingAdapter := database.NewListingAdapter(pgClient, metrics)
	ownerAdapter := database.NewOwnerAdapter(pgClient)
	savedListingAdapter := database.NewSavedListingAdapter(pgClient)
	republishAdapter := database.NewRepublishAdapter(pgClient)
	locationAdapter := database.NewLocationAdapter(pgClient)

	resolver, err := geolocation.NewResolver(&cfg.Geolocation, metrics)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize geolocation provider")
	}
	log.Info().Str("provider", cfg.Geolocation.Provider).Dur("cache_ttl", cfg.Geolocation.CacheTTL).Msg("geocoder initialized")

	// Initialize services
	backfillService := services.NewCoordinateBackfillService(
		listingAdapter,
		resolver,
		cacheProvider,
		services.CoordinateBackfillConfig{
			PerRequest: cfg.Search.BackfillPerRequest,
			Timeout:    cfg.Backfill.Timeout,
			ClaimTTL:   cfg.Backfill.ClaimTTL,
		},
		metrics,
	)

	enrichmentService := services.NewEnrichmentService(
		ownerAdapter,
		savedListingAdapter,
		republishAdapter,
		services.EnrichmentConfig{
			Timeout:     cfg.Search.EnrichmentTimeout,
			Concurrency: cfg.Search.EnrichmentConcurrency,
		},
		metrics,
	)

	searchService := services.NewListingSearchService(services.ListingSearchDeps{
		Builder:    services.NewListingQueryBuilder(cfg.Search.DefaultPageSize, cfg.Search.MaxPageSize),
		Listings:   listingAdapter,
		Geocoder:   resolver,
		Locations:  locationAdapter,
		Backfill:   backfillService,
		Enrichment: enrichmentService,
		Metrics:    metrics,
	})

	// Initialize handlers
	listingSearchHandler := handlers.NewListingSearchHandler(searchService)
	geolocationHandler := handlers.NewGeolocationHandler(resolver)
	healthHandler := handlers.NewHealthHandler(readiness)

	var searchLimiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled && cacheProvider != nil {
		searchLimiter = middleware.NewRateLimiter(
			cacheProvider,
			"search",
			cfg.RateLimit.Limit,
			cfg.RateLimit.Window,
			"Search rate limit exceeded. Please wait before searching again.",
			metrics,
		)
	}

	router := routes.NewRouter(
		listingSearchHandler,
		geolocationHandler,
		healthHandler,
		searchLimiter,
		cfg.Server.AllowedOrigins,
		metrics,
	)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router.SetupRoutes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	// let detached coordinate writes finish before the pool closes
	waitFor(shutdownCtx, backfillService.Wait)

	log.Info().Msg("server stopped")
}

func waitFor(ctx context.Context, wait func()) {
	done := make(chan struct{})
	go func() {
		wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		log.Warn().Msg("gave up waiting for background coordinate backfills")
	}
}
