package services

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/domain/entities"
	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/domain/providers"
	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/domain/repositories"
	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/infrastructure/observability"
	apperrors "github.com/nextopson-repo/Dhikcar-backend-sub001/pkg/errors"
)

// ListingSearchService answers listing searches: filter, page, rank by distance and enrich.
type ListingSearchService struct {
	builder    *ListingQueryBuilder
	listings   repositories.ListingRepository
	geocoder   providers.LocalityResolver
	locations  repositories.LocationRepository
	backfill   *CoordinateBackfillService
	enrichment *EnrichmentService
	metrics    *observability.Metrics
}

// ListingSearchDeps groups the collaborators of ListingSearchService.
// Locations, Backfill and Metrics are optional.
type ListingSearchDeps struct {
	Builder    *ListingQueryBuilder
	Listings   repositories.ListingRepository
	Geocoder   providers.LocalityResolver
	Locations  repositories.LocationRepository
	Backfill   *CoordinateBackfillService
	Enrichment *EnrichmentService
	Metrics    *observability.Metrics
}

// NewListingSearchService creates a new search service
func NewListingSearchService(deps ListingSearchDeps) *ListingSearchService {
	builder := deps.Builder
	if builder == nil {
		builder = NewListingQueryBuilder(0, 0)
	}
	return &ListingSearchService{
		builder:    builder,
		listings:   deps.Listings,
		geocoder:   deps.Geocoder,
		locations:  deps.Locations,
		backfill:   deps.Backfill,
		enrichment: deps.Enrichment,
		metrics:    deps.Metrics,
	}
}

// Search runs one search. Only invalid criteria and store failures are returned as
// errors; geocoding and enrichment problems degrade the result instead.
func (s *ListingSearchService) Search(ctx context.Context, criteria entities.SearchCriteria) (*entities.SearchResult, error) {
	start := time.Now()
	ctx, span := observability.StartSpan(ctx, "search.listings")
	defer span.End()
	logger := observability.LoggerFromContext(ctx)

	criteria, err := s.builder.Normalize(criteria)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	query := s.builder.BuildListingQuery(criteria)
	loc := criteria.Location

	var (
		origin   *entities.GeoPoint
		location *entities.SearchLocation
		page     []*entities.Listing
		total    int
	)

	g, gctx := errgroup.WithContext(ctx)
	if loc.Locality != "" {
		g.Go(func() error {
			origin = s.resolveOrigin(gctx, loc)
			return nil
		})
		if s.locations != nil {
			g.Go(func() error {
				location = s.findLocation(gctx, loc)
				return nil
			})
		}
	}
	g.Go(func() error {
		var err error
		page, err = s.listings.Find(gctx, query)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.listings.Count(gctx, query.Filter)
		return err
	})
	if err := g.Wait(); err != nil {
		observability.RecordError(span, err)
		logger.Error().Err(err).Msg("listing store unavailable")
		return nil, apperrors.NewInternalError("listing store unavailable", err)
	}

	if s.backfill != nil {
		s.backfill.Schedule(page)
	}

	var ranked []entities.RankedListing
	if origin != nil {
		ranked = RankByDistance(*origin, page)
	} else {
		ranked = Unranked(page)
	}

	enriched := s.enrichment.Enrich(ctx, ranked, EnrichOptions{
		UserID:      criteria.UserID,
		UserType:    criteria.UserType,
		SavedFilter: criteria.SavedFilter,
	})

	paging := Paginate(criteria.Page, criteria.PageSize, len(page), total)
	prices := make([]float64, len(enriched))
	for i, e := range enriched {
		prices[i] = e.Listing.Price
	}

	result := &entities.SearchResult{
		Listings:          enriched,
		TotalCount:        total,
		CurrentPage:       paging.Page,
		PageSize:          paging.PageSize,
		TotalPages:        paging.TotalPages,
		HasMore:           paging.HasMore,
		SearchLocation:    location,
		SearchCoordinates: origin,
		InventoryValue:    InventoryValue(prices),
	}
	if loc.Locality != "" {
		result.SearchType = entities.SearchTypeLocality
	}

	degraded := loc.Locality != "" && origin == nil
	observability.RecordSearch(ctx, s.metrics, result.SearchType, degraded)
	observability.SetSpanAttributes(span,
		attribute.Int("search.total", total),
		attribute.Int("search.returned", len(enriched)),
		attribute.Bool("search.degraded", degraded),
	)
	logger.Info().
		Int("total", total).
		Int("returned", len(enriched)).
		Int("page", paging.Page).
		Bool("ranked", origin != nil).
		Dur("duration", time.Since(start)).
		Msg("listing search completed")

	return result, nil
}

func (s *ListingSearchService) resolveOrigin(ctx context.Context, loc entities.LocationFilter) *entities.GeoPoint {
	if s.geocoder == nil {
		return nil
	}
	coords, err := s.geocoder.Resolve(ctx, loc.Locality, loc.City, loc.State)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).
			Str("locality", loc.Locality).
			Str("city", loc.City).
			Msg("geocoding failed, searching without distance ranking")
		return nil
	}
	return &entities.GeoPoint{Latitude: coords.Latitude, Longitude: coords.Longitude}
}

func (s *ListingSearchService) findLocation(ctx context.Context, loc entities.LocationFilter) *entities.SearchLocation {
	location, err := s.locations.FindActive(ctx, loc.State, loc.City, loc.Locality)
	if err != nil {
		if !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			observability.LoggerFromContext(ctx).Warn().Err(err).Str("locality", loc.Locality).Msg("search location lookup failed")
		}
		return nil
	}
	return location
}
