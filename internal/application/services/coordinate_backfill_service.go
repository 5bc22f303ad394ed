package services

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/domain/entities"
	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/domain/providers"
	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/domain/repositories"
	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/infrastructure/observability"
)

// BackfillOutcome is the result of one coordinate backfill attempt
type BackfillOutcome string

const (
	BackfillUpdated        BackfillOutcome = "updated"
	BackfillSkipped        BackfillOutcome = "skipped"
	BackfillClaimedByOther BackfillOutcome = "claimed_elsewhere"
	BackfillFailed         BackfillOutcome = "failed"
)

const backfillClaimPrefix = "backfill:listing:"

// CoordinateBackfillConfig tunes the backfiller
type CoordinateBackfillConfig struct {
	// PerRequest is how many listings of a result page are considered
	PerRequest int
	// Timeout bounds one detached task
	Timeout time.Duration
	// ClaimTTL is how long a cross-instance claim lives; zero disables claims
	ClaimTTL time.Duration
}

// CoordinateBackfillService geocodes listings that lack coordinates and
// persists the result. The search path only ever schedules work on it.
type CoordinateBackfillService struct {
	listings repositories.ListingRepository
	resolver providers.LocalityResolver
	claims   providers.CacheProvider
	cfg      CoordinateBackfillConfig
	metrics  *observability.Metrics
	inflight sync.WaitGroup
}

// NewCoordinateBackfillService creates a backfiller. claims and metrics may be nil.
func NewCoordinateBackfillService(
	listings repositories.ListingRepository,
	resolver providers.LocalityResolver,
	claims providers.CacheProvider,
	cfg CoordinateBackfillConfig,
	metrics *observability.Metrics,
) *CoordinateBackfillService {
	if cfg.PerRequest <= 0 {
		cfg.PerRequest = 3
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &CoordinateBackfillService{
		listings: listings,
		resolver: resolver,
		claims:   claims,
		cfg:      cfg,
		metrics:  metrics,
	}
}

// NeedsBackfill reports whether a listing lacks coordinates but has a full address
func NeedsBackfill(l *entities.Listing) bool {
	return l != nil && !l.HasCoordinates() && l.Address.HasFullAddress()
}

// Schedule starts detached backfill tasks for the first listings of a page. It never blocks on them.
func (s *CoordinateBackfillService) Schedule(listings []*entities.Listing) {
	n := min(len(listings), s.cfg.PerRequest)
	for _, l := range listings[:n] {
		if !NeedsBackfill(l) {
			continue
		}
		s.inflight.Add(1)
		go s.run(l)
	}
}

// Wait blocks until every scheduled task has finished
func (s *CoordinateBackfillService) Wait() {
	s.inflight.Wait()
}

func (s *CoordinateBackfillService) run(l *entities.Listing) {
	defer s.inflight.Done()

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
	defer cancel()

	logger := observability.LoggerFromContext(ctx)
	defer func() {
		if r := recover(); r != nil {
			logger.Error().
				Str("listing_id", l.ID).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("coordinate backfill panicked")
		}
	}()

	if _, err := s.Backfill(ctx, l); err != nil {
		logger.Warn().Err(err).Str("listing_id", l.ID).Msg("coordinate backfill failed")
	}
}

// Backfill resolves and persists coordinates for one listing. On success the
// in-memory listing is updated too.
func (s *CoordinateBackfillService) Backfill(ctx context.Context, l *entities.Listing) (outcome BackfillOutcome, err error) {
	defer func() { observability.RecordBackfill(ctx, s.metrics, string(outcome)) }()

	if !NeedsBackfill(l) {
		return BackfillSkipped, nil
	}

	if s.claims != nil && s.cfg.ClaimTTL > 0 {
		key := backfillClaimPrefix + l.ID
		claimed, claimErr := s.claims.SetIfAbsent(ctx, key, []byte(time.Now().UTC().Format(time.RFC3339)), s.cfg.ClaimTTL)
		switch {
		case claimErr != nil:
			observability.LoggerFromContext(ctx).Debug().Err(claimErr).Str("listing_id", l.ID).Msg("backfill claim unavailable, proceeding")
		case !claimed:
			return BackfillClaimedByOther, nil
		default:
			defer func() {
				if err != nil {
					_ = s.claims.Delete(context.WithoutCancel(ctx), key)
				}
			}()
		}
	}

	coords, err := s.resolver.Resolve(ctx, l.Address.Locality, l.Address.City, l.Address.State)
	if err != nil {
		return BackfillFailed, fmt.Errorf("resolve listing %s: %w", l.ID, err)
	}

	if err := s.listings.UpdateCoordinates(ctx, l.Address.ID, coords.Latitude, coords.Longitude); err != nil {
		return BackfillFailed, fmt.Errorf("persist coordinates for listing %s: %w", l.ID, err)
	}
	l.SetCoordinates(coords.Latitude, coords.Longitude)

	observability.LoggerFromContext(ctx).Debug().
		Str("listing_id", l.ID).
		Float64("latitude", coords.Latitude).
		Float64("longitude", coords.Longitude).
		Msg("listing coordinates backfilled")

	return BackfillUpdated, nil
}
