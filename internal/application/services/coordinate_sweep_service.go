package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/domain/repositories"
	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/infrastructure/observability"
)

// CoordinateSweepSummary reports one sweep over listings missing coordinates
type CoordinateSweepSummary struct {
	Batches  int
	Scanned  int
	Updated  int
	Skipped  int
	Claimed  int
	Failed   int
	Duration time.Duration
}

func (s CoordinateSweepSummary) String() string {
	return fmt.Sprintf("batches=%d scanned=%d updated=%d skipped=%d claimed_elsewhere=%d failed=%d duration=%s",
		s.Batches, s.Scanned, s.Updated, s.Skipped, s.Claimed, s.Failed, s.Duration.Round(time.Millisecond))
}

// CoordinateSweepConfig tunes the bulk sweep
type CoordinateSweepConfig struct {
	BatchSize  int
	BatchDelay time.Duration
	Workers    int
	// MaxListings stops the sweep after this many listings; zero means no limit
	MaxListings int
}

// CoordinateSweepService walks every listing without coordinates in id order
// and backfills them batch by batch.
type CoordinateSweepService struct {
	listings   repositories.ListingRepository
	backfiller *CoordinateBackfillService
	cfg        CoordinateSweepConfig
	sleep      func(context.Context, time.Duration) error
}

// NewCoordinateSweepService creates a sweep over the listing store
func NewCoordinateSweepService(listings repositories.ListingRepository, backfiller *CoordinateBackfillService, cfg CoordinateSweepConfig) *CoordinateSweepService {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &CoordinateSweepService{
		listings:   listings,
		backfiller: backfiller,
		cfg:        cfg,
		sleep:      sleepContext,
	}
}

// Run performs one full sweep. Individual listing failures are counted, not returned.
func (s *CoordinateSweepService) Run(ctx context.Context) (*CoordinateSweepSummary, error) {
	start := time.Now()
	logger := observability.LoggerFromContext(ctx)
	summary := &CoordinateSweepSummary{}

	var updated, skipped, claimed, failed atomic.Int64
	afterID := ""

	for {
		limit := s.cfg.BatchSize
		if s.cfg.MaxListings > 0 {
			remaining := s.cfg.MaxListings - summary.Scanned
			if remaining <= 0 {
				break
			}
			limit = min(limit, remaining)
		}

		batch, err := s.listings.ListMissingCoordinates(ctx, limit, afterID)
		if err != nil {
			return nil, fmt.Errorf("list listings missing coordinates after %q: %w", afterID, err)
		}
		if len(batch) == 0 {
			break
		}
		summary.Batches++
		summary.Scanned += len(batch)
		afterID = batch[len(batch)-1].ID

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.cfg.Workers)
		for _, l := range batch {
			g.Go(func() error {
				outcome, err := s.backfiller.Backfill(gctx, l)
				switch outcome {
				case BackfillUpdated:
					updated.Add(1)
				case BackfillClaimedByOther:
					claimed.Add(1)
				case BackfillSkipped:
					skipped.Add(1)
				default:
					failed.Add(1)
					logger.Warn().Err(err).Str("listing_id", l.ID).Msg("sweep backfill failed")
				}
				return nil
			})
		}
		_ = g.Wait()

		logger.Info().
			Int("batch", summary.Batches).
			Int("size", len(batch)).
			Str("last_id", afterID).
			Msg("coordinate sweep batch complete")

		if len(batch) < limit {
			break
		}
		if err := s.sleep(ctx, s.cfg.BatchDelay); err != nil {
			return nil, err
		}
	}

	summary.Updated = int(updated.Load())
	summary.Skipped = int(skipped.Load())
	summary.Claimed = int(claimed.Load())
	summary.Failed = int(failed.Load())
	summary.Duration = time.Since(start)
	return summary, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
