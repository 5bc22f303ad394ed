package services

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/application/loaders"
	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/domain/entities"
	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/domain/repositories"
	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/infrastructure/observability"
)

// Enrichment drop reasons reported on the enrichment_dropped counter
const (
	dropSavedFetch     = "saved_fetch"
	dropRepublishFetch = "republish_fetch"
	dropOwnerLookup    = "owner_lookup"
	dropTimeout        = "timeout"
)

// EnrichOptions carries the caller state enrichment depends on
type EnrichOptions struct {
	UserID      string
	UserType    entities.UserType
	SavedFilter entities.SavedFilter
}

// EnrichmentConfig tunes the owner fan-out
type EnrichmentConfig struct {
	Timeout     time.Duration
	Concurrency int
}

// EnrichmentService decorates ranked listings with ownership, saved state and display fields
type EnrichmentService struct {
	owners    repositories.OwnerRepository
	saved     repositories.SavedListingRepository
	republish repositories.RepublishRepository
	cfg       EnrichmentConfig
	metrics   *observability.Metrics
	now       func() time.Time
}

// NewEnrichmentService creates an enrichment pipeline. metrics may be nil.
func NewEnrichmentService(
	owners repositories.OwnerRepository,
	saved repositories.SavedListingRepository,
	republish repositories.RepublishRepository,
	cfg EnrichmentConfig,
	metrics *observability.Metrics,
) *EnrichmentService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 8
	}
	return &EnrichmentService{
		owners:    owners,
		saved:     saved,
		republish: republish,
		cfg:       cfg,
		metrics:   metrics,
		now:       time.Now,
	}
}

type enrichOutcome struct {
	index int
	item  entities.EnrichedListing
	ok    bool
}

// Enrich never fails as a whole. Listings whose lookups fail are dropped, and a
// failure of a page-wide fetch drops the page. Order of ranked is preserved.
func (s *EnrichmentService) Enrich(ctx context.Context, ranked []entities.RankedListing, opts EnrichOptions) []entities.EnrichedListing {
	ctx, span := observability.StartSpan(ctx, "enrichment.enrich")
	defer span.End()
	logger := observability.LoggerFromContext(ctx)

	ranked = dedupeRanked(ranked)
	if len(ranked) == 0 {
		return []entities.EnrichedListing{}
	}

	ids := make([]string, len(ranked))
	for i, r := range ranked {
		ids[i] = r.Listing.ID
	}

	var (
		savedIDs []string
		records  []*entities.RepublishRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	if opts.UserID != "" {
		g.Go(func() error {
			var err error
			savedIDs, err = s.saved.ListingIDsForUser(gctx, opts.UserID)
			if err != nil {
				observability.RecordEnrichmentDrop(ctx, s.metrics, dropSavedFetch, len(ranked))
				logger.Warn().Err(err).Str("user_id", opts.UserID).Msg("saved listings fetch failed, dropping page")
			}
			return err
		})
	}
	g.Go(func() error {
		var err error
		records, err = s.republish.ListAccepted(gctx, ids)
		if err != nil {
			observability.RecordEnrichmentDrop(ctx, s.metrics, dropRepublishFetch, len(ranked))
			logger.Warn().Err(err).Int("listings", len(ids)).Msg("republish overlay fetch failed, dropping page")
		}
		return err
	})
	if err := g.Wait(); err != nil {
		observability.RecordError(span, err)
		return []entities.EnrichedListing{}
	}

	saved := make(map[string]struct{}, len(savedIDs))
	for _, id := range savedIDs {
		saved[id] = struct{}{}
	}
	republished := make(map[string]*entities.RepublishRecord, len(records))
	for _, r := range records {
		if r == nil || r.Status != entities.RepublishStatusAccepted {
			continue
		}
		// records arrive newest first
		if _, seen := republished[r.ListingID]; !seen {
			republished[r.ListingID] = r
		}
	}

	fanCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()
	fanCtx = loaders.WithLoaders(fanCtx, loaders.NewLoaders(s.owners))

	outcomes := make(chan enrichOutcome, len(ranked))
	go func() {
		fan, fctx := errgroup.WithContext(fanCtx)
		fan.SetLimit(s.cfg.Concurrency)
		for i, r := range ranked {
			fan.Go(func() error {
				item, ok := s.enrichOne(fctx, r, republished[r.Listing.ID], saved)
				outcomes <- enrichOutcome{index: i, item: item, ok: ok}
				return nil
			})
		}
		_ = fan.Wait()
	}()

	slots := make([]*entities.EnrichedListing, len(ranked))
	received := 0
collect:
	for received < len(ranked) {
		select {
		case o := <-outcomes:
			received++
			if o.ok {
				slots[o.index] = &o.item
			}
		case <-fanCtx.Done():
			break collect
		}
	}
	if missing := len(ranked) - received; missing > 0 {
		observability.RecordEnrichmentDrop(ctx, s.metrics, dropTimeout, missing)
		logger.Warn().Int("dropped", missing).Dur("timeout", s.cfg.Timeout).Msg("enrichment timed out")
	}

	now := s.now()
	out := make([]entities.EnrichedListing, 0, len(ranked))
	for _, e := range slots {
		if e == nil {
			continue
		}
		if hiddenFromDealer(opts.UserType, e) {
			continue
		}
		switch opts.SavedFilter {
		case entities.SavedFilterOnly:
			if !e.IsSaved {
				continue
			}
		case entities.SavedFilterExclude:
			if e.IsSaved {
				continue
			}
		}
		e.FormattedPrice = FormatPrice(e.Listing.Price)
		e.RelativeAge = RelativeAge(e.Listing.CreatedAt, now)
		out = append(out, *e)
	}
	return out
}

func (s *EnrichmentService) enrichOne(
	ctx context.Context,
	r entities.RankedListing,
	record *entities.RepublishRecord,
	saved map[string]struct{},
) (entities.EnrichedListing, bool) {
	loader := loaders.For(ctx).OwnerLoader
	l := r.Listing

	ownerThunk := loader.Load(ctx, l.OwnerID)
	var republisherThunk func() (*entities.Owner, error)
	if record != nil {
		republisherThunk = loader.Load(ctx, record.RepublisherID)
	}

	owner, err := ownerThunk()
	if err != nil {
		observability.RecordEnrichmentDrop(ctx, s.metrics, dropOwnerLookup, 1)
		observability.LoggerFromContext(ctx).Debug().Err(err).Str("listing_id", l.ID).Msg("owner lookup failed, dropping listing")
		return entities.EnrichedListing{}, false
	}

	_, isSaved := saved[l.ID]
	item := entities.EnrichedListing{
		RankedListing: r,
		PrimaryOwner:  owner,
		IsSaved:       isSaved,
	}

	if record != nil {
		republisher, err := republisherThunk()
		if err != nil {
			// the original owner stays primary when the republisher profile is gone
			observability.LoggerFromContext(ctx).Debug().Err(err).
				Str("listing_id", l.ID).
				Str("republisher_id", record.RepublisherID).
				Msg("republisher lookup failed, keeping owner as primary")
			return item, true
		}
		item.PrimaryOwner = republisher
		item.OriginalOwner = owner
		item.IsRepublished = true
		item.RepublishDetails = &entities.RepublishDetails{
			RepublishID:   record.ID,
			RepublisherID: record.RepublisherID,
			Status:        record.Status,
			RepublishedAt: record.CreatedAt,
		}
	}
	return item, true
}

// hiddenFromDealer hides private sellers' listings from dealers unless the seller opted in
func hiddenFromDealer(caller entities.UserType, e *entities.EnrichedListing) bool {
	if caller != entities.UserTypeDealer {
		return false
	}
	owner := e.PrimaryOwner
	if e.OriginalOwner != nil {
		owner = e.OriginalOwner
	}
	if owner.UserType != entities.UserTypeOwner && owner.UserType != entities.UserTypeEndUser {
		return false
	}
	w := e.Listing.WorkingWithDealer
	return w != nil && !*w
}

func dedupeRanked(in []entities.RankedListing) []entities.RankedListing {
	seen := make(map[string]struct{}, len(in))
	out := make([]entities.RankedListing, 0, len(in))
	for _, r := range in {
		if r.Listing == nil {
			continue
		}
		if _, ok := seen[r.Listing.ID]; ok {
			continue
		}
		seen[r.Listing.ID] = struct{}{}
		out = append(out, r)
	}
	return out
}
