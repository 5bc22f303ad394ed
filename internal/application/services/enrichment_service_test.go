package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/domain/entities"
)

func boolPtr(b bool) *bool { return &b }

func ownedListing(id, ownerID string, price float64) *entities.Listing {
	return &entities.Listing{ID: id, OwnerID: ownerID, Price: price, IsActive: true}
}

func rankedOf(listings ...*entities.Listing) []entities.RankedListing {
	return Unranked(listings)
}

func enrichedIDs(items []entities.EnrichedListing) []string {
	ids := make([]string, len(items))
	for i, e := range items {
		ids[i] = e.Listing.ID
	}
	return ids
}

type enrichmentFixture struct {
	owners    *MockOwnerRepository
	saved     *MockSavedListingRepository
	republish *MockRepublishRepository
	svc       *EnrichmentService
}

func newEnrichmentFixture(owners []*entities.Owner) *enrichmentFixture {
	f := &enrichmentFixture{
		owners:    new(MockOwnerRepository),
		saved:     new(MockSavedListingRepository),
		republish: new(MockRepublishRepository),
	}
	f.owners.On("GetByIDs", mock.Anything, mock.Anything).Return(owners, nil)
	f.svc = NewEnrichmentService(f.owners, f.saved, f.republish, EnrichmentConfig{Timeout: time.Second, Concurrency: 4}, nil)
	return f
}

func TestEnrichmentService_RepublishPrecedence(t *testing.T) {
	f := newEnrichmentFixture([]*entities.Owner{
		{ID: "U1", FullName: "Asha", UserType: entities.UserTypeOwner},
		{ID: "D1", FullName: "Metro Motors", UserType: entities.UserTypeDealer},
	})
	republishedAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	f.republish.On("ListAccepted", mock.Anything, []string{"L1", "L2", "L3"}).Return([]*entities.RepublishRecord{
		{ID: "R1", ListingID: "L1", OwnerID: "U1", RepublisherID: "D1", Status: entities.RepublishStatusAccepted, CreatedAt: republishedAt, UpdatedAt: republishedAt.Add(time.Hour)},
		{ID: "R3", ListingID: "L3", OwnerID: "U1", RepublisherID: "D9", Status: entities.RepublishStatusAccepted, UpdatedAt: republishedAt},
	}, nil)

	out := f.svc.Enrich(context.Background(), rankedOf(
		ownedListing("L1", "U1", 450000),
		ownedListing("L2", "U1", 300000),
		ownedListing("L3", "U1", 200000),
	), EnrichOptions{})

	require.Len(t, out, 3)

	assert.Equal(t, "D1", out[0].PrimaryOwner.ID)
	require.NotNil(t, out[0].OriginalOwner)
	assert.Equal(t, "U1", out[0].OriginalOwner.ID)
	assert.True(t, out[0].IsRepublished)
	require.NotNil(t, out[0].RepublishDetails)
	assert.Equal(t, entities.RepublishDetails{
		RepublishID:   "R1",
		RepublisherID: "D1",
		Status:        entities.RepublishStatusAccepted,
		RepublishedAt: republishedAt,
	}, *out[0].RepublishDetails)

	assert.Equal(t, "U1", out[1].PrimaryOwner.ID)
	assert.Nil(t, out[1].OriginalOwner)
	assert.False(t, out[1].IsRepublished)

	// republisher D9 has no profile
	assert.Equal(t, "U1", out[2].PrimaryOwner.ID)
	assert.Nil(t, out[2].OriginalOwner)
	assert.False(t, out[2].IsRepublished)

	f.saved.AssertNotCalled(t, "ListingIDsForUser", mock.Anything, mock.Anything)
}

func TestEnrichmentService_SavedFilters(t *testing.T) {
	var listings []*entities.Listing
	for i := 1; i <= 10; i++ {
		listings = append(listings, ownedListing(fmt.Sprintf("L%d", i), "U1", float64(i*100000)))
	}

	tests := []struct {
		name   string
		filter entities.SavedFilter
		want   []string
	}{
		{"saved only", entities.SavedFilterOnly, []string{"L2", "L5"}},
		{"exclude saved", entities.SavedFilterExclude, []string{"L1", "L3", "L4", "L6", "L7", "L8", "L9", "L10"}},
		{"no filter", entities.SavedFilterNone, []string{"L1", "L2", "L3", "L4", "L5", "L6", "L7", "L8", "L9", "L10"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newEnrichmentFixture([]*entities.Owner{{ID: "U1", UserType: entities.UserTypeOwner}})
			f.saved.On("ListingIDsForUser", mock.Anything, "viewer").Return([]string{"L2", "L5", "L99"}, nil)
			f.republish.On("ListAccepted", mock.Anything, mock.Anything).Return([]*entities.RepublishRecord{}, nil)

			out := f.svc.Enrich(context.Background(), rankedOf(listings...), EnrichOptions{UserID: "viewer", SavedFilter: tt.filter})

			assert.Equal(t, tt.want, enrichedIDs(out))
			for _, e := range out {
				assert.Equal(t, e.Listing.ID == "L2" || e.Listing.ID == "L5", e.IsSaved)
			}
		})
	}
}

func TestEnrichmentService_DealerExclusion(t *testing.T) {
	owners := []*entities.Owner{
		{ID: "O1", UserType: entities.UserTypeOwner},
		{ID: "E1", UserType: entities.UserTypeEndUser},
		{ID: "D1", UserType: entities.UserTypeDealer},
	}
	listings := func() []entities.RankedListing {
		l1 := ownedListing("L1", "O1", 1)
		l1.WorkingWithDealer = boolPtr(false)
		l2 := ownedListing("L2", "O1", 1)
		l2.WorkingWithDealer = boolPtr(true)
		l3 := ownedListing("L3", "D1", 1)
		l3.WorkingWithDealer = boolPtr(false)
		l4 := ownedListing("L4", "E1", 1)
		l5 := ownedListing("L5", "E1", 1)
		l5.WorkingWithDealer = boolPtr(false)
		return rankedOf(l1, l2, l3, l4, l5)
	}

	f := newEnrichmentFixture(owners)
	f.republish.On("ListAccepted", mock.Anything, mock.Anything).Return([]*entities.RepublishRecord{}, nil)

	asDealer := f.svc.Enrich(context.Background(), listings(), EnrichOptions{UserType: entities.UserTypeDealer})
	assert.Equal(t, []string{"L2", "L3", "L4"}, enrichedIDs(asDealer))

	asOwner := f.svc.Enrich(context.Background(), listings(), EnrichOptions{UserType: entities.UserTypeOwner})
	assert.Equal(t, []string{"L1", "L2", "L3", "L4", "L5"}, enrichedIDs(asOwner))
}

func TestEnrichmentService_MissingOwnerDropsListing(t *testing.T) {
	f := newEnrichmentFixture([]*entities.Owner{{ID: "U1"}})
	f.republish.On("ListAccepted", mock.Anything, mock.Anything).Return([]*entities.RepublishRecord{}, nil)

	out := f.svc.Enrich(context.Background(), rankedOf(
		ownedListing("L1", "U1", 1),
		ownedListing("L2", "ghost", 1),
		ownedListing("L3", "U1", 1),
	), EnrichOptions{})

	assert.Equal(t, []string{"L1", "L3"}, enrichedIDs(out))
}

func TestEnrichmentService_PageWideFetchFailures(t *testing.T) {
	t.Run("saved set", func(t *testing.T) {
		f := newEnrichmentFixture([]*entities.Owner{{ID: "U1"}})
		f.saved.On("ListingIDsForUser", mock.Anything, "viewer").Return(nil, errors.New("timeout"))
		f.republish.On("ListAccepted", mock.Anything, mock.Anything).Return([]*entities.RepublishRecord{}, nil).Maybe()

		out := f.svc.Enrich(context.Background(), rankedOf(ownedListing("L1", "U1", 1)), EnrichOptions{UserID: "viewer"})
		assert.NotNil(t, out)
		assert.Empty(t, out)
	})

	t.Run("republish overlay", func(t *testing.T) {
		f := newEnrichmentFixture([]*entities.Owner{{ID: "U1"}})
		f.republish.On("ListAccepted", mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))

		out := f.svc.Enrich(context.Background(), rankedOf(ownedListing("L1", "U1", 1)), EnrichOptions{})
		assert.Empty(t, out)
	})
}

type blockingOwnerRepository struct{}

func (blockingOwnerRepository) GetByIDs(ctx context.Context, _ []string) ([]*entities.Owner, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestEnrichmentService_JoinTimeout(t *testing.T) {
	republish := new(MockRepublishRepository)
	republish.On("ListAccepted", mock.Anything, mock.Anything).Return([]*entities.RepublishRecord{}, nil)
	svc := NewEnrichmentService(blockingOwnerRepository{}, new(MockSavedListingRepository), republish,
		EnrichmentConfig{Timeout: 20 * time.Millisecond}, nil)

	start := time.Now()
	out := svc.Enrich(context.Background(), rankedOf(ownedListing("L1", "U1", 1), ownedListing("L2", "U1", 1)), EnrichOptions{})

	assert.Empty(t, out)
	assert.Less(t, time.Since(start), time.Second)
}

func TestEnrichmentService_DisplayFieldsAndDedup(t *testing.T) {
	f := newEnrichmentFixture([]*entities.Owner{{ID: "U1"}})
	f.republish.On("ListAccepted", mock.Anything, []string{"L1"}).Return([]*entities.RepublishRecord{}, nil)
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }

	l := ownedListing("L1", "U1", 450000)
	l.CreatedAt = now.Add(-3 * time.Hour)
	dist := 2.5

	out := f.svc.Enrich(context.Background(), []entities.RankedListing{
		{Listing: l, DistanceKm: &dist},
		{Listing: l, DistanceKm: &dist},
	}, EnrichOptions{})

	require.Len(t, out, 1)
	assert.Equal(t, "450K", out[0].FormattedPrice)
	assert.Equal(t, "3 hours ago", out[0].RelativeAge)
	assert.Equal(t, &dist, out[0].DistanceKm)
}

func TestEnrichmentService_EmptyInput(t *testing.T) {
	f := newEnrichmentFixture(nil)

	out := f.svc.Enrich(context.Background(), nil, EnrichOptions{UserID: "viewer"})
	assert.NotNil(t, out)
	assert.Empty(t, out)
	f.republish.AssertNotCalled(t, "ListAccepted", mock.Anything, mock.Anything)
}
