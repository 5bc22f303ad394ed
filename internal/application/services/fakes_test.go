package services

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/domain/entities"
	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/domain/providers"
	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/domain/repositories"
)

// memoryListingStore evaluates queries in memory with ListingFilter.Matches.
type memoryListingStore struct {
	mu        sync.Mutex
	listings  []*entities.Listing
	updates   map[string][2]float64
	findErr   error
	countErr  error
	updateErr error
}

func newMemoryListingStore(listings ...*entities.Listing) *memoryListingStore {
	return &memoryListingStore{listings: listings, updates: map[string][2]float64{}}
}

func (s *memoryListingStore) matching(f repositories.ListingFilter) []*entities.Listing {
	var out []*entities.Listing
	for _, l := range s.listings {
		if f.Matches(l) {
			out = append(out, l)
		}
	}
	return out
}

func (s *memoryListingStore) Find(_ context.Context, q repositories.ListingQuery) ([]*entities.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}

	out := s.matching(q.Filter)
	slices.SortStableFunc(out, func(a, b *entities.Listing) int {
		var c int
		switch q.Sort.Field {
		case repositories.SortFieldPrice:
			c = cmp.Compare(a.Price, b.Price)
		default:
			c = a.CreatedAt.Compare(b.CreatedAt)
		}
		if q.Sort.Descending {
			c = -c
		}
		if c == 0 {
			c = strings.Compare(a.ID, b.ID)
		}
		return c
	})

	if q.Page.Offset >= len(out) {
		return []*entities.Listing{}, nil
	}
	out = out[q.Page.Offset:]
	if q.Page.Limit > 0 && q.Page.Limit < len(out) {
		out = out[:q.Page.Limit]
	}
	return out, nil
}

func (s *memoryListingStore) Count(_ context.Context, f repositories.ListingFilter) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.countErr != nil {
		return 0, s.countErr
	}
	return len(s.matching(f)), nil
}

func (s *memoryListingStore) UpdateCoordinates(_ context.Context, addressID string, lat, lng float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updates[addressID] = [2]float64{lat, lng}
	return nil
}

func (s *memoryListingStore) ListMissingCoordinates(_ context.Context, limit int, afterID string) ([]*entities.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*entities.Listing
	for _, l := range s.listings {
		if !l.IsActive || l.IsSold || l.HasCoordinates() || l.ID <= afterID {
			continue
		}
		if _, done := s.updates[l.Address.ID]; done {
			continue
		}
		out = append(out, l)
	}
	slices.SortFunc(out, func(a, b *entities.Listing) int { return strings.Compare(a.ID, b.ID) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memoryListingStore) updated(addressID string) ([2]float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.updates[addressID]
	return v, ok
}

type MockLocalityResolver struct {
	mock.Mock
}

func (m *MockLocalityResolver) Resolve(ctx context.Context, locality, city, state string) (*providers.Coordinates, error) {
	args := m.Called(ctx, locality, city, state)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*providers.Coordinates), args.Error(1)
}

type MockOwnerRepository struct {
	mock.Mock
}

func (m *MockOwnerRepository) GetByIDs(ctx context.Context, ids []string) ([]*entities.Owner, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Owner), args.Error(1)
}

type MockSavedListingRepository struct {
	mock.Mock
}

func (m *MockSavedListingRepository) ListingIDsForUser(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockRepublishRepository struct {
	mock.Mock
}

func (m *MockRepublishRepository) ListAccepted(ctx context.Context, listingIDs []string) ([]*entities.RepublishRecord, error) {
	args := m.Called(ctx, listingIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.RepublishRecord), args.Error(1)
}

type MockLocationRepository struct {
	mock.Mock
}

func (m *MockLocationRepository) FindActive(ctx context.Context, state, city, locality string) (*entities.SearchLocation, error) {
	args := m.Called(ctx, state, city, locality)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.SearchLocation), args.Error(1)
}

type MockCacheProvider struct {
	mock.Mock
}

func (m *MockCacheProvider) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	args := m.Called(ctx, key, window)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCacheProvider) TTL(ctx context.Context, key string) (time.Duration, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(time.Duration), args.Error(1)
}

func (m *MockCacheProvider) SetIfAbsent(ctx context.Context, key string, value []byte, expiration time.Duration) (bool, error) {
	args := m.Called(ctx, key, value, expiration)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheProvider) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
