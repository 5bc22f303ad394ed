package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/api/handlers"
	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/domain/entities"
	apperrors "github.com/nextopson-repo/Dhikcar-backend-sub001/pkg/errors"
)

type MockListingSearcher struct {
	mock.Mock
}

func (m *MockListingSearcher) Search(ctx context.Context, criteria entities.SearchCriteria) (*entities.SearchResult, error) {
	args := m.Called(ctx, criteria)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.SearchResult), args.Error(1)
}

func postSearch(t *testing.T, h *handlers.ListingSearchHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/listings/search", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.SearchListings(rec, req)
	return rec
}

func TestListingSearchHandler_SearchListings_ReturnsContract(t *testing.T) {
	searcher := new(MockListingSearcher)
	handler := handlers.NewListingSearchHandler(searcher)

	listing := &entities.Listing{
		ID:        "L1",
		Title:     "Creta SX",
		Brand:     "Hyundai",
		Category:  "SUV",
		SaleType:  entities.SaleTypeSell,
		Price:     1250000,
		CreatedAt: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
		Address:   entities.Address{State: "Karnataka", City: "Bengaluru", Locality: "Koramangala"},
	}
	listing.SetCoordinates(12.936, 77.625)
	dist := 0.1

	searcher.On("Search", mock.Anything, mock.MatchedBy(func(c entities.SearchCriteria) bool {
		return c.Location.Locality == "Koramangala" &&
			c.Page == 2 &&
			c.PageSize == 10 &&
			len(c.CategoryIn) == 2 &&
			c.SavedFilter == entities.SavedFilterOnly &&
			c.PriceRange != nil && *c.PriceRange.Min == 100000
	})).Return(&entities.SearchResult{
		Listings: []entities.EnrichedListing{{
			RankedListing:  entities.RankedListing{Listing: listing, DistanceKm: &dist},
			PrimaryOwner:   &entities.Owner{ID: "U1", FullName: "Asha", UserType: entities.UserTypeOwner},
			IsSaved:        true,
			FormattedPrice: "12.5L",
			RelativeAge:    "2days ago",
		}},
		TotalCount:        11,
		CurrentPage:       2,
		PageSize:          10,
		TotalPages:        2,
		HasMore:           false,
		SearchType:        entities.SearchTypeLocality,
		SearchCoordinates: &entities.GeoPoint{Latitude: 12.9352, Longitude: 77.6245},
		InventoryValue:    "1250000",
	}, nil)

	rec := postSearch(t, handler, `{
		"categoryIn": ["SUV", "Sedan"],
		"priceRange": {"min": 100000, "max": 2000000},
		"state": "Karnataka", "city": "Bengaluru", "locality": "Koramangala",
		"page": 2, "pageSize": 10,
		"userId": "viewer", "savedFilter": "saved-only"
	}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(11), body["totalCount"])
	assert.Equal(t, float64(2), body["currentPage"])
	assert.Equal(t, false, body["hasMore"])
	assert.Equal(t, "1250000", body["inventoryValue"])
	assert.Equal(t, "locality", body["searchType"])
	assert.Equal(t, map[string]interface{}{"lat": 12.9352, "lng": 77.6245}, body["searchCoordinates"])
	assert.NotContains(t, body, "searchLocation")

	listings := body["listings"].([]interface{})
	require.Len(t, listings, 1)
	first := listings[0].(map[string]interface{})
	assert.Equal(t, "L1", first["id"])
	assert.Equal(t, 0.1, first["distance"])
	assert.Equal(t, "12.5L", first["formattedPrice"])
	assert.Equal(t, "2days ago", first["time"])
	assert.Equal(t, true, first["isSaved"])
	assert.Equal(t, "Asha", first["owner"].(map[string]interface{})["fullName"])
	assert.Nil(t, first["originalOwner"])
	assert.Equal(t, []interface{}{}, first["images"])
	assert.Equal(t, 12.936, first["address"].(map[string]interface{})["latitude"])

	searcher.AssertExpectations(t)
}

func TestListingSearchHandler_SearchListings_OmitsDistanceWhenUnranked(t *testing.T) {
	searcher := new(MockListingSearcher)
	handler := handlers.NewListingSearchHandler(searcher)

	searcher.On("Search", mock.Anything, mock.Anything).Return(&entities.SearchResult{
		Listings: []entities.EnrichedListing{{
			RankedListing: entities.RankedListing{Listing: &entities.Listing{ID: "L1"}},
			PrimaryOwner:  &entities.Owner{ID: "U1"},
		}},
		TotalCount:     1,
		CurrentPage:    1,
		TotalPages:     1,
		InventoryValue: "0",
	}, nil)

	rec := postSearch(t, handler, ``)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Listings []map[string]interface{} `json:"listings"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Listings, 1)
	assert.NotContains(t, body.Listings[0], "distance")
	assert.NotContains(t, body.Listings[0]["address"], "latitude")
}

func TestListingSearchHandler_SearchListings_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"validation", apperrors.NewValidationError("price range requires both min and max"), http.StatusBadRequest, "price range requires both min and max"},
		{"store unavailable", apperrors.NewInternalError("listing store unavailable", errors.New("dial tcp")), http.StatusInternalServerError, "internal server error"},
		{"rate limited", apperrors.NewRateLimitedError("too many requests"), http.StatusTooManyRequests, "too many requests"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			searcher := new(MockListingSearcher)
			searcher.On("Search", mock.Anything, mock.Anything).Return(nil, tt.err)

			rec := postSearch(t, handlers.NewListingSearchHandler(searcher), `{}`)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantError, body["error"])
		})
	}
}

func TestListingSearchHandler_SearchListings_MalformedBody(t *testing.T) {
	searcher := new(MockListingSearcher)

	rec := postSearch(t, handlers.NewListingSearchHandler(searcher), `{"page": "two"`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	searcher.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}
