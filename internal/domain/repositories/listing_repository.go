package repositories

import (
	"context"
	"strings"

	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/domain/entities"
)

// ListingRepository is the read side of the listing store plus the one
// write the search path needs (coordinate backfill).
type ListingRepository interface {
	// Find returns one page of active, unsold listings matching the query
	Find(ctx context.Context, query ListingQuery) ([]*entities.Listing, error)

	// Count returns how many active, unsold listings match the filter, ignoring paging
	Count(ctx context.Context, filter ListingFilter) (int, error)

	// UpdateCoordinates persists resolved coordinates on an address
	UpdateCoordinates(ctx context.Context, addressID string, lat, lng float64) error

	// ListMissingCoordinates returns active listings lacking coordinates with id > afterID, ordered by id
	ListMissingCoordinates(ctx context.Context, limit int, afterID string) ([]*entities.Listing, error)
}

// ListingFilter holds the predicate applied on top of "active and not sold".
// Zero values disable the corresponding constraint.
type ListingFilter struct {
	Categories []string
	SaleType   entities.SaleType
	MinPrice   *float64
	MaxPrice   *float64
	State      string
	City       string
	Locality   string
}

// SortField is a sortable listing column
type SortField string

const (
	SortFieldCreatedAt SortField = "created_at"
	SortFieldPrice     SortField = "price"
)

// ListingSort orders listings; ties are always broken by id ascending
type ListingSort struct {
	Field      SortField
	Descending bool
}

// PageWindow is a limit/offset pair
type PageWindow struct {
	Limit  int
	Offset int
}

// ListingQuery is a fully resolved store query
type ListingQuery struct {
	Filter ListingFilter
	Sort   ListingSort
	Page   PageWindow
}

// Matches evaluates the filter in memory with the same semantics as the SQL
// translation, including the implicit active/unsold predicate.
func (f ListingFilter) Matches(l *entities.Listing) bool {
	if l == nil || !l.IsActive || l.IsSold {
		return false
	}
	if len(f.Categories) > 0 && !containsString(f.Categories, l.Category) {
		return false
	}
	if f.SaleType != "" && l.SaleType != f.SaleType {
		return false
	}
	if f.MinPrice != nil && l.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && l.Price > *f.MaxPrice {
		return false
	}
	return containsFold(l.Address.State, f.State) &&
		containsFold(l.Address.City, f.City) &&
		containsFold(l.Address.Locality, f.Locality)
}

func containsFold(value, substr string) bool {
	substr = strings.TrimSpace(substr)
	if substr == "" {
		return true
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(substr))
}

func containsString(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
