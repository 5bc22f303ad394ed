package services

import (
	"fmt"
	"strings"

	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/domain/entities"
	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/domain/repositories"
	apperrors "github.com/nextopson-repo/Dhikcar-backend-sub001/pkg/errors"
)

const (
	defaultPageSize = 5
	maxPageSize     = 100
)

// ListingQueryBuilder validates search criteria and turns them into store queries
type ListingQueryBuilder struct {
	defaultPageSize int
	maxPageSize     int
}

// NewListingQueryBuilder creates a builder; non-positive sizes fall back to 5 and 100.
func NewListingQueryBuilder(defaultSize, maxSize int) *ListingQueryBuilder {
	if defaultSize <= 0 {
		defaultSize = defaultPageSize
	}
	if maxSize <= 0 {
		maxSize = maxPageSize
	}
	return &ListingQueryBuilder{defaultPageSize: defaultSize, maxPageSize: maxSize}
}

// Normalize validates criteria and fills defaults. It never touches a store.
func (b *ListingQueryBuilder) Normalize(c entities.SearchCriteria) (entities.SearchCriteria, error) {
	c.Category = strings.TrimSpace(c.Category)
	if c.Category == "" || strings.EqualFold(c.Category, entities.CategoryAll) {
		c.Category = entities.CategoryAll
	}
	c.CategoryIn = cleanCategories(c.CategoryIn)

	if c.SaleType != "" && !c.SaleType.Valid() {
		return c, apperrors.NewValidationError(fmt.Sprintf("unknown sale type %q", c.SaleType))
	}
	if c.UserType != "" && !c.UserType.Valid() {
		return c, apperrors.NewValidationError(fmt.Sprintf("unknown user type %q", c.UserType))
	}

	if pr := c.PriceRange; pr != nil {
		if pr.Min == nil && pr.Max == nil {
			c.PriceRange = nil
		} else {
			if pr.Min == nil || pr.Max == nil {
				return c, apperrors.NewValidationError("price range requires both min and max")
			}
			if *pr.Min < 0 || *pr.Max < 0 {
				return c, apperrors.NewValidationError("price range bounds must not be negative")
			}
			if *pr.Min > *pr.Max {
				return c, apperrors.NewValidationError("price range min must not exceed max")
			}
		}
	}

	switch {
	case c.Page == 0:
		c.Page = 1
	case c.Page < 0:
		return c, apperrors.NewValidationError("page must be >= 1")
	}
	switch {
	case c.PageSize == 0:
		c.PageSize = b.defaultPageSize
	case c.PageSize < 0 || c.PageSize > b.maxPageSize:
		return c, apperrors.NewValidationError(fmt.Sprintf("pageSize must be between 1 and %d", b.maxPageSize))
	}

	switch c.Sort {
	case entities.SortNewest, entities.SortOldest, entities.SortPriceLow, entities.SortPriceHigh:
	default:
		c.Sort = entities.SortNewest
	}

	switch c.SavedFilter {
	case entities.SavedFilterNone:
	case entities.SavedFilterOnly, entities.SavedFilterExclude:
		if strings.TrimSpace(c.UserID) == "" {
			return c, apperrors.NewValidationError("savedFilter requires userId")
		}
	default:
		return c, apperrors.NewValidationError(fmt.Sprintf("unknown savedFilter %q", c.SavedFilter))
	}

	c.Location.State = strings.TrimSpace(c.Location.State)
	c.Location.City = strings.TrimSpace(c.Location.City)
	c.Location.Locality = strings.TrimSpace(c.Location.Locality)

	return c, nil
}

// BuildListingQuery translates normalized criteria into a store query.
func (b *ListingQueryBuilder) BuildListingQuery(c entities.SearchCriteria) repositories.ListingQuery {
	filter := repositories.ListingFilter{
		SaleType: c.SaleType,
		State:    c.Location.State,
		City:     c.Location.City,
		Locality: c.Location.Locality,
	}
	switch {
	case len(c.CategoryIn) > 0:
		filter.Categories = c.CategoryIn
	case c.Category != "" && c.Category != entities.CategoryAll:
		filter.Categories = []string{c.Category}
	}
	if c.PriceRange != nil {
		filter.MinPrice = c.PriceRange.Min
		filter.MaxPrice = c.PriceRange.Max
	}

	page, size := c.Page, c.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = b.defaultPageSize
	}

	return repositories.ListingQuery{
		Filter: filter,
		Sort:   sortFor(c.Sort),
		Page:   repositories.PageWindow{Limit: size, Offset: (page - 1) * size},
	}
}

func sortFor(key entities.SortKey) repositories.ListingSort {
	switch key {
	case entities.SortOldest:
		return repositories.ListingSort{Field: repositories.SortFieldCreatedAt}
	case entities.SortPriceLow:
		return repositories.ListingSort{Field: repositories.SortFieldPrice}
	case entities.SortPriceHigh:
		return repositories.ListingSort{Field: repositories.SortFieldPrice, Descending: true}
	default:
		return repositories.ListingSort{Field: repositories.SortFieldCreatedAt, Descending: true}
	}
}

func cleanCategories(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, c := range in {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Pagination describes where a page sits in the full result set
type Pagination struct {
	Page       int
	PageSize   int
	Skip       int
	TotalPages int
	HasMore    bool
}

// Paginate computes paging metadata. returned is how many rows the store gave back for this page.
func Paginate(page, pageSize, returned, total int) Pagination {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	skip := (page - 1) * pageSize
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Skip:       skip,
		TotalPages: (total + pageSize - 1) / pageSize,
		HasMore:    skip+returned < total,
	}
}
