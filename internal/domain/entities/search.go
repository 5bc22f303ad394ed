package entities

import "time"

// SortKey selects the secondary ordering of search results
type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortOldest    SortKey = "oldest"
	SortPriceLow  SortKey = "price-low"
	SortPriceHigh SortKey = "price-high"
)

// SavedFilter narrows results by the caller's saved listings
type SavedFilter string

const (
	SavedFilterNone    SavedFilter = ""
	SavedFilterOnly    SavedFilter = "saved-only"
	SavedFilterExclude SavedFilter = "exclude-saved"
)

// SearchTypeLocality marks results searched by locality
const SearchTypeLocality = "locality"

// PriceRange is an inclusive price window. Both bounds are required together.
type PriceRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// LocationFilter holds free-text location constraints
type LocationFilter struct {
	State    string `json:"state,omitempty"`
	City     string `json:"city,omitempty"`
	Locality string `json:"locality,omitempty"`
}

// SearchCriteria is what a caller asks the search engine for
type SearchCriteria struct {
	Category    string         `json:"category,omitempty"`
	CategoryIn  []string       `json:"categoryIn,omitempty"`
	SaleType    SaleType       `json:"saleType,omitempty"`
	PriceRange  *PriceRange    `json:"priceRange,omitempty"`
	Location    LocationFilter `json:"location"`
	Sort        SortKey        `json:"sort,omitempty"`
	Page        int            `json:"page,omitempty"`
	PageSize    int            `json:"pageSize,omitempty"`
	UserID      string         `json:"userId,omitempty"`
	UserType    UserType       `json:"userType,omitempty"`
	SavedFilter SavedFilter    `json:"savedFilter,omitempty"`
}

// GeoPoint is a resolved search origin
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// RankedListing is a listing with its distance from the search origin, when known
type RankedListing struct {
	Listing    *Listing
	DistanceKm *float64
}

// RepublishDetails describes the accepted republish that made PrimaryOwner differ from the owner
type RepublishDetails struct {
	RepublishID   string          `json:"republishId"`
	RepublisherID string          `json:"republisherId"`
	Status        RepublishStatus `json:"status"`
	RepublishedAt time.Time       `json:"republishedAt"`
}

// EnrichedListing is a ranked listing decorated with ownership and caller state
type EnrichedListing struct {
	RankedListing
	PrimaryOwner     *Owner
	OriginalOwner    *Owner
	IsSaved          bool
	IsRepublished    bool
	RepublishDetails *RepublishDetails
	FormattedPrice   string
	RelativeAge      string
}

// SearchResult is one page of search output
type SearchResult struct {
	Listings          []EnrichedListing
	TotalCount        int
	CurrentPage       int
	PageSize          int
	TotalPages        int
	HasMore           bool
	SearchType        string
	SearchLocation    *SearchLocation
	SearchCoordinates *GeoPoint
	InventoryValue    string
}
