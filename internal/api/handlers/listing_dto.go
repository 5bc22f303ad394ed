package handlers

import (
	"time"

	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/domain/entities"
)

// SearchListingsRequest is the body of POST /api/listings/search
type SearchListingsRequest struct {
	Category    string               `json:"category"`
	CategoryIn  []string             `json:"categoryIn"`
	SaleType    entities.SaleType    `json:"saleType"`
	PriceRange  *entities.PriceRange `json:"priceRange"`
	State       string               `json:"state"`
	City        string               `json:"city"`
	Locality    string               `json:"locality"`
	Sort        entities.SortKey     `json:"sort"`
	Page        int                  `json:"page"`
	PageSize    int                  `json:"pageSize"`
	UserID      string               `json:"userId"`
	UserType    entities.UserType    `json:"userType"`
	SavedFilter entities.SavedFilter `json:"savedFilter"`
}

// Criteria converts the request into search criteria
func (r SearchListingsRequest) Criteria() entities.SearchCriteria {
	return entities.SearchCriteria{
		Category:   r.Category,
		CategoryIn: r.CategoryIn,
		SaleType:   r.SaleType,
		PriceRange: r.PriceRange,
		Location: entities.LocationFilter{
			State:    r.State,
			City:     r.City,
			Locality: r.Locality,
		},
		Sort:        r.Sort,
		Page:        r.Page,
		PageSize:    r.PageSize,
		UserID:      r.UserID,
		UserType:    r.UserType,
		SavedFilter: r.SavedFilter,
	}
}

// SearchListingsResponse is one page of search results
type SearchListingsResponse struct {
	Listings          []ListingDTO             `json:"listings"`
	TotalCount        int                      `json:"totalCount"`
	CurrentPage       int                      `json:"currentPage"`
	PageSize          int                      `json:"pageSize"`
	TotalPages        int                      `json:"totalPages"`
	HasMore           bool                     `json:"hasMore"`
	InventoryValue    string                   `json:"inventoryValue"`
	SearchType        string                   `json:"searchType,omitempty"`
	SearchLocation    *entities.SearchLocation `json:"searchLocation,omitempty"`
	SearchCoordinates *CoordinatesDTO          `json:"searchCoordinates,omitempty"`
}

// CoordinatesDTO is a lat/lng pair
type CoordinatesDTO struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// AddressDTO is a listing's public address
type AddressDTO struct {
	State     string   `json:"state"`
	City      string   `json:"city"`
	Locality  string   `json:"locality"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// ListingDTO is an enriched listing as rendered to clients
type ListingDTO struct {
	ID               string                     `json:"id"`
	Title            string                     `json:"title"`
	Brand            string                     `json:"brand"`
	Model            string                     `json:"model"`
	Category         string                     `json:"category"`
	SaleType         entities.SaleType          `json:"saleType"`
	Price            float64                    `json:"price"`
	FormattedPrice   string                     `json:"formattedPrice"`
	Time             string                     `json:"time"`
	Images           []string                   `json:"images"`
	Address          AddressDTO                 `json:"address"`
	CreatedAt        time.Time                  `json:"createdAt"`
	Distance         *float64                   `json:"distance,omitempty"`
	Owner            *entities.Owner            `json:"owner"`
	OriginalOwner    *entities.Owner            `json:"originalOwner"`
	IsSaved          bool                       `json:"isSaved"`
	IsRepublished    bool                       `json:"isRepublished"`
	RepublishDetails *entities.RepublishDetails `json:"republishDetails"`
}

func toSearchListingsResponse(result *entities.SearchResult) SearchListingsResponse {
	resp := SearchListingsResponse{
		Listings:       make([]ListingDTO, 0, len(result.Listings)),
		TotalCount:     result.TotalCount,
		CurrentPage:    result.CurrentPage,
		PageSize:       result.PageSize,
		TotalPages:     result.TotalPages,
		HasMore:        result.HasMore,
		InventoryValue: result.InventoryValue,
		SearchType:     result.SearchType,
		SearchLocation: result.SearchLocation,
	}
	if c := result.SearchCoordinates; c != nil {
		resp.SearchCoordinates = &CoordinatesDTO{Lat: c.Latitude, Lng: c.Longitude}
	}
	for _, e := range result.Listings {
		resp.Listings = append(resp.Listings, toListingDTO(e))
	}
	return resp
}

func toListingDTO(e entities.EnrichedListing) ListingDTO {
	l := e.Listing
	addr := AddressDTO{
		State:    l.Address.State,
		City:     l.Address.City,
		Locality: l.Address.Locality,
	}
	if lat, lng, ok := l.Coordinates(); ok {
		addr.Latitude, addr.Longitude = &lat, &lng
	}
	images := l.Images
	if images == nil {
		images = []string{}
	}
	return ListingDTO{
		ID:               l.ID,
		Title:            l.Title,
		Brand:            l.Brand,
		Model:            l.Model,
		Category:         l.Category,
		SaleType:         l.SaleType,
		Price:            l.Price,
		FormattedPrice:   e.FormattedPrice,
		Time:             e.RelativeAge,
		Images:           images,
		Address:          addr,
		CreatedAt:        l.CreatedAt,
		Distance:         e.DistanceKm,
		Owner:            e.PrimaryOwner,
		OriginalOwner:    e.OriginalOwner,
		IsSaved:          e.IsSaved,
		IsRepublished:    e.IsRepublished,
		RepublishDetails: e.RepublishDetails,
	}
}
