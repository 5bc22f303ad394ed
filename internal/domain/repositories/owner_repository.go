package repositories

import (
	"context"

	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/domain/entities"
)

// OwnerRepository reads public owner profiles
type OwnerRepository interface {
	// GetByIDs returns the owners that exist among ids, in no particular order
	GetByIDs(ctx context.Context, ids []string) ([]*entities.Owner, error)
}

// SavedListingRepository reads a user's saved listings
type SavedListingRepository interface {
	// ListingIDsForUser returns the ids of every listing the user has saved
	ListingIDsForUser(ctx context.Context, userID string) ([]string, error)
}

// RepublishRepository reads the republish overlay
type RepublishRepository interface {
	// ListAccepted returns accepted republish records for the given listings
	ListAccepted(ctx context.Context, listingIDs []string) ([]*entities.RepublishRecord, error)
}

// LocationRepository reads curated search locations
type LocationRepository interface {
	// FindActive returns the active location matching all three parts, or a not-found error
	FindActive(ctx context.Context, state, city, locality string) (*entities.SearchLocation, error)
}
