package database

import (
	"context"

	"github.com/doug-martin/goqu/v9"

	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/domain/repositories"
	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/infrastructure/clients/postgres"
	apperrors "github.com/nextopson-repo/Dhikcar-backend-sub001/pkg/errors"
)

// SavedListingAdapter implements SavedListingRepository
type SavedListingAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewSavedListingAdapter creates a new saved listing adapter
func NewSavedListingAdapter(client *postgres.Client) repositories.SavedListingRepository {
	return &SavedListingAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// ListingIDsForUser returns every listing id the user has saved
func (a *SavedListingAdapter) ListingIDsForUser(ctx context.Context, userID string) ([]string, error) {
	query, args, err := a.db.From("saved_listings").
		Prepared(true).
		Select("listing_id").
		Where(goqu.Ex{"user_id": userID}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build saved listings query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query saved listings", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, apperrors.NewInternalError("failed to scan saved listing", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate saved listings", err)
	}
	return ids, nil
}
