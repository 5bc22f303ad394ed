package database

import (
	"context"

	"github.com/doug-martin/goqu/v9"

	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/domain/entities"
	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/domain/repositories"
	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/infrastructure/clients/postgres"
	apperrors "github.com/nextopson-repo/Dhikcar-backend-sub001/pkg/errors"
)

// RepublishAdapter implements RepublishRepository over republish_requests
type RepublishAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewRepublishAdapter creates a new republish adapter
func NewRepublishAdapter(client *postgres.Client) repositories.RepublishRepository {
	return &RepublishAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// ListAccepted returns accepted republish records for the listings, most recently updated first
func (a *RepublishAdapter) ListAccepted(ctx context.Context, listingIDs []string) ([]*entities.RepublishRecord, error) {
	if len(listingIDs) == 0 {
		return []*entities.RepublishRecord{}, nil
	}

	query, args, err := a.db.From("republish_requests").
		Prepared(true).
		Select("id", "listing_id", "owner_id", "republisher_id", "status", "created_at", "updated_at").
		Where(goqu.Ex{
			"listing_id": listingIDs,
			"status":     string(entities.RepublishStatusAccepted),
		}).
		Order(goqu.I("updated_at").Desc(), goqu.I("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build republish query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query republish records", err)
	}
	defer rows.Close()

	var records []*entities.RepublishRecord
	for rows.Next() {
		var (
			r      entities.RepublishRecord
			status string
		)
		if err := rows.Scan(&r.ID, &r.ListingID, &r.OwnerID, &r.RepublisherID, &status, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, apperrors.NewInternalError("failed to scan republish record", err)
		}
		r.Status = entities.RepublishStatus(status)
		records = append(records, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate republish records", err)
	}
	return records, nil
}
