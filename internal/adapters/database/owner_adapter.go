package database

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"

	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/domain/entities"
	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/domain/repositories"
	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/infrastructure/clients/postgres"
	apperrors "github.com/nextopson-repo/Dhikcar-backend-sub001/pkg/errors"
)

// OwnerAdapter implements OwnerRepository over the users table
type OwnerAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewOwnerAdapter creates a new owner adapter
func NewOwnerAdapter(client *postgres.Client) repositories.OwnerRepository {
	return &OwnerAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// GetByIDs retrieves the owners among ids in a single query
func (a *OwnerAdapter) GetByIDs(ctx context.Context, ids []string) ([]*entities.Owner, error) {
	if len(ids) == 0 {
		return []*entities.Owner{}, nil
	}

	query, args, err := a.db.From("users").
		Prepared(true).
		Select("id", "full_name", "user_type", "mobile_number", "email", "profile_url").
		Where(goqu.Ex{"id": ids}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build owner query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query owners", err)
	}
	defer rows.Close()

	owners := make([]*entities.Owner, 0, len(ids))
	for rows.Next() {
		var (
			owner                     entities.Owner
			userType                  string
			mobile, email, profileURL sql.NullString
		)
		if err := rows.Scan(&owner.ID, &owner.FullName, &userType, &mobile, &email, &profileURL); err != nil {
			return nil, apperrors.NewInternalError("failed to scan owner", err)
		}
		owner.UserType = entities.UserType(userType)
		owner.MobileNumber = mobile.String
		owner.Email = email.String
		owner.ProfileURL = profileURL.String
		owners = append(owners, &owner)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate owners", err)
	}

	return owners, nil
}
