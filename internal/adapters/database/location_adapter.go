package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"

	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/domain/entities"
	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/domain/repositories"
	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/infrastructure/clients/postgres"
	apperrors "github.com/nextopson-repo/Dhikcar-backend-sub001/pkg/errors"
)

// LocationAdapter implements LocationRepository over the curated locations table
type LocationAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewLocationAdapter creates a new location adapter
func NewLocationAdapter(client *postgres.Client) repositories.LocationRepository {
	return &LocationAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// FindActive looks a location up case-insensitively
func (a *LocationAdapter) FindActive(ctx context.Context, state, city, locality string) (*entities.SearchLocation, error) {
	query, args, err := a.db.From("locations").
		Prepared(true).
		Select("id", "state", "city", "locality", "state_image_url", "city_image_url", "is_active").
		Where(
			goqu.Func("LOWER", goqu.I("state")).Eq(strings.ToLower(strings.TrimSpace(state))),
			goqu.Func("LOWER", goqu.I("city")).Eq(strings.ToLower(strings.TrimSpace(city))),
			goqu.Func("LOWER", goqu.I("locality")).Eq(strings.ToLower(strings.TrimSpace(locality))),
			goqu.I("is_active").IsTrue(),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build location query", err)
	}

	var (
		loc               entities.SearchLocation
		stateImg, cityImg sql.NullString
	)
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&loc.ID, &loc.State, &loc.City, &loc.Locality, &stateImg, &cityImg, &loc.IsActive,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("location %s, %s, %s not found", locality, city, state))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query location", err)
	}
	loc.StateImageURL = stateImg.String
	loc.CityImageURL = cityImg.String
	return &loc, nil
}
