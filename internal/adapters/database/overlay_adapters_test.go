package database

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/domain/entities"
	apperrors "github.com/nextopson-repo/Dhikcar-backend-sub001/pkg/errors"
)

func TestOwnerAdapter_GetByIDs(t *testing.T) {
	client, mock := newMockClient(t)
	adapter := NewOwnerAdapter(client)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "id", "full_name", "user_type", "mobile_number", "email", "profile_url" FROM "users" WHERE ("id" IN ($1, $2))`)).
		WithArgs("U1", "U2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "user_type", "mobile_number", "email", "profile_url"}).
			AddRow("U1", "Asha Rao", "Owner", "9876543210", nil, nil).
			AddRow("U2", "Metro Motors", "Dealer", "9123456780", "sales@metro.in", "https://cdn/p.png"))

	owners, err := adapter.GetByIDs(context.Background(), []string{"U1", "U2"})
	require.NoError(t, err)
	require.Len(t, owners, 2)
	assert.Equal(t, entities.UserTypeOwner, owners[0].UserType)
	assert.Empty(t, owners[0].Email)
	assert.Equal(t, entities.UserTypeDealer, owners[1].UserType)
	assert.Equal(t, "https://cdn/p.png", owners[1].ProfileURL)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOwnerAdapter_GetByIDsEmpty(t *testing.T) {
	client, mock := newMockClient(t)
	owners, err := NewOwnerAdapter(client).GetByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, owners)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSavedListingAdapter_ListingIDsForUser(t *testing.T) {
	client, mock := newMockClient(t)
	adapter := NewSavedListingAdapter(client)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "listing_id" FROM "saved_listings" WHERE ("user_id" = $1)`)).
		WithArgs("U7").
		WillReturnRows(sqlmock.NewRows([]string{"listing_id"}).AddRow("L2").AddRow("L5"))

	ids, err := adapter.ListingIDsForUser(context.Background(), "U7")
	require.NoError(t, err)
	assert.Equal(t, []string{"L2", "L5"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSavedListingAdapter_StoreError(t *testing.T) {
	client, mock := newMockClient(t)
	mock.ExpectQuery(`FROM "saved_listings"`).WillReturnError(sql.ErrConnDone)

	_, err := NewSavedListingAdapter(client).ListingIDsForUser(context.Background(), "U7")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInternal))
	assert.ErrorIs(t, err, sql.ErrConnDone)
}

func TestRepublishAdapter_ListAccepted(t *testing.T) {
	client, mock := newMockClient(t)
	adapter := NewRepublishAdapter(client)
	at := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT .* FROM "republish_requests" WHERE .*"listing_id" IN .*"status" = .* ORDER BY "updated_at" DESC, "id" ASC`).
		WithArgs("L1", "L2", "Accepted").
		WillReturnRows(sqlmock.NewRows([]string{"id", "listing_id", "owner_id", "republisher_id", "status", "created_at", "updated_at"}).
			AddRow("R1", "L1", "U1", "D1", "Accepted", at, at))

	records, err := adapter.ListAccepted(context.Background(), []string{"L1", "L2"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "D1", records[0].RepublisherID)
	assert.Equal(t, entities.RepublishStatusAccepted, records[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLocationAdapter_FindActive(t *testing.T) {
	client, mock := newMockClient(t)
	adapter := NewLocationAdapter(client)

	mock.ExpectQuery(`SELECT .* FROM "locations" WHERE .*LOWER\("state"\).*LOWER\("city"\).*LOWER\("locality"\).* LIMIT`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "state", "city", "locality", "state_image_url", "city_image_url", "is_active"}).
			AddRow("LOC1", "Karnataka", "Bengaluru", "Koramangala", "https://img/ka.png", nil, true))

	loc, err := adapter.FindActive(context.Background(), "Karnataka", "Bengaluru", "Koramangala")
	require.NoError(t, err)
	assert.Equal(t, "LOC1", loc.ID)
	assert.Equal(t, "https://img/ka.png", loc.StateImageURL)
	assert.Empty(t, loc.CityImageURL)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLocationAdapter_FindActiveNotFound(t *testing.T) {
	client, mock := newMockClient(t)
	mock.ExpectQuery(`FROM "locations"`).WillReturnError(sql.ErrNoRows)

	_, err := NewLocationAdapter(client).FindActive(context.Background(), "X", "Y", "Z")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}
