package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/lib/pq"

	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/domain/entities"
	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/domain/repositories"
	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/infrastructure/clients/postgres"
	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/infrastructure/observability"
	apperrors "github.com/nextopson-repo/Dhikcar-backend-sub001/pkg/errors"
)

var listingColumns = []interface{}{
	goqu.I("l.id"),
	goqu.I("l.owner_id"),
	goqu.I("l.title"),
	goqu.I("l.brand"),
	goqu.I("l.model"),
	goqu.I("l.category"),
	goqu.I("l.sale_type"),
	goqu.I("l.price"),
	goqu.I("l.is_active"),
	goqu.I("l.is_sold"),
	goqu.I("l.working_with_dealer"),
	goqu.I("l.images"),
	goqu.I("l.created_at"),
	goqu.I("l.updated_at"),
	goqu.I("a.id"),
	goqu.I("a.state"),
	goqu.I("a.city"),
	goqu.I("a.locality"),
	goqu.I("a.latitude"),
	goqu.I("a.longitude"),
}

// ListingAdapter implements ListingRepository on PostgreSQL
type ListingAdapter struct {
	client  *postgres.Client
	db      *goqu.Database
	metrics *observability.Metrics
}

// NewListingAdapter creates a new listing adapter. metrics may be nil.
func NewListingAdapter(client *postgres.Client, metrics *observability.Metrics) repositories.ListingRepository {
	return &ListingAdapter{
		client:  client,
		db:      goqu.New("postgres", client.DB()),
		metrics: metrics,
	}
}

func (a *ListingAdapter) base() *goqu.SelectDataset {
	return a.db.From(goqu.T("listings").As("l")).
		Prepared(true).
		InnerJoin(goqu.T("addresses").As("a"), goqu.On(goqu.I("a.id").Eq(goqu.I("l.address_id")))).
		Where(
			goqu.I("l.is_active").IsTrue(),
			goqu.I("l.is_sold").IsFalse(),
		)
}

// Find returns one page of listings
func (a *ListingAdapter) Find(ctx context.Context, q repositories.ListingQuery) ([]*entities.Listing, error) {
	start := time.Now()
	defer func() { observability.RecordDBMetric(ctx, a.metrics, "listings.find", time.Since(start)) }()

	ds := a.base().
		Select(listingColumns...).
		Where(filterExpressions(q.Filter)...).
		Order(orderExpressions(q.Sort)...)
	if q.Page.Limit > 0 {
		ds = ds.Limit(uint(q.Page.Limit))
	}
	if q.Page.Offset > 0 {
		ds = ds.Offset(uint(q.Page.Offset))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build listing query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query listings", err)
	}
	defer rows.Close()

	return scanListings(rows)
}

// Count returns the number of listings matching the filter
func (a *ListingAdapter) Count(ctx context.Context, filter repositories.ListingFilter) (int, error) {
	start := time.Now()
	defer func() { observability.RecordDBMetric(ctx, a.metrics, "listings.count", time.Since(start)) }()

	query, args, err := a.base().
		Select(goqu.COUNT(goqu.Star())).
		Where(filterExpressions(filter)...).
		ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build listing count query", err)
	}

	var total int
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, apperrors.NewInternalError("failed to count listings", err)
	}
	return total, nil
}

// UpdateCoordinates persists latitude and longitude on an address
func (a *ListingAdapter) UpdateCoordinates(ctx context.Context, addressID string, lat, lng float64) error {
	query, args, err := a.db.Update("addresses").
		Prepared(true).
		Set(goqu.Record{
			"latitude":   lat,
			"longitude":  lng,
			"updated_at": goqu.L("NOW()"),
		}).
		Where(goqu.Ex{"id": addressID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build coordinate update", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update coordinates", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to read affected rows", err)
	}
	if affected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("address %s not found", addressID))
	}
	return nil
}

// ListMissingCoordinates pages through listings whose address lacks coordinates
func (a *ListingAdapter) ListMissingCoordinates(ctx context.Context, limit int, afterID string) ([]*entities.Listing, error) {
	ds := a.base().
		Select(listingColumns...).
		Where(goqu.Or(
			goqu.I("a.latitude").IsNull(),
			goqu.I("a.longitude").IsNull(),
		)).
		Order(goqu.I("l.id").Asc()).
		Limit(uint(limit))
	if afterID != "" {
		ds = ds.Where(goqu.I("l.id").Gt(afterID))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build missing coordinates query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query listings missing coordinates", err)
	}
	defer rows.Close()

	return scanListings(rows)
}

func filterExpressions(f repositories.ListingFilter) []exp.Expression {
	var exprs []exp.Expression

	if len(f.Categories) > 0 {
		exprs = append(exprs, goqu.I("l.category").In(f.Categories))
	}
	if f.SaleType != "" {
		exprs = append(exprs, goqu.I("l.sale_type").Eq(string(f.SaleType)))
	}
	switch {
	case f.MinPrice != nil && f.MaxPrice != nil:
		exprs = append(exprs, goqu.I("l.price").Between(goqu.Range(*f.MinPrice, *f.MaxPrice)))
	case f.MinPrice != nil:
		exprs = append(exprs, goqu.I("l.price").Gte(*f.MinPrice))
	case f.MaxPrice != nil:
		exprs = append(exprs, goqu.I("l.price").Lte(*f.MaxPrice))
	}
	for _, part := range []struct{ column, value string }{
		{"a.state", f.State},
		{"a.city", f.City},
		{"a.locality", f.Locality},
	} {
		if v := strings.TrimSpace(part.value); v != "" {
			exprs = append(exprs, goqu.I(part.column).ILike("%"+escapeLike(v)+"%"))
		}
	}
	return exprs
}

func orderExpressions(s repositories.ListingSort) []exp.OrderedExpression {
	field := s.Field
	if field == "" {
		field = repositories.SortFieldCreatedAt
	}
	col := goqu.I("l." + string(field))

	primary := col.Asc()
	if s.Descending {
		primary = col.Desc()
	}
	return []exp.OrderedExpression{primary, goqu.I("l.id").Asc()}
}

// escapeLike makes user input literal inside a LIKE pattern.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
}

func scanListings(rows *sql.Rows) ([]*entities.Listing, error) {
	var listings []*entities.Listing
	for rows.Next() {
		var (
			l                     entities.Listing
			brand, model          sql.NullString
			workingWithDealer     sql.NullBool
			images                pq.StringArray
			state, city, locality sql.NullString
			latitude, longitude   sql.NullFloat64
			saleType              string
		)
		err := rows.Scan(
			&l.ID,
			&l.OwnerID,
			&l.Title,
			&brand,
			&model,
			&l.Category,
			&saleType,
			&l.Price,
			&l.IsActive,
			&l.IsSold,
			&workingWithDealer,
			&images,
			&l.CreatedAt,
			&l.UpdatedAt,
			&l.Address.ID,
			&state,
			&city,
			&locality,
			&latitude,
			&longitude,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan listing", err)
		}

		l.Brand = brand.String
		l.Model = model.String
		l.SaleType = entities.SaleType(saleType)
		l.Images = []string(images)
		if workingWithDealer.Valid {
			v := workingWithDealer.Bool
			l.WorkingWithDealer = &v
		}
		l.Address.State = state.String
		l.Address.City = city.String
		l.Address.Locality = locality.String
		if latitude.Valid {
			v := latitude.Float64
			l.Address.Latitude = &v
		}
		if longitude.Valid {
			v := longitude.Float64
			l.Address.Longitude = &v
		}

		listings = append(listings, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate listings", err)
	}
	return listings, nil
}
