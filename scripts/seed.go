package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/domain/entities"
	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/infrastructure/clients/postgres"
	"github.com/nextopson-repo/Dhikcar-backend-sub001/internal/infrastructure/observability"
	"github.com/nextopson-repo/Dhikcar-backend-sub001/pkg/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	full_name     TEXT NOT NULL,
	user_type     TEXT NOT NULL,
	mobile_number TEXT,
	email         TEXT,
	profile_url   TEXT
);
CREATE TABLE IF NOT EXISTS addresses (
	id        TEXT PRIMARY KEY,
	state     TEXT NOT NULL,
	city      TEXT NOT NULL,
	locality  TEXT NOT NULL,
	latitude  DOUBLE PRECISION,
	longitude DOUBLE PRECISION
);
CREATE TABLE IF NOT EXISTS listings (
	id                  TEXT PRIMARY KEY,
	owner_id            TEXT NOT NULL REFERENCES users(id),
	address_id          TEXT NOT NULL REFERENCES addresses(id),
	title               TEXT NOT NULL,
	brand               TEXT NOT NULL,
	model               TEXT NOT NULL,
	category            TEXT NOT NULL,
	sale_type           TEXT NOT NULL,
	price               BIGINT NOT NULL,
	is_active           BOOLEAN NOT NULL DEFAULT TRUE,
	is_sold             BOOLEAN NOT NULL DEFAULT FALSE,
	working_with_dealer BOOLEAN,
	images              TEXT[] NOT NULL DEFAULT '{}',
	created_at          TIMESTAMPTZ NOT NULL,
	updated_at          TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_listings_created_at ON listings (created_at DESC, id);
CREATE TABLE IF NOT EXISTS saved_listings (
	user_id    TEXT NOT NULL REFERENCES users(id),
	listing_id TEXT NOT NULL REFERENCES listings(id),
	PRIMARY KEY (user_id, listing_id)
);
CREATE TABLE IF NOT EXISTS republish_requests (
	id             TEXT PRIMARY KEY,
	listing_id     TEXT NOT NULL REFERENCES listings(id),
	owner_id       TEXT NOT NULL REFERENCES users(id),
	republisher_id TEXT NOT NULL REFERENCES users(id),
	status         TEXT NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL,
	updated_at     TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS locations (
	id              TEXT PRIMARY KEY,
	state           TEXT NOT NULL,
	city            TEXT NOT NULL,
	locality        TEXT NOT NULL,
	state_image_url TEXT,
	city_image_url  TEXT,
	is_active       BOOLEAN NOT NULL DEFAULT TRUE
);
`

type userRow struct {
	ID           string `db:"id"`
	FullName     string `db:"full_name"`
	UserType     string `db:"user_type"`
	MobileNumber string `db:"mobile_number"`
	Email        string `db:"email"`
	ProfileURL   string `db:"profile_url"`
}

type addressRow struct {
	ID        string   `db:"id"`
	State     string   `db:"state"`
	City      string   `db:"city"`
	Locality  string   `db:"locality"`
	Latitude  *float64 `db:"latitude"`
	Longitude *float64 `db:"longitude"`
}

type listingRow struct {
	ID                string         `db:"id"`
	OwnerID           string         `db:"owner_id"`
	AddressID         string         `db:"address_id"`
	Title             string         `db:"title"`
	Brand             string         `db:"brand"`
	Model             string         `db:"model"`
	Category          string         `db:"category"`
	SaleType          string         `db:"sale_type"`
	Price             int64          `db:"price"`
	IsActive          bool           `db:"is_active"`
	IsSold            bool           `db:"is_sold"`
	WorkingWithDealer *bool          `db:"working_with_dealer"`
	Images            pq.StringArray `db:"images"`
	CreatedAt         time.Time      `db:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at"`
}

type savedRow struct {
	UserID    string `db:"user_id"`
	ListingID string `db:"listing_id"`
}

type republishRow struct {
	ID            string    `db:"id"`
	ListingID     string    `db:"listing_id"`
	OwnerID       string    `db:"owner_id"`
	RepublisherID string    `db:"republisher_id"`
	Status        string    `db:"status"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

type locationRow struct {
	ID            string `db:"id"`
	State         string `db:"state"`
	City          string `db:"city"`
	Locality      string `db:"locality"`
	StateImageURL string `db:"state_image_url"`
	CityImageURL  string `db:"city_image_url"`
	IsActive      bool   `db:"is_active"`
}

func coord(v float64) *float64 { return &v }

func flag(v bool) *bool { return &v }

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	observability.InitLogger("dhikcar-seed", cfg.Environment)

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to DB")
	}
	defer pgClient.Close()

	ctx := context.Background()
	db := goqu.New("postgres", pgClient.DB())

	if _, err := pgClient.DB().ExecContext(ctx, schema); err != nil {
		log.Fatal().Err(err).Msg("Failed to create schema")
	}

	if os.Getenv("RESET_DB") == "true" {
		log.Info().Msg("RESET_DB=true detected, truncating tables before seeding")
		_, err := pgClient.DB().ExecContext(ctx, `
			TRUNCATE TABLE
				saved_listings,
				republish_requests,
				listings,
				addresses,
				locations,
				users
			RESTART IDENTITY CASCADE
		`)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to reset tables")
		}
	}

	// 1. Users: one of each type plus a second dealer who republishes
	users := []userRow{
		{ID: uuid.NewString(), FullName: "Ravi Kumar", UserType: string(entities.UserTypeOwner), MobileNumber: "9800000001", Email: "ravi@example.com"},
		{ID: uuid.NewString(), FullName: "Anita Sharma", UserType: string(entities.UserTypeEndUser), MobileNumber: "9800000002", Email: "anita@example.com"},
		{ID: uuid.NewString(), FullName: "Metro Motors", UserType: string(entities.UserTypeDealer), MobileNumber: "9800000003", Email: "sales@metromotors.example.com"},
		{ID: uuid.NewString(), FullName: "Highway Cars", UserType: string(entities.UserTypeDealer), MobileNumber: "9800000004", Email: "hello@highwaycars.example.com"},
	}
	owner, endUser, dealer, otherDealer := users[0], users[1], users[2], users[3]

	// 2. Addresses, some still waiting on the coordinate backfill
	addresses := []addressRow{
		{ID: uuid.NewString(), State: "Karnataka", City: "Bengaluru", Locality: "Indiranagar", Latitude: coord(12.9784), Longitude: coord(77.6408)},
		{ID: uuid.NewString(), State: "Karnataka", City: "Bengaluru", Locality: "Koramangala", Latitude: coord(12.9352), Longitude: coord(77.6245)},
		{ID: uuid.NewString(), State: "Karnataka", City: "Bengaluru", Locality: "Whitefield"},
		{ID: uuid.NewString(), State: "Maharashtra", City: "Pune", Locality: "Kothrud", Latitude: coord(18.5074), Longitude: coord(73.8077)},
		{ID: uuid.NewString(), State: "Maharashtra", City: "Pune", Locality: "Baner"},
		{ID: uuid.NewString(), State: "Delhi", City: "New Delhi", Locality: "Saket", Latitude: coord(28.5245), Longitude: coord(77.2066)},
	}

	// 3. Listings
	now := time.Now().UTC()
	images := pq.StringArray{"https://cdn.example.com/cars/placeholder.jpg"}
	listings := []listingRow{
		{Title: "Swift VXi 2019", Brand: "Maruti Suzuki", Model: "Swift", Category: "Hatchback", SaleType: string(entities.SaleTypeSell), Price: 450000, OwnerID: owner.ID, AddressID: addresses[0].ID, WorkingWithDealer: flag(false)},
		{Title: "City ZX 2020", Brand: "Honda", Model: "City", Category: "Sedan", SaleType: string(entities.SaleTypeSell), Price: 1050000, OwnerID: dealer.ID, AddressID: addresses[1].ID},
		{Title: "Creta SX 2021", Brand: "Hyundai", Model: "Creta", Category: "SUV", SaleType: string(entities.SaleTypeSell), Price: 1425000, OwnerID: endUser.ID, AddressID: addresses[2].ID, WorkingWithDealer: flag(true)},
		{Title: "Nexon EV Max", Brand: "Tata", Model: "Nexon EV", Category: "SUV", SaleType: string(entities.SaleTypeSell), Price: 1675000, OwnerID: owner.ID, AddressID: addresses[3].ID},
		{Title: "Innova Crysta 2018", Brand: "Toyota", Model: "Innova Crysta", Category: "MUV", SaleType: string(entities.SaleTypeSell), Price: 1550000, OwnerID: otherDealer.ID, AddressID: addresses[4].ID},
		{Title: "Looking for a Fortuner", Brand: "Toyota", Model: "Fortuner", Category: "SUV", SaleType: string(entities.SaleTypeBuy), Price: 32000000, OwnerID: endUser.ID, AddressID: addresses[5].ID},
		{Title: "XUV700 AX7", Brand: "Mahindra", Model: "XUV700", Category: "SUV", SaleType: string(entities.SaleTypeSell), Price: 2100000, OwnerID: endUser.ID, AddressID: addresses[0].ID, WorkingWithDealer: flag(false)},
		{Title: "Alto 800 2015", Brand: "Maruti Suzuki", Model: "Alto 800", Category: "Hatchback", SaleType: string(entities.SaleTypeSell), Price: 175000, OwnerID: owner.ID, AddressID: addresses[2].ID, IsSold: true},
	}
	for i := range listings {
		listings[i].ID = uuid.NewString()
		listings[i].IsActive = true
		listings[i].Images = images
		listings[i].CreatedAt = now.Add(-time.Duration(i*7) * time.Hour)
		listings[i].UpdatedAt = listings[i].CreatedAt
	}

	// 4. Saved listings for the end user
	saved := []savedRow{
		{UserID: endUser.ID, ListingID: listings[0].ID},
		{UserID: endUser.ID, ListingID: listings[3].ID},
	}

	// 5. Republish requests: one accepted, one still pending
	republish := []republishRow{
		{ID: uuid.NewString(), ListingID: listings[0].ID, OwnerID: owner.ID, RepublisherID: dealer.ID, Status: string(entities.RepublishStatusAccepted), CreatedAt: now.Add(-2 * time.Hour), UpdatedAt: now.Add(-time.Hour)},
		{ID: uuid.NewString(), ListingID: listings[3].ID, OwnerID: owner.ID, RepublisherID: otherDealer.ID, Status: string(entities.RepublishStatusPending), CreatedAt: now.Add(-30 * time.Minute), UpdatedAt: now.Add(-30 * time.Minute)},
	}

	// 6. Locations shown as the search header
	locations := []locationRow{
		{ID: uuid.NewString(), State: "Karnataka", City: "Bengaluru", Locality: "Indiranagar", StateImageURL: "https://cdn.example.com/states/karnataka.jpg", CityImageURL: "https://cdn.example.com/cities/bengaluru.jpg", IsActive: true},
		{ID: uuid.NewString(), State: "Maharashtra", City: "Pune", Locality: "Kothrud", StateImageURL: "https://cdn.example.com/states/maharashtra.jpg", CityImageURL: "https://cdn.example.com/cities/pune.jpg", IsActive: true},
	}

	steps := []struct {
		table string
		rows  interface{}
		count int
	}{
		{"users", users, len(users)},
		{"addresses", addresses, len(addresses)},
		{"listings", listings, len(listings)},
		{"saved_listings", saved, len(saved)},
		{"republish_requests", republish, len(republish)},
		{"locations", locations, len(locations)},
	}

	for _, step := range steps {
		query, args, err := db.Insert(step.table).Prepared(true).Rows(step.rows).ToSQL()
		if err != nil {
			log.Fatal().Err(err).Str("table", step.table).Msg("Failed to build insert")
		}
		if _, err := pgClient.DB().ExecContext(ctx, query, args...); err != nil {
			log.Error().Err(err).Str("table", step.table).Msg("Failed to seed table")
			continue
		}
		log.Info().Str("table", step.table).Int("rows", step.count).Msg("Seeded table")
	}

	log.Info().Msg("Seeding completed")
}
