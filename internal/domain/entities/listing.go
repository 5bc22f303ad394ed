package entities

import (
	"sync"
	"time"
)

// SaleType distinguishes listings offered for sale from wanted-to-buy posts
type SaleType string

const (
	SaleTypeSell SaleType = "Sell"
	SaleTypeBuy  SaleType = "Buy"
)

// Valid reports whether s is a known sale type.
func (s SaleType) Valid() bool {
	return s == SaleTypeSell || s == SaleTypeBuy
}

// CategoryAll disables the category filter
const CategoryAll = "All"

// Listing represents a car posted on the marketplace.
//
// Once a Listing has been handed to more than one goroutine its coordinates
// must be read and written through Coordinates and SetCoordinates.
type Listing struct {
	ID                string    `json:"id" db:"id"`
	OwnerID           string    `json:"owner_id" db:"owner_id"`
	Title             string    `json:"title" db:"title"`
	Brand             string    `json:"brand" db:"brand"`
	Model             string    `json:"model" db:"model"`
	Category          string    `json:"category" db:"category"`
	SaleType          SaleType  `json:"sale_type" db:"sale_type"`
	Price             float64   `json:"price" db:"price"`
	IsActive          bool      `json:"is_active" db:"is_active"`
	IsSold            bool      `json:"is_sold" db:"is_sold"`
	WorkingWithDealer *bool     `json:"working_with_dealer,omitempty" db:"working_with_dealer"`
	Images            []string  `json:"images" db:"-"`
	Address           Address   `json:"address" db:"-"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`

	mu sync.RWMutex
}

// Address is where the car can be seen
type Address struct {
	ID        string   `json:"id" db:"id"`
	State     string   `json:"state" db:"state"`
	City      string   `json:"city" db:"city"`
	Locality  string   `json:"locality" db:"locality"`
	Latitude  *float64 `json:"latitude,omitempty" db:"latitude"`
	Longitude *float64 `json:"longitude,omitempty" db:"longitude"`
}

// Coordinates returns the listing's coordinates; ok is false when either is missing.
func (l *Listing) Coordinates() (lat, lng float64, ok bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.Address.Latitude == nil || l.Address.Longitude == nil {
		return 0, 0, false
	}
	return *l.Address.Latitude, *l.Address.Longitude, true
}

// SetCoordinates stores freshly resolved coordinates on the in-memory copy.
func (l *Listing) SetCoordinates(lat, lng float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Address.Latitude = &lat
	l.Address.Longitude = &lng
}

// HasCoordinates reports whether both latitude and longitude are known.
func (l *Listing) HasCoordinates() bool {
	_, _, ok := l.Coordinates()
	return ok
}

// HasFullAddress reports whether locality, city and state are all present.
func (a Address) HasFullAddress() bool {
	return a.Locality != "" && a.City != "" && a.State != ""
}
