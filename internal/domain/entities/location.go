package entities

// SearchLocation is a curated locality row used to decorate locality searches
type SearchLocation struct {
	ID            string `json:"id" db:"id"`
	State         string `json:"state" db:"state"`
	City          string `json:"city" db:"city"`
	Locality      string `json:"locality" db:"locality"`
	StateImageURL string `json:"stateImageUrl,omitempty" db:"state_image_url"`
	CityImageURL  string `json:"cityImageUrl,omitempty" db:"city_image_url"`
	IsActive      bool   `json:"isActive" db:"is_active"`
}
