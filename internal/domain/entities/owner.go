package entities

// UserType classifies marketplace accounts
type UserType string

const (
	UserTypeDealer  UserType = "Dealer"
	UserTypeOwner   UserType = "Owner"
	UserTypeEndUser UserType = "EndUser"
)

// Valid reports whether t is a known user type.
func (t UserType) Valid() bool {
	switch t {
	case UserTypeDealer, UserTypeOwner, UserTypeEndUser:
		return true
	}
	return false
}

// Owner is the public profile of the account that posted or republished a listing
type Owner struct {
	ID           string   `json:"id" db:"id"`
	FullName     string   `json:"fullName" db:"full_name"`
	UserType     UserType `json:"userType" db:"user_type"`
	MobileNumber string   `json:"mobileNumber,omitempty" db:"mobile_number"`
	Email        string   `json:"email,omitempty" db:"email"`
	ProfileURL   string   `json:"profileUrl,omitempty" db:"profile_url"`
}
