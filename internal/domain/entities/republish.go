package entities

import "time"

// RepublishStatus is the lifecycle state of a republish request
type RepublishStatus string

const (
	RepublishStatusPending  RepublishStatus = "Pending"
	RepublishStatusAccepted RepublishStatus = "Accepted"
	RepublishStatusRejected RepublishStatus = "Rejected"
)

// RepublishRecord lets another user (usually a dealer) advertise a listing on
// the owner's behalf once the owner accepts.
type RepublishRecord struct {
	ID            string          `json:"id" db:"id"`
	ListingID     string          `json:"listing_id" db:"listing_id"`
	OwnerID       string          `json:"owner_id" db:"owner_id"`
	RepublisherID string          `json:"republisher_id" db:"republisher_id"`
	Status        RepublishStatus `json:"status" db:"status"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}
