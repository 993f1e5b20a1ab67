package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the internal account record. ExternalID carries the identity
// provider's subject; bookings store the internal id as owner_ref once the
// user record exists.
type User struct {
	ID         uuid.UUID `json:"id" db:"id"`
	ExternalID string    `json:"external_id" db:"external_id"`
	Email      string    `json:"email" db:"email"`
	FullName   string    `json:"full_name" db:"full_name"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}
