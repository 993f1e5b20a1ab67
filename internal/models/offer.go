package models

import (
	"fmt"
	"strings"
	"time"
)

// Offer is a sellable inventory item in any vertical: a hotel room type, a
// flight fare bucket, an event ticket tier, a table slot.
type Offer struct {
	ID             string          `json:"id" db:"id"`
	Category       BookingCategory `json:"category" db:"category"`
	Title          string          `json:"title" db:"title"`
	UnitsTotal     int             `json:"units_total" db:"units_total"`
	UnitsAvailable int             `json:"units_available" db:"units_available"`
	UnitPrice      float64         `json:"unit_price" db:"unit_price"`
	Currency       string          `json:"currency" db:"currency"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// CreateOfferRequest is the body of POST /api/v1/offers. New offers always
// start fully available.
type CreateOfferRequest struct {
	Category   BookingCategory `json:"category"`
	Title      string          `json:"title"`
	UnitsTotal int             `json:"units_total"`
	UnitPrice  float64         `json:"unit_price"`
	Currency   string          `json:"currency"`
}

// Validate checks the seeding payload.
func (r *CreateOfferRequest) Validate() error {
	if !r.Category.IsValid() {
		return fmt.Errorf("unknown category %q", r.Category)
	}
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if r.UnitsTotal <= 0 {
		return fmt.Errorf("units_total must be positive")
	}
	if r.UnitPrice < 0 {
		return fmt.Errorf("unit_price must not be negative")
	}
	if len(r.Currency) != 3 {
		return fmt.Errorf("currency must be a 3-letter code")
	}
	return nil
}
