package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ============================================================================
// BOOKING CATEGORIES & STATUSES
// ============================================================================

// BookingCategory identifies the marketplace vertical a booking belongs to.
type BookingCategory string

const (
	CategoryHotel         BookingCategory = "hotel"
	CategoryFlight        BookingCategory = "flight"
	CategoryEvent         BookingCategory = "event"
	CategoryEntertainment BookingCategory = "entertainment"
	CategoryDining        BookingCategory = "dining"
	CategoryActivity      BookingCategory = "activity"
	CategoryTransport     BookingCategory = "transport"
	CategoryShop          BookingCategory = "shop"
	CategoryOther         BookingCategory = "other"
)

// AllCategories lists every known vertical.
var AllCategories = []BookingCategory{
	CategoryHotel, CategoryFlight, CategoryEvent, CategoryEntertainment,
	CategoryDining, CategoryActivity, CategoryTransport, CategoryShop,
	CategoryOther,
}

// IsValid reports whether c is a known category.
func (c BookingCategory) IsValid() bool {
	for _, known := range AllCategories {
		if c == known {
			return true
		}
	}
	return false
}

// BookingStatus represents the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingHeld       BookingStatus = "held"
	BookingConfirmed  BookingStatus = "confirmed"
	BookingCancelled  BookingStatus = "cancelled"
	BookingCompleted  BookingStatus = "completed"
	BookingCheckedIn  BookingStatus = "checked_in"
	BookingCheckedOut BookingStatus = "checked_out"
	BookingNoShow     BookingStatus = "no_show"
)

// SweepableStatuses are the statuses the expiry sweep may cancel.
// Everything else is terminal as far as the sweep is concerned.
var SweepableStatuses = []BookingStatus{BookingPending, BookingHeld}

// IsSweepable reports whether the expiry sweep may still cancel a booking
// in this status.
func (s BookingStatus) IsSweepable() bool {
	return s == BookingPending || s == BookingHeld
}

// OwnerGuest is the sentinel owner reference for bookings created without an
// account. Guest bookings are readable by any authenticated caller.
const OwnerGuest = "GUEST"

// ============================================================================
// BOOKING
// ============================================================================

// GuestList stores the passenger/guest entries of a booking as JSONB.
type GuestList []GuestEntry

// GuestEntry is a single passenger or guest on a booking.
type GuestEntry struct {
	FullName string `json:"full_name"`
	Age      int    `json:"age,omitempty"`
	Document string `json:"document,omitempty"`
}

func (g GuestList) Value() (driver.Value, error) {
	return json.Marshal(g)
}

func (g *GuestList) Scan(value interface{}) error {
	if value == nil {
		*g = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(bytes, g)
}

// Booking is the unified booking record. Physically a booking may live in the
// generic bookings table or in one of the legacy per-category tables; the
// repository maps those tables onto this one shape.
type Booking struct {
	ID               string          `json:"id" db:"id"`
	OwnerRef         string          `json:"owner_ref" db:"owner_ref"`
	Category         BookingCategory `json:"category" db:"category"`
	Status           BookingStatus   `json:"status" db:"status"`
	OfferID          string          `json:"offer_id" db:"offer_id"`
	Quantity         int             `json:"quantity" db:"quantity"`
	TotalAmount      float64         `json:"total_amount" db:"total_amount"`
	Currency         string          `json:"currency" db:"currency"`
	ContactEmail     string          `json:"contact_email" db:"contact_email"`
	Guests           GuestList       `json:"guests,omitempty" db:"guests"`
	PaymentReference *string         `json:"payment_reference,omitempty" db:"payment_reference"`
	ExpiresAt        *time.Time      `json:"expires_at,omitempty" db:"expires_at"`
	PaymentDeadline  *time.Time      `json:"payment_deadline,omitempty" db:"payment_deadline"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
}

// IsGuest reports whether the booking was created without an account.
func (b *Booking) IsGuest() bool {
	return b.OwnerRef == OwnerGuest
}

// ============================================================================
// REQUESTS & RESPONSES
// ============================================================================

// CreateHoldRequest is the body of POST /api/v1/bookings/hold.
type CreateHoldRequest struct {
	OfferID      string       `json:"offer_id"`
	Quantity     int          `json:"quantity"`
	Guests       []GuestEntry `json:"guests"`
	ContactEmail string       `json:"contact_email"`
	// HoldHours optionally overrides the configured hold duration.
	HoldHours int `json:"hold_hours,omitempty"`
}

// Validate checks the request before any mutation happens. A zero quantity
// defaults to the number of guest entries.
func (r *CreateHoldRequest) Validate() error {
	if strings.TrimSpace(r.OfferID) == "" {
		return fmt.Errorf("offer_id is required")
	}
	if len(r.Guests) == 0 {
		return fmt.Errorf("at least one guest entry is required")
	}
	for i, g := range r.Guests {
		if strings.TrimSpace(g.FullName) == "" {
			return fmt.Errorf("guest %d: full_name is required", i+1)
		}
	}
	if r.Quantity == 0 {
		r.Quantity = len(r.Guests)
	}
	if r.Quantity < 0 {
		return fmt.Errorf("quantity must be positive")
	}
	if r.HoldHours < 0 {
		return fmt.Errorf("hold_hours must be positive")
	}
	return nil
}

// ConfirmBookingRequest is the body of POST /api/v1/bookings/:id/confirm.
type ConfirmBookingRequest struct {
	PaymentReference string `json:"payment_reference"`
}

// Validate checks the confirmation payload.
func (r *ConfirmBookingRequest) Validate() error {
	if strings.TrimSpace(r.PaymentReference) == "" {
		return fmt.Errorf("payment_reference is required")
	}
	return nil
}

// HoldResponse is returned after a successful hold creation.
type HoldResponse struct {
	BookingID       string    `json:"booking_id"`
	Status          string    `json:"status"`
	HoldUntil       time.Time `json:"hold_until"`
	PaymentDeadline time.Time `json:"payment_deadline"`
	UnitsRemaining  int       `json:"units_remaining"`
}
