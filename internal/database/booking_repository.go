package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/travelmarket/booking-backend/internal/models"
)

// TableSpec maps one physical booking table onto the unified booking shape.
// The legacy per-category tables predate the generic bookings table and
// disagree on column names, so every query against them is built from the
// spec instead of being duplicated per table.
type TableSpec struct {
	Name       string
	StatusCol  string
	ExpiresCol string
	OfferCol   string
	QtyCol     string
	Category   models.BookingCategory
}

// BookingTables lists every physical table the expiry sweep must cover.
// The generic table comes first; the rest are legacy category tables still
// written to by the older partner integrations.
var BookingTables = []TableSpec{
	{Name: "bookings", StatusCol: "status", ExpiresCol: "expires_at", OfferCol: "offer_id", QtyCol: "quantity"},
	{Name: "hotel_bookings", StatusCol: "booking_status", ExpiresCol: "hold_until", OfferCol: "offer_id", QtyCol: "rooms_count", Category: models.CategoryHotel},
	{Name: "flight_bookings", StatusCol: "status", ExpiresCol: "hold_until", OfferCol: "offer_id", QtyCol: "seats_count", Category: models.CategoryFlight},
	{Name: "event_bookings", StatusCol: "booking_status", ExpiresCol: "expires_at", OfferCol: "offer_id", QtyCol: "quantity", Category: models.CategoryEvent},
	{Name: "entertainment_bookings", StatusCol: "status", ExpiresCol: "expires_at", OfferCol: "offer_id", QtyCol: "quantity", Category: models.CategoryEntertainment},
	{Name: "dining_appointments", StatusCol: "status", ExpiresCol: "expires_at", OfferCol: "offer_id", QtyCol: "party_size", Category: models.CategoryDining},
}

// ReleasedHold describes one booking cancelled by the sweep, for event
// publishing and inventory accounting.
type ReleasedHold struct {
	BookingID string
	OfferID   string
	Quantity  int
}

// BookingRepository handles booking persistence across the generic table and
// the legacy category tables.
type BookingRepository struct {
	db DB
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `id, owner_ref, category, status, offer_id, quantity, total_amount,
		currency, contact_email, guests, payment_reference, expires_at,
		payment_deadline, created_at, updated_at`

// ============================================================================
// HOLD CREATION
// ============================================================================

// CreateHold inserts a new held booking and decrements offer inventory in the
// same transaction. The decrement is a conditional update: it only fires when
// enough units remain, so a concurrent hold can never oversell. Returns the
// units remaining after the decrement.
func (r *BookingRepository) CreateHold(booking *models.Booking) (int, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return 0, fmt.Errorf("failed to begin hold transaction: %w", err)
	}
	defer tx.Rollback()

	var remaining int
	err = tx.QueryRow(`
		UPDATE offers
		SET units_available = units_available - $1, updated_at = NOW()
		WHERE id = $2 AND units_available >= $1
		RETURNING units_available`,
		booking.Quantity, booking.OfferID,
	).Scan(&remaining)
	if err == sql.ErrNoRows {
		// Either the offer is missing or it lacks capacity; look once to say which.
		var available int
		lookupErr := tx.QueryRow(`SELECT units_available FROM offers WHERE id = $1`, booking.OfferID).Scan(&available)
		if lookupErr == sql.ErrNoRows {
			return 0, models.ErrNotFound
		}
		if lookupErr != nil {
			return 0, fmt.Errorf("failed to check offer availability: %w", lookupErr)
		}
		return 0, &models.CapacityError{Available: available, Requested: booking.Quantity}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to reserve inventory: %w", err)
	}

	booking.ID = uuid.New().String()
	booking.Status = models.BookingHeld
	err = tx.QueryRow(`
		INSERT INTO bookings (
			id, owner_ref, category, status, offer_id, quantity, total_amount,
			currency, contact_email, guests, expires_at, payment_deadline
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at`,
		booking.ID, booking.OwnerRef, booking.Category, booking.Status,
		booking.OfferID, booking.Quantity, booking.TotalAmount, booking.Currency,
		booking.ContactEmail, booking.Guests, booking.ExpiresAt, booking.PaymentDeadline,
	).Scan(&booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert booking: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit hold: %w", err)
	}
	return remaining, nil
}

// ============================================================================
// READS
// ============================================================================

// GetByID retrieves a booking from the generic table.
func (r *BookingRepository) GetByID(id string) (*models.Booking, error) {
	var b models.Booking
	err := r.db.Get(&b, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &b, nil
}

// ListByOwner returns the bookings whose owner_ref matches either identity
// form. Bookings created before the user record was synchronized still carry
// the external provider id, so both are matched.
func (r *BookingRepository) ListByOwner(internalID, externalID string, limit, offset int) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.Select(&bookings, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE owner_ref IN ($1, $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`,
		internalID, externalID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

// GetByPaymentReference retrieves a booking by its payment reference.
func (r *BookingRepository) GetByPaymentReference(ref string) (*models.Booking, error) {
	var b models.Booking
	err := r.db.Get(&b, `SELECT `+bookingColumns+` FROM bookings WHERE payment_reference = $1`, ref)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking by payment reference: %w", err)
	}
	return &b, nil
}

// ============================================================================
// STATUS TRANSITIONS
// ============================================================================

// Confirm marks a held or pending booking confirmed for the given payment
// reference. The transition is a single conditional update; when zero rows
// match, the current row decides between idempotent success (already
// confirmed with the same reference), not-found, and invalid transition.
func (r *BookingRepository) Confirm(id, paymentRef string) (*models.Booking, error) {
	var b models.Booking
	err := r.db.Get(&b, `
		UPDATE bookings
		SET status = 'confirmed', payment_reference = $2, updated_at = NOW()
		WHERE id = $1
		  AND status IN ('pending', 'held')
		  AND (payment_deadline IS NULL OR payment_deadline > NOW())
		RETURNING `+bookingColumns,
		id, paymentRef)
	if err == nil {
		return &b, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to confirm booking: %w", err)
	}

	current, getErr := r.GetByID(id)
	if getErr != nil {
		return nil, getErr
	}
	if current.Status == models.BookingConfirmed &&
		current.PaymentReference != nil && *current.PaymentReference == paymentRef {
		// Repeated gateway callback with the same reference: no-op success.
		return current, nil
	}
	return nil, fmt.Errorf("booking %s is %s: %w", id, current.Status, models.ErrInvalidTransition)
}

// Cancel transitions a held or pending booking to cancelled and restores its
// offer inventory in the same transaction.
func (r *BookingRepository) Cancel(id string) (*models.Booking, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin cancel transaction: %w", err)
	}
	defer tx.Rollback()

	var b models.Booking
	err = tx.Get(&b, `
		UPDATE bookings
		SET status = 'cancelled', updated_at = NOW()
		WHERE id = $1 AND status IN ('pending', 'held')
		RETURNING `+bookingColumns,
		id)
	if err == sql.ErrNoRows {
		current, getErr := r.GetByID(id)
		if getErr != nil {
			return nil, getErr
		}
		if current.Status == models.BookingCancelled {
			return current, nil
		}
		return nil, fmt.Errorf("booking %s is %s: %w", id, current.Status, models.ErrInvalidTransition)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to cancel booking: %w", err)
	}

	_, err = tx.Exec(`
		UPDATE offers
		SET units_available = LEAST(units_total, units_available + $1), updated_at = NOW()
		WHERE id = $2`,
		b.Quantity, b.OfferID)
	if err != nil {
		return nil, fmt.Errorf("failed to restore inventory: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit cancellation: %w", err)
	}
	return &b, nil
}

// ============================================================================
// EXPIRY SWEEP
// ============================================================================

// SweepExpired cancels every sweepable row of one table whose deadline has
// passed, or which has no deadline and predates staleBefore, restoring the
// decremented inventory in the same transaction. The status flip is the sole
// mutation primitive: a row can only be returned by one racing sweep, so
// inventory is credited exactly once. ctx carries the sweep budget; a hung
// table query is interrupted rather than waited out.
func (r *BookingRepository) SweepExpired(ctx context.Context, spec TableSpec, now, staleBefore time.Time) ([]ReleasedHold, int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to begin sweep transaction: %w", err)
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = 'cancelled', updated_at = NOW()
		WHERE %s IN ('pending', 'held')
		  AND (%s < $1 OR (%s IS NULL AND created_at < $2))
		RETURNING id, %s, %s`,
		spec.Name, spec.StatusCol, spec.StatusCol,
		spec.ExpiresCol, spec.ExpiresCol, spec.OfferCol, spec.QtyCol)

	rows, err := tx.QueryContext(ctx, query, now, staleBefore)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to sweep %s: %w", spec.Name, err)
	}

	var released []ReleasedHold
	for rows.Next() {
		var h ReleasedHold
		if err := rows.Scan(&h.BookingID, &h.OfferID, &h.Quantity); err != nil {
			rows.Close()
			return nil, 0, fmt.Errorf("failed to scan swept row from %s: %w", spec.Name, err)
		}
		released = append(released, h)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, 0, fmt.Errorf("failed to read swept rows from %s: %w", spec.Name, err)
	}
	rows.Close()

	restored := 0
	for _, h := range released {
		result, err := tx.ExecContext(ctx, `
			UPDATE offers
			SET units_available = LEAST(units_total, units_available + $1), updated_at = NOW()
			WHERE id = $2`,
			h.Quantity, h.OfferID)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to restore inventory for offer %s: %w", h.OfferID, err)
		}
		if affected, _ := result.RowsAffected(); affected > 0 {
			restored++
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, fmt.Errorf("failed to commit sweep of %s: %w", spec.Name, err)
	}
	return released, restored, nil
}
