package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/travelmarket/booking-backend/internal/models"
)

// OfferRepository handles offer catalog reads and seeding. Inventory
// mutations happen inside booking transactions, never here.
type OfferRepository struct {
	db DB
}

// NewOfferRepository creates a new OfferRepository
func NewOfferRepository(db DB) *OfferRepository {
	return &OfferRepository{db: db}
}

const offerColumns = `id, category, title, units_total, units_available, unit_price, currency, created_at, updated_at`

// GetByID retrieves an offer.
func (r *OfferRepository) GetByID(id string) (*models.Offer, error) {
	var o models.Offer
	err := r.db.Get(&o, `SELECT `+offerColumns+` FROM offers WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get offer: %w", err)
	}
	return &o, nil
}

// Create inserts a new offer with full availability.
func (r *OfferRepository) Create(offer *models.Offer) error {
	if offer.ID == "" {
		offer.ID = uuid.New().String()
	}
	offer.UnitsAvailable = offer.UnitsTotal

	err := r.db.QueryRow(`
		INSERT INTO offers (id, category, title, units_total, units_available, unit_price, currency)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`,
		offer.ID, offer.Category, offer.Title, offer.UnitsTotal,
		offer.UnitsAvailable, offer.UnitPrice, offer.Currency,
	).Scan(&offer.CreatedAt, &offer.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create offer: %w", err)
	}
	return nil
}
