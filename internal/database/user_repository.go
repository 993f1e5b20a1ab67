package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/travelmarket/booking-backend/internal/models"
)

// UserRepository handles the internal user records mirrored from the identity
// provider.
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, external_id, email, full_name, created_at, updated_at`

// GetByID retrieves a user by internal id.
func (r *UserRepository) GetByID(id uuid.UUID) (*models.User, error) {
	var u models.User
	err := r.db.Get(&u, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// GetByExternalID retrieves a user by the identity provider's subject.
func (r *UserRepository) GetByExternalID(externalID string) (*models.User, error) {
	var u models.User
	err := r.db.Get(&u, `SELECT `+userColumns+` FROM users WHERE external_id = $1`, externalID)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by external id: %w", err)
	}
	return &u, nil
}

// Ensure resolves the identity provider subject to an internal user record,
// creating one when the provider webhook has not synchronized it yet. This is
// what lets bookings carry a canonical internal owner_ref from creation time.
func (r *UserRepository) Ensure(externalID, email, fullName string) (*models.User, error) {
	var u models.User
	err := r.db.Get(&u, `
		INSERT INTO users (id, external_id, email, full_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (external_id) DO UPDATE
		SET email = EXCLUDED.email, updated_at = NOW()
		RETURNING `+userColumns,
		uuid.New(), externalID, email, fullName)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure user: %w", err)
	}
	return &u, nil
}
