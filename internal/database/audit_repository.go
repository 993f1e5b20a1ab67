package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/travelmarket/booking-backend/internal/models"
)

// AuditRepository persists the booking audit trail.
type AuditRepository struct {
	db DB
}

// NewAuditRepository creates a new AuditRepository
func NewAuditRepository(db DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Insert writes one audit row.
func (r *AuditRepository) Insert(audit *models.BookingAudit) error {
	if audit.ID == uuid.Nil {
		audit.ID = uuid.New()
	}
	_, err := r.db.Exec(`
		INSERT INTO booking_audits (id, user_id, action, entity_type, entity_id, ip_address, user_agent, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		audit.ID, audit.UserID, audit.Action, audit.EntityType, audit.EntityID,
		audit.IPAddress, audit.UserAgent, audit.Details)
	if err != nil {
		return fmt.Errorf("failed to insert audit row: %w", err)
	}
	return nil
}

// DeleteOlderThan purges audit rows created before the cutoff. Returns the
// number of rows removed.
func (r *AuditRepository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM booking_audits WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge audit rows: %w", err)
	}
	deleted, _ := result.RowsAffected()
	return deleted, nil
}
