package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// AuditDetails stores free-form audit attributes as JSONB.
type AuditDetails map[string]interface{}

func (d AuditDetails) Value() (driver.Value, error) {
	return json.Marshal(d)
}

func (d *AuditDetails) Scan(value interface{}) error {
	if value == nil {
		*d = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(bytes, d)
}

// BookingAudit is one row of the booking audit trail.
type BookingAudit struct {
	ID         uuid.UUID    `json:"id" db:"id"`
	UserID     *uuid.UUID   `json:"user_id,omitempty" db:"user_id"`
	Action     string       `json:"action" db:"action"`
	EntityType string       `json:"entity_type" db:"entity_type"`
	EntityID   *string      `json:"entity_id,omitempty" db:"entity_id"`
	IPAddress  string       `json:"ip_address" db:"ip_address"`
	UserAgent  string       `json:"user_agent" db:"user_agent"`
	Details    AuditDetails `json:"details" db:"details"`
	CreatedAt  time.Time    `json:"created_at" db:"created_at"`
}
