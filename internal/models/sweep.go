package models

import "time"

// CategorySweepResult is the outcome of sweeping one booking table.
// A failed table reports zero counts plus the error text; other tables are
// unaffected.
type CategorySweepResult struct {
	Table     string `json:"table"`
	Cancelled int    `json:"cancelled"`
	Restored  int    `json:"inventory_restored"`
	Error     string `json:"error,omitempty"`
}

// SweepReport aggregates one sweep invocation across all booking tables.
type SweepReport struct {
	StartedAt      time.Time             `json:"started_at"`
	Duration       time.Duration         `json:"duration"`
	GracePeriod    time.Duration         `json:"grace_period"`
	TotalCancelled int                   `json:"total_cancelled"`
	TotalRestored  int                   `json:"total_restored"`
	Categories     []CategorySweepResult `json:"categories"`
}
