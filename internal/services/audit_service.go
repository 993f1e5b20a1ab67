package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/travelmarket/booking-backend/internal/models"
	"github.com/travelmarket/booking-backend/internal/utils"
)

// AuditSink persists audit rows.
type AuditSink interface {
	Insert(audit *models.BookingAudit) error
	DeleteOlderThan(cutoff time.Time) (int64, error)
}

// AuditService records booking lifecycle actions. Audit failures are logged
// and swallowed; they never fail the operation being audited.
type AuditService struct {
	sink   AuditSink
	logger *logrus.Logger
}

// NewAuditService creates a new AuditService
func NewAuditService(sink AuditSink, logger *logrus.Logger) *AuditService {
	return &AuditService{sink: sink, logger: logger}
}

// LogHoldCreated records a successful hold creation.
func (s *AuditService) LogHoldCreated(userID *uuid.UUID, booking *models.Booking, ipAddress, userAgent string) {
	s.log(&models.BookingAudit{
		UserID:     userID,
		Action:     "hold_created",
		EntityType: "booking",
		EntityID:   &booking.ID,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details: models.AuditDetails{
			"offer_id":    booking.OfferID,
			"category":    booking.Category,
			"quantity":    booking.Quantity,
			"expires_at":  booking.ExpiresAt,
			"device_info": utils.ParseUserAgent(userAgent),
		},
	})
}

// LogBookingConfirmed records a payment confirmation.
func (s *AuditService) LogBookingConfirmed(userID *uuid.UUID, booking *models.Booking, paymentRef, ipAddress, userAgent string) {
	s.log(&models.BookingAudit{
		UserID:     userID,
		Action:     "booking_confirmed",
		EntityType: "booking",
		EntityID:   &booking.ID,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details: models.AuditDetails{
			"payment_reference": paymentRef,
			"device_info":       utils.ParseUserAgent(userAgent),
		},
	})
}

// LogBookingCancelled records an owner-driven cancellation.
func (s *AuditService) LogBookingCancelled(userID *uuid.UUID, booking *models.Booking, ipAddress, userAgent string) {
	s.log(&models.BookingAudit{
		UserID:     userID,
		Action:     "booking_cancelled",
		EntityType: "booking",
		EntityID:   &booking.ID,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details: models.AuditDetails{
			"offer_id":    booking.OfferID,
			"quantity":    booking.Quantity,
			"device_info": utils.ParseUserAgent(userAgent),
		},
	})
}

// LogSweepRun records one sweep invocation and its per-table outcome.
// trigger is "cron", "manual" or "cli".
func (s *AuditService) LogSweepRun(report *models.SweepReport, trigger string) {
	s.log(&models.BookingAudit{
		Action:     "sweep_run",
		EntityType: "sweep",
		Details: models.AuditDetails{
			"trigger":         trigger,
			"total_cancelled": report.TotalCancelled,
			"total_restored":  report.TotalRestored,
			"duration_ms":     report.Duration.Milliseconds(),
			"categories":      report.Categories,
		},
	})
}

// PurgeOlderThan removes audit rows past the retention window.
func (s *AuditService) PurgeOlderThan(cutoff time.Time) (int64, error) {
	return s.sink.DeleteOlderThan(cutoff)
}

func (s *AuditService) log(audit *models.BookingAudit) {
	if err := s.sink.Insert(audit); err != nil {
		s.logger.WithError(err).WithField("action", audit.Action).Error("failed to write audit row")
	}
}
