package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/travelmarket/booking-backend/internal/events"
	"github.com/travelmarket/booking-backend/internal/models"
)

// BookingService covers reads and the two caller-driven transitions: payment
// confirmation and manual cancellation. Every read goes through the
// ownership guard.
type BookingService struct {
	bookings BookingStore
	producer EventPublisher
	logger   *logrus.Logger
}

// NewBookingService creates a new BookingService. producer may be nil.
func NewBookingService(bookings BookingStore, producer EventPublisher, logger *logrus.Logger) *BookingService {
	return &BookingService{
		bookings: bookings,
		producer: producer,
		logger:   logger,
	}
}

// GetBooking fetches a booking, enforcing ownership. Guest bookings are
// readable by any authenticated caller; otherwise owner_ref must match the
// caller's internal id, or the external provider id for bookings created
// before the user record was synchronized.
func (s *BookingService) GetBooking(ident *Identity, id string) (*models.Booking, error) {
	if ident == nil {
		return nil, models.ErrUnauthorized
	}

	booking, err := s.bookings.GetByID(id)
	if err != nil {
		return nil, err
	}

	if err := s.checkOwnership(ident, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// ListBookings returns the caller's bookings under both identity forms.
func (s *BookingService) ListBookings(ident *Identity, limit, offset int) ([]models.Booking, error) {
	if ident == nil {
		return nil, models.ErrUnauthorized
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.bookings.ListByOwner(ident.UserID.String(), ident.ExternalID, limit, offset)
}

// ConfirmBooking marks a booking confirmed for a successful payment
// reference. Repeating the call with the same reference is a no-op success;
// confirming a cancelled or expired booking fails with ErrInvalidTransition.
func (s *BookingService) ConfirmBooking(ctx context.Context, id string, req *models.ConfirmBookingRequest) (*models.Booking, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	booking, err := s.bookings.Confirm(id, req.PaymentReference)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventBookingConfirmed, booking)
	s.logger.WithFields(logrus.Fields{
		"booking_id":        booking.ID,
		"payment_reference": req.PaymentReference,
	}).Info("booking confirmed")

	return booking, nil
}

// CancelBooking cancels the caller's own held or pending booking and
// restores its inventory. Cancelling an already-cancelled booking succeeds
// without touching inventory again.
func (s *BookingService) CancelBooking(ctx context.Context, ident *Identity, id string) (*models.Booking, error) {
	if ident == nil {
		return nil, models.ErrUnauthorized
	}

	current, err := s.bookings.GetByID(id)
	if err != nil {
		return nil, err
	}
	// The guest read bypass does not extend to mutations.
	if !s.ownsBooking(ident, current) {
		return nil, models.ErrForbidden
	}

	booking, err := s.bookings.Cancel(id)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventBookingCancelled, booking)
	s.logger.WithField("booking_id", booking.ID).Info("booking cancelled by owner")

	return booking, nil
}

func (s *BookingService) checkOwnership(ident *Identity, booking *models.Booking) error {
	if booking.IsGuest() {
		return nil
	}
	if s.ownsBooking(ident, booking) {
		return nil
	}
	return models.ErrForbidden
}

func (s *BookingService) ownsBooking(ident *Identity, booking *models.Booking) bool {
	return booking.OwnerRef == ident.UserID.String() ||
		(ident.ExternalID != "" && booking.OwnerRef == ident.ExternalID)
}

func (s *BookingService) publish(ctx context.Context, eventType string, b *models.Booking) {
	if s.producer == nil {
		return
	}
	event := events.BookingEvent{
		Type:         eventType,
		BookingID:    b.ID,
		Category:     string(b.Category),
		OfferID:      b.OfferID,
		Quantity:     b.Quantity,
		OwnerRef:     b.OwnerRef,
		ContactEmail: b.ContactEmail,
		Status:       string(b.Status),
		ExpiresAt:    b.ExpiresAt,
	}
	if err := s.producer.Publish(ctx, event); err != nil {
		s.logger.WithError(err).WithField("booking_id", b.ID).Warn("failed to publish booking event")
	}
}
