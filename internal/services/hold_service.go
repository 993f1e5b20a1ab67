package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/travelmarket/booking-backend/internal/config"
	"github.com/travelmarket/booking-backend/internal/database"
	"github.com/travelmarket/booking-backend/internal/events"
	"github.com/travelmarket/booking-backend/internal/models"
	"github.com/travelmarket/booking-backend/pkg/validator"
)

// Identity is the authenticated caller as the services see it, decoupled
// from the HTTP layer.
type Identity struct {
	UserID     uuid.UUID
	ExternalID string
	Email      string
}

// BookingStore is the persistence surface the lifecycle services depend on.
type BookingStore interface {
	CreateHold(booking *models.Booking) (int, error)
	GetByID(id string) (*models.Booking, error)
	ListByOwner(internalID, externalID string, limit, offset int) ([]models.Booking, error)
	Confirm(id, paymentRef string) (*models.Booking, error)
	Cancel(id string) (*models.Booking, error)
	SweepExpired(ctx context.Context, spec database.TableSpec, now, staleBefore time.Time) ([]database.ReleasedHold, int, error)
}

// OfferStore reads the offer catalog.
type OfferStore interface {
	GetByID(id string) (*models.Offer, error)
}

// UserStore resolves identity provider subjects to internal user records.
type UserStore interface {
	Ensure(externalID, email, fullName string) (*models.User, error)
}

// Locker is the redis lock surface.
type Locker interface {
	AcquireOfferLock(ctx context.Context, offerID string, ttl time.Duration) (bool, error)
	ReleaseOfferLock(ctx context.Context, offerID string) error
	AcquireSweepLock(ctx context.Context, ttl time.Duration) (bool, error)
	ReleaseSweepLock(ctx context.Context) error
}

// EventPublisher emits booking lifecycle events.
type EventPublisher interface {
	Publish(ctx context.Context, event events.BookingEvent) error
}

const offerLockTTL = 5 * time.Second

// HoldService creates time-boxed reservations. The inventory decrement and
// the booking insert share one transaction in the store; the per-offer redis
// lock only narrows the race window for friendlier capacity errors.
type HoldService struct {
	bookings BookingStore
	offers   OfferStore
	users    UserStore
	locks    Locker
	producer EventPublisher
	emails   *validator.EmailValidator
	logger   *logrus.Logger

	holdTTL       time.Duration
	maxHoldTTL    time.Duration
	paymentOffset time.Duration
	now           func() time.Time
}

// HoldServiceOption customizes a HoldService.
type HoldServiceOption func(*HoldService)

// WithHoldClock overrides the clock, for tests.
func WithHoldClock(now func() time.Time) HoldServiceOption {
	return func(s *HoldService) {
		s.now = now
	}
}

// NewHoldService creates a new HoldService. locks and producer may be nil;
// the service then relies on the database guard alone and skips events.
func NewHoldService(
	bookings BookingStore,
	offers OfferStore,
	users UserStore,
	locks Locker,
	producer EventPublisher,
	cfg config.BookingConfig,
	logger *logrus.Logger,
	opts ...HoldServiceOption,
) *HoldService {
	s := &HoldService{
		bookings:      bookings,
		offers:        offers,
		users:         users,
		locks:         locks,
		producer:      producer,
		emails:        validator.NewEmailValidator(),
		logger:        logger,
		holdTTL:       cfg.HoldTTL,
		maxHoldTTL:    cfg.MaxHoldTTL,
		paymentOffset: cfg.PaymentDeadlineOffset,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateHold validates the request, resolves the caller to a canonical
// internal owner reference, and creates a held booking with
// hold_until = now + TTL and payment_deadline = hold_until - offset.
// Nothing is mutated when validation or capacity checks fail. Returns the
// booking and the units remaining on the offer.
func (s *HoldService) CreateHold(ctx context.Context, ident *Identity, req *models.CreateHoldRequest) (*models.Booking, int, error) {
	if err := req.Validate(); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	contactEmail, err := s.emails.Validate(req.ContactEmail)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	offer, err := s.offers.GetByID(req.OfferID)
	if err != nil {
		return nil, 0, err
	}

	// Resolve identity once at write time so the booking carries the internal
	// id from the start instead of relying on read-time reconciliation.
	ownerRef := models.OwnerGuest
	if ident != nil {
		user, err := s.users.Ensure(ident.ExternalID, ident.Email, "")
		if err != nil {
			return nil, 0, err
		}
		ownerRef = user.ID.String()
	}

	ttl := s.holdTTL
	if req.HoldHours > 0 {
		requested := time.Duration(req.HoldHours) * time.Hour
		if requested > s.maxHoldTTL {
			requested = s.maxHoldTTL
		}
		ttl = requested
	}

	if s.locks != nil {
		acquired, err := s.locks.AcquireOfferLock(ctx, offer.ID, offerLockTTL)
		if err != nil {
			s.logger.WithError(err).Warn("offer lock unavailable, relying on database guard")
		} else if !acquired {
			return nil, 0, models.ErrOfferBusy
		} else {
			defer func() {
				if err := s.locks.ReleaseOfferLock(ctx, offer.ID); err != nil {
					s.logger.WithError(err).WithField("offer_id", offer.ID).Warn("failed to release offer lock")
				}
			}()
		}
	}

	holdUntil := s.now().Add(ttl)
	paymentDeadline := holdUntil.Add(-s.paymentOffset)

	booking := &models.Booking{
		OwnerRef:        ownerRef,
		Category:        offer.Category,
		Status:          models.BookingHeld,
		OfferID:         offer.ID,
		Quantity:        req.Quantity,
		TotalAmount:     offer.UnitPrice * float64(req.Quantity),
		Currency:        offer.Currency,
		ContactEmail:    contactEmail,
		Guests:          req.Guests,
		ExpiresAt:       &holdUntil,
		PaymentDeadline: &paymentDeadline,
	}

	remaining, err := s.bookings.CreateHold(booking)
	if err != nil {
		return nil, 0, err
	}

	s.publish(ctx, events.EventBookingHeld, booking)

	s.logger.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"offer_id":   offer.ID,
		"quantity":   booking.Quantity,
		"hold_until": holdUntil,
	}).Info("hold created")

	return booking, remaining, nil
}

func (s *HoldService) publish(ctx context.Context, eventType string, b *models.Booking) {
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
