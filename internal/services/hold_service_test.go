package services

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travelmarket/booking-backend/internal/config"
	"github.com/travelmarket/booking-backend/internal/database"
	"github.com/travelmarket/booking-backend/internal/events"
	"github.com/travelmarket/booking-backend/internal/models"
)

func TestCreateHoldService(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	offer := &models.Offer{
		ID:             "offer-1",
		Category:       models.CategoryHotel,
		Title:          "Seaside Room",
		UnitsTotal:     10,
		UnitsAvailable: 7,
		UnitPrice:      120,
		Currency:       "USD",
	}

	userID := uuid.New()
	ident := &Identity{UserID: userID, ExternalID: "auth0|abc", Email: "jane@example.com"}

	validRequest := func() *models.CreateHoldRequest {
		return &models.CreateHoldRequest{
			OfferID:      "offer-1",
			Guests:       []models.GuestEntry{{FullName: "Jane Doe"}, {FullName: "John Doe"}},
			ContactEmail: "Jane@Example.com",
		}
	}

	t.Run("Success", func(t *testing.T) {
		var created *models.Booking
		store := &fakeBookingStore{
			createHoldFn: func(b *models.Booking) (int, error) {
				created = b
				return 5, nil
			},
		}
		users := &fakeUserStore{user: &models.User{ID: userID, ExternalID: "auth0|abc"}}
		publisher := &fakePublisher{}
		locker := &fakeLocker{offerAcquired: true, sweepAcquired: true}

		svc := NewHoldService(store, &fakeOfferStore{offer: offer}, users, locker, publisher,
			testBookingConfig(), newTestLogger(), WithHoldClock(clock))

		booking, remaining, err := svc.CreateHold(context.Background(), ident, validRequest())
		require.NoError(t, err)
		require.NotNil(t, created)

		assert.Equal(t, 5, remaining)
		assert.Equal(t, userID.String(), booking.OwnerRef)
		// The hold is held from the moment the service builds it, not as a
		// side effect of the store write.
		assert.Equal(t, models.BookingHeld, booking.Status)
		assert.Equal(t, models.CategoryHotel, booking.Category)
		assert.Equal(t, 2, booking.Quantity)
		assert.Equal(t, 240.0, booking.TotalAmount)
		assert.Equal(t, "jane@example.com", booking.ContactEmail)

		require.NotNil(t, booking.ExpiresAt)
		require.NotNil(t, booking.PaymentDeadline)
		assert.Equal(t, now.Add(24*time.Hour), *booking.ExpiresAt)
		assert.Equal(t, now.Add(23*time.Hour), *booking.PaymentDeadline)

		require.Len(t, publisher.published, 1)
		assert.Equal(t, events.EventBookingHeld, publisher.published[0].Type)
		assert.Equal(t, string(models.BookingHeld), publisher.published[0].Status)
		assert.Equal(t, 1, locker.offerReleases)
	})

	t.Run("Nil Identity Creates Guest Hold", func(t *testing.T) {
		store := &fakeBookingStore{
			createHoldFn: func(b *models.Booking) (int, error) { return 5, nil },
		}
		users := &fakeUserStore{user: &models.User{ID: userID}}

		svc := NewHoldService(store, &fakeOfferStore{offer: offer}, users, nil, nil,
			testBookingConfig(), newTestLogger(), WithHoldClock(clock))

		booking, _, err := svc.CreateHold(context.Background(), nil, validRequest())
		require.NoError(t, err)
		assert.Equal(t, models.OwnerGuest, booking.OwnerRef)
		assert.Zero(t, users.ensureCalls)
	})

	t.Run("Invalid Email", func(t *testing.T) {
		store := &fakeBookingStore{}
		svc := NewHoldService(store, &fakeOfferStore{offer: offer}, &fakeUserStore{}, nil, nil,
			testBookingConfig(), newTestLogger(), WithHoldClock(clock))

		req := validRequest()
		req.ContactEmail = "not-an-address"

		_, _, err := svc.CreateHold(context.Background(), ident, req)
		assert.ErrorIs(t, err, models.ErrValidation)
		assert.Zero(t, store.createHoldCalls)
	})

	t.Run("Offer Not Found", func(t *testing.T) {
		svc := NewHoldService(&fakeBookingStore{}, &fakeOfferStore{err: models.ErrNotFound},
			&fakeUserStore{}, nil, nil, testBookingConfig(), newTestLogger(), WithHoldClock(clock))

		_, _, err := svc.CreateHold(context.Background(), ident, validRequest())
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("Capacity Error Passes Through", func(t *testing.T) {
		store := &fakeBookingStore{
			createHoldFn: func(b *models.Booking) (int, error) {
				return 0, &models.CapacityError{Available: 1, Requested: 2}
			},
		}
		users := &fakeUserStore{user: &models.User{ID: userID}}

		svc := NewHoldService(store, &fakeOfferStore{offer: offer}, users, nil, nil,
			testBookingConfig(), newTestLogger(), WithHoldClock(clock))

		_, _, err := svc.CreateHold(context.Background(), ident, validRequest())
		assert.ErrorIs(t, err, models.ErrCapacityExceeded)

		var capErr *models.CapacityError
		require.ErrorAs(t, err, &capErr)
		assert.Equal(t, 1, capErr.Available)
	})

	t.Run("Busy Offer Lock Rejects The Hold", func(t *testing.T) {
		store := &fakeBookingStore{}
		locker := &fakeLocker{offerAcquired: false}
		users := &fakeUserStore{user: &models.User{ID: userID}}

		svc := NewHoldService(store, &fakeOfferStore{offer: offer}, users, locker, nil,
			testBookingConfig(), newTestLogger(), WithHoldClock(clock))

		_, _, err := svc.CreateHold(context.Background(), ident, validRequest())
		assert.ErrorIs(t, err, models.ErrOfferBusy)
		assert.Zero(t, store.createHoldCalls)
	})

	t.Run("Broken Redis Falls Back To Database Guard", func(t *testing.T) {
		store := &fakeBookingStore{
			createHoldFn: func(b *models.Booking) (int, error) { return 5, nil },
		}
		locker := &fakeLocker{offerErr: assert.AnError}
		users := &fakeUserStore{user: &models.User{ID: userID}}

		svc := NewHoldService(store, &fakeOfferStore{offer: offer}, users, locker, nil,
			testBookingConfig(), newTestLogger(), WithHoldClock(clock))

		_, _, err := svc.CreateHold(context.Background(), ident, validRequest())
		assert.NoError(t, err)
		assert.Equal(t, 1, store.createHoldCalls)
	})

	t.Run("Requested Hold Duration Is Capped", func(t *testing.T) {
		store := &fakeBookingStore{
			createHoldFn: func(b *models.Booking) (int, error) { return 5, nil },
		}
		users := &fakeUserStore{user: &models.User{ID: userID}}

		svc := NewHoldService(store, &fakeOfferStore{offer: offer}, users, nil, nil,
			testBookingConfig(), newTestLogger(), WithHoldClock(clock))

		req := validRequest()
		req.HoldHours = 200

		booking, _, err := svc.CreateHold(context.Background(), ident, req)
		require.NoError(t, err)
		require.NotNil(t, booking.ExpiresAt)
		assert.Equal(t, now.Add(72*time.Hour), *booking.ExpiresAt)
	})
}

// ============================================================================
// TEST DOUBLES
// ============================================================================

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testBookingConfig() config.BookingConfig {
	return config.BookingConfig{
		HoldTTL:               24 * time.Hour,
		PaymentDeadlineOffset: time.Hour,
		MaxHoldTTL:            72 * time.Hour,
		GracePeriod:           8 * time.Minute,
		SweepInterval:         5 * time.Minute,
		SweepTimeout:          2 * time.Minute,
		AuditRetentionDays:    90,
	}
}

type fakeBookingStore struct {
	createHoldFn    func(*models.Booking) (int, error)
	getByIDFn       func(string) (*models.Booking, error)
	listByOwnerFn   func(internalID, externalID string, limit, offset int) ([]models.Booking, error)
	confirmFn       func(id, paymentRef string) (*models.Booking, error)
	cancelFn        func(id string) (*models.Booking, error)
	sweepExpiredFn  func(context.Context, database.TableSpec, time.Time, time.Time) ([]database.ReleasedHold, int, error)
	createHoldCalls int
	sweepCalls      int
}

func (s *fakeBookingStore) CreateHold(b *models.Booking) (int, error) {
	s.createHoldCalls++
	if s.createHoldFn == nil {
		return 0, models.ErrNotFound
	}
	return s.createHoldFn(b)
}

func (s *fakeBookingStore) GetByID(id string) (*models.Booking, error) {
	if s.getByIDFn == nil {
		return nil, models.ErrNotFound
	}
	return s.getByIDFn(id)
}

func (s *fakeBookingStore) ListByOwner(internalID, externalID string, limit, offset int) ([]models.Booking, error) {
	if s.listByOwnerFn == nil {
		return nil, nil
	}
	return s.listByOwnerFn(internalID, externalID, limit, offset)
}

func (s *fakeBookingStore) Confirm(id, paymentRef string) (*models.Booking, error) {
	if s.confirmFn == nil {
		return nil, models.ErrNotFound
	}
	return s.confirmFn(id, paymentRef)
}

func (s *fakeBookingStore) Cancel(id string) (*models.Booking, error) {
	if s.cancelFn == nil {
		return nil, models.ErrNotFound
	}
	return s.cancelFn(id)
}

func (s *fakeBookingStore) SweepExpired(ctx context.Context, spec database.TableSpec, now, staleBefore time.Time) ([]database.ReleasedHold, int, error) {
	s.sweepCalls++
	if s.sweepExpiredFn == nil {
		return nil, 0, nil
	}
	return s.sweepExpiredFn(ctx, spec, now, staleBefore)
}

type fakeOfferStore struct {
	offer *models.Offer
	err   error
}

func (s *fakeOfferStore) GetByID(id string) (*models.Offer, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.offer, nil
}

type fakeUserStore struct {
	user        *models.User
	err         error
	ensureCalls int
}

func (s *fakeUserStore) Ensure(externalID, email, fullName string) (*models.User, error) {
	s.ensureCalls++
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

type fakeLocker struct {
	offerAcquired      bool
	offerErr           error
	sweepAcquired      bool
	sweepErr           error
	offerReleases      int
	sweepReleases      int
	sweepReleaseCtxErr error
}

func (l *fakeLocker) AcquireOfferLock(ctx context.Context, offerID string, ttl time.Duration) (bool, error) {
	return l.offerAcquired, l.offerErr
}

func (l *fakeLocker) ReleaseOfferLock(ctx context.Context, offerID string) error {
	l.offerReleases++
	return nil
}

func (l *fakeLocker) AcquireSweepLock(ctx context.Context, ttl time.Duration) (bool, error) {
	return l.sweepAcquired, l.sweepErr
}

func (l *fakeLocker) ReleaseSweepLock(ctx context.Context) error {
	l.sweepReleases++
	l.sweepReleaseCtxErr = ctx.Err()
	return nil
}

type fakePublisher struct {
	published []events.BookingEvent
	err       error
}

func (p *fakePublisher) Publish(ctx context.Context, event events.BookingEvent) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, event)
	return nil
}
