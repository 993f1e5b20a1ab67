package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/travelmarket/booking-backend/internal/config"
	"github.com/travelmarket/booking-backend/internal/database"
	"github.com/travelmarket/booking-backend/internal/events"
	"github.com/travelmarket/booking-backend/internal/models"
	"golang.org/x/sync/singleflight"
)

// SweepService is the expiry sweeper: one idempotent operation that cancels
// every hold past its deadline across all booking tables and restores the
// inventory those holds had reserved. It replaces the assortment of one-off
// cleanup endpoints with a single policy: one grace period, one cancellation
// routine, one report.
type SweepService struct {
	bookings BookingStore
	locks    Locker
	producer EventPublisher
	logger   *logrus.Logger

	tables  []database.TableSpec
	grace   time.Duration
	timeout time.Duration
	now     func() time.Time

	group singleflight.Group
}

// SweepServiceOption customizes a SweepService.
type SweepServiceOption func(*SweepService)

// WithSweepClock overrides the clock, for tests.
func WithSweepClock(now func() time.Time) SweepServiceOption {
	return func(s *SweepService) {
		s.now = now
	}
}

// WithSweepTables overrides the swept table set, for tests.
func WithSweepTables(tables []database.TableSpec) SweepServiceOption {
	return func(s *SweepService) {
		s.tables = tables
	}
}

// NewSweepService creates a new SweepService. locks and producer may be nil
// (single-instance deployments and the maintenance CLI run without them).
func NewSweepService(
	bookings BookingStore,
	locks Locker,
	producer EventPublisher,
	cfg config.BookingConfig,
	logger *logrus.Logger,
	opts ...SweepServiceOption,
) *SweepService {
	s := &SweepService{
		bookings: bookings,
		locks:    locks,
		producer: producer,
		logger:   logger,
		tables:   database.BookingTables,
		grace:    cfg.GracePeriod,
		timeout:  cfg.SweepTimeout,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes one sweep. Concurrent callers within the process join the
// in-flight run and share its report; across replicas the redis lock turns
// the second invocation into ErrSweepInProgress. Re-running after completion
// is a no-op for already-cancelled rows because the status flip is the only
// selection criterion.
func (s *SweepService) Run(ctx context.Context) (*models.SweepReport, error) {
	result, err, _ := s.group.Do("booking-sweep", func() (interface{}, error) {
		return s.run(ctx)
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.SweepReport), nil
}

func (s *SweepService) run(ctx context.Context) (*models.SweepReport, error) {
	if s.locks != nil {
		acquired, err := s.locks.AcquireSweepLock(ctx, s.timeout+30*time.Second)
		if err != nil {
			// A broken redis must not stop expiry processing; the conditional
			// updates stay safe without the lock.
			s.logger.WithError(err).Warn("sweep lock unavailable, proceeding without it")
		} else if !acquired {
			return nil, models.ErrSweepInProgress
		} else {
			// Release with the caller's context, not the timeout-wrapped one
			// below: the lock must still come off after the budget expires.
			releaseCtx := ctx
			defer func() {
				if err := s.locks.ReleaseSweepLock(releaseCtx); err != nil {
					s.logger.WithError(err).Warn("failed to release sweep lock")
				}
			}()
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	started := s.now()
	report := &models.SweepReport{
		StartedAt:   started,
		GracePeriod: s.grace,
	}

	for _, spec := range s.tables {
		if ctx.Err() != nil {
			// Out of budget. Remaining tables are picked up by the next run;
			// nothing here needs compensation.
			report.Categories = append(report.Categories, models.CategorySweepResult{
				Table: spec.Name,
				Error: "sweep timed out before reaching this table",
			})
			continue
		}

		now := s.now()
		released, restored, err := s.bookings.SweepExpired(ctx, spec, now, now.Add(-s.grace))
		if err != nil {
			// One table failing must not abort the rest of the sweep.
			s.logger.WithError(err).WithField("table", spec.Name).Error("sweep failed for table")
			report.Categories = append(report.Categories, models.CategorySweepResult{
				Table: spec.Name,
				Error: err.Error(),
			})
			continue
		}

		report.Categories = append(report.Categories, models.CategorySweepResult{
			Table:     spec.Name,
			Cancelled: len(released),
			Restored:  restored,
		})
		report.TotalCancelled += len(released)
		report.TotalRestored += restored

		for _, hold := range released {
			s.publishExpired(ctx, spec, hold)
		}

		if len(released) > 0 {
			s.logger.WithFields(logrus.Fields{
				"table":     spec.Name,
				"cancelled": len(released),
				"restored":  restored,
			}).Info("expired holds cancelled")
		}
	}

	report.Duration = s.now().Sub(started)
	return report, nil
}

func (s *SweepService) publishExpired(ctx context.Context, spec database.TableSpec, hold database.ReleasedHold) {
	if s.producer == nil {
		return
	}
	event := events.BookingEvent{
		Type:      events.EventBookingExpired,
		BookingID: hold.BookingID,
		Category:  string(spec.Category),
		OfferID:   hold.OfferID,
		Quantity:  hold.Quantity,
		Status:    string(models.BookingCancelled),
	}
	if err := s.producer.Publish(ctx, event); err != nil {
		s.logger.WithError(err).WithField("booking_id", hold.BookingID).Warn("failed to publish expiry event")
	}
}
