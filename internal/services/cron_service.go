package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/travelmarket/booking-backend/internal/config"
	"github.com/travelmarket/booking-backend/internal/models"
)

// CronService manages the scheduled background jobs: the periodic expiry
// sweep and the daily audit retention purge.
type CronService struct {
	cron          *cron.Cron
	sweeps        *SweepService
	audits        *AuditService
	sweepInterval time.Duration
	retentionDays int
	logger        *logrus.Logger
}

// NewCronService creates a new CronService
func NewCronService(sweeps *SweepService, audits *AuditService, cfg config.BookingConfig, logger *logrus.Logger) *CronService {
	return &CronService{
		cron:          cron.New(),
		sweeps:        sweeps,
		audits:        audits,
		sweepInterval: cfg.SweepInterval,
		retentionDays: cfg.AuditRetentionDays,
		logger:        logger,
	}
}

// Start registers and starts all jobs.
func (s *CronService) Start() error {
	_, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.sweepInterval), s.runSweepJob)
	if err != nil {
		return fmt.Errorf("failed to schedule expiry sweep: %w", err)
	}
	s.logger.Infof("scheduled: expiry sweep (every %s)", s.sweepInterval)

	// Daily at 04:00.
	_, err = s.cron.AddFunc("0 4 * * *", s.runRetentionJob)
	if err != nil {
		return fmt.Errorf("failed to schedule audit retention purge: %w", err)
	}
	s.logger.Info("scheduled: audit retention purge (daily at 04:00)")

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("cron service stopped")
}

func (s *CronService) runSweepJob() {
	started := time.Now()

	report, err := s.sweeps.Run(context.Background())
	if err != nil {
		if errors.Is(err, models.ErrSweepInProgress) {
			s.logger.Debug("scheduled sweep skipped, another run in progress")
			return
		}
		s.logger.WithError(err).Error("scheduled sweep failed")
		return
	}

	if s.audits != nil {
		s.audits.LogSweepRun(report, "cron")
	}

	if report.TotalCancelled > 0 {
		s.logger.WithFields(logrus.Fields{
			"cancelled": report.TotalCancelled,
			"restored":  report.TotalRestored,
			"duration":  time.Since(started),
		}).Info("scheduled sweep completed")
	}
}

func (s *CronService) runRetentionJob() {
	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)
	deleted, err := s.audits.PurgeOlderThan(cutoff)
	if err != nil {
		s.logger.WithError(err).Error("audit retention purge failed")
		return
	}
	if deleted > 0 {
		s.logger.WithField("deleted", deleted).Info("audit retention purge completed")
	}
}
