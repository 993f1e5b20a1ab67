// Command sweep runs a single expiry sweep and prints the report as JSON.
// Intended for maintenance windows and one-off runs; the server's cron job
// covers the steady state.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/travelmarket/booking-backend/internal/config"
	"github.com/travelmarket/booking-backend/internal/database"
	"github.com/travelmarket/booking-backend/internal/services"
)

func main() {
	verbose := flag.Bool("verbose", false, "log per-table progress")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stderr)
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	cfg, err := config.LoadMaintenance()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	bookingRepository := database.NewBookingRepository(db)
	auditRepository := database.NewAuditRepository(db)
	auditService := services.NewAuditService(auditRepository, logger)

	// No locker and no producer: a one-shot run relies on the conditional
	// updates alone, so overlapping with the server's cron sweep is safe.
	sweepService := services.NewSweepService(bookingRepository, nil, nil, cfg.Booking, logger)

	report, err := sweepService.Run(context.Background())
	if err != nil {
		logger.Fatalf("Sweep failed: %v", err)
	}

	auditService.LogSweepRun(report, "cli")

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		logger.Fatalf("Failed to encode report: %v", err)
	}
}
