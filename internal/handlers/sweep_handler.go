package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/travelmarket/booking-backend/internal/services"
	"github.com/travelmarket/booking-backend/internal/utils"
)

// SweepHandler exposes the manual sweep trigger for operators
type SweepHandler struct {
	sweeps *services.SweepService
	audits *services.AuditService
	logger *logrus.Logger
}

// NewSweepHandler creates a new SweepHandler
func NewSweepHandler(sweeps *services.SweepService, audits *services.AuditService, logger *logrus.Logger) *SweepHandler {
	return &SweepHandler{sweeps: sweeps, audits: audits, logger: logger}
}

// TriggerSweep runs an expiry sweep immediately
// @Summary Trigger an expiry sweep
// @Description Cancels expired holds across every category table and restores their inventory. Rejected with 409 while another sweep is running.
// @Tags Operations
// @Produce json
// @Success 200 {object} models.SweepReport
// @Failure 409 {object} map[string]interface{} "Sweep already in progress"
// @Security OpsToken
// @Router /api/v1/bookings/sweep [post]
func (h *SweepHandler) TriggerSweep(c *gin.Context) {
	report, err := h.sweeps.Run(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	h.audits.LogSweepRun(report, "manual")
	h.logger.WithFields(logrus.Fields{
		"cancelled": report.TotalCancelled,
		"restored":  report.TotalRestored,
		"ip":        utils.GetRealIP(c),
	}).Info("manual sweep triggered")

	c.JSON(http.StatusOK, report)
}
