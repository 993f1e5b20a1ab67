package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/travelmarket/booking-backend/internal/models"
)

// respondError maps service errors onto the JSON error shape every endpoint
// shares. Unknown errors become opaque 500s so persistence details never
// leak to clients.
func respondError(c *gin.Context, err error) {
	var capacityErr *models.CapacityError
	if errors.As(err, &capacityErr) {
		c.JSON(http.StatusConflict, gin.H{
			"error":     "capacity_exceeded",
			"message":   capacityErr.Error(),
			"code":      "CAPACITY_EXCEEDED",
			"available": capacityErr.Available,
			"requested": capacityErr.Requested,
		})
		return
	}

	switch {
	case errors.Is(err, models.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
			"code":    "VALIDATION_FAILED",
		})
	case errors.Is(err, models.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "unauthorized",
			"message": "Authentication is required",
			"code":    "UNAUTHORIZED",
		})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "not_found",
			"message": "The requested resource does not exist",
			"code":    "NOT_FOUND",
		})
	case errors.Is(err, models.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "forbidden",
			"message": "You don't have access to this booking",
			"code":    "FORBIDDEN",
		})
	case errors.Is(err, models.ErrCapacityExceeded):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "capacity_exceeded",
			"message": err.Error(),
			"code":    "CAPACITY_EXCEEDED",
		})
	case errors.Is(err, models.ErrOfferBusy):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "offer_busy",
			"message": "Another reservation on this offer is in flight, retry shortly",
			"code":    "OFFER_BUSY",
		})
	case errors.Is(err, models.ErrInvalidTransition):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "invalid_transition",
			"message": err.Error(),
			"code":    "INVALID_TRANSITION",
		})
	case errors.Is(err, models.ErrSweepInProgress):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "sweep_in_progress",
			"message": "A sweep is already running",
			"code":    "SWEEP_IN_PROGRESS",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Something went wrong",
			"code":    "INTERNAL_ERROR",
		})
	}
}
