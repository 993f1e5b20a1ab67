package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/travelmarket/booking-backend/internal/middleware"
	"github.com/travelmarket/booking-backend/internal/models"
	"github.com/travelmarket/booking-backend/internal/services"
	"github.com/travelmarket/booking-backend/internal/utils"
)

// BookingHandler handles the booking lifecycle endpoints
type BookingHandler struct {
	holds    *services.HoldService
	bookings *services.BookingService
	audits   *services.AuditService
	logger   *logrus.Logger
}

// NewBookingHandler creates a new BookingHandler
func NewBookingHandler(
	holds *services.HoldService,
	bookings *services.BookingService,
	audits *services.AuditService,
	logger *logrus.Logger,
) *BookingHandler {
	return &BookingHandler{
		holds:    holds,
		bookings: bookings,
		audits:   audits,
		logger:   logger,
	}
}

// CreateHold creates a time-boxed reservation against an offer
// @Summary Create a booking hold
// @Description Reserves inventory on an offer and creates a held booking with an expiry deadline
// @Tags Bookings
// @Accept json
// @Produce json
// @Param request body models.CreateHoldRequest true "Hold request"
// @Success 201 {object} models.HoldResponse "Hold created"
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Failure 404 {object} map[string]interface{} "Offer not found"
// @Failure 409 {object} map[string]interface{} "Insufficient capacity"
// @Security BearerAuth
// @Router /api/v1/bookings/hold [post]
func (h *BookingHandler) CreateHold(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		respondError(c, models.ErrUnauthorized)
		return
	}

	var req models.CreateHoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": "Invalid request body", "code": "INVALID_BODY"})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error(), "code": "VALIDATION_FAILED"})
		return
	}

	ident := identityFrom(userCtx)
	booking, remaining, err := h.holds.CreateHold(c.Request.Context(), ident, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.audits.LogHoldCreated(&userCtx.UserID, booking, utils.GetRealIP(c), utils.GetUserAgent(c))

	c.JSON(http.StatusCreated, models.HoldResponse{
		BookingID:       booking.ID,
		Status:          string(booking.Status),
		HoldUntil:       *booking.ExpiresAt,
		PaymentDeadline: *booking.PaymentDeadline,
		UnitsRemaining:  remaining,
	})
}

// GetBooking returns one booking with ownership enforcement
// @Summary Get a booking
// @Tags Bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} models.Booking
// @Failure 403 {object} map[string]interface{} "Owned by someone else"
// @Failure 404 {object} map[string]interface{} "Not found"
// @Security BearerAuth
// @Router /api/v1/bookings/{id} [get]
func (h *BookingHandler) GetBooking(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		respondError(c, models.ErrUnauthorized)
		return
	}

	booking, err := h.bookings.GetBooking(identityFrom(userCtx), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// ListBookings returns the caller's bookings
// @Summary List own bookings
// @Tags Bookings
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /api/v1/bookings [get]
func (h *BookingHandler) ListBookings(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		respondError(c, models.ErrUnauthorized)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	bookings, err := h.bookings.ListBookings(identityFrom(userCtx), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bookings": bookings,
		"count":    len(bookings),
	})
}

// ConfirmBooking marks a booking confirmed for a payment reference
// @Summary Confirm a booking after payment
// @Description Idempotent on repeated calls with the same payment reference
// @Tags Bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body models.ConfirmBookingRequest true "Payment reference"
// @Success 200 {object} models.Booking
// @Failure 404 {object} map[string]interface{} "Not found"
// @Failure 422 {object} map[string]interface{} "Not confirmable from current status"
// @Security BearerAuth
// @Router /api/v1/bookings/{id}/confirm [post]
func (h *BookingHandler) ConfirmBooking(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		respondError(c, models.ErrUnauthorized)
		return
	}

	var req models.ConfirmBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": "Invalid request body", "code": "INVALID_BODY"})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error(), "code": "VALIDATION_FAILED"})
		return
	}

	booking, err := h.bookings.ConfirmBooking(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.audits.LogBookingConfirmed(&userCtx.UserID, booking, req.PaymentReference, utils.GetRealIP(c), utils.GetUserAgent(c))

	c.JSON(http.StatusOK, booking)
}

// CancelBooking cancels the caller's own booking and releases its inventory
// @Summary Cancel a booking
// @Tags Bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} models.Booking
// @Failure 403 {object} map[string]interface{} "Owned by someone else"
// @Failure 422 {object} map[string]interface{} "Not cancellable from current status"
// @Security BearerAuth
// @Router /api/v1/bookings/{id}/cancel [post]
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		respondError(c, models.ErrUnauthorized)
		return
	}

	booking, err := h.bookings.CancelBooking(c.Request.Context(), identityFrom(userCtx), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	h.audits.LogBookingCancelled(&userCtx.UserID, booking, utils.GetRealIP(c), utils.GetUserAgent(c))

	c.JSON(http.StatusOK, booking)
}

func identityFrom(userCtx middleware.UserContext) *services.Identity {
	return &services.Identity{
		UserID:     userCtx.UserID,
		ExternalID: userCtx.ExternalID,
		Email:      userCtx.Email,
	}
}
