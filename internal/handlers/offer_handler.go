package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/travelmarket/booking-backend/internal/models"
	"github.com/travelmarket/booking-backend/internal/services"
)

// OfferCatalog is the store surface the offer endpoints use: public reads
// plus operator-only seeding.
type OfferCatalog interface {
	services.OfferStore
	Create(offer *models.Offer) error
}

// OfferHandler handles offer catalog reads and seeding
type OfferHandler struct {
	offers OfferCatalog
	logger *logrus.Logger
}

// NewOfferHandler creates a new OfferHandler
func NewOfferHandler(offers OfferCatalog, logger *logrus.Logger) *OfferHandler {
	return &OfferHandler{offers: offers, logger: logger}
}

// GetOffer returns one offer with its live availability
// @Summary Get an offer
// @Tags Offers
// @Produce json
// @Param id path string true "Offer ID"
// @Success 200 {object} models.Offer
// @Failure 404 {object} map[string]interface{} "Not found"
// @Router /api/v1/offers/{id} [get]
func (h *OfferHandler) GetOffer(c *gin.Context) {
	offer, err := h.offers.GetByID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, offer)
}

// CreateOffer seeds a new offer with full availability. Operator-only.
// @Summary Create an offer
// @Tags Offers
// @Accept json
// @Produce json
// @Param request body models.CreateOfferRequest true "Offer"
// @Success 201 {object} models.Offer "Offer created"
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Failure 403 {object} map[string]interface{} "Invalid operations token"
// @Router /api/v1/offers [post]
func (h *OfferHandler) CreateOffer(c *gin.Context) {
	var req models.CreateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": "Invalid request body", "code": "INVALID_BODY"})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error(), "code": "VALIDATION_FAILED"})
		return
	}

	offer := &models.Offer{
		Category:   req.Category,
		Title:      strings.TrimSpace(req.Title),
		UnitsTotal: req.UnitsTotal,
		UnitPrice:  req.UnitPrice,
		Currency:   strings.ToUpper(req.Currency),
	}
	if err := h.offers.Create(offer); err != nil {
		respondError(c, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"offer_id": offer.ID,
		"category": offer.Category,
		"units":    offer.UnitsTotal,
	}).Info("offer created")

	c.JSON(http.StatusCreated, offer)
}
