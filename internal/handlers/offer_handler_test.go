package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travelmarket/booking-backend/internal/models"
)

type fakeOfferCatalog struct {
	fakeOfferStore
	created []*models.Offer
}

func (c *fakeOfferCatalog) Create(offer *models.Offer) error {
	offer.ID = uuid.NewString()
	offer.UnitsAvailable = offer.UnitsTotal
	c.created = append(c.created, offer)
	return nil
}

func newOfferRouter(catalog OfferCatalog) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	handler := NewOfferHandler(catalog, logger)
	router := gin.New()
	router.GET("/api/v1/offers/:id", handler.GetOffer)
	router.POST("/api/v1/offers", handler.CreateOffer)
	return router
}

func TestGetOfferHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		catalog := &fakeOfferCatalog{fakeOfferStore: fakeOfferStore{offer: testOffer()}}
		router := newOfferRouter(catalog)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/offers/offer-1", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var offer models.Offer
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &offer))
		assert.Equal(t, "offer-1", offer.ID)
		assert.Equal(t, 7, offer.UnitsAvailable)
	})

	t.Run("Not Found", func(t *testing.T) {
		catalog := &fakeOfferCatalog{fakeOfferStore: fakeOfferStore{err: models.ErrNotFound}}
		router := newOfferRouter(catalog)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/offers/missing", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCreateOfferHandler(t *testing.T) {
	validOfferPayload := func() map[string]interface{} {
		return map[string]interface{}{
			"category":    "hotel",
			"title":       "Seaside Room",
			"units_total": 10,
			"unit_price":  120.0,
			"currency":    "usd",
		}
	}

	t.Run("Success", func(t *testing.T) {
		catalog := &fakeOfferCatalog{}
		router := newOfferRouter(catalog)

		w := postJSON(router, "/api/v1/offers", validOfferPayload())
		assert.Equal(t, http.StatusCreated, w.Code)

		var offer models.Offer
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &offer))
		assert.NotEmpty(t, offer.ID)
		assert.Equal(t, models.CategoryHotel, offer.Category)
		assert.Equal(t, 10, offer.UnitsAvailable)
		assert.Equal(t, "USD", offer.Currency)

		require.Len(t, catalog.created, 1)
	})

	t.Run("Unknown Category", func(t *testing.T) {
		catalog := &fakeOfferCatalog{}
		router := newOfferRouter(catalog)

		payload := validOfferPayload()
		payload["category"] = "spaceship"

		w := postJSON(router, "/api/v1/offers", payload)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "VALIDATION_FAILED", body["code"])
		assert.Empty(t, catalog.created)
	})

	t.Run("Zero Units", func(t *testing.T) {
		catalog := &fakeOfferCatalog{}
		router := newOfferRouter(catalog)

		payload := validOfferPayload()
		payload["units_total"] = 0

		w := postJSON(router, "/api/v1/offers", payload)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, catalog.created)
	})

	t.Run("Missing Title", func(t *testing.T) {
		catalog := &fakeOfferCatalog{}
		router := newOfferRouter(catalog)

		payload := validOfferPayload()
		payload["title"] = "   "

		w := postJSON(router, "/api/v1/offers", payload)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, catalog.created)
	})
}
