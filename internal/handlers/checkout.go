package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tpprogramming22/weekendinthecity/internal/models"
	"github.com/tpprogramming22/weekendinthecity/internal/service"
)

// webhook payloads from the provider are far below this
const maxWebhookBody = 64 << 10

// CreateCheckout - POST /checkout
// Creates a pending booking and returns the hosted payment page URL
func (h *Handlers) CreateCheckout(c *gin.Context) {
	var req models.CreateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": service.MsgMissingCheckoutFields})
		return
	}

	response, err := h.checkout.CreateSession(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetCheckoutStatus - GET /checkout/:sessionId
// Booking state for the success page
func (h *Handlers) GetCheckoutStatus(c *gin.Context) {
	response, err := h.checkout.Status(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		h.handleServiceError(c, err, "Failed to fetch booking")
		return
	}

	c.JSON(http.StatusOK, response)
}

// HandleWebhook - POST /webhook
// The raw body is needed for signature verification, so it is never bound
func (h *Handlers) HandleWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	if err := h.webhooks.Handle(c.Request.Context(), payload, c.GetHeader("Stripe-Signature")); err != nil {
		h.handleServiceError(c, err, "Webhook handler failed")
		return
	}

	c.JSON(http.StatusOK, models.WebhookResponse{Received: true})
}
