package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tpprogramming22/weekendinthecity/internal/models"
)

// SubmitContact - POST /contact
func (h *Handlers) SubmitContact(c *gin.Context) {
	var req models.ContactRequest
	// A malformed body is treated as an empty form so the rate limit still applies
	_ = c.ShouldBindJSON(&req)

	err := h.contact.Submit(c.Request.Context(), c.ClientIP(), &req)
	if err != nil {
		h.handleServiceError(c, err, "Failed to send message. Please try again later.")
		return
	}

	c.JSON(http.StatusOK, models.ContactResponse{
		Success: true,
		Message: "Message sent successfully",
	})
}
