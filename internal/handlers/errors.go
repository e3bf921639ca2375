package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/tpprogramming22/weekendinthecity/internal/errors"
	"github.com/tpprogramming22/weekendinthecity/internal/logger"
)

// handleServiceError maps service errors to status codes and response messages.
// fallback is used for unexpected failures.
func (h *Handlers) handleServiceError(c *gin.Context, err error, fallback string) {
	status, message := http.StatusInternalServerError, fallback

	var providerErr *apperrors.ProviderError
	var rateErr *apperrors.RateLimitError

	switch {
	case errors.Is(err, apperrors.ErrValidation):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, apperrors.ErrEventNotFound):
		status, message = http.StatusNotFound, "Event not found"
	case errors.Is(err, apperrors.ErrSoldOut):
		status, message = http.StatusBadRequest, "Event is sold out"
	case errors.Is(err, apperrors.ErrSessionNotFound):
		status, message = http.StatusNotFound, "Booking not found"
	case errors.Is(err, apperrors.ErrMissingSignature):
		status, message = http.StatusBadRequest, "No signature provided"
	case errors.Is(err, apperrors.ErrInvalidSignature):
		status, message = http.StatusBadRequest, "Webhook signature verification failed"
	case errors.Is(err, apperrors.ErrSpam):
		status, message = http.StatusBadRequest, "Spam detected"
	case errors.Is(err, apperrors.ErrRateLimited):
		status, message = http.StatusTooManyRequests, "Too many requests. Please try again later."
		if errors.As(err, &rateErr) && rateErr.RetryAfter > 0 {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(rateErr.RetryAfter.Seconds()))))
		}
	case errors.Is(err, apperrors.ErrBookingCreate):
		message = "Failed to create booking"
	case errors.As(err, &providerErr):
		if providerErr.Message != "" {
			message = providerErr.Message
		}
	case errors.Is(err, apperrors.ErrSendFailed):
		message = "Failed to send message. Please try again later."
	}

	if status >= http.StatusInternalServerError {
		logger.WithContext(c.Request.Context()).Error("Request failed",
			"error", err,
			"path", c.Request.URL.Path)
		_ = c.Error(err)
	}

	c.JSON(status, gin.H{"error": message})
}
