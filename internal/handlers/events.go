package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tpprogramming22/weekendinthecity/internal/logger"
)

// ListEvents - GET /events
// Optional ?category= and ?query= narrow the list
func (h *Handlers) ListEvents(c *gin.Context) {
	ctx := c.Request.Context()
	query := strings.TrimSpace(c.Query("query"))
	category := strings.TrimSpace(c.Query("category"))

	// Only the unfiltered list is cached
	useCache := query == "" && category == "" && h.cache != nil
	storeResult := false
	var version int64

	if useCache {
		rawJSON, v, err := h.cache.GetEventsListRaw(ctx)
		switch {
		case err != nil:
			logger.WithContext(ctx).Warn("Events cache unavailable", "error", err)
		case rawJSON != nil:
			c.Data(http.StatusOK, "application/json; charset=utf-8", rawJSON)
			return
		default:
			version, storeResult = v, true
		}
	}

	response, err := h.events.List(ctx, query, category)
	if err != nil {
		logger.WithContext(ctx).Error("Failed to list events", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch events"})
		return
	}

	if storeResult {
		if err := h.cache.SetEventsList(ctx, version, response); err != nil {
			logger.WithContext(ctx).Warn("Failed to cache events list", "error", err)
		}
	}

	c.JSON(http.StatusOK, response)
}
