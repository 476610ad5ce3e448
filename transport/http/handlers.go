package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guild-genesis/herald/core"
	"github.com/guild-genesis/herald/ports"
)

// AdminHandlers contains HTTP handlers for the bot's operational endpoints.
type AdminHandlers struct {
	repo ports.ActivityRepository
}

// NewAdminHandlers creates new admin handlers.
func NewAdminHandlers(repo ports.ActivityRepository) *AdminHandlers {
	return &AdminHandlers{repo: repo}
}

// Health reports liveness.
func (h *AdminHandlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// UnprocessedEvents lists activity events the points consumer has not picked
// up yet.
func (h *AdminHandlers) UnprocessedEvents(c *gin.Context) {
	events, err := h.repo.Unprocessed(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list events"})
		return
	}
	if events == nil {
		events = []core.ActivityEvent{}
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// MarkProcessed flips the processed flag for one event.
func (h *AdminHandlers) MarkProcessed(c *gin.Context) {
	id := c.Param("id")

	if err := h.repo.MarkProcessed(c.Request.Context(), id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark event processed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "processed": true})
}
