package handlers

import (
	"errors"
	"net/http"

	apperrors "milan/internal/errors"
	"milan/internal/logger"
	"milan/internal/service"

	"github.com/gin-gonic/gin"
)

// Teams handlers

// ListTeams - GET /api/teams
// Команды фестиваля со ссылками на фотографии
func (h *Handlers) ListTeams(c *gin.Context) {
	c.Header("Cache-Control", h.teamsCaching)
	c.JSON(http.StatusOK, h.services.Teams.List())
}

// Events handlers

// ListEvents - GET /api/events?q=&date=
// Получить список мероприятий
func (h *Handlers) ListEvents(c *gin.Context) {
	events, err := h.services.Catalog.List(c.Request.Context(), c.Query("q"), c.Query("date"))
	if errors.Is(err, service.ErrInvalidDate) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		logger.WithContext(c.Request.Context()).Error("Failed to list events", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list events"})
		return
	}

	c.JSON(http.StatusOK, events)
}

// EventsCalendar - GET /api/events/calendar
func (h *Handlers) EventsCalendar(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Catalog.Calendar())
}

// GetEvent - GET /api/events/:slug
func (h *Handlers) GetEvent(c *gin.Context) {
	event, err := h.services.Catalog.Get(c.Param("slug"))
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get event"})
		return
	}

	c.JSON(http.StatusOK, event)
}
