package handlers

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/inkwell-app/inkwell-be/internal/apperr"
	"github.com/inkwell-app/inkwell-be/internal/auth"
	"github.com/inkwell-app/inkwell-be/internal/services"
)

// EventHandler serves the recent activity feed.
type EventHandler struct {
	service services.EventServiceProvider
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(service services.EventServiceProvider) *EventHandler {
	return &EventHandler{service: service}
}

// GetRecent handles the request to get recent activity events.
func (h *EventHandler) GetRecent(w http.ResponseWriter, r *http.Request) {
	if !auth.ResultFromContext(r.Context()).Authenticated {
		writeError(w, apperr.Unauthorized("Not authenticated"))
		return
	}

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 20 // Default limit
	}

	events, err := h.service.GetRecentEvents(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to retrieve events")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}
