package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RosterHandlers exposes the read-only presence roster.
type RosterHandlers struct {
	hub Hub
	log *zerolog.Logger
}

// NewRosterHandlers creates roster handlers.
func NewRosterHandlers(hub Hub, logger *zerolog.Logger) *RosterHandlers {
	return &RosterHandlers{hub: hub, log: logger}
}

// ListConnected returns every joined participant.
// GET /connected-users
func (h *RosterHandlers) ListConnected(c *gin.Context) {
	roster := rosterFromParticipants(h.hub.Roster())
	h.log.Debug().Int("count", roster.Count).Msg("roster listed")
	c.JSON(http.StatusOK, roster)
}
