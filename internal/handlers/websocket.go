package handlers

import (
	"errors"
	"net/http"

	"vigilant-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // tracking links are shared outside the app origin
	},
}

// WebSocketHandler streams live-location updates to tracking watchers
type WebSocketHandler struct {
	hub             *services.TrackHub
	incidentService *services.IncidentService
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub *services.TrackHub, incidentService *services.IncidentService) *WebSocketHandler {
	return &WebSocketHandler{
		hub:             hub,
		incidentService: incidentService,
	}
}

// HandleTrack handles GET /ws/track?incident_id=...
// The connection is public: possession of the incident id is the capability.
// The current snapshot, when one exists, is pushed on connect and every
// subsequent live-location write follows as a location_update frame.
func (h *WebSocketHandler) HandleTrack(w http.ResponseWriter, r *http.Request) {
	incidentID := r.URL.Query().Get("incident_id")
	if incidentID == "" {
		respondError(w, "incident_id query parameter required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade tracking connection")
		return
	}

	h.hub.Watch(incidentID, conn)
	defer h.hub.Unwatch(incidentID, conn)

	if loc, err := h.incidentService.TrackLocation(r.Context(), incidentID); err == nil {
		msg := services.TrackMessage{
			Type:           "location_update",
			IncidentID:     incidentID,
			LatestLocation: loc,
		}
		if err := conn.WriteJSON(msg); err != nil {
			log.Error().Err(err).Str("incident_id", incidentID).Msg("Failed to push initial snapshot")
			return
		}
	} else if !errors.Is(err, services.ErrNoLocation) {
		log.Error().Err(err).Str("incident_id", incidentID).Msg("Failed to load initial snapshot")
	}

	// Watchers only listen. The read loop exists to notice the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
