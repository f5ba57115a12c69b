package services

import (
	"encoding/json"
	"sync"

	"vigilant-backend/internal/models"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// TrackMessage is one WebSocket frame pushed to tracking watchers
type TrackMessage struct {
	Type           string               `json:"type"`
	IncidentID     string               `json:"incident_id"`
	LatestLocation *models.LiveLocation `json:"latest_location,omitempty"`
}

// TrackHub manages public watcher connections per incident. Watchers hold no
// account; anyone with the tracking handle may connect.
type TrackHub struct {
	mu       sync.RWMutex
	watchers map[string]map[*websocket.Conn]struct{}
}

// NewTrackHub creates a new tracking hub
func NewTrackHub() *TrackHub {
	return &TrackHub{
		watchers: make(map[string]map[*websocket.Conn]struct{}),
	}
}

// Watch registers a watcher connection for an incident
func (h *TrackHub) Watch(incidentID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.watchers[incidentID] == nil {
		h.watchers[incidentID] = make(map[*websocket.Conn]struct{})
	}
	h.watchers[incidentID][conn] = struct{}{}

	log.Info().Str("incident_id", incidentID).Msg("Tracking watcher connected")
}

// Unwatch removes a watcher connection for an incident
func (h *TrackHub) Unwatch(incidentID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, exists := h.watchers[incidentID]; exists {
		if _, ok := conns[conn]; ok {
			conn.Close()
			delete(conns, conn)
			if len(conns) == 0 {
				delete(h.watchers, incidentID)
			}
			log.Info().Str("incident_id", incidentID).Msg("Tracking watcher disconnected")
		}
	}
}

// WatcherCount reports the number of watchers for an incident
func (h *TrackHub) WatcherCount(incidentID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.watchers[incidentID])
}

// BroadcastLocation pushes a snapshot to every watcher of the incident.
// Connections that fail to accept the write are dropped.
func (h *TrackHub) BroadcastLocation(incidentID string, loc models.LiveLocation) {
	data, err := json.Marshal(TrackMessage{
		Type:           "location_update",
		IncidentID:     incidentID,
		LatestLocation: &loc,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal tracking message")
		return
	}

	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.watchers[incidentID]))
	for conn := range h.watchers[incidentID] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Error().Err(err).Str("incident_id", incidentID).Msg("Failed to push location update")
			h.Unwatch(incidentID, conn)
		}
	}
}
