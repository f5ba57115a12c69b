package handlers

import (
	"encoding/json"
	"net/http"

	"vigilant-backend/internal/middleware"
	"vigilant-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// IncidentHandler handles incident and SOS HTTP requests
type IncidentHandler struct {
	incidentService *services.IncidentService
}

// NewIncidentHandler creates a new incident handler
func NewIncidentHandler(incidentService *services.IncidentService) *IncidentHandler {
	return &IncidentHandler{
		incidentService: incidentService,
	}
}

// Report handles POST /api/v1/incidents/report
func (h *IncidentHandler) Report(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req services.ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	incident, err := h.incidentService.Report(ctx, userID, req)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to report incident")
		respondError(w, "Failed to report incident.", statusFromError(err))
		return
	}

	log.Info().Str("incident_id", incident.ID).Str("user_id", userID).Msg("Incident reported")
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":     "Incident reported and contacts notified!",
		"incident_id": incident.ID,
	})
}

// SOS handles POST /api/v1/incidents/sos
func (h *IncidentHandler) SOS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req services.ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	incident, err := h.incidentService.TriggerSOS(ctx, userID, req)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to process SOS")
		respondError(w, errorMessage(err), statusFromError(err))
		return
	}

	log.Info().Str("incident_id", incident.ID).Str("user_id", userID).Msg("SOS triggered")
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":     "SOS received and selected contacts notified!",
		"incident_id": incident.ID,
	})
}

// LocationUpdateRequest is the live-location update payload
type LocationUpdateRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// UpdateLocation handles POST /api/v1/incidents/{incident_id}/location
func (h *IncidentHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	incidentID := chi.URLParam(r, "incident_id")

	var req LocationUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.incidentService.UpdateLiveLocation(ctx, incidentID, userID, req.Latitude, req.Longitude); err != nil {
		if statusFromError(err) == http.StatusNotFound {
			respondError(w, "Incident not found.", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("incident_id", incidentID).Msg("Failed to update location")
		respondError(w, "Failed to update location.", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Location updated."})
}

// TrackLocation handles GET /api/v1/incidents/track/{incident_id}.
// Public by design: emergency contacts hold no account.
func (h *IncidentHandler) TrackLocation(w http.ResponseWriter, r *http.Request) {
	incidentID := chi.URLParam(r, "incident_id")

	loc, err := h.incidentService.TrackLocation(r.Context(), incidentID)
	if err != nil {
		if statusFromError(err) == http.StatusNotFound {
			respondError(w, "No location found.", http.StatusNotFound)
			return
		}
		respondError(w, "Failed to fetch location.", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"latest_location": loc})
}

// MyIncidents handles GET /api/v1/incidents/mine
func (h *IncidentHandler) MyIncidents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	incidents, err := h.incidentService.ListMine(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list incidents")
		respondError(w, "Failed to fetch incidents.", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"incidents": incidents})
}

// Delete handles DELETE /api/v1/incidents/{incident_id}
func (h *IncidentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	incidentID := chi.URLParam(r, "incident_id")

	if err := h.incidentService.Delete(ctx, incidentID, userID); err != nil {
		if statusFromError(err) == http.StatusNotFound {
			respondError(w, "Incident not found or unauthorized.", http.StatusNotFound)
			return
		}
		respondError(w, "Failed to delete incident.", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Incident deleted."})
}
