package handlers

import (
	"encoding/json"
	"net/http"

	"vigilant-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// ResourceHandler handles safety-resource HTTP requests
type ResourceHandler struct {
	resourceService *services.ResourceService
}

// NewResourceHandler creates a new resource handler
func NewResourceHandler(resourceService *services.ResourceService) *ResourceHandler {
	return &ResourceHandler{resourceService: resourceService}
}

// List handles GET /api/v1/resources with an optional ?type= filter
func (h *ResourceHandler) List(w http.ResponseWriter, r *http.Request) {
	resources, err := h.resourceService.List(r.Context(), r.URL.Query().Get("type"))
	if err != nil {
		log.Error().Err(err).Msg("Failed to list resources")
		respondError(w, "Failed to fetch resources.", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"resources": resources})
}

// Get handles GET /api/v1/resources/{resource_id}
func (h *ResourceHandler) Get(w http.ResponseWriter, r *http.Request) {
	resourceID := chi.URLParam(r, "resource_id")

	resource, err := h.resourceService.Get(r.Context(), resourceID)
	if err != nil {
		respondError(w, "Resource not found.", statusFromError(err))
		return
	}
	respondJSON(w, http.StatusOK, resource)
}

// Create handles POST /api/v1/resources
func (h *ResourceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req services.ResourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	resource, err := h.resourceService.Create(r.Context(), req)
	if err != nil {
		respondError(w, errorMessage(err), statusFromError(err))
		return
	}
	respondJSON(w, http.StatusCreated, resource)
}

// Update handles PUT /api/v1/resources/{resource_id}
func (h *ResourceHandler) Update(w http.ResponseWriter, r *http.Request) {
	resourceID := chi.URLParam(r, "resource_id")

	var req services.ResourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	resource, err := h.resourceService.Update(r.Context(), resourceID, req)
	if err != nil {
		respondError(w, errorMessage(err), statusFromError(err))
		return
	}
	respondJSON(w, http.StatusOK, resource)
}

// Delete handles DELETE /api/v1/resources/{resource_id}
func (h *ResourceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	resourceID := chi.URLParam(r, "resource_id")

	if err := h.resourceService.Delete(r.Context(), resourceID); err != nil {
		respondError(w, "Resource not found.", statusFromError(err))
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Resource deleted."})
}
