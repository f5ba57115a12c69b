package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"vigilant-backend/internal/middleware"
	"vigilant-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userService   *services.UserService
	helperService *services.HelperService
	avatarService *services.AvatarService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService, helperService *services.HelperService, avatarService *services.AvatarService) *UserHandler {
	return &UserHandler{
		userService:   userService,
		helperService: helperService,
		avatarService: avatarService,
	}
}

// Register handles POST /api/v1/users/register
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.userService.Register(r.Context(), req)
	if err != nil {
		log.Error().Err(err).Str("email", req.Email).Msg("Failed to register user")
		respondError(w, errorMessage(err), statusFromError(err))
		return
	}

	log.Info().Str("user_id", user.ID).Msg("User registered")
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "User registered successfully",
		"user":    user,
	})
}

// LoginRequest is the login payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/v1/users/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	token, user, err := h.userService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, errorMessage(err), statusFromError(err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user": map[string]interface{}{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
		},
	})
}

// GetProfile handles GET /api/v1/users/profile
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	user, err := h.userService.GetProfile(ctx, userID)
	if err != nil {
		respondError(w, "User not found", statusFromError(err))
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// UpdateProfile handles PUT /api/v1/users/profile
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req services.ProfileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.userService.UpdateProfile(ctx, userID, req)
	if err != nil {
		respondError(w, errorMessage(err), statusFromError(err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Profile updated!",
		"user":    user,
	})
}

// AvatarUploadRequest is the avatar upload payload
type AvatarUploadRequest struct {
	ContentType string `json:"content_type"`
}

// UploadAvatar handles POST /api/v1/users/profile/avatar
func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req AvatarUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ContentType == "" {
		req.ContentType = "image/jpeg"
	}

	response, err := h.avatarService.PresignUpload(ctx, userID, req.ContentType)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to generate avatar upload URL")
		respondError(w, errorMessage(err), statusFromError(err))
		return
	}
	respondJSON(w, http.StatusOK, response)
}

// GetEmergencyContacts handles GET /api/v1/users/emergency-contacts
func (h *UserHandler) GetEmergencyContacts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	contacts, err := h.userService.GetEmergencyContacts(ctx, userID)
	if err != nil {
		respondError(w, errorMessage(err), statusFromError(err))
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"emergency_contacts": contacts})
}

// ContactListRequest is the whole-list replacement payload
type ContactListRequest struct {
	EmergencyContacts []services.ContactInput `json:"emergency_contacts"`
}

// UpdateEmergencyContacts handles PUT /api/v1/users/emergency-contacts
func (h *UserHandler) UpdateEmergencyContacts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req ContactListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	contacts, err := h.userService.ReplaceEmergencyContacts(ctx, userID, req.EmergencyContacts)
	if err != nil {
		respondError(w, errorMessage(err), statusFromError(err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":            "Emergency contacts updated!",
		"emergency_contacts": contacts,
	})
}

// Nearest handles GET /api/v1/users/nearest
func (h *UserHandler) Nearest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	latStr := r.URL.Query().Get("latitude")
	lngStr := r.URL.Query().Get("longitude")
	if latStr == "" || lngStr == "" {
		respondError(w, "Latitude and longitude required.", http.StatusBadRequest)
		return
	}

	latitude, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		respondError(w, "Invalid latitude", http.StatusBadRequest)
		return
	}
	longitude, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		respondError(w, "Invalid longitude", http.StatusBadRequest)
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil {
			limit = parsed
		}
	}
	maxDistance := 0.0
	if maxStr := r.URL.Query().Get("max_distance"); maxStr != "" {
		if parsed, err := strconv.ParseFloat(maxStr, 64); err == nil {
			maxDistance = parsed
		}
	}

	nearby, err := h.helperService.FindNearest(ctx, userID, latitude, longitude, limit, maxDistance)
	if err != nil {
		if statusFromError(err) == http.StatusInternalServerError {
			log.Error().Err(err).Str("user_id", userID).Msg("Nearest search failed")
			respondError(w, "Server error searching nearest user.", http.StatusInternalServerError)
			return
		}
		respondError(w, "No nearby users found.", statusFromError(err))
		return
	}
	respondJSON(w, http.StatusOK, nearby)
}

// Notify handles POST /api/v1/users/notify
func (h *UserHandler) Notify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req services.NotifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.helperService.NotifyHelper(ctx, userID, req); err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("target_id", req.UserID).Msg("Failed to notify helper")
		respondError(w, errorMessage(err), statusFromError(err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Notification sent and saved with details.",
	})
}

// Notifications handles GET /api/v1/users/notifications
func (h *UserHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	notifications, err := h.userService.ListNotifications(ctx, userID)
	if err != nil {
		respondError(w, "Failed to fetch notifications", statusFromError(err))
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"notifications": notifications})
}
