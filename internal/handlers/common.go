package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"vigilant-backend/internal/services"

	"github.com/go-playground/validator/v10"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string `json:"message"`
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Message: message})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// statusFromError maps service errors onto HTTP status codes. Not-found and
// not-owned share one status so existence is never leaked.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound),
		errors.Is(err, services.ErrNoNearbyUsers),
		errors.Is(err, services.ErrNoLocation):
		return http.StatusNotFound
	case errors.Is(err, services.ErrNoRecipients):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// errorMessage keeps expected failures human-readable and hides internals
// behind a generic message for everything else
func errorMessage(err error) string {
	if statusFromError(err) == http.StatusInternalServerError {
		return "Server error"
	}
	return err.Error()
}
