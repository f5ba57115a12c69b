package services

import (
	"context"
	"fmt"
	"time"

	"vigilant-backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultAlertMessage is used when a notify call carries no message
	DefaultAlertMessage = "SOS Alert!"

	alertTitle = "SOS Alert"

	// DefaultNearestLimit matches the original multi-helper default
	DefaultNearestLimit = 3
	MaxNearestLimit     = 20

	// DefaultMaxDistanceMeters is roughly half the Earth's circumference:
	// "any registered user", not a tight neighborhood.
	DefaultMaxDistanceMeters = 20037000
)

// HelperService handles the nearest-helper lookup and targeted helper
// notifications
type HelperService struct {
	users  UserStore
	mailer Mailer
}

// NewHelperService creates a new helper service
func NewHelperService(users UserStore, mailer Mailer) *HelperService {
	return &HelperService{
		users:  users,
		mailer: mailer,
	}
}

// FindNearest returns up to limit users ordered by ascending distance from
// the supplied point, excluding the requester. The point is the requester's
// ad hoc device position, not their stored profile location, so a moving
// requester can re-query freely. Results are never cached.
func (s *HelperService) FindNearest(ctx context.Context, requesterID string, latitude, longitude float64, limit int, maxDistanceMeters float64) ([]models.NearbyUser, error) {
	if limit <= 0 {
		limit = DefaultNearestLimit
	}
	if limit > MaxNearestLimit {
		limit = MaxNearestLimit
	}
	if maxDistanceMeters <= 0 {
		maxDistanceMeters = DefaultMaxDistanceMeters
	}

	nearby, err := s.users.FindNearest(ctx, latitude, longitude, requesterID, maxDistanceMeters, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search nearest users: %w", err)
	}
	if len(nearby) == 0 {
		return nil, ErrNoNearbyUsers
	}
	return nearby, nil
}

// NotifyRequest is the targeted helper-notification payload
type NotifyRequest struct {
	UserID    string   `json:"user_id" validate:"required"`
	Message   string   `json:"message"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// NotifyHelper appends an alert to the target's inbox and best-effort emails
// them. The inbox write is the success criterion; an email failure is logged
// and never surfaced.
func (s *HelperService) NotifyHelper(ctx context.Context, senderID string, req NotifyRequest) error {
	if err := validate.Struct(req); err != nil {
		return err
	}

	target, err := s.users.GetByID(ctx, req.UserID)
	if err != nil {
		return fmt.Errorf("failed to get target user: %w", err)
	}
	if target == nil {
		return fmt.Errorf("target user: %w", ErrNotFound)
	}

	sender, err := s.users.GetByID(ctx, senderID)
	if err != nil {
		return fmt.Errorf("failed to get sender: %w", err)
	}
	if sender == nil {
		return fmt.Errorf("sender: %w", ErrNotFound)
	}

	message := req.Message
	if message == "" {
		message = DefaultAlertMessage
	}

	notification := &models.Notification{
		ID:            uuid.New().String(),
		Title:         alertTitle,
		Message:       message,
		FromUserID:    sender.ID,
		FromUserName:  sender.Name,
		FromUserEmail: sender.Email,
		Read:          false,
		CreatedAt:     time.Now().UTC(),
	}
	if req.Latitude != nil && req.Longitude != nil {
		notification.Location = &models.LatLng{Latitude: *req.Latitude, Longitude: *req.Longitude}
	}

	if err := s.users.AppendNotification(ctx, target.ID, notification); err != nil {
		return fmt.Errorf("failed to save notification: %w", err)
	}

	email := HelperAlertEmail(target.Email, target.Name, sender.Name, sender.Email, req.Latitude, req.Longitude)
	if err := s.mailer.Send(ctx, email); err != nil {
		log.Error().Err(err).Str("to", target.Email).Msg("Failed to send helper alert email")
	}

	return nil
}
