package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"vigilant-backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// DefaultSOSDescription is used when an SOS carries no description
const DefaultSOSDescription = "SOS Emergency!"

// TrackBroadcaster pushes live-location snapshots to connected watchers
type TrackBroadcaster interface {
	BroadcastLocation(incidentID string, loc models.LiveLocation)
}

// IncidentService orchestrates the SOS workflow, plain incident reports and
// the live-location tracking sub-flow
type IncidentService struct {
	incidents   IncidentStore
	users       UserStore
	mailer      Mailer
	broadcaster TrackBroadcaster
	frontendURL string
}

// NewIncidentService creates a new incident service. broadcaster may be nil
// when no push channel is wired.
func NewIncidentService(incidents IncidentStore, users UserStore, mailer Mailer, broadcaster TrackBroadcaster, frontendURL string) *IncidentService {
	return &IncidentService{
		incidents:   incidents,
		users:       users,
		mailer:      mailer,
		broadcaster: broadcaster,
		frontendURL: frontendURL,
	}
}

// ReportRequest is the payload shared by incident reports and SOS alerts.
// Coordinates and contacts are optional; absent coordinates are valid input.
type ReportRequest struct {
	Location    string                    `json:"location"`
	Description string                    `json:"description"`
	Latitude    *float64                  `json:"latitude"`
	Longitude   *float64                  `json:"longitude"`
	Contacts    []models.EmergencyContact `json:"contacts"`
}

// Report persists a regular incident. When contacts were selected they are
// emailed best-effort; the write alone decides success.
func (s *IncidentService) Report(ctx context.Context, userID string, req ReportRequest) (*models.Incident, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reporter: %w", err)
	}
	if user == nil {
		return nil, ErrNotFound
	}

	incident := &models.Incident{
		ID:          uuid.New().String(),
		UserID:      userID,
		Location:    req.Location,
		Description: req.Description,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Type:        models.IncidentTypeIncident,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.incidents.Create(ctx, incident); err != nil {
		return nil, fmt.Errorf("failed to save incident: %w", err)
	}

	recipients := withEmail(req.Contacts)
	s.fanOut(ctx, recipients, func(to string) Email {
		return IncidentReportEmail(to, user.Name, user.Email, req.Location, req.Description)
	})

	return incident, nil
}

// TriggerSOS runs the SOS workflow: resolve the recipient set, persist the
// incident, fan out one email per recipient and return the tracking handle.
//
// Recipient resolution: an explicit non-empty contacts list is used
// verbatim, otherwise the reporter's saved emergency contacts. Entries
// without an email are dropped. An empty resolved set fails before any
// incident is persisted. Duplicate emails are tolerated: each entry gets
// its own independent send.
func (s *IncidentService) TriggerSOS(ctx context.Context, userID string, req ReportRequest) (*models.Incident, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reporter: %w", err)
	}
	if user == nil {
		return nil, ErrNotFound
	}

	recipients := req.Contacts
	if len(recipients) == 0 {
		recipients = user.EmergencyContacts
	}
	recipients = withEmail(recipients)
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}

	description := req.Description
	if description == "" {
		description = DefaultSOSDescription
	}

	now := time.Now().UTC()
	incident := &models.Incident{
		ID:          uuid.New().String(),
		UserID:      userID,
		Location:    req.Location,
		Description: description,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Type:        models.IncidentTypeSOS,
		CreatedAt:   now,
	}
	if req.Latitude != nil && req.Longitude != nil {
		incident.LatestLocation = &models.LiveLocation{
			Latitude:  *req.Latitude,
			Longitude: *req.Longitude,
			UpdatedAt: now,
		}
	}

	if err := s.incidents.Create(ctx, incident); err != nil {
		return nil, fmt.Errorf("failed to save incident: %w", err)
	}

	trackURL := s.trackURL(incident)
	s.fanOut(ctx, recipients, func(to string) Email {
		return SOSAlertEmail(to, user.Name, user.Email, req.Location, description, trackURL)
	})

	return incident, nil
}

// fanOut sends one email per recipient. Sends run concurrently within the
// request and each failure is logged without affecting the others.
func (s *IncidentService) fanOut(ctx context.Context, recipients []models.EmergencyContact, build func(to string) Email) {
	var wg sync.WaitGroup
	for _, rcpt := range recipients {
		wg.Add(1)
		go func(to string) {
			defer wg.Done()
			if err := s.mailer.Send(ctx, build(to)); err != nil {
				log.Error().Err(err).Str("to", to).Msg("Failed to send alert email")
				return
			}
			log.Info().Str("to", to).Msg("Alert email sent")
		}(rcpt.Email)
	}
	wg.Wait()
}

func (s *IncidentService) trackURL(incident *models.Incident) string {
	if s.frontendURL != "" {
		return fmt.Sprintf("%s/track/%s", s.frontendURL, incident.ID)
	}
	if incident.Latitude != nil && incident.Longitude != nil {
		return DirectionsURL(*incident.Latitude, *incident.Longitude)
	}
	return ""
}

// UpdateLiveLocation overwrites the incident's live-location snapshot.
// Owner-scoped: unknown ids and incidents owned by someone else both come
// back as not-found so existence is never confirmed to unauthorized callers.
// Last write wins; no ordering protection.
func (s *IncidentService) UpdateLiveLocation(ctx context.Context, incidentID, userID string, latitude, longitude float64) error {
	loc := models.LiveLocation{
		Latitude:  latitude,
		Longitude: longitude,
		UpdatedAt: time.Now().UTC(),
	}

	ok, err := s.incidents.UpdateLatestLocation(ctx, incidentID, userID, loc)
	if err != nil {
		return fmt.Errorf("failed to update location: %w", err)
	}
	if !ok {
		return ErrNotFound
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastLocation(incidentID, loc)
	}
	return nil
}

// TrackLocation serves the public tracking read. An incident with no
// snapshot yet is a normal pollable state reported as ErrNoLocation.
func (s *IncidentService) TrackLocation(ctx context.Context, incidentID string) (*models.LiveLocation, error) {
	incident, err := s.incidents.GetByID(ctx, incidentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get incident: %w", err)
	}
	if incident == nil || incident.LatestLocation == nil {
		return nil, ErrNoLocation
	}
	return incident.LatestLocation, nil
}

// ListMine returns the reporter's incidents, newest first
func (s *IncidentService) ListMine(ctx context.Context, userID string) ([]models.Incident, error) {
	incidents, err := s.incidents.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list incidents: %w", err)
	}
	return incidents, nil
}

// Delete removes an incident owned by the caller
func (s *IncidentService) Delete(ctx context.Context, incidentID, userID string) error {
	ok, err := s.incidents.DeleteByIDAndUser(ctx, incidentID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete incident: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// withEmail drops contacts without a usable email address
func withEmail(contacts []models.EmergencyContact) []models.EmergencyContact {
	out := make([]models.EmergencyContact, 0, len(contacts))
	for _, c := range contacts {
		if c.Email != "" {
			out = append(out, c)
		}
	}
	return out
}
