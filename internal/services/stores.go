package services

import (
	"context"

	"vigilant-backend/internal/models"
)

// UserStore is the identity-store contract the services depend on.
// Lookups return (nil, nil) when no record exists.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateProfile(ctx context.Context, id, name, email string) (*models.User, error)
	UpdateAvatarURL(ctx context.Context, id, url string) error
	ReplaceEmergencyContacts(ctx context.Context, userID string, contacts []models.EmergencyContact) error
	GetEmergencyContacts(ctx context.Context, userID string) ([]models.EmergencyContact, error)
	AppendNotification(ctx context.Context, userID string, n *models.Notification) error
	ListNotifications(ctx context.Context, userID string) ([]models.Notification, error)
	FindNearest(ctx context.Context, latitude, longitude float64, excludeID string, maxDistanceMeters float64, limit int) ([]models.NearbyUser, error)
}

// IncidentStore is the incident-store contract. Owner-scoped mutations
// report false when no matching record exists, whether unknown or owned by
// someone else.
type IncidentStore interface {
	Create(ctx context.Context, incident *models.Incident) error
	GetByID(ctx context.Context, id string) (*models.Incident, error)
	ListByUser(ctx context.Context, userID string) ([]models.Incident, error)
	UpdateLatestLocation(ctx context.Context, id, userID string, loc models.LiveLocation) (bool, error)
	DeleteByIDAndUser(ctx context.Context, id, userID string) (bool, error)
}

// ResourceStore is the safety-resources store contract. An empty
// resourceType lists everything.
type ResourceStore interface {
	Create(ctx context.Context, res *models.Resource) error
	GetByID(ctx context.Context, id string) (*models.Resource, error)
	List(ctx context.Context, resourceType string) ([]models.Resource, error)
	Update(ctx context.Context, res *models.Resource) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}
