package models

import "time"

// Incident type discriminator. latest_location is only meaningful for "sos".
const (
	IncidentTypeIncident = "incident"
	IncidentTypeSOS      = "sos"
)

// Resource types
const (
	ResourceTypeArticle = "article"
	ResourceTypeVideo   = "video"
	ResourceTypeContact = "contact"
)

// GeoPoint is a user's indexed home location. Longitude comes first on the
// wire ([longitude, latitude]) to match the geospatial index contract.
type GeoPoint struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// LatLng is a plain coordinate pair used in notifications and map links.
type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// EmergencyContact is a single saved contact. Phone is optional.
type EmergencyContact struct {
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// User represents a registered user
type User struct {
	ID                string             `json:"id"`
	Name              string             `json:"name"`
	Email             string             `json:"email"`
	PasswordHash      string             `json:"-"`
	AvatarURL         *string            `json:"avatar_url,omitempty"`
	Location          GeoPoint           `json:"location"`
	EmergencyContacts []EmergencyContact `json:"emergency_contacts"`
	CreatedAt         time.Time          `json:"created_at"`
}

// NearbyUser is the public-safe projection returned by the nearest-helper
// lookup. Credential material is never included.
type NearbyUser struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Location       GeoPoint `json:"location"`
	AvatarURL      *string  `json:"avatar_url,omitempty"`
	DistanceMeters float64  `json:"distance_meters"`
}

// Notification is one entry in a user's append-only inbox
type Notification struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Message       string    `json:"message"`
	FromUserID    string    `json:"from_user_id"`
	FromUserName  string    `json:"from_user_name"`
	FromUserEmail string    `json:"from_user_email"`
	Location      *LatLng   `json:"location,omitempty"`
	Read          bool      `json:"read"`
	CreatedAt     time.Time `json:"created_at"`
}

// LiveLocation is the single mutable snapshot tracked for an active SOS.
// Each update overwrites the previous value; there is no history.
type LiveLocation struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Incident represents a reported incident or SOS alert
type Incident struct {
	ID             string        `json:"id"`
	UserID         string        `json:"user_id"`
	Location       string        `json:"location"`
	Description    string        `json:"description"`
	Latitude       *float64      `json:"latitude,omitempty"`
	Longitude      *float64      `json:"longitude,omitempty"`
	Type           string        `json:"type"`
	LatestLocation *LiveLocation `json:"latest_location,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
}

// Resource is a safety-tips content item
type Resource struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Type        string    `json:"type"`
	Content     string    `json:"content"`
	Description *string   `json:"description,omitempty"`
	DateAdded   time.Time `json:"date_added"`
}
