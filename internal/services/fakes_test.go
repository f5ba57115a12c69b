package services

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"

	"vigilant-backend/internal/models"
)

// fakeUserStore is an in-memory UserStore
type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*models.User
	inbox map[string][]models.Notification

	appendErr error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		users: make(map[string]*models.User),
		inbox: make(map[string][]models.Notification),
	}
}

func (f *fakeUserStore) Create(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[id], nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) EmailExists(ctx context.Context, email string) (bool, error) {
	u, err := f.GetByEmail(ctx, email)
	return u != nil, err
}

func (f *fakeUserStore) UpdateProfile(_ context.Context, id, name, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.users[id]
	if u == nil {
		return nil, nil
	}
	u.Name = name
	u.Email = email
	return u, nil
}

func (f *fakeUserStore) UpdateAvatarURL(_ context.Context, id, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.users[id]
	if u == nil {
		return errors.New("no such user")
	}
	u.AvatarURL = &url
	return nil
}

func (f *fakeUserStore) ReplaceEmergencyContacts(_ context.Context, userID string, contacts []models.EmergencyContact) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.users[userID]
	if u == nil {
		return errors.New("no such user")
	}
	u.EmergencyContacts = contacts
	return nil
}

func (f *fakeUserStore) GetEmergencyContacts(_ context.Context, userID string) ([]models.EmergencyContact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.users[userID]
	if u == nil {
		return nil, nil
	}
	return u.EmergencyContacts, nil
}

func (f *fakeUserStore) AppendNotification(_ context.Context, userID string, n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	f.inbox[userID] = append(f.inbox[userID], *n)
	return nil
}

func (f *fakeUserStore) ListNotifications(_ context.Context, userID string) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inbox[userID], nil
}

func (f *fakeUserStore) FindNearest(_ context.Context, latitude, longitude float64, excludeID string, maxDistanceMeters float64, limit int) ([]models.NearbyUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.NearbyUser
	for _, u := range f.users {
		if u.ID == excludeID {
			continue
		}
		d := haversineMeters(latitude, longitude, u.Location.Latitude, u.Location.Longitude)
		if d > maxDistanceMeters {
			continue
		}
		out = append(out, models.NearbyUser{
			ID:             u.ID,
			Name:           u.Name,
			Email:          u.Email,
			Location:       u.Location,
			AvatarURL:      u.AvatarURL,
			DistanceMeters: d,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DistanceMeters < out[j].DistanceMeters })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func haversineMeters(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadius = 6371000.0
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadius * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// fakeIncidentStore is an in-memory IncidentStore
type fakeIncidentStore struct {
	mu        sync.Mutex
	incidents map[string]*models.Incident

	createErr error
}

func newFakeIncidentStore() *fakeIncidentStore {
	return &fakeIncidentStore{incidents: make(map[string]*models.Incident)}
}

func (f *fakeIncidentStore) Create(_ context.Context, incident *models.Incident) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.incidents[incident.ID] = incident
	return nil
}

func (f *fakeIncidentStore) GetByID(_ context.Context, id string) (*models.Incident, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.incidents[id], nil
}

func (f *fakeIncidentStore) ListByUser(_ context.Context, userID string) ([]models.Incident, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Incident
	for _, inc := range f.incidents {
		if inc.UserID == userID {
			out = append(out, *inc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeIncidentStore) UpdateLatestLocation(_ context.Context, id, userID string, loc models.LiveLocation) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inc := f.incidents[id]
	if inc == nil || inc.UserID != userID {
		return false, nil
	}
	snapshot := loc
	inc.LatestLocation = &snapshot
	return true, nil
}

func (f *fakeIncidentStore) DeleteByIDAndUser(_ context.Context, id, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inc := f.incidents[id]
	if inc == nil || inc.UserID != userID {
		return false, nil
	}
	delete(f.incidents, id)
	return true, nil
}

// fakeMailer records sends and can fail for selected recipients
type fakeMailer struct {
	mu     sync.Mutex
	sent   []Email
	failTo map[string]error
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{failTo: make(map[string]error)}
}

func (f *fakeMailer) Send(_ context.Context, msg Email) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failTo[msg.To]; ok {
		return err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeMailer) sentTo() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.sent))
	for _, m := range f.sent {
		out = append(out, m.To)
	}
	return out
}

// recordBroadcaster records broadcast calls
type recordBroadcaster struct {
	mu    sync.Mutex
	calls []TrackMessage
}

func (r *recordBroadcaster) BroadcastLocation(incidentID string, loc models.LiveLocation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	snapshot := loc
	r.calls = append(r.calls, TrackMessage{
		Type:           "location_update",
		IncidentID:     incidentID,
		LatestLocation: &snapshot,
	})
}
