package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"vigilant-backend/internal/middleware"
	"vigilant-backend/internal/models"
	"vigilant-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubUserStore holds just enough state for routing-level tests
type stubUserStore struct {
	users map[string]*models.User
}

func newStubUserStore() *stubUserStore {
	return &stubUserStore{users: make(map[string]*models.User)}
}

func (s *stubUserStore) Create(_ context.Context, u *models.User) error {
	s.users[u.ID] = u
	return nil
}

func (s *stubUserStore) GetByID(_ context.Context, id string) (*models.User, error) {
	return s.users[id], nil
}

func (s *stubUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (s *stubUserStore) EmailExists(ctx context.Context, email string) (bool, error) {
	u, err := s.GetByEmail(ctx, email)
	return u != nil, err
}

func (s *stubUserStore) UpdateProfile(_ context.Context, id, name, email string) (*models.User, error) {
	u := s.users[id]
	if u == nil {
		return nil, nil
	}
	u.Name = name
	u.Email = email
	return u, nil
}

func (s *stubUserStore) UpdateAvatarURL(_ context.Context, id, url string) error {
	if u := s.users[id]; u != nil {
		u.AvatarURL = &url
	}
	return nil
}

func (s *stubUserStore) ReplaceEmergencyContacts(_ context.Context, userID string, contacts []models.EmergencyContact) error {
	if u := s.users[userID]; u != nil {
		u.EmergencyContacts = contacts
	}
	return nil
}

func (s *stubUserStore) GetEmergencyContacts(_ context.Context, userID string) ([]models.EmergencyContact, error) {
	if u := s.users[userID]; u != nil {
		return u.EmergencyContacts, nil
	}
	return nil, nil
}

func (s *stubUserStore) AppendNotification(_ context.Context, _ string, _ *models.Notification) error {
	return nil
}

func (s *stubUserStore) ListNotifications(_ context.Context, _ string) ([]models.Notification, error) {
	return nil, nil
}

func (s *stubUserStore) FindNearest(_ context.Context, _, _ float64, excludeID string, _ float64, limit int) ([]models.NearbyUser, error) {
	var out []models.NearbyUser
	for _, u := range s.users {
		if u.ID == excludeID {
			continue
		}
		out = append(out, models.NearbyUser{ID: u.ID, Name: u.Name, Email: u.Email, Location: u.Location})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// stubIncidentStore is an in-memory IncidentStore
type stubIncidentStore struct {
	incidents map[string]*models.Incident
}

func newStubIncidentStore() *stubIncidentStore {
	return &stubIncidentStore{incidents: make(map[string]*models.Incident)}
}

func (s *stubIncidentStore) Create(_ context.Context, inc *models.Incident) error {
	s.incidents[inc.ID] = inc
	return nil
}

func (s *stubIncidentStore) GetByID(_ context.Context, id string) (*models.Incident, error) {
	return s.incidents[id], nil
}

func (s *stubIncidentStore) ListByUser(_ context.Context, userID string) ([]models.Incident, error) {
	var out []models.Incident
	for _, inc := range s.incidents {
		if inc.UserID == userID {
			out = append(out, *inc)
		}
	}
	return out, nil
}

func (s *stubIncidentStore) UpdateLatestLocation(_ context.Context, id, userID string, loc models.LiveLocation) (bool, error) {
	inc := s.incidents[id]
	if inc == nil || inc.UserID != userID {
		return false, nil
	}
	snapshot := loc
	inc.LatestLocation = &snapshot
	return true, nil
}

func (s *stubIncidentStore) DeleteByIDAndUser(_ context.Context, id, userID string) (bool, error) {
	inc := s.incidents[id]
	if inc == nil || inc.UserID != userID {
		return false, nil
	}
	delete(s.incidents, id)
	return true, nil
}

type noopMailer struct{}

func (noopMailer) Send(_ context.Context, _ services.Email) error { return nil }

type testEnv struct {
	router          chi.Router
	userService     *services.UserService
	incidentService *services.IncidentService
	hub             *services.TrackHub
	users           *stubUserStore
	incidents       *stubIncidentStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := newStubUserStore()
	incidents := newStubIncidentStore()
	hub := services.NewTrackHub()

	userService := services.NewUserService(users, "test-secret")
	incidentService := services.NewIncidentService(incidents, users, noopMailer{}, hub, "")

	userHandler := NewUserHandler(userService, services.NewHelperService(users, noopMailer{}), nil)
	incidentHandler := NewIncidentHandler(incidentService)
	wsHandler := NewWebSocketHandler(hub, incidentService)

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/users/register", userHandler.Register)
		r.Get("/incidents/track/{incident_id}", incidentHandler.TrackLocation)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(userService))
			r.Post("/incidents/sos", incidentHandler.SOS)
			r.Post("/incidents/{incident_id}/location", incidentHandler.UpdateLocation)
			r.Delete("/incidents/{incident_id}", incidentHandler.Delete)
		})
	})
	r.Get("/ws/track", wsHandler.HandleTrack)

	return &testEnv{
		router:          r,
		userService:     userService,
		incidentService: incidentService,
		hub:             hub,
		users:           users,
		incidents:       incidents,
	}
}

func (e *testEnv) seedUser(t *testing.T, id string) string {
	t.Helper()
	err := e.users.Create(context.Background(), &models.User{
		ID:    id,
		Name:  id,
		Email: id + "@example.com",
		EmergencyContacts: []models.EmergencyContact{
			{Email: "contact@example.com"},
		},
	})
	require.NoError(t, err)

	token, err := e.userService.GenerateJWT(id, id+"@example.com")
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestSOSRequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/v1/incidents/sos", "", map[string]string{})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodPost, "/api/v1/incidents/sos", "garbage-token", map[string]string{})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSOSAndTrackFlow(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedUser(t, "alice")

	rec := env.do(http.MethodPost, "/api/v1/incidents/sos", token, map[string]interface{}{
		"location":    "Main St",
		"description": "help",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var sosResp struct {
		Message    string `json:"message"`
		IncidentID string `json:"incident_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sosResp))
	assert.Equal(t, "SOS received and selected contacts notified!", sosResp.Message)
	require.NotEmpty(t, sosResp.IncidentID)

	// no snapshot yet
	rec = env.do(http.MethodGet, "/api/v1/incidents/track/"+sosResp.IncidentID, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "No location found.")

	rec = env.do(http.MethodPost, "/api/v1/incidents/"+sosResp.IncidentID+"/location", token, map[string]float64{
		"latitude":  52.52,
		"longitude": 13.405,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// public read, no auth header
	rec = env.do(http.MethodGet, "/api/v1/incidents/track/"+sosResp.IncidentID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var trackResp struct {
		LatestLocation models.LiveLocation `json:"latest_location"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &trackResp))
	assert.Equal(t, 52.52, trackResp.LatestLocation.Latitude)
	assert.Equal(t, 13.405, trackResp.LatestLocation.Longitude)
}

func TestLocationUpdateRejectsNonOwner(t *testing.T) {
	env := newTestEnv(t)
	aliceToken := env.seedUser(t, "alice")
	bobToken := env.seedUser(t, "bob")

	rec := env.do(http.MethodPost, "/api/v1/incidents/sos", aliceToken, map[string]string{})
	require.Equal(t, http.StatusOK, rec.Code)
	var sosResp struct {
		IncidentID string `json:"incident_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sosResp))

	rec = env.do(http.MethodPost, "/api/v1/incidents/"+sosResp.IncidentID+"/location", bobToken, map[string]float64{
		"latitude": 1, "longitude": 2,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodDelete, "/api/v1/incidents/"+sosResp.IncidentID, bobToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSOSWithoutRecipients(t *testing.T) {
	env := newTestEnv(t)

	err := env.users.Create(context.Background(), &models.User{
		ID:    "loner",
		Name:  "loner",
		Email: "loner@example.com",
	})
	require.NoError(t, err)
	token, err := env.userService.GenerateJWT("loner", "loner@example.com")
	require.NoError(t, err)

	rec := env.do(http.MethodPost, "/api/v1/incidents/sos", token, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, env.incidents.incidents)
}

func TestWebSocketTrackReceivesUpdates(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedUser(t, "alice")

	rec := env.do(http.MethodPost, "/api/v1/incidents/sos", token, map[string]string{})
	require.Equal(t, http.StatusOK, rec.Code)
	var sosResp struct {
		IncidentID string `json:"incident_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sosResp))

	srv := httptest.NewServer(env.router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/track?incident_id=" + sosResp.IncidentID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// the server registers the watcher just after the handshake completes
	require.Eventually(t, func() bool {
		return env.hub.WatcherCount(sosResp.IncidentID) == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, env.incidentService.UpdateLiveLocation(context.Background(), sosResp.IncidentID, "alice", 52.52, 13.405))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg services.TrackMessage
	require.NoError(t, conn.ReadJSON(&msg))

	assert.Equal(t, "location_update", msg.Type)
	assert.Equal(t, sosResp.IncidentID, msg.IncidentID)
	require.NotNil(t, msg.LatestLocation)
	assert.Equal(t, 52.52, msg.LatestLocation.Latitude)
}
