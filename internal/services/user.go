package services

import (
	"context"
	"fmt"
	"time"

	"vigilant-backend/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const jwtExpHours = 24

var validate = validator.New()

// UserService handles registration, login and profile business logic
type UserService struct {
	users     UserStore
	jwtSecret string
}

// NewUserService creates a new user service
func NewUserService(users UserStore, jwtSecret string) *UserService {
	return &UserService{
		users:     users,
		jwtSecret: jwtSecret,
	}
}

// LocationInput carries the registration coordinate pair in geospatial-index
// order: [longitude, latitude]. Exactly two numeric elements are required.
type LocationInput struct {
	Coordinates []float64 `json:"coordinates" validate:"required,len=2"`
}

// RegisterRequest is the registration payload
type RegisterRequest struct {
	Name              string                    `json:"name" validate:"required"`
	Email             string                    `json:"email" validate:"required,email"`
	Password          string                    `json:"password" validate:"required,min=6"`
	Location          LocationInput             `json:"location"`
	EmergencyContacts []models.EmergencyContact `json:"emergency_contacts"`
}

// Register creates a new user. Invalid input is rejected before any record
// is written.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	exists, err := s.users.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Location: models.GeoPoint{
			Longitude: req.Location.Coordinates[0],
			Latitude:  req.Location.Coordinates[1],
		},
		EmergencyContacts: req.EmergencyContacts,
		CreatedAt:         time.Now().UTC(),
	}
	if user.EmergencyContacts == nil {
		user.EmergencyContacts = []models.EmergencyContact{}
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Login verifies credentials and returns a signed token plus the user
func (s *UserService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.GenerateJWT(user.ID, user.Email)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// GenerateJWT generates a signed token for a user
func (s *UserService) GenerateJWT(userID, email string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"exp":     time.Now().Add(jwtExpHours * time.Hour).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// ValidateJWT validates a token and returns the user ID
func (s *UserService) ValidateJWT(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}
	userID, ok := claims["user_id"].(string)
	if !ok {
		return "", fmt.Errorf("user_id not found in token")
	}
	return userID, nil
}

// GetProfile returns a user's profile
func (s *UserService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// ProfileUpdateRequest is the profile update payload
type ProfileUpdateRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

// UpdateProfile updates a user's name and email
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req ProfileUpdateRequest) (*models.User, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	current, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if current == nil {
		return nil, ErrNotFound
	}

	if req.Email != current.Email {
		exists, err := s.users.EmailExists(ctx, req.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		if exists {
			return nil, ErrEmailTaken
		}
	}

	user, err := s.users.UpdateProfile(ctx, userID, req.Name, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// ContactInput is one submitted emergency contact. Email is validated when
// present; the backend does not reject duplicates.
type ContactInput struct {
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone"`
}

// ReplaceEmergencyContacts overwrites the whole saved contact list
func (s *UserService) ReplaceEmergencyContacts(ctx context.Context, userID string, contacts []ContactInput) ([]models.EmergencyContact, error) {
	for _, c := range contacts {
		if err := validate.Struct(c); err != nil {
			return nil, err
		}
	}

	replacement := make([]models.EmergencyContact, 0, len(contacts))
	for _, c := range contacts {
		replacement = append(replacement, models.EmergencyContact{Email: c.Email, Phone: c.Phone})
	}

	if err := s.users.ReplaceEmergencyContacts(ctx, userID, replacement); err != nil {
		return nil, fmt.Errorf("failed to replace emergency contacts: %w", err)
	}
	return replacement, nil
}

// GetEmergencyContacts returns the saved contact list
func (s *UserService) GetEmergencyContacts(ctx context.Context, userID string) ([]models.EmergencyContact, error) {
	contacts, err := s.users.GetEmergencyContacts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get emergency contacts: %w", err)
	}
	return contacts, nil
}

// ListNotifications returns a user's inbox, newest first
func (s *UserService) ListNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	notifications, err := s.users.ListNotifications(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}
