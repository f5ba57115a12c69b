package repository

import (
	"context"
	"errors"
	"fmt"

	"vigilant-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository handles database operations for users, their emergency
// contacts and their notification inbox
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user together with their emergency contacts
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO users (id, name, email, password_hash, longitude, latitude, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = tx.Exec(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash,
		user.Location.Longitude, user.Location.Latitude, user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	for i, c := range user.EmergencyContacts {
		_, err = tx.Exec(ctx,
			`INSERT INTO emergency_contacts (user_id, position, email, phone) VALUES ($1, $2, $3, $4)`,
			user.ID, i, c.Email, nullable(c.Phone),
		)
		if err != nil {
			return fmt.Errorf("failed to create emergency contact: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit user creation: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID. Returns (nil, nil) when no user exists.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, name, email, password_hash, avatar_url, longitude, latitude, created_at
		FROM users
		WHERE id = $1
	`
	user, err := r.scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil || user == nil {
		return user, err
	}

	user.EmergencyContacts, err = r.GetEmergencyContacts(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetByEmail retrieves a user by email. Returns (nil, nil) when no user exists.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, name, email, password_hash, avatar_url, longitude, latitude, created_at
		FROM users
		WHERE email = $1
	`
	user, err := r.scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil || user == nil {
		return user, err
	}

	user.EmergencyContacts, err = r.GetEmergencyContacts(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.AvatarURL,
		&user.Location.Longitude, &user.Location.Latitude, &user.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// EmailExists checks if a user with the given email already exists
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}
	return exists, nil
}

// UpdateProfile updates a user's name and email. Returns (nil, nil) when no
// user exists.
func (r *UserRepository) UpdateProfile(ctx context.Context, id, name, email string) (*models.User, error) {
	query := `
		UPDATE users
		SET name = $1, email = $2
		WHERE id = $3
		RETURNING id, name, email, password_hash, avatar_url, longitude, latitude, created_at
	`
	user, err := r.scanUser(r.db.QueryRow(ctx, query, name, email, id))
	if err != nil || user == nil {
		return user, err
	}

	user.EmergencyContacts, err = r.GetEmergencyContacts(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateAvatarURL stores the avatar reference for a user
func (r *UserRepository) UpdateAvatarURL(ctx context.Context, id, url string) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET avatar_url = $1 WHERE id = $2`, url, id)
	if err != nil {
		return fmt.Errorf("failed to update avatar: %w", err)
	}
	return nil
}

// ReplaceEmergencyContacts replaces the whole contact list for a user.
// Whole-list overwrite, not a merge.
func (r *UserRepository) ReplaceEmergencyContacts(ctx context.Context, userID string, contacts []models.EmergencyContact) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM emergency_contacts WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear emergency contacts: %w", err)
	}

	for i, c := range contacts {
		_, err = tx.Exec(ctx,
			`INSERT INTO emergency_contacts (user_id, position, email, phone) VALUES ($1, $2, $3, $4)`,
			userID, i, c.Email, nullable(c.Phone),
		)
		if err != nil {
			return fmt.Errorf("failed to insert emergency contact: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit contact replacement: %w", err)
	}
	return nil
}

// GetEmergencyContacts returns a user's saved contacts in list order
func (r *UserRepository) GetEmergencyContacts(ctx context.Context, userID string) ([]models.EmergencyContact, error) {
	rows, err := r.db.Query(ctx,
		`SELECT email, phone FROM emergency_contacts WHERE user_id = $1 ORDER BY position`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get emergency contacts: %w", err)
	}
	defer rows.Close()

	contacts := []models.EmergencyContact{}
	for rows.Next() {
		var c models.EmergencyContact
		var phone *string
		if err := rows.Scan(&c.Email, &phone); err != nil {
			return nil, fmt.Errorf("failed to scan emergency contact: %w", err)
		}
		if phone != nil {
			c.Phone = *phone
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read emergency contacts: %w", err)
	}
	return contacts, nil
}

// AppendNotification appends one entry to a user's inbox
func (r *UserRepository) AppendNotification(ctx context.Context, userID string, n *models.Notification) error {
	var lat, lng *float64
	if n.Location != nil {
		lat, lng = &n.Location.Latitude, &n.Location.Longitude
	}
	query := `
		INSERT INTO notifications
			(id, user_id, title, message, from_user_id, from_user_name, from_user_email, latitude, longitude, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.Exec(ctx, query,
		n.ID, userID, n.Title, n.Message, n.FromUserID, n.FromUserName, n.FromUserEmail,
		lat, lng, n.Read, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append notification: %w", err)
	}
	return nil
}

// ListNotifications returns a user's inbox, newest first
func (r *UserRepository) ListNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	query := `
		SELECT id, title, message, from_user_id, from_user_name, from_user_email, latitude, longitude, read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	notifications := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		var lat, lng *float64
		if err := rows.Scan(
			&n.ID, &n.Title, &n.Message, &n.FromUserID, &n.FromUserName, &n.FromUserEmail,
			&lat, &lng, &n.Read, &n.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		if lat != nil && lng != nil {
			n.Location = &models.LatLng{Latitude: *lat, Longitude: *lng}
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read notifications: %w", err)
	}
	return notifications, nil
}

// FindNearest runs the proximity query over the user location index,
// excluding the requester, bounded by maxDistanceMeters and ordered by
// ascending distance from the query point. The earth_box clause narrows the
// scan through the GiST index; earth_distance then filters the box overshoot.
func (r *UserRepository) FindNearest(ctx context.Context, latitude, longitude float64, excludeID string, maxDistanceMeters float64, limit int) ([]models.NearbyUser, error) {
	query := `
		SELECT id, name, email, longitude, latitude, avatar_url,
			earth_distance(ll_to_earth(latitude, longitude), ll_to_earth($1, $2)) AS distance_m
		FROM users
		WHERE id <> $3
			AND earth_box(ll_to_earth($1, $2), $4) @> ll_to_earth(latitude, longitude)
			AND earth_distance(ll_to_earth(latitude, longitude), ll_to_earth($1, $2)) <= $4
		ORDER BY distance_m
		LIMIT $5
	`
	rows, err := r.db.Query(ctx, query, latitude, longitude, excludeID, maxDistanceMeters, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query nearest users: %w", err)
	}
	defer rows.Close()

	var nearby []models.NearbyUser
	for rows.Next() {
		var u models.NearbyUser
		if err := rows.Scan(
			&u.ID, &u.Name, &u.Email, &u.Location.Longitude, &u.Location.Latitude,
			&u.AvatarURL, &u.DistanceMeters,
		); err != nil {
			return nil, fmt.Errorf("failed to scan nearby user: %w", err)
		}
		nearby = append(nearby, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read nearby users: %w", err)
	}
	return nearby, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
