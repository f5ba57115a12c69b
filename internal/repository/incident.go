package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vigilant-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// IncidentRepository handles database operations for incidents and SOS alerts
type IncidentRepository struct {
	db *pgxpool.Pool
}

// NewIncidentRepository creates a new incident repository
func NewIncidentRepository(db *pgxpool.Pool) *IncidentRepository {
	return &IncidentRepository{db: db}
}

// Create creates a new incident record
func (r *IncidentRepository) Create(ctx context.Context, incident *models.Incident) error {
	var latestLat, latestLng *float64
	var latestAt *time.Time
	if incident.LatestLocation != nil {
		latestLat = &incident.LatestLocation.Latitude
		latestLng = &incident.LatestLocation.Longitude
		latestAt = &incident.LatestLocation.UpdatedAt
	}

	query := `
		INSERT INTO incidents
			(id, user_id, location, description, latitude, longitude, type,
			 latest_latitude, latest_longitude, latest_updated_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.Exec(ctx, query,
		incident.ID, incident.UserID, incident.Location, incident.Description,
		incident.Latitude, incident.Longitude, incident.Type,
		latestLat, latestLng, latestAt, incident.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create incident: %w", err)
	}
	return nil
}

// GetByID retrieves an incident by ID. Returns (nil, nil) when none exists.
func (r *IncidentRepository) GetByID(ctx context.Context, id string) (*models.Incident, error) {
	query := `
		SELECT id, user_id, location, description, latitude, longitude, type,
			latest_latitude, latest_longitude, latest_updated_at, created_at
		FROM incidents
		WHERE id = $1
	`
	incident, err := scanIncident(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get incident: %w", err)
	}
	return incident, nil
}

// ListByUser returns a user's incidents, newest first
func (r *IncidentRepository) ListByUser(ctx context.Context, userID string) ([]models.Incident, error) {
	query := `
		SELECT id, user_id, location, description, latitude, longitude, type,
			latest_latitude, latest_longitude, latest_updated_at, created_at
		FROM incidents
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list incidents: %w", err)
	}
	defer rows.Close()

	incidents := []models.Incident{}
	for rows.Next() {
		incident, err := scanIncident(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan incident: %w", err)
		}
		incidents = append(incidents, *incident)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read incidents: %w", err)
	}
	return incidents, nil
}

// UpdateLatestLocation overwrites the live-location snapshot. The update is
// scoped to the owning user; it reports false when no matching incident
// exists, whether unknown or not owned by the caller.
func (r *IncidentRepository) UpdateLatestLocation(ctx context.Context, id, userID string, loc models.LiveLocation) (bool, error) {
	query := `
		UPDATE incidents
		SET latest_latitude = $1, latest_longitude = $2, latest_updated_at = $3
		WHERE id = $4 AND user_id = $5
	`
	tag, err := r.db.Exec(ctx, query, loc.Latitude, loc.Longitude, loc.UpdatedAt, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to update latest location: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteByIDAndUser deletes an incident owned by the given user. Reports
// false when no matching incident exists.
func (r *IncidentRepository) DeleteByIDAndUser(ctx context.Context, id, userID string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM incidents WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete incident: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanIncident(row pgx.Row) (*models.Incident, error) {
	var incident models.Incident
	var latestLat, latestLng *float64
	var latestAt *time.Time
	err := row.Scan(
		&incident.ID, &incident.UserID, &incident.Location, &incident.Description,
		&incident.Latitude, &incident.Longitude, &incident.Type,
		&latestLat, &latestLng, &latestAt, &incident.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if latestLat != nil && latestLng != nil && latestAt != nil {
		incident.LatestLocation = &models.LiveLocation{
			Latitude:  *latestLat,
			Longitude: *latestLng,
			UpdatedAt: *latestAt,
		}
	}
	return &incident, nil
}
