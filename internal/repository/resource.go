package repository

import (
	"context"
	"errors"
	"fmt"

	"vigilant-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ResourceRepository handles database operations for safety resources
type ResourceRepository struct {
	db *pgxpool.Pool
}

// NewResourceRepository creates a new resource repository
func NewResourceRepository(db *pgxpool.Pool) *ResourceRepository {
	return &ResourceRepository{db: db}
}

// Create creates a new resource
func (r *ResourceRepository) Create(ctx context.Context, res *models.Resource) error {
	query := `
		INSERT INTO resources (id, title, type, content, description, date_added)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query, res.ID, res.Title, res.Type, res.Content, res.Description, res.DateAdded)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}
	return nil
}

// GetByID retrieves a resource by ID. Returns (nil, nil) when none exists.
func (r *ResourceRepository) GetByID(ctx context.Context, id string) (*models.Resource, error) {
	query := `
		SELECT id, title, type, content, description, date_added
		FROM resources
		WHERE id = $1
	`
	var res models.Resource
	err := r.db.QueryRow(ctx, query, id).Scan(
		&res.ID, &res.Title, &res.Type, &res.Content, &res.Description, &res.DateAdded,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get resource: %w", err)
	}
	return &res, nil
}

// List returns resources newest first, optionally restricted to one type
func (r *ResourceRepository) List(ctx context.Context, resourceType string) ([]models.Resource, error) {
	query := `
		SELECT id, title, type, content, description, date_added
		FROM resources
		WHERE $1 = '' OR type = $1
		ORDER BY date_added DESC
	`
	rows, err := r.db.Query(ctx, query, resourceType)
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	defer rows.Close()

	resources := []models.Resource{}
	for rows.Next() {
		var res models.Resource
		if err := rows.Scan(&res.ID, &res.Title, &res.Type, &res.Content, &res.Description, &res.DateAdded); err != nil {
			return nil, fmt.Errorf("failed to scan resource: %w", err)
		}
		resources = append(resources, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read resources: %w", err)
	}
	return resources, nil
}

// Update updates a resource. Reports false when no matching resource exists.
func (r *ResourceRepository) Update(ctx context.Context, res *models.Resource) (bool, error) {
	query := `
		UPDATE resources
		SET title = $1, type = $2, content = $3, description = $4
		WHERE id = $5
	`
	tag, err := r.db.Exec(ctx, query, res.Title, res.Type, res.Content, res.Description, res.ID)
	if err != nil {
		return false, fmt.Errorf("failed to update resource: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Delete removes a resource. Reports false when no matching resource exists.
func (r *ResourceRepository) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM resources WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete resource: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
