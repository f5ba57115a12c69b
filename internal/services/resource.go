package services

import (
	"context"
	"fmt"
	"time"

	"vigilant-backend/internal/models"

	"github.com/google/uuid"
)

// ResourceService handles safety-resource CRUD
type ResourceService struct {
	resources ResourceStore
}

// NewResourceService creates a new resource service
func NewResourceService(resources ResourceStore) *ResourceService {
	return &ResourceService{resources: resources}
}

// ResourceRequest is the create/update payload
type ResourceRequest struct {
	Title       string  `json:"title" validate:"required"`
	Type        string  `json:"type" validate:"required,oneof=article video contact"`
	Content     string  `json:"content" validate:"required"`
	Description *string `json:"description"`
}

// Create adds a new resource
func (s *ResourceService) Create(ctx context.Context, req ResourceRequest) (*models.Resource, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	res := &models.Resource{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Type:        req.Type,
		Content:     req.Content,
		Description: req.Description,
		DateAdded:   time.Now().UTC(),
	}
	if err := s.resources.Create(ctx, res); err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}

// Get returns one resource
func (s *ResourceService) Get(ctx context.Context, id string) (*models.Resource, error) {
	res, err := s.resources.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get resource: %w", err)
	}
	if res == nil {
		return nil, ErrNotFound
	}
	return res, nil
}

// List returns resources newest first. A non-empty resourceType restricts
// the listing to that type; an unknown type simply matches nothing.
func (s *ResourceService) List(ctx context.Context, resourceType string) ([]models.Resource, error) {
	resources, err := s.resources.List(ctx, resourceType)
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	return resources, nil
}

// Update replaces a resource's fields
func (s *ResourceService) Update(ctx context.Context, id string, req ResourceRequest) (*models.Resource, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	current, err := s.resources.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get resource: %w", err)
	}
	if current == nil {
		return nil, ErrNotFound
	}

	res := &models.Resource{
		ID:          id,
		Title:       req.Title,
		Type:        req.Type,
		Content:     req.Content,
		Description: req.Description,
		DateAdded:   current.DateAdded,
	}
	ok, err := s.resources.Update(ctx, res)
	if err != nil {
		return nil, fmt.Errorf("failed to update resource: %w", err)
	}
	if !ok {
		return nil, ErrNotFound
	}
	return res, nil
}

// Delete removes a resource
func (s *ResourceService) Delete(ctx context.Context, id string) error {
	ok, err := s.resources.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete resource: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}
