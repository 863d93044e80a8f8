package component

import (
	"context"

	"refurbhq/internal/core/id"
	"refurbhq/pkg/logger"
)

// Service provides catalog operations for components.
// Stock mutations are owned by the refurbish and purchase services;
// this service only manages catalog data.
type Service struct {
	repo Repository
}

// NewService creates a new component catalog service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and persists a new component.
func (s *Service) Create(ctx context.Context, c *Component) error {
	if err := c.Validate(ctx); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return err
	}

	logger.Info(ctx, "component created", "id", c.ID, "name", c.Name)
	return nil
}

// Update validates and persists catalog changes.
// StockQuantity is deliberately not writable here.
func (s *Service) Update(ctx context.Context, c *Component) error {
	if err := c.Validate(ctx); err != nil {
		return err
	}
	c.Touch()
	return s.repo.Update(ctx, c)
}

// GetByID retrieves a component.
func (s *Service) GetByID(ctx context.Context, componentID id.ID) (*Component, error) {
	return s.repo.GetByID(ctx, componentID)
}

// List returns a page of components.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Component, error) {
	return s.repo.List(ctx, limit, offset)
}
