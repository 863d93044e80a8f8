package product

import (
	"context"

	"refurbhq/internal/core/apperror"
	"refurbhq/internal/core/id"
	"refurbhq/pkg/logger"
)

// Service provides catalog operations for products and categories.
type Service struct {
	repo Repository
}

// NewService creates a new product catalog service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and persists a new product after checking the
// referenced category exists.
func (s *Service) Create(ctx context.Context, p *Product) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}

	if _, err := s.repo.GetCategory(ctx, p.CategoryID); err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewValidation("category does not exist").
				WithDetail("categoryId", p.CategoryID)
		}
		return err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return err
	}

	logger.Info(ctx, "product created", "id", p.ID, "name", p.Name, "type", p.Type)
	return nil
}

// Update validates and persists product changes.
func (s *Service) Update(ctx context.Context, p *Product) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}
	p.Touch()
	return s.repo.Update(ctx, p)
}

// GetByID retrieves a product.
func (s *Service) GetByID(ctx context.Context, productID id.ID) (*Product, error) {
	return s.repo.GetByID(ctx, productID)
}

// List returns products matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Product, error) {
	return s.repo.List(ctx, filter)
}

// CreateCategory persists a new category.
func (s *Service) CreateCategory(ctx context.Context, c *Category) error {
	if c.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	return s.repo.CreateCategory(ctx, c)
}

// ListCategories returns all categories.
func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	return s.repo.ListCategories(ctx)
}
