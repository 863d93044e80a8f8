package customer

import (
	"context"

	"refurbhq/internal/core/apperror"
	"refurbhq/internal/core/id"
	"refurbhq/pkg/logger"
)

// Service provides business logic for the customer catalog.
type Service struct {
	repo Repository
}

// NewService creates a new customer service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and persists a new customer, enforcing unique
// email and phone number across accounts.
func (s *Service) Create(ctx context.Context, c *Customer) error {
	if err := c.Validate(ctx); err != nil {
		return err
	}

	if err := s.checkUnique(ctx, c); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return err
	}

	logger.Info(ctx, "customer created", "id", c.ID, "shop_name", c.ShopName)
	return nil
}

// Update validates and persists customer changes.
func (s *Service) Update(ctx context.Context, c *Customer) error {
	if err := c.Validate(ctx); err != nil {
		return err
	}

	if err := s.checkUnique(ctx, c); err != nil {
		return err
	}

	c.Touch()
	return s.repo.Update(ctx, c)
}

// GetByID retrieves a customer.
func (s *Service) GetByID(ctx context.Context, customerID id.ID) (*Customer, error) {
	return s.repo.GetByID(ctx, customerID)
}

// List returns a page of customers.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Customer, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) checkUnique(ctx context.Context, c *Customer) error {
	if c.Email != nil && *c.Email != "" {
		existing, err := s.repo.FindByEmail(ctx, *c.Email)
		if err != nil && !apperror.IsNotFound(err) {
			return err
		}
		if existing != nil && existing.ID != c.ID {
			return apperror.NewDuplicate("customer", "email", *c.Email)
		}
	}

	if c.PhoneNumber != nil && *c.PhoneNumber != "" {
		existing, err := s.repo.FindByPhone(ctx, *c.PhoneNumber)
		if err != nil && !apperror.IsNotFound(err) {
			return err
		}
		if existing != nil && existing.ID != c.ID {
			return apperror.NewDuplicate("customer", "phone_number", *c.PhoneNumber)
		}
	}

	return nil
}
