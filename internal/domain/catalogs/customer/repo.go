package customer

import (
	"context"

	"refurbhq/internal/core/id"
)

// Repository defines persistence operations for customers.
type Repository interface {
	Create(ctx context.Context, c *Customer) error
	Update(ctx context.Context, c *Customer) error
	GetByID(ctx context.Context, customerID id.ID) (*Customer, error)

	// FindByEmail retrieves a customer by email (unique when present).
	FindByEmail(ctx context.Context, email string) (*Customer, error)

	// FindByPhone retrieves a customer by phone number (unique when present).
	FindByPhone(ctx context.Context, phone string) (*Customer, error)

	List(ctx context.Context, limit, offset int) ([]Customer, error)
}
