package product

import (
	"context"

	"refurbhq/internal/core/id"
)

// Repository defines persistence operations for products and categories.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, productID id.ID) (*Product, error)
	List(ctx context.Context, filter ListFilter) ([]Product, error)

	CreateCategory(ctx context.Context, c *Category) error
	GetCategory(ctx context.Context, categoryID id.ID) (*Category, error)
	ListCategories(ctx context.Context) ([]Category, error)
}

// ListFilter narrows product listings.
type ListFilter struct {
	Type       *Type
	CategoryID *id.ID
	Limit      int
	Offset     int
}
