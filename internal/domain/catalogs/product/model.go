// Package product provides the Product catalog and its categories.
// Products carry no stock themselves; stock lives in per-product
// inventory rows and in daily production entries.
package product

import (
	"context"

	"refurbhq/internal/core/apperror"
	"refurbhq/internal/core/entity"
	"refurbhq/internal/core/id"
	"refurbhq/internal/core/types"
)

// Type distinguishes what kind of item a product row describes.
type Type string

const (
	TypeComponent   Type = "COMPONENT"
	TypeOldLaptop   Type = "OLD_LAPTOP"
	TypeRefurbished Type = "REFURBISHED"
)

// Category groups products for reporting and navigation.
type Category struct {
	entity.BaseEntity

	Name string `db:"name" json:"name"`
}

// NewCategory creates a category.
func NewCategory(name string) *Category {
	return &Category{
		BaseEntity: entity.NewBaseEntity(),
		Name:       name,
	}
}

// Product represents a sellable or consumable catalog item.
type Product struct {
	entity.BaseEntity

	Name       string `db:"name" json:"name"`
	CategoryID id.ID  `db:"category_id" json:"categoryId"`
	Type       Type   `db:"product_type" json:"productType"`

	Unit        string  `db:"unit" json:"unit"`
	Description *string `db:"description" json:"description,omitempty"`

	// HSNCode and GSTPercent drive tax computation on sale lines
	HSNCode    *string     `db:"hsn_code" json:"hsnCode,omitempty"`
	GSTPercent types.Money `db:"gst_percent" json:"gstPercent"`

	BrandName *string `db:"brand_name" json:"brandName,omitempty"`
	ModelName *string `db:"model_name" json:"modelName,omitempty"`

	PurchasePrice types.Money `db:"purchase_price" json:"purchasePrice"`
	SalePrice     types.Money `db:"sale_price" json:"salePrice"`
}

// NewProduct creates a product with defaults matching the catalog rules.
func NewProduct(name string, categoryID id.ID, productType Type) *Product {
	return &Product{
		BaseEntity: entity.NewBaseEntity(),
		Name:       name,
		CategoryID: categoryID,
		Type:       productType,
		Unit:       "Pieces",
	}
}

// Validate implements entity.Validatable.
func (p *Product) Validate(ctx context.Context) error {
	if p.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if id.IsNil(p.CategoryID) {
		return apperror.NewValidation("category is required").
			WithDetail("field", "categoryId")
	}
	switch p.Type {
	case TypeComponent, TypeOldLaptop, TypeRefurbished:
	default:
		return apperror.NewValidation("invalid product type").
			WithDetail("field", "productType").
			WithDetail("value", string(p.Type))
	}
	if p.GSTPercent.IsNegative() {
		return apperror.NewValidation("gst percent cannot be negative").
			WithDetail("field", "gstPercent")
	}
	return nil
}
