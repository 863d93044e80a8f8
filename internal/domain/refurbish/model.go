// Package refurbish provides refurbishing batches and their component
// usage ledger. Recording a usage is the only path that consumes
// component stock.
package refurbish

import (
	"context"
	"time"

	"refurbhq/internal/core/apperror"
	"refurbhq/internal/core/entity"
	"refurbhq/internal/core/id"
)

// Batch is one production run of a refurbished product, identified by a
// unique serial number.
type Batch struct {
	entity.BaseEntity

	ProductID      id.ID     `db:"product_id" json:"productId"`
	SerialNumber   string    `db:"serial_number" json:"serialNumber"`
	ProductionDate time.Time `db:"production_date" json:"productionDate"`

	ProducedQuantity int64   `db:"produced_quantity" json:"producedQuantity"`
	Remarks          *string `db:"remarks" json:"remarks,omitempty"`

	CreatedBy *id.ID `db:"created_by" json:"createdBy,omitempty"`
}

// NewBatch creates a batch dated today.
func NewBatch(productID id.ID, serialNumber string) *Batch {
	return &Batch{
		BaseEntity:     entity.NewBaseEntity(),
		ProductID:      productID,
		SerialNumber:   serialNumber,
		ProductionDate: time.Now().UTC(),
	}
}

// Validate implements entity.Validatable.
func (b *Batch) Validate(ctx context.Context) error {
	if id.IsNil(b.ProductID) {
		return apperror.NewValidation("product is required").
			WithDetail("field", "productId")
	}
	if b.SerialNumber == "" {
		return apperror.NewValidation("serial number is required").
			WithDetail("field", "serialNumber")
	}
	if b.ProducedQuantity < 0 {
		return apperror.NewValidation("produced quantity cannot be negative").
			WithDetail("field", "producedQuantity")
	}
	return nil
}

// Usage records consumption of a component by a batch. Usage rows are
// immutable facts: there is no update or delete path.
type Usage struct {
	ID          id.ID `db:"id" json:"id"`
	BatchID     id.ID `db:"batch_id" json:"batchId"`
	ComponentID id.ID `db:"component_id" json:"componentId"`

	QuantityUsed int64 `db:"quantity_used" json:"quantityUsed"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
