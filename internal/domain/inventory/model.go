// Package inventory provides per-product stock rollups and per-day
// production movement rows for refurbished batches.
package inventory

import (
	"context"
	"time"

	"refurbhq/internal/core/apperror"
	"refurbhq/internal/core/entity"
	"refurbhq/internal/core/id"
	"refurbhq/internal/core/types"
)

// Inventory is the stock rollup for one product.
//
// CurrentStock is derived (opening + in - out) but persisted, recomputed
// on every mutation. The arithmetic is intentionally unclamped: if the
// inputs drive it negative it stays negative, matching the accounting
// rule rather than hiding bad input.
type Inventory struct {
	entity.BaseEntity

	ProductID id.ID `db:"product_id" json:"productId"`

	OpeningStock int64 `db:"opening_stock" json:"openingStock"`
	StockIn      int64 `db:"stock_in" json:"stockIn"`
	StockOut     int64 `db:"stock_out" json:"stockOut"`

	CurrentStock int64 `db:"current_stock" json:"currentStock"`
}

// NewInventory creates the rollup row for a product.
func NewInventory(productID id.ID, openingStock int64) *Inventory {
	inv := &Inventory{
		BaseEntity:   entity.NewBaseEntity(),
		ProductID:    productID,
		OpeningStock: openingStock,
	}
	inv.Recompute()
	return inv
}

// Recompute refreshes CurrentStock from the three counters.
func (i *Inventory) Recompute() {
	i.CurrentStock = i.OpeningStock + i.StockIn - i.StockOut
}

// Validate implements entity.Validatable.
func (i *Inventory) Validate(ctx context.Context) error {
	if id.IsNil(i.ProductID) {
		return apperror.NewValidation("product is required").
			WithDetail("field", "productId")
	}
	return nil
}

// DailyProduction is a per-day stock movement row for a refurbished
// batch. CurrentStock here is stock_in - stock_out for that single day,
// recomputed from the row's own fields on every save.
type DailyProduction struct {
	ID        id.ID     `db:"id" json:"id"`
	BatchID   id.ID     `db:"batch_id" json:"batchId"`
	ProductID id.ID     `db:"product_id" json:"productId"`
	Date      time.Time `db:"production_date" json:"productionDate"`

	StockIn      int64 `db:"stock_in" json:"stockIn"`
	StockOut     int64 `db:"stock_out" json:"stockOut"`
	CurrentStock int64 `db:"current_stock" json:"currentStock"`

	SalePrice types.Money `db:"sale_price" json:"salePrice"`
	MRP       types.Money `db:"mrp" json:"mrp"`

	SerialNumber *string `db:"serial_number" json:"serialNumber,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Recompute refreshes CurrentStock from the day's movements.
func (d *DailyProduction) Recompute() {
	d.CurrentStock = d.StockIn - d.StockOut
}

// Validate checks the row before save.
func (d *DailyProduction) Validate(ctx context.Context) error {
	if id.IsNil(d.BatchID) {
		return apperror.NewValidation("batch is required").
			WithDetail("field", "batchId")
	}
	if id.IsNil(d.ProductID) {
		return apperror.NewValidation("product is required").
			WithDetail("field", "productId")
	}
	if d.StockIn < 0 || d.StockOut < 0 {
		return apperror.NewValidation("stock movements cannot be negative").
			WithDetail("stockIn", d.StockIn).
			WithDetail("stockOut", d.StockOut)
	}
	return nil
}
