package purchase

import (
	"context"

	"refurbhq/internal/core/id"
)

// Repository defines persistence operations for purchase orders and
// vendor payments.
type Repository interface {
	CreateOrder(ctx context.Context, o *Order) error
	GetOrder(ctx context.Context, orderID id.ID) (*Order, error)
	GetOrderForUpdate(ctx context.Context, orderID id.ID) (*Order, error)
	UpdateOrder(ctx context.Context, o *Order) error
	ListOrders(ctx context.Context, limit, offset int) ([]Order, error)

	CreatePayment(ctx context.Context, p *VendorPayment) error
	ListPayments(ctx context.Context, orderID id.ID) ([]VendorPayment, error)
}
