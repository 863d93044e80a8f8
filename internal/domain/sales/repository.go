package sales

import (
	"context"
	"time"

	"refurbhq/internal/core/id"
)

// ListFilter narrows order listings.
type ListFilter struct {
	CustomerID    *id.ID
	Status        *Status
	PaymentStatus *PaymentStatus
	From          *time.Time
	To            *time.Time

	Limit  int
	Offset int
}

// Repository defines persistence operations for orders, payments and
// invoices.
type Repository interface {
	CreateOrder(ctx context.Context, o *Order) error

	// GetOrder returns the order with its items loaded.
	GetOrder(ctx context.Context, orderID id.ID) (*Order, error)

	// GetOrderForUpdate locks the order row for the rest of the
	// transaction. Payment rollups go through this.
	GetOrderForUpdate(ctx context.Context, orderID id.ID) (*Order, error)

	UpdateOrder(ctx context.Context, o *Order) error
	ListOrders(ctx context.Context, filter ListFilter) ([]Order, error)

	CreatePayment(ctx context.Context, p *PaymentTransaction) error
	ListPayments(ctx context.Context, orderID id.ID) ([]PaymentTransaction, error)

	CreateInvoice(ctx context.Context, inv *Invoice) error
	GetInvoiceByOrder(ctx context.Context, orderID id.ID) (*Invoice, error)
}
