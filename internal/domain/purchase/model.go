// Package purchase provides vendor purchase orders for components.
// Receiving a purchase is the only path that increases component stock.
// The payment_status rollup mirrors the sales side: it is derived from
// recorded vendor payments, never set directly.
package purchase

import (
	"context"
	"time"

	"refurbhq/internal/core/apperror"
	"refurbhq/internal/core/entity"
	"refurbhq/internal/core/id"
	"refurbhq/internal/core/types"
)

// Purchase order lifecycle.
type Status string

const (
	StatusOrdered   Status = "ordered"
	StatusReceived  Status = "received"
	StatusCancelled Status = "cancelled"
)

// PaymentStatus derived from vendor payments.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

// Order is a purchase order placed with a vendor.
type Order struct {
	entity.BaseEntity

	OrderNumber string    `db:"order_number" json:"orderNumber"`
	VendorID    id.ID     `db:"vendor_id" json:"vendorId"`
	OrderDate   time.Time `db:"order_date" json:"orderDate"`

	Status        Status        `db:"status" json:"status"`
	PaymentStatus PaymentStatus `db:"payment_status" json:"paymentStatus"`

	TotalAmount types.Money `db:"total_amount" json:"totalAmount"`
	AmountPaid  types.Money `db:"amount_paid" json:"amountPaid"`
	BalanceDue  types.Money `db:"balance_due" json:"balanceDue"`

	// ReceivedAt is set when goods arrive and stock is credited
	ReceivedAt *time.Time `db:"received_at" json:"receivedAt,omitempty"`

	Notes     *string `db:"notes" json:"notes,omitempty"`
	CreatedBy *id.ID  `db:"created_by" json:"createdBy,omitempty"`

	Items []Item `db:"-" json:"items,omitempty"`
}

// NewOrder creates an ordered purchase dated now.
func NewOrder(vendorID id.ID) *Order {
	return &Order{
		BaseEntity:    entity.NewBaseEntity(),
		VendorID:      vendorID,
		OrderDate:     time.Now().UTC(),
		Status:        StatusOrdered,
		PaymentStatus: PaymentPending,
		TotalAmount:   types.ZeroMoney(),
		AmountPaid:    types.ZeroMoney(),
		BalanceDue:    types.ZeroMoney(),
	}
}

// Validate implements entity.Validatable.
func (o *Order) Validate(ctx context.Context) error {
	if id.IsNil(o.VendorID) {
		return apperror.NewValidation("vendor is required").
			WithDetail("field", "vendorId")
	}
	if len(o.Items) == 0 {
		return apperror.NewValidation("purchase requires at least one item").
			WithDetail("field", "items")
	}
	for i := range o.Items {
		if err := o.Items[i].Validate(ctx); err != nil {
			return err
		}
	}
	return nil
}

// RecalculateTotals recomputes the order total from its lines.
func (o *Order) RecalculateTotals() {
	total := types.ZeroMoney()
	for i := range o.Items {
		item := &o.Items[i]
		item.LineTotal = types.RoundMoney(
			item.UnitCost.Mul(types.NewMoneyFromInt(item.Quantity)))
		total = total.Add(item.LineTotal)
	}
	o.TotalAmount = types.RoundMoney(total)
	o.BalanceDue = o.TotalAmount.Sub(o.AmountPaid)
}

// RecomputePaymentStatus rolls amount_paid, balance_due and
// payment_status up from the given payments. Idempotent.
func (o *Order) RecomputePaymentStatus(payments []VendorPayment) {
	paid := types.ZeroMoney()
	for i := range payments {
		paid = paid.Add(payments[i].Amount)
	}

	o.AmountPaid = types.RoundMoney(paid)
	o.BalanceDue = types.RoundMoney(o.TotalAmount.Sub(paid))

	switch {
	case paid.GreaterThanOrEqual(o.TotalAmount) && o.TotalAmount.IsPositive():
		o.PaymentStatus = PaymentPaid
	case paid.IsPositive():
		o.PaymentStatus = PaymentPartial
	default:
		o.PaymentStatus = PaymentPending
	}
}

// Item is one purchased component line.
type Item struct {
	ID      id.ID `db:"id" json:"id"`
	OrderID id.ID `db:"order_id" json:"orderId"`

	ComponentID id.ID `db:"component_id" json:"componentId"`
	Quantity    int64 `db:"quantity" json:"quantity"`

	UnitCost  types.Money `db:"unit_cost" json:"unitCost"`
	LineTotal types.Money `db:"line_total" json:"lineTotal"`
}

// Validate checks line invariants.
func (it *Item) Validate(ctx context.Context) error {
	if id.IsNil(it.ComponentID) {
		return apperror.NewValidation("component is required").
			WithDetail("field", "componentId")
	}
	if it.Quantity <= 0 {
		return apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantity")
	}
	if it.UnitCost.IsNegative() {
		return apperror.NewValidation("unit cost cannot be negative").
			WithDetail("field", "unitCost")
	}
	return nil
}

// VendorPayment is one payment made to a vendor against a purchase.
type VendorPayment struct {
	ID      id.ID `db:"id" json:"id"`
	OrderID id.ID `db:"order_id" json:"orderId"`

	VoucherNo string `db:"voucher_no" json:"voucherNo"`

	Amount      types.Money `db:"amount" json:"amount"`
	Mode        string      `db:"mode" json:"mode"`
	Reference   *string     `db:"reference" json:"reference,omitempty"`
	PaymentDate time.Time   `db:"payment_date" json:"paymentDate"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
