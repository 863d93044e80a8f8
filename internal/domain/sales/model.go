// Package sales provides customer orders, their payments and invoices.
// An order's payment_status is a pure rollup of its recorded payment
// transactions; every payment also lands in the customer ledger.
package sales

import (
	"context"
	"time"

	"refurbhq/internal/core/apperror"
	"refurbhq/internal/core/entity"
	"refurbhq/internal/core/id"
	"refurbhq/internal/core/types"
)

// Order lifecycle status.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusConfirmed Status = "confirmed"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// PaymentStatus is derived from recorded payments, never set directly.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

// PaymentMode of a transaction.
type PaymentMode string

const (
	ModeCash         PaymentMode = "cash"
	ModeUPI          PaymentMode = "upi"
	ModeBankTransfer PaymentMode = "bank_transfer"
	ModeCheque       PaymentMode = "cheque"
	ModeOther        PaymentMode = "other"
)

// ValidMode reports whether m is a known payment mode.
func ValidMode(m PaymentMode) bool {
	switch m {
	case ModeCash, ModeUPI, ModeBankTransfer, ModeCheque, ModeOther:
		return true
	}
	return false
}

// Order is a customer sales order with derived money totals.
type Order struct {
	entity.BaseEntity

	OrderNumber string    `db:"order_number" json:"orderNumber"`
	CustomerID  id.ID     `db:"customer_id" json:"customerId"`
	OrderDate   time.Time `db:"order_date" json:"orderDate"`

	Status        Status        `db:"status" json:"status"`
	PaymentStatus PaymentStatus `db:"payment_status" json:"paymentStatus"`

	// Derived totals, recomputed whenever items change
	Subtotal       types.Money `db:"subtotal" json:"subtotal"`
	DiscountAmount types.Money `db:"discount_amount" json:"discountAmount"`
	GSTAmount      types.Money `db:"gst_amount" json:"gstAmount"`
	TotalAmount    types.Money `db:"total_amount" json:"totalAmount"`

	// Payment rollup
	AmountPaid types.Money `db:"amount_paid" json:"amountPaid"`
	BalanceDue types.Money `db:"balance_due" json:"balanceDue"`

	Notes     *string `db:"notes" json:"notes,omitempty"`
	CreatedBy *id.ID  `db:"created_by" json:"createdBy,omitempty"`

	Items []Item `db:"-" json:"items,omitempty"`
}

// NewOrder creates a pending order dated now.
func NewOrder(customerID id.ID) *Order {
	return &Order{
		BaseEntity:     entity.NewBaseEntity(),
		CustomerID:     customerID,
		OrderDate:      time.Now().UTC(),
		Status:         StatusConfirmed,
		PaymentStatus:  PaymentPending,
		Subtotal:       types.ZeroMoney(),
		DiscountAmount: types.ZeroMoney(),
		GSTAmount:      types.ZeroMoney(),
		TotalAmount:    types.ZeroMoney(),
		AmountPaid:     types.ZeroMoney(),
		BalanceDue:     types.ZeroMoney(),
	}
}

// Validate implements entity.Validatable.
func (o *Order) Validate(ctx context.Context) error {
	if id.IsNil(o.CustomerID) {
		return apperror.NewValidation("customer is required").
			WithDetail("field", "customerId")
	}
	if len(o.Items) == 0 {
		return apperror.NewValidation("order requires at least one item").
			WithDetail("field", "items")
	}
	for i := range o.Items {
		if err := o.Items[i].Validate(ctx); err != nil {
			return err
		}
	}
	return nil
}

// RecalculateTotals recomputes all derived money fields from the items.
// Line math: discounted = qty * price * (1 - discount%/100),
// gst = discounted * gst%/100, line total = discounted + gst.
func (o *Order) RecalculateTotals() {
	hundred := types.NewMoneyFromInt(100)

	subtotal := types.ZeroMoney()
	discount := types.ZeroMoney()
	gst := types.ZeroMoney()

	for i := range o.Items {
		item := &o.Items[i]

		base := item.UnitPrice.Mul(types.NewMoneyFromInt(item.Quantity))
		discAmt := base.Mul(item.DiscountPercent).Div(hundred)
		discounted := base.Sub(discAmt)
		gstAmt := discounted.Mul(item.GSTPercent).Div(hundred)

		item.LineTotal = types.RoundMoney(discounted.Add(gstAmt))

		subtotal = subtotal.Add(base)
		discount = discount.Add(discAmt)
		gst = gst.Add(gstAmt)
	}

	o.Subtotal = types.RoundMoney(subtotal)
	o.DiscountAmount = types.RoundMoney(discount)
	o.GSTAmount = types.RoundMoney(gst)
	o.TotalAmount = types.RoundMoney(subtotal.Sub(discount).Add(gst))
	o.BalanceDue = o.TotalAmount.Sub(o.AmountPaid)
}

// RecomputePaymentStatus rolls the payment fields up from the given
// transactions. Deterministic and idempotent: running it twice over the
// same transactions yields the same state. Overpayment keeps the status
// at paid with a negative balance due.
func (o *Order) RecomputePaymentStatus(payments []PaymentTransaction) {
	paid := types.ZeroMoney()
	for i := range payments {
		paid = paid.Add(payments[i].Amount)
	}

	o.AmountPaid = types.RoundMoney(paid)
	o.BalanceDue = types.RoundMoney(o.TotalAmount.Sub(paid))

	switch {
	case paid.IsZero():
		o.PaymentStatus = PaymentPending
	case paid.GreaterThanOrEqual(o.TotalAmount):
		o.PaymentStatus = PaymentPaid
	default:
		o.PaymentStatus = PaymentPartial
	}
}

// Item is one order line.
type Item struct {
	ID      id.ID `db:"id" json:"id"`
	OrderID id.ID `db:"order_id" json:"orderId"`

	ProductID id.ID `db:"product_id" json:"productId"`
	Quantity  int64 `db:"quantity" json:"quantity"`

	UnitPrice       types.Money `db:"unit_price" json:"unitPrice"`
	DiscountPercent types.Money `db:"discount_percent" json:"discountPercent"`
	GSTPercent      types.Money `db:"gst_percent" json:"gstPercent"`

	// LineTotal is derived, set by RecalculateTotals
	LineTotal types.Money `db:"line_total" json:"lineTotal"`
}

// Validate checks line invariants.
func (it *Item) Validate(ctx context.Context) error {
	if id.IsNil(it.ProductID) {
		return apperror.NewValidation("product is required").
			WithDetail("field", "productId")
	}
	if it.Quantity <= 0 {
		return apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantity")
	}
	if it.UnitPrice.IsNegative() {
		return apperror.NewValidation("unit price cannot be negative").
			WithDetail("field", "unitPrice")
	}
	if it.DiscountPercent.IsNegative() || it.DiscountPercent.GreaterThan(types.NewMoneyFromInt(100)) {
		return apperror.NewValidation("discount percent must be between 0 and 100").
			WithDetail("field", "discountPercent")
	}
	if it.GSTPercent.IsNegative() {
		return apperror.NewValidation("gst percent cannot be negative").
			WithDetail("field", "gstPercent")
	}
	return nil
}

// PaymentTransaction is one received payment against an order.
// Transactions are immutable once recorded.
type PaymentTransaction struct {
	ID      id.ID `db:"id" json:"id"`
	OrderID id.ID `db:"order_id" json:"orderId"`

	// VoucherNo is the allocated payment voucher code, e.g. PAY0001
	VoucherNo string `db:"voucher_no" json:"voucherNo"`

	Amount      types.Money `db:"amount" json:"amount"`
	Mode        PaymentMode `db:"mode" json:"mode"`
	Reference   *string     `db:"reference" json:"reference,omitempty"`
	PaymentDate time.Time   `db:"payment_date" json:"paymentDate"`

	ReceivedBy *id.ID    `db:"received_by" json:"receivedBy,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// Invoice is the billing document generated for an order.
type Invoice struct {
	ID      id.ID `db:"id" json:"id"`
	OrderID id.ID `db:"order_id" json:"orderId"`

	// InvoiceNumber is allocated from the invoice voucher series
	InvoiceNumber string    `db:"invoice_number" json:"invoiceNumber"`
	InvoiceDate   time.Time `db:"invoice_date" json:"invoiceDate"`

	TotalAmount types.Money `db:"total_amount" json:"totalAmount"`
	CreatedAt   time.Time   `db:"created_at" json:"createdAt"`
}
