package sales

import (
	"context"
	"fmt"
	"time"

	"refurbhq/internal/core/apperror"
	appctx "refurbhq/internal/core/context"
	"refurbhq/internal/core/id"
	"refurbhq/internal/core/tx"
	"refurbhq/internal/core/types"
	"refurbhq/internal/domain/audit"
	"refurbhq/internal/domain/ledger"
	"refurbhq/pkg/logger"
)

// Voucher series consumed by sales documents.
const (
	SeriesOrder   = "order"
	SeriesPayment = "payment"
	SeriesInvoice = "invoice"
)

// VoucherIssuer allocates document numbers from named series.
type VoucherIssuer interface {
	Next(ctx context.Context, seriesName string) (string, error)
}

// LedgerAppender posts entries to the customer ledger.
type LedgerAppender interface {
	Append(ctx context.Context, customerID id.ID, description string, debit, credit types.Money) (*ledger.Entry, error)
}

// Service manages orders, payments and invoices.
type Service struct {
	repo      Repository
	vouchers  VoucherIssuer
	ledger    LedgerAppender
	txManager tx.Manager
	auditor   audit.Recorder
}

// NewService creates a new sales service.
func NewService(repo Repository, vouchers VoucherIssuer, ledgerSvc LedgerAppender, txManager tx.Manager, auditor audit.Recorder) *Service {
	if auditor == nil {
		auditor = audit.Nop{}
	}
	return &Service{
		repo:      repo,
		vouchers:  vouchers,
		ledger:    ledgerSvc,
		txManager: txManager,
		auditor:   auditor,
	}
}

// CreateOrder persists a new order with its items, recomputing totals
// first, and posts the order total to the customer ledger as a debit.
// Both writes share one transaction.
func (s *Service) CreateOrder(ctx context.Context, o *Order) error {
	o.RecalculateTotals()
	if err := o.Validate(ctx); err != nil {
		return err
	}

	if userID := appctx.GetUserID(ctx); userID != "" {
		if uid, err := id.Parse(userID); err == nil {
			o.CreatedBy = &uid
		}
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		number, err := s.vouchers.Next(ctx, SeriesOrder)
		if err != nil {
			return err
		}
		o.OrderNumber = number

		for i := range o.Items {
			o.Items[i].ID = id.New()
			o.Items[i].OrderID = o.ID
		}

		if err := s.repo.CreateOrder(ctx, o); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		desc := fmt.Sprintf("Order %s", o.OrderNumber)
		if _, err := s.ledger.Append(ctx, o.CustomerID, desc, o.TotalAmount, types.ZeroMoney()); err != nil {
			return fmt.Errorf("post order to ledger: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.auditor.Record(ctx, audit.Record{
		EntityType: "order",
		EntityID:   o.ID,
		Action:     audit.ActionCreate,
		UserID:     appctx.GetUserID(ctx),
		Changes: map[string]any{
			"orderNumber": o.OrderNumber,
			"totalAmount": o.TotalAmount,
		},
	})

	logger.Info(ctx, "order created",
		"order_id", o.ID,
		"order_number", o.OrderNumber,
		"customer_id", o.CustomerID,
		"total_amount", o.TotalAmount,
	)
	return nil
}

// RecordPayment registers a received payment against an order. In one
// transaction it allocates a payment voucher, writes the transaction,
// recomputes the order's payment rollup from all of its transactions and
// posts a credit to the customer ledger. Overpayment is accepted: the
// order stays paid and balance_due goes negative.
func (s *Service) RecordPayment(ctx context.Context, orderID id.ID, amount types.Money, mode PaymentMode, reference *string) (*PaymentTransaction, error) {
	if !amount.IsPositive() {
		return nil, apperror.NewValidation("payment amount must be positive").
			WithDetail("field", "amount")
	}
	if !ValidMode(mode) {
		return nil, apperror.NewValidation("unknown payment mode").
			WithDetail("field", "mode").
			WithDetail("value", string(mode))
	}

	var payment *PaymentTransaction
	var order *Order

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.repo.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status == StatusCancelled {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule,
				"cannot record a payment against a cancelled order")
		}

		voucherNo, err := s.vouchers.Next(ctx, SeriesPayment)
		if err != nil {
			return err
		}

		payment = &PaymentTransaction{
			ID:          id.New(),
			OrderID:     orderID,
			VoucherNo:   voucherNo,
			Amount:      amount,
			Mode:        mode,
			Reference:   reference,
			PaymentDate: time.Now().UTC(),
			CreatedAt:   time.Now().UTC(),
		}
		if userID := appctx.GetUserID(ctx); userID != "" {
			if uid, parseErr := id.Parse(userID); parseErr == nil {
				payment.ReceivedBy = &uid
			}
		}

		if err := s.repo.CreatePayment(ctx, payment); err != nil {
			return fmt.Errorf("create payment: %w", err)
		}

		payments, err := s.repo.ListPayments(ctx, orderID)
		if err != nil {
			return fmt.Errorf("list payments: %w", err)
		}
		order.RecomputePaymentStatus(payments)
		order.Touch()

		if err := s.repo.UpdateOrder(ctx, order); err != nil {
			return fmt.Errorf("update order rollup: %w", err)
		}

		desc := fmt.Sprintf("Payment %s against order %s", voucherNo, order.OrderNumber)
		if _, err := s.ledger.Append(ctx, order.CustomerID, desc, types.ZeroMoney(), amount); err != nil {
			return fmt.Errorf("post payment to ledger: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, audit.Record{
		EntityType: "order",
		EntityID:   orderID,
		Action:     audit.ActionPayment,
		UserID:     appctx.GetUserID(ctx),
		Changes: map[string]any{
			"voucherNo":     payment.VoucherNo,
			"amount":        amount,
			"paymentStatus": order.PaymentStatus,
		},
	})

	logger.Info(ctx, "payment recorded",
		"order_id", orderID,
		"voucher_no", payment.VoucherNo,
		"amount", amount,
		"payment_status", order.PaymentStatus,
	)
	return payment, nil
}

// SyncPaymentStatus recomputes the order's payment rollup from its
// stored transactions. Safe to run any number of times; used after
// manual data fixes.
func (s *Service) SyncPaymentStatus(ctx context.Context, orderID id.ID) (*Order, error) {
	var order *Order

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.repo.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}

		payments, err := s.repo.ListPayments(ctx, orderID)
		if err != nil {
			return err
		}

		order.RecomputePaymentStatus(payments)
		order.Touch()
		return s.repo.UpdateOrder(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// GenerateInvoice creates the invoice document for an order, allocating
// its number from the invoice series. One invoice per order.
func (s *Service) GenerateInvoice(ctx context.Context, orderID id.ID) (*Invoice, error) {
	var invoice *Invoice

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		order, err := s.repo.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}

		existing, err := s.repo.GetInvoiceByOrder(ctx, orderID)
		if err != nil && !apperror.IsNotFound(err) {
			return err
		}
		if existing != nil {
			return apperror.NewConflict("order already has an invoice")
		}

		number, err := s.vouchers.Next(ctx, SeriesInvoice)
		if err != nil {
			return err
		}

		invoice = &Invoice{
			ID:            id.New(),
			OrderID:       orderID,
			InvoiceNumber: number,
			InvoiceDate:   time.Now().UTC(),
			TotalAmount:   order.TotalAmount,
			CreatedAt:     time.Now().UTC(),
		}
		return s.repo.CreateInvoice(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "invoice generated",
		"order_id", orderID,
		"invoice_number", invoice.InvoiceNumber,
	)
	return invoice, nil
}

// GetOrder returns an order with items.
func (s *Service) GetOrder(ctx context.Context, orderID id.ID) (*Order, error) {
	return s.repo.GetOrder(ctx, orderID)
}

// ListOrders returns orders matching the filter.
func (s *Service) ListOrders(ctx context.Context, filter ListFilter) ([]Order, error) {
	return s.repo.ListOrders(ctx, filter)
}

// ListPayments returns an order's payment transactions.
func (s *Service) ListPayments(ctx context.Context, orderID id.ID) ([]PaymentTransaction, error) {
	return s.repo.ListPayments(ctx, orderID)
}

// CancelOrder marks the order cancelled and posts a reversing credit to
// the customer ledger for its total.
func (s *Service) CancelOrder(ctx context.Context, orderID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		order, err := s.repo.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status == StatusCancelled {
			return nil
		}
		if order.PaymentStatus != PaymentPending {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule,
				"cannot cancel an order with recorded payments")
		}

		order.Status = StatusCancelled
		order.Touch()
		if err := s.repo.UpdateOrder(ctx, order); err != nil {
			return err
		}

		desc := fmt.Sprintf("Cancellation of order %s", order.OrderNumber)
		_, err = s.ledger.Append(ctx, order.CustomerID, desc, types.ZeroMoney(), order.TotalAmount)
		return err
	})
}
