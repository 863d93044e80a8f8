package purchase

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
	"refurbhq/internal/domain/catalogs/component"
	"refurbhq/pkg/logger"
)

// Voucher series consumed by purchasing documents.
const (
	SeriesPurchase      = "purchase"
	SeriesVendorPayment = "vendor-payment"
)

// VoucherIssuer allocates document numbers from named series.
type VoucherIssuer interface {
	Next(ctx context.Context, seriesName string) (string, error)
}

// Service manages purchase orders and vendor payments.
type Service struct {
	repo       Repository
	components component.Repository
	vouchers   VoucherIssuer
	txManager  tx.Manager
	auditor    audit.Recorder
}

// NewService creates a new purchase service.
func NewService(repo Repository, components component.Repository, vouchers VoucherIssuer, txManager tx.Manager, auditor audit.Recorder) *Service {
	if auditor == nil {
		auditor = audit.Nop{}
	}
	return &Service{
		repo:       repo,
		components: components,
		vouchers:   vouchers,
		txManager:  txManager,
		auditor:    auditor,
	}
}

// CreateOrder persists a new purchase order with its component lines.
// Stock is not touched until the goods are received.
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
		number, err := s.vouchers.Next(ctx, SeriesPurchase)
		if err != nil {
			return err
		}
		o.OrderNumber = number

		for i := range o.Items {
			// Component must exist before we commit to buying it.
			if _, err := s.components.GetByID(ctx, o.Items[i].ComponentID); err != nil {
				return err
			}
			o.Items[i].ID = id.New()
			o.Items[i].OrderID = o.ID
		}

		if err := s.repo.CreateOrder(ctx, o); err != nil {
			return fmt.Errorf("create purchase order: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "purchase order created",
		"order_id", o.ID,
		"order_number", o.OrderNumber,
		"vendor_id", o.VendorID,
		"total_amount", o.TotalAmount,
	)
	return nil
}

// Receive marks the order received and credits each line's quantity to
// its component's stock counter. All increments and the status change
// share one transaction; receiving twice is rejected.
func (s *Service) Receive(ctx context.Context, orderID id.ID) (*Order, error) {
	var order *Order

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.repo.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		switch order.Status {
		case StatusReceived:
			return apperror.NewConflict("purchase order already received")
		case StatusCancelled:
			return apperror.NewBusinessRule(apperror.CodeBusinessRule,
				"cannot receive a cancelled purchase order")
		}

		for i := range order.Items {
			item := &order.Items[i]
			if err := s.components.IncrementStock(ctx, item.ComponentID, item.Quantity); err != nil {
				return fmt.Errorf("credit component stock: %w", err)
			}
		}

		now := time.Now().UTC()
		order.Status = StatusReceived
		order.ReceivedAt = &now
		order.Touch()
		return s.repo.UpdateOrder(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, audit.Record{
		EntityType: "purchase_order",
		EntityID:   orderID,
		Action:     audit.ActionUpdate,
		UserID:     appctx.GetUserID(ctx),
		Changes:    map[string]any{"status": StatusReceived},
	})

	logger.Info(ctx, "purchase order received",
		"order_id", orderID,
		"order_number", order.OrderNumber,
	)
	return order, nil
}

// RecordPayment registers a payment to the vendor and rolls the order's
// payment fields up from all of its payments, in one transaction.
func (s *Service) RecordPayment(ctx context.Context, orderID id.ID, amount types.Money, mode string, reference *string) (*VendorPayment, error) {
	if !amount.IsPositive() {
		return nil, apperror.NewValidation("payment amount must be positive").
			WithDetail("field", "amount")
	}

	var payment *VendorPayment

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		order, err := s.repo.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status == StatusCancelled {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule,
				"cannot pay against a cancelled purchase order")
		}

		voucherNo, err := s.vouchers.Next(ctx, SeriesVendorPayment)
		if err != nil {
			return err
		}

		payment = &VendorPayment{
			ID:          id.New(),
			OrderID:     orderID,
			VoucherNo:   voucherNo,
			Amount:      amount,
			Mode:        mode,
			Reference:   reference,
			PaymentDate: time.Now().UTC(),
			CreatedAt:   time.Now().UTC(),
		}
		if err := s.repo.CreatePayment(ctx, payment); err != nil {
			return fmt.Errorf("create vendor payment: %w", err)
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

	logger.Info(ctx, "vendor payment recorded",
		"order_id", orderID,
		"voucher_no", payment.VoucherNo,
		"amount", amount,
	)
	return payment, nil
}

// GetOrder returns a purchase order with items.
func (s *Service) GetOrder(ctx context.Context, orderID id.ID) (*Order, error) {
	return s.repo.GetOrder(ctx, orderID)
}

// ListOrders returns a page of purchase orders.
func (s *Service) ListOrders(ctx context.Context, limit, offset int) ([]Order, error) {
	return s.repo.ListOrders(ctx, limit, offset)
}

// ListPayments returns an order's vendor payments.
func (s *Service) ListPayments(ctx context.Context, orderID id.ID) ([]VendorPayment, error) {
	return s.repo.ListPayments(ctx, orderID)
}
