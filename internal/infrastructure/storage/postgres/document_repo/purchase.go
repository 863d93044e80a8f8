package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"refurbhq/internal/core/apperror"
	"refurbhq/internal/core/id"
	"refurbhq/internal/domain/purchase"
	"refurbhq/internal/infrastructure/storage/postgres"
)

const (
	purchaseOrdersTable = "doc_purchase_orders"
	purchaseItemsTable  = "doc_purchase_items"
	vendorPaymentsTable = "doc_vendor_payments"
)

// PurchaseRepo implements purchase.Repository.
type PurchaseRepo struct {
	txm            *postgres.TxManager
	batch          *postgres.BatchExecutor
	builder        squirrel.StatementBuilderType
	orderColumns   []string
	itemColumns    []string
	paymentColumns []string
}

// NewPurchaseRepo creates a new purchase repository.
func NewPurchaseRepo(txm *postgres.TxManager) *PurchaseRepo {
	return &PurchaseRepo{
		txm:            txm,
		batch:          postgres.NewBatchExecutor(txm),
		builder:        squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		orderColumns:   postgres.ExtractDBColumns[purchase.Order](),
		itemColumns:    postgres.ExtractDBColumns[purchase.Item](),
		paymentColumns: postgres.ExtractDBColumns[purchase.VendorPayment](),
	}
}

// CreateOrder inserts the order header and its items.
func (r *PurchaseRepo) CreateOrder(ctx context.Context, o *purchase.Order) error {
	q := r.builder.Insert(purchaseOrdersTable).SetMap(postgres.StructToMap(o))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if postgres.IsUniqueViolation(err) {
			return apperror.NewDuplicate("purchase order", "order_number", o.OrderNumber)
		}
		if postgres.IsForeignKeyViolation(err) {
			return apperror.NewNotFound("vendor", o.VendorID.String())
		}
		return fmt.Errorf("insert purchase order: %w", err)
	}

	queries := make([]postgres.BatchQuery, 0, len(o.Items))
	for i := range o.Items {
		iq := r.builder.Insert(purchaseItemsTable).SetMap(postgres.StructToMap(&o.Items[i]))
		sql, args, err := iq.ToSql()
		if err != nil {
			return fmt.Errorf("build item insert: %w", err)
		}
		queries = append(queries, postgres.BatchQuery{SQL: sql, Args: args})
	}

	if err := r.batch.ExecuteBatch(ctx, queries); err != nil {
		return fmt.Errorf("insert purchase items: %w", err)
	}
	return nil
}

// GetOrder returns the order with its items loaded.
func (r *PurchaseRepo) GetOrder(ctx context.Context, orderID id.ID) (*purchase.Order, error) {
	return r.getOrder(ctx, orderID, false)
}

// GetOrderForUpdate locks the order row for the rest of the transaction.
func (r *PurchaseRepo) GetOrderForUpdate(ctx context.Context, orderID id.ID) (*purchase.Order, error) {
	return r.getOrder(ctx, orderID, true)
}

func (r *PurchaseRepo) getOrder(ctx context.Context, orderID id.ID, forUpdate bool) (*purchase.Order, error) {
	q := r.builder.Select(r.orderColumns...).
		From(purchaseOrdersTable).
		Where(squirrel.Eq{"id": orderID})
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var o purchase.Order
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &o, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("purchase order", orderID.String())
		}
		return nil, fmt.Errorf("get purchase order: %w", err)
	}

	iq := r.builder.Select(r.itemColumns...).
		From(purchaseItemsTable).
		Where(squirrel.Eq{"order_id": orderID}).
		OrderBy("id")

	sql, args, err = iq.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &o.Items, sql, args...); err != nil {
		return nil, fmt.Errorf("select purchase items: %w", err)
	}
	return &o, nil
}

// UpdateOrder saves the header with an optimistic version check.
func (r *PurchaseRepo) UpdateOrder(ctx context.Context, o *purchase.Order) error {
	values := postgres.StructToMap(o)
	prevVersion := o.Version - 1
	delete(values, "id")
	delete(values, "created_at")

	q := r.builder.Update(purchaseOrdersTable).
		SetMap(values).
		Where(squirrel.Eq{"id": o.ID, "version": prevVersion})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update purchase order: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("purchase order", o.ID)
	}
	return nil
}

// ListOrders returns order headers, newest first. Items are not loaded
// for listings.
func (r *PurchaseRepo) ListOrders(ctx context.Context, limit, offset int) ([]purchase.Order, error) {
	q := r.builder.Select(r.orderColumns...).
		From(purchaseOrdersTable).
		OrderBy("order_date DESC", "id DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	if offset > 0 {
		q = q.Offset(uint64(offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var orders []purchase.Order
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &orders, sql, args...); err != nil {
		return nil, fmt.Errorf("select purchase orders: %w", err)
	}
	return orders, nil
}

// CreatePayment inserts a vendor payment.
func (r *PurchaseRepo) CreatePayment(ctx context.Context, p *purchase.VendorPayment) error {
	q := r.builder.Insert(vendorPaymentsTable).SetMap(postgres.StructToMap(p))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if postgres.IsUniqueViolation(err) {
			return apperror.NewDuplicate("vendor payment", "voucher_no", p.VoucherNo)
		}
		if postgres.IsForeignKeyViolation(err) {
			return apperror.NewNotFound("purchase order", p.OrderID.String())
		}
		return fmt.Errorf("insert vendor payment: %w", err)
	}
	return nil
}

// ListPayments returns an order's vendor payments in payment order.
func (r *PurchaseRepo) ListPayments(ctx context.Context, orderID id.ID) ([]purchase.VendorPayment, error) {
	q := r.builder.Select(r.paymentColumns...).
		From(vendorPaymentsTable).
		Where(squirrel.Eq{"order_id": orderID}).
		OrderBy("payment_date", "id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var payments []purchase.VendorPayment
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &payments, sql, args...); err != nil {
		return nil, fmt.Errorf("select vendor payments: %w", err)
	}
	return payments, nil
}

var _ purchase.Repository = (*PurchaseRepo)(nil)
