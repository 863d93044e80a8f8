package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"refurbhq/internal/core/apperror"
	"refurbhq/internal/core/id"
	"refurbhq/internal/domain/sales"
	"refurbhq/internal/infrastructure/storage/postgres"
)

const (
	salesOrdersTable = "doc_sales_orders"
	salesItemsTable  = "doc_sales_order_items"
	paymentsTable    = "doc_payments"
	invoicesTable    = "doc_invoices"
)

// SalesRepo implements sales.Repository.
type SalesRepo struct {
	txm            *postgres.TxManager
	batch          *postgres.BatchExecutor
	builder        squirrel.StatementBuilderType
	orderColumns   []string
	itemColumns    []string
	paymentColumns []string
	invoiceColumns []string
}

// NewSalesRepo creates a new sales repository.
func NewSalesRepo(txm *postgres.TxManager) *SalesRepo {
	return &SalesRepo{
		txm:            txm,
		batch:          postgres.NewBatchExecutor(txm),
		builder:        squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		orderColumns:   postgres.ExtractDBColumns[sales.Order](),
		itemColumns:    postgres.ExtractDBColumns[sales.Item](),
		paymentColumns: postgres.ExtractDBColumns[sales.PaymentTransaction](),
		invoiceColumns: postgres.ExtractDBColumns[sales.Invoice](),
	}
}

// CreateOrder inserts the order header and its items. Items go out in a
// single batched round-trip.
func (r *SalesRepo) CreateOrder(ctx context.Context, o *sales.Order) error {
	q := r.builder.Insert(salesOrdersTable).SetMap(postgres.StructToMap(o))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if postgres.IsUniqueViolation(err) {
			return apperror.NewDuplicate("sales order", "order_number", o.OrderNumber)
		}
		if postgres.IsForeignKeyViolation(err) {
			return apperror.NewNotFound("customer", o.CustomerID.String())
		}
		return fmt.Errorf("insert sales order: %w", err)
	}

	return r.insertItems(ctx, o.Items)
}

func (r *SalesRepo) insertItems(ctx context.Context, items []sales.Item) error {
	queries := make([]postgres.BatchQuery, 0, len(items))
	for i := range items {
		q := r.builder.Insert(salesItemsTable).SetMap(postgres.StructToMap(&items[i]))
		sql, args, err := q.ToSql()
		if err != nil {
			return fmt.Errorf("build item insert: %w", err)
		}
		queries = append(queries, postgres.BatchQuery{SQL: sql, Args: args})
	}

	if err := r.batch.ExecuteBatch(ctx, queries); err != nil {
		return fmt.Errorf("insert order items: %w", err)
	}
	return nil
}

// GetOrder returns the order with its items loaded.
func (r *SalesRepo) GetOrder(ctx context.Context, orderID id.ID) (*sales.Order, error) {
	return r.getOrder(ctx, orderID, false)
}

// GetOrderForUpdate locks the order row for the rest of the transaction.
func (r *SalesRepo) GetOrderForUpdate(ctx context.Context, orderID id.ID) (*sales.Order, error) {
	return r.getOrder(ctx, orderID, true)
}

func (r *SalesRepo) getOrder(ctx context.Context, orderID id.ID, forUpdate bool) (*sales.Order, error) {
	q := r.builder.Select(r.orderColumns...).
		From(salesOrdersTable).
		Where(squirrel.Eq{"id": orderID})
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var o sales.Order
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &o, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("sales order", orderID.String())
		}
		return nil, fmt.Errorf("get sales order: %w", err)
	}

	items, err := r.listItems(ctx, orderID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func (r *SalesRepo) listItems(ctx context.Context, orderID id.ID) ([]sales.Item, error) {
	q := r.builder.Select(r.itemColumns...).
		From(salesItemsTable).
		Where(squirrel.Eq{"order_id": orderID}).
		OrderBy("id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []sales.Item
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select order items: %w", err)
	}
	return items, nil
}

// UpdateOrder saves the header with an optimistic version check. Items
// are immutable after creation.
func (r *SalesRepo) UpdateOrder(ctx context.Context, o *sales.Order) error {
	values := postgres.StructToMap(o)
	prevVersion := o.Version - 1
	delete(values, "id")
	delete(values, "created_at")

	q := r.builder.Update(salesOrdersTable).
		SetMap(values).
		Where(squirrel.Eq{"id": o.ID, "version": prevVersion})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update sales order: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("sales order", o.ID)
	}
	return nil
}

// ListOrders returns order headers matching the filter, newest first.
// Items are not loaded for listings.
func (r *SalesRepo) ListOrders(ctx context.Context, filter sales.ListFilter) ([]sales.Order, error) {
	q := r.builder.Select(r.orderColumns...).
		From(salesOrdersTable)

	if filter.CustomerID != nil {
		q = q.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
	}
	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.PaymentStatus != nil {
		q = q.Where(squirrel.Eq{"payment_status": *filter.PaymentStatus})
	}
	if filter.From != nil {
		q = q.Where(squirrel.GtOrEq{"order_date": *filter.From})
	}
	if filter.To != nil {
		q = q.Where(squirrel.Lt{"order_date": *filter.To})
	}

	q = q.OrderBy("order_date DESC", "id DESC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var orders []sales.Order
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &orders, sql, args...); err != nil {
		return nil, fmt.Errorf("select sales orders: %w", err)
	}
	return orders, nil
}

// CreatePayment inserts a payment transaction. Transactions are
// immutable once recorded.
func (r *SalesRepo) CreatePayment(ctx context.Context, p *sales.PaymentTransaction) error {
	q := r.builder.Insert(paymentsTable).SetMap(postgres.StructToMap(p))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if postgres.IsUniqueViolation(err) {
			return apperror.NewDuplicate("payment", "voucher_no", p.VoucherNo)
		}
		if postgres.IsForeignKeyViolation(err) {
			return apperror.NewNotFound("sales order", p.OrderID.String())
		}
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// ListPayments returns an order's payments in receipt order.
func (r *SalesRepo) ListPayments(ctx context.Context, orderID id.ID) ([]sales.PaymentTransaction, error) {
	q := r.builder.Select(r.paymentColumns...).
		From(paymentsTable).
		Where(squirrel.Eq{"order_id": orderID}).
		OrderBy("payment_date", "id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var payments []sales.PaymentTransaction
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &payments, sql, args...); err != nil {
		return nil, fmt.Errorf("select payments: %w", err)
	}
	return payments, nil
}

// CreateInvoice inserts the invoice. The unique order_id constraint
// backs the one-invoice-per-order rule.
func (r *SalesRepo) CreateInvoice(ctx context.Context, inv *sales.Invoice) error {
	q := r.builder.Insert(invoicesTable).SetMap(postgres.StructToMap(inv))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if postgres.IsUniqueViolation(err) {
			return apperror.NewDuplicate("invoice", "order_id", inv.OrderID.String())
		}
		if postgres.IsForeignKeyViolation(err) {
			return apperror.NewNotFound("sales order", inv.OrderID.String())
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// GetInvoiceByOrder retrieves the invoice generated for an order.
func (r *SalesRepo) GetInvoiceByOrder(ctx context.Context, orderID id.ID) (*sales.Invoice, error) {
	q := r.builder.Select(r.invoiceColumns...).
		From(invoicesTable).
		Where(squirrel.Eq{"order_id": orderID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var inv sales.Invoice
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &inv, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("invoice", orderID.String())
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return &inv, nil
}

var _ sales.Repository = (*SalesRepo)(nil)
