package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"refurbhq/internal/core/apperror"
	"refurbhq/internal/core/id"
	"refurbhq/internal/domain/catalogs/customer"
	"refurbhq/internal/infrastructure/storage/postgres"
)

const customersTable = "cat_customers"

// CustomerRepo implements customer.Repository.
type CustomerRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
	columns []string
}

// NewCustomerRepo creates a new customer repository.
func NewCustomerRepo(txm *postgres.TxManager) *CustomerRepo {
	return &CustomerRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		columns: postgres.ExtractDBColumns[customer.Customer](),
	}
}

// Create inserts a customer.
func (r *CustomerRepo) Create(ctx context.Context, c *customer.Customer) error {
	q := r.builder.Insert(customersTable).SetMap(postgres.StructToMap(c))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if postgres.IsUniqueViolation(err) {
			return apperror.NewDuplicate("customer", "email or phone", c.ShopName)
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

// Update saves a customer with an optimistic version check.
func (r *CustomerRepo) Update(ctx context.Context, c *customer.Customer) error {
	values := postgres.StructToMap(c)
	prevVersion := c.Version - 1
	delete(values, "id")
	delete(values, "created_at")

	q := r.builder.Update(customersTable).
		SetMap(values).
		Where(squirrel.Eq{"id": c.ID, "version": prevVersion})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("customer", c.ID)
	}
	return nil
}

// GetByID retrieves a customer.
func (r *CustomerRepo) GetByID(ctx context.Context, customerID id.ID) (*customer.Customer, error) {
	return r.getWhere(ctx, squirrel.Eq{"id": customerID}, customerID.String())
}

// FindByEmail retrieves a customer by email.
func (r *CustomerRepo) FindByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	return r.getWhere(ctx, squirrel.Eq{"email": email}, email)
}

// FindByPhone retrieves a customer by phone number.
func (r *CustomerRepo) FindByPhone(ctx context.Context, phone string) (*customer.Customer, error) {
	return r.getWhere(ctx, squirrel.Eq{"phone_number": phone}, phone)
}

func (r *CustomerRepo) getWhere(ctx context.Context, where squirrel.Eq, key string) (*customer.Customer, error) {
	q := r.builder.Select(r.columns...).
		From(customersTable).
		Where(where).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var c customer.Customer
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &c, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("customer", key)
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return &c, nil
}

// List returns a page of customers ordered by shop name.
func (r *CustomerRepo) List(ctx context.Context, limit, offset int) ([]customer.Customer, error) {
	q := r.builder.Select(r.columns...).
		From(customersTable).
		OrderBy("shop_name")
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

	var customers []customer.Customer
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &customers, sql, args...); err != nil {
		return nil, fmt.Errorf("select customers: %w", err)
	}
	return customers, nil
}

var _ customer.Repository = (*CustomerRepo)(nil)
