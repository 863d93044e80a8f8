package ledger

import (
	"context"

	"refurbhq/internal/core/id"
)

// Repository defines persistence operations for the customer ledger.
type Repository interface {
	// LockCustomer takes a row lock on the customer, serializing
	// concurrent appends for the same customer within a transaction.
	LockCustomer(ctx context.Context, customerID id.ID) error

	// GetLastEntry returns the most recent entry for the customer under
	// the (entry_date, id) total order, or a NOT_FOUND error when the
	// ledger is empty.
	GetLastEntry(ctx context.Context, customerID id.ID) (*Entry, error)

	// Create appends the entry. The stored balance is immutable.
	Create(ctx context.Context, e *Entry) error

	// ListByCustomer returns entries in ledger order.
	ListByCustomer(ctx context.Context, customerID id.ID, limit, offset int) ([]Entry, error)
}
