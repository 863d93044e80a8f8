// Package ledger provides the per-customer running-balance ledger.
// The ledger is append-only: every entry stores the balance computed
// from the entry before it, and stored balances are never rewritten.
// Corrections are made with corrective entries, not edits.
package ledger

import (
	"context"
	"time"

	"refurbhq/internal/core/apperror"
	"refurbhq/internal/core/id"
	"refurbhq/internal/core/types"
)

// Entry is a single ledger line for a customer.
//
// Entries are totally ordered by (EntryDate, ID). IDs are UUIDv7, so the
// id tiebreak follows insertion order for same-timestamp entries.
type Entry struct {
	ID         id.ID     `db:"id" json:"id"`
	CustomerID id.ID     `db:"customer_id" json:"customerId"`
	EntryDate  time.Time `db:"entry_date" json:"entryDate"`

	Description string `db:"description" json:"description"`

	Debit  types.Money `db:"debit" json:"debit"`
	Credit types.Money `db:"credit" json:"credit"`

	// Balance is previous balance + credit - debit, fixed at append time
	Balance types.Money `db:"balance" json:"balance"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Validate checks entry invariants before append.
func (e *Entry) Validate(ctx context.Context) error {
	if id.IsNil(e.CustomerID) {
		return apperror.NewValidation("customer is required").
			WithDetail("field", "customerId")
	}
	if e.Description == "" {
		return apperror.NewValidation("description is required").
			WithDetail("field", "description")
	}
	if e.Debit.IsNegative() {
		return apperror.NewValidation("debit cannot be negative").
			WithDetail("field", "debit")
	}
	if e.Credit.IsNegative() {
		return apperror.NewValidation("credit cannot be negative").
			WithDetail("field", "credit")
	}
	return nil
}
