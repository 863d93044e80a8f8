// Package tx defines the transaction management contract used by domain
// services. The concrete implementation lives in the storage layer; domain
// code only ever sees this interface.
package tx

import (
	"context"
)

// Manager runs functions inside a database transaction.
type Manager interface {
	// RunInTransaction executes fn within a transaction. An error from fn
	// rolls the transaction back; otherwise it is committed.
	//
	// Nested calls reuse the transaction already carried by ctx.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager extends Manager with read-only transaction support,
// for queries that must see a consistent snapshot but never write.
type ReadOnlyManager interface {
	Manager

	// ReadOnly executes fn in a read-only transaction.
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}
