// Package audit defines the audit-trail contract for accounting
// mutations. The storage implementation compresses large change
// payloads before persisting them.
package audit

import (
	"context"

	"refurbhq/internal/core/id"
)

// Action is the type of audited operation.
type Action string

const (
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionUsage   Action = "usage"
	ActionPayment Action = "payment"
)

// Record describes one audited mutation.
type Record struct {
	EntityType string
	EntityID   id.ID
	Action     Action
	UserID     string

	// Changes is an arbitrary JSON-serializable snapshot of the change
	Changes any
}

// Recorder persists audit records. Implementations must never fail the
// business operation: audit write errors are logged, not propagated.
type Recorder interface {
	Record(ctx context.Context, rec Record)
}

// Nop is a Recorder that discards everything. Used in tests and when
// auditing is disabled.
type Nop struct{}

// Record implements Recorder.
func (Nop) Record(ctx context.Context, rec Record) {}
