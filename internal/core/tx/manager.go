// Package tx lets domain services run a unit of work atomically without
// knowing about pgx. The PostgreSQL implementation is
// postgres.TxManager; tests use a pass-through.
package tx

import (
	"context"
)

// Manager runs fn in one transaction. Admin mutations wrap the aggregate
// write, every association reconcile and the outbox insert in a single
// call, so a failure anywhere rolls back all of it.
type Manager interface {
	// RunInTransaction commits when fn returns nil and rolls back
	// otherwise. A call made with a ctx that already carries a
	// transaction joins it.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager adds read-only transactions. The show detail query runs
// its four statements in one so the sets it returns are consistent.
type ReadOnlyManager interface {
	Manager

	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}
