// Package reconcile brings the active association rows of one owner in line
// with a desired set of keys. Rows are only ever inserted or soft-deleted.
//
// The package never opens a transaction and never emits events: callers run
// Reconcile inside tx.Manager.RunInTransaction and decide what to publish
// from the returned Delta.
package reconcile

import (
	"context"
	"fmt"

	"showalert/internal/core/id"
)

// Delta is the difference between the desired keys and the active rows.
type Delta[K comparable, R any] struct {
	// ToAdd are desired keys without an active row, in desired order.
	ToAdd []K
	// ToRemove are active rows whose key is not desired, plus surplus rows
	// when more than one active row shares a key.
	ToRemove []R
}

// Empty reports whether nothing needs to change.
func (d Delta[K, R]) Empty() bool {
	return len(d.ToAdd) == 0 && len(d.ToRemove) == 0
}

// Compute derives the Delta between desired and current. Duplicate desired
// keys collapse to one. When history left several active rows for one key,
// the first is kept and the rest are scheduled for removal.
func Compute[K comparable, R any](desired []K, current []R, key func(R) K) Delta[K, R] {
	want := make(map[K]struct{}, len(desired))
	for _, k := range desired {
		want[k] = struct{}{}
	}

	var d Delta[K, R]
	have := make(map[K]struct{}, len(current))
	for _, row := range current {
		k := key(row)
		if _, ok := want[k]; !ok {
			d.ToRemove = append(d.ToRemove, row)
			continue
		}
		if _, dup := have[k]; dup {
			d.ToRemove = append(d.ToRemove, row)
			continue
		}
		have[k] = struct{}{}
	}

	for _, k := range desired {
		if _, ok := have[k]; ok {
			continue
		}
		have[k] = struct{}{}
		d.ToAdd = append(d.ToAdd, k)
	}
	return d
}

// Store is the persistence side of one association kind, scoped by owner.
type Store[K comparable, R any] interface {
	// ListActive returns the non-deleted rows of owner.
	ListActive(ctx context.Context, owner id.ID) ([]R, error)
	// Key extracts the reconciliation key of a row.
	Key(row R) K
	// Insert creates one active row per key.
	Insert(ctx context.Context, owner id.ID, keys []K) error
	// SoftDelete marks rows deleted.
	SoftDelete(ctx context.Context, rows []R) error
}

// Reconcile makes the active rows of owner equal to desired and returns what
// it changed. Running it again with the same input changes nothing.
func Reconcile[K comparable, R any](ctx context.Context, s Store[K, R], owner id.ID, desired []K) (Delta[K, R], error) {
	current, err := s.ListActive(ctx, owner)
	if err != nil {
		return Delta[K, R]{}, fmt.Errorf("list active: %w", err)
	}

	d := Compute(desired, current, s.Key)

	if len(d.ToRemove) > 0 {
		if err := s.SoftDelete(ctx, d.ToRemove); err != nil {
			return Delta[K, R]{}, fmt.Errorf("soft delete: %w", err)
		}
	}
	if len(d.ToAdd) > 0 {
		if err := s.Insert(ctx, owner, d.ToAdd); err != nil {
			return Delta[K, R]{}, fmt.Errorf("insert: %w", err)
		}
	}
	return d, nil
}

// Cascade soft-deletes every active row of owner. It is Reconcile against the
// empty set.
func Cascade[K comparable, R any](ctx context.Context, s Store[K, R], owner id.ID) (Delta[K, R], error) {
	return Reconcile(ctx, s, owner, nil)
}

// Step is one association to reconcile for an owner.
type Step interface {
	Run(ctx context.Context, owner id.ID) error
}

// StepFunc adapts a function to Step.
type StepFunc func(ctx context.Context, owner id.ID) error

func (f StepFunc) Run(ctx context.Context, owner id.ID) error { return f(ctx, owner) }

// Bind returns a Step that reconciles s to desired and stores the delta in
// out (which may be nil).
func Bind[K comparable, R any](name string, s Store[K, R], desired []K, out *Delta[K, R]) Step {
	return StepFunc(func(ctx context.Context, owner id.ID) error {
		d, err := Reconcile(ctx, s, owner, desired)
		if err != nil {
			return fmt.Errorf("reconcile %s: %w", name, err)
		}
		if out != nil {
			*out = d
		}
		return nil
	})
}

// BindCascade returns a Step that cascades s.
func BindCascade[K comparable, R any](name string, s Store[K, R]) Step {
	return Bind[K, R](name, s, nil, nil)
}

// All runs steps in order and stops at the first failure.
func All(ctx context.Context, owner id.ID, steps ...Step) error {
	for _, st := range steps {
		if err := st.Run(ctx, owner); err != nil {
			return err
		}
	}
	return nil
}
