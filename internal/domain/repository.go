// Package domain holds the contracts shared by the show, artist and genre
// packages: soft-delete storage, association links, lifecycle hooks and
// domain events.
package domain

import (
	"context"

	"showalert/internal/core/entity"
	"showalert/internal/core/id"
	"showalert/internal/domain/filter"
	"showalert/internal/domain/reconcile"
)

// ListFilter contains common filtering options for list operations.
type ListFilter struct {
	// Search matches names case-insensitively
	Search string

	IDs []id.ID

	// IncludeDeleted is the explicit opt-in to history
	IncludeDeleted bool

	AdvancedFilters []filter.Item

	// OrderBy is a column name, "-" prefix for descending
	OrderBy string

	Limit  int
	Offset int
}

// DefaultListFilter returns sensible defaults.
func DefaultListFilter() ListFilter {
	return ListFilter{
		Limit:   50,
		OrderBy: "name",
	}
}

// ListResult contains offset-paginated results.
type ListResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// SoftDeleteStore is the storage contract of an aggregate that is never
// physically removed.
type SoftDeleteStore[T any] interface {
	Create(ctx context.Context, e T) error

	// GetByID returns the live row, NOT_FOUND when absent or soft-deleted.
	GetByID(ctx context.Context, id id.ID) (T, error)

	// GetByIDWithHistory also returns soft-deleted rows.
	GetByIDWithHistory(ctx context.Context, id id.ID) (T, error)

	// Update is a compare-and-swap on the version the entity was read at.
	// A stale version yields CONCURRENT_MODIFICATION. On success the
	// entity's version is advanced.
	Update(ctx context.Context, e T) error

	SetDeletionMark(ctx context.Context, id id.ID, marked bool) error

	Exists(ctx context.Context, id id.ID) (bool, error)

	List(ctx context.Context, f ListFilter) (ListResult[T], error)
}

// Link is an association row between an owner and a related entity, for
// example show -> artist.
type Link struct {
	entity.BaseLink
	RelatedID id.ID `db:"related_id" json:"relatedId"`
}

// LinkStore is one association table seen from one side. The same table can
// be exposed from both sides, which is how deleting a genre cascades into
// show_genre rows.
type LinkStore interface {
	reconcile.Store[id.ID, Link]
}

// HookEvent is a lifecycle point.
type HookEvent string

const (
	BeforeCreate HookEvent = "before_create"
	AfterCreate  HookEvent = "after_create"
	BeforeUpdate HookEvent = "before_update"
	AfterUpdate  HookEvent = "after_update"
	AfterDelete  HookEvent = "after_delete"

	// OnSave and OnDelete run inside the mutating transaction. A failing
	// hook rolls the whole mutation back.
	OnSave   HookEvent = "on_save"
	OnDelete HookEvent = "on_delete"
)

// Hook runs at a lifecycle point.
type Hook[T any] func(ctx context.Context, e T) error

// HookRegistry stores lifecycle hooks for an entity type.
type HookRegistry[T any] struct {
	hooks map[HookEvent][]Hook[T]
}

// NewHookRegistry creates an empty registry.
func NewHookRegistry[T any]() *HookRegistry[T] {
	return &HookRegistry[T]{hooks: make(map[HookEvent][]Hook[T])}
}

// On registers hook for event.
func (r *HookRegistry[T]) On(event HookEvent, hook Hook[T]) {
	r.hooks[event] = append(r.hooks[event], hook)
}

// Run executes the hooks of event in registration order.
func (r *HookRegistry[T]) Run(ctx context.Context, event HookEvent, e T) error {
	for _, hook := range r.hooks[event] {
		if err := hook(ctx, e); err != nil {
			return err
		}
	}
	return nil
}
