package pagination

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"showalert/internal/core/apperror"
	"showalert/internal/core/id"
	"showalert/internal/domain/filter"
)

const (
	DefaultSize = 20
	MaxSize     = 100
)

var tracer = otel.Tracer("showalert/pagination")

// Query is what a Source is asked to execute: rows matching Filters and
// (when set) strictly After the keyset, ordered by Ordering, at most Limit.
type Query struct {
	Filters  []filter.Item
	Ordering Ordering
	After    *Keyset
	Limit    int
}

// Source is the storage side of the paginator.
type Source[T Keyed] interface {
	// ResolveCursor returns the current key of the row identified by
	// cursorID under ordering. A row that is gone must yield an apperror
	// NOT_FOUND. The returned Key.ID may differ from cursorID when the
	// source maps an alias (such as an owning row's id) onto a concrete
	// tie-break row; a nil Key.ID means cursorID itself.
	ResolveCursor(ctx context.Context, ordering Ordering, cursorID id.ID) (Key, error)

	Fetch(ctx context.Context, q Query) ([]T, error)
}

// Request is one page request.
type Request struct {
	Ordering Ordering
	CursorID *id.ID
	Size     int
	Filters  []filter.Item
}

// Page is one page of results.
type Page[T any] struct {
	Items   []T
	HasNext bool
	Next    *Cursor
}

// Paginate returns the page of src after req.CursorID. It fetches one row
// more than requested to learn whether a further page exists. The next
// cursor is built from the last row actually returned, so concatenating
// pages never skips or repeats a row while the underlying order is stable.
func Paginate[T Keyed](ctx context.Context, src Source[T], req Request) (page Page[T], err error) {
	ctx, span := tracer.Start(ctx, "paginate")
	span.SetAttributes(
		attribute.String("pagination.ordering", req.Ordering.Name),
		attribute.Int("pagination.size", req.Size),
		attribute.Bool("pagination.has_cursor", req.CursorID != nil),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(
				attribute.Int("pagination.rows", len(page.Items)),
				attribute.Bool("pagination.has_next", page.HasNext),
			)
		}
		span.End()
	}()

	if req.Size <= 0 {
		return page, apperror.NewValidation("size must be positive").WithDetail("size", req.Size)
	}
	if req.Size > MaxSize {
		return page, apperror.NewValidation("size is too large").
			WithDetail("size", req.Size).
			WithDetail("max", MaxSize)
	}
	if err := req.Ordering.Validate(); err != nil {
		return page, apperror.NewInternal(err)
	}

	q := Query{
		Filters:  req.Filters,
		Ordering: req.Ordering,
		Limit:    req.Size + 1,
	}

	if req.CursorID != nil {
		anchor, err := src.ResolveCursor(ctx, req.Ordering, *req.CursorID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return page, apperror.NewStaleCursor(req.CursorID.String()).WithCause(err)
			}
			return page, fmt.Errorf("resolve cursor: %w", err)
		}
		if id.IsNil(anchor.ID) {
			anchor.ID = *req.CursorID
		}
		q.After = &Keyset{Ordering: req.Ordering, Anchor: anchor}
	}

	rows, err := src.Fetch(ctx, q)
	if err != nil {
		return page, fmt.Errorf("fetch page: %w", err)
	}

	if len(rows) > req.Size {
		page.HasNext = true
		rows = rows[:req.Size]
	}
	page.Items = rows
	if page.Items == nil {
		page.Items = []T{}
	}

	if n := len(page.Items); n > 0 {
		last := page.Items[n-1].PageKey()
		page.Next = &Cursor{ID: last.ID, Value: last.Value}
	}
	return page, nil
}
