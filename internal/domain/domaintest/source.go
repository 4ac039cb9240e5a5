package domaintest

import (
	"context"
	"sort"

	"showalert/internal/core/id"
	"showalert/internal/domain/filter"
	"showalert/internal/domain/pagination"
)

// Fields maps a row to the column values its filters refer to.
type Fields[T any] func(row T) map[string]any

// Select applies q to rows the way a SQL source does: filters, then the
// keyset, then the ordering and the limit.
func Select[T pagination.Keyed](rows []T, q pagination.Query, fields Fields[T]) ([]T, error) {
	var out []T
	for _, row := range rows {
		ok, err := filter.MatchAll(q.Filters, fields(row))
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if q.After != nil {
			ok, err := q.After.Admits(row.PageKey())
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}
		out = append(out, row)
	}

	var sortErr error
	sort.SliceStable(out, func(i, j int) bool {
		c, err := q.Ordering.Compare(out[i].PageKey(), out[j].PageKey())
		if err != nil {
			sortErr = err
		}
		return c < 0
	})
	if sortErr != nil {
		return nil, sortErr
	}

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// KeyedRecord is a stored record that can be paged.
type KeyedRecord interface {
	Record
	pagination.Keyed
}

// KeyedStore is a MemStore that also serves cursor listings.
type KeyedStore[T KeyedRecord] struct {
	*MemStore[T]
	fields Fields[T]
}

// NewKeyedStore creates an empty store whose rows expose fields to filters.
func NewKeyedStore[T KeyedRecord](name string, fields Fields[T]) *KeyedStore[T] {
	return &KeyedStore[T]{MemStore: NewMemStore[T](name), fields: fields}
}

// ResolveCursor returns the key of a live record. A deleted one is
// NOT_FOUND.
func (s *KeyedStore[T]) ResolveCursor(ctx context.Context, _ pagination.Ordering, cursorID id.ID) (pagination.Key, error) {
	e, err := s.GetByID(ctx, cursorID)
	if err != nil {
		return pagination.Key{}, err
	}
	return e.PageKey(), nil
}

func (s *KeyedStore[T]) Fetch(_ context.Context, q pagination.Query) ([]T, error) {
	return Select(s.Live(), q, s.fields)
}
