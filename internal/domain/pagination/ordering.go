// Package pagination implements keyset (cursor) pagination over a total
// order made of a primary sort column and a unique tie-break id.
package pagination

import (
	"fmt"

	"showalert/internal/core/id"
	"showalert/internal/domain/filter"
)

// Direction of the primary sort column. The tie-break is always ascending.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// Ordering is a registered sort mode. New modes are added as data, the
// paginator never switches on the mode name.
type Ordering struct {
	Name      string
	Primary   string
	Direction Direction
	TieBreak  string
}

// Key is the position of one row within an Ordering.
type Key struct {
	ID    id.ID
	Value any
}

// Keyed is implemented by every row type a Source returns.
type Keyed interface {
	PageKey() Key
}

// Validate checks that o is usable.
func (o Ordering) Validate() error {
	if o.Primary == "" || o.TieBreak == "" {
		return fmt.Errorf("ordering %q: primary and tie-break columns are required", o.Name)
	}
	if o.Direction != Asc && o.Direction != Desc {
		return fmt.Errorf("ordering %q: bad direction %q", o.Name, o.Direction)
	}
	return nil
}

// Compare returns -1 when a sorts before b under o, +1 when after, 0 for the
// same position.
func (o Ordering) Compare(a, b Key) (int, error) {
	c, err := filter.Compare(a.Value, b.Value)
	if err != nil {
		return 0, fmt.Errorf("ordering %q: %w", o.Name, err)
	}
	if o.Direction == Desc {
		c = -c
	}
	if c != 0 {
		return c, nil
	}
	return id.Compare(a.ID, b.ID), nil
}

// Keyset is the strict "after the anchor" predicate for an Ordering:
//
//	primary ⋗ anchor.Value OR (primary = anchor.Value AND tie > anchor.ID)
//
// where ⋗ is > for ascending and < for descending orderings. It is plain
// data: storage adapters render it as SQL, Admits evaluates it in memory.
type Keyset struct {
	Ordering Ordering
	Anchor   Key
}

// PrimaryOperator is the comparison applied to the primary column.
func (k Keyset) PrimaryOperator() filter.ComparisonType {
	if k.Ordering.Direction == Desc {
		return filter.Less
	}
	return filter.Greater
}

// Admits reports whether key lies strictly after the anchor.
func (k Keyset) Admits(key Key) (bool, error) {
	c, err := k.Ordering.Compare(key, k.Anchor)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
