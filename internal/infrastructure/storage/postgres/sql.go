package postgres

import (
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"

	"showalert/internal/core/apperror"
	"showalert/internal/domain/filter"
	"showalert/internal/domain/pagination"
)

// PostgreSQL error codes we translate.
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

// Builder returns a squirrel builder with PostgreSQL placeholders.
func Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Columns is a whitelist of column expressions usable in predicates and
// orderings. Anything else is rejected before it reaches SQL.
type Columns map[string]bool

// NewColumns builds a whitelist from names.
func NewColumns(names ...string) Columns {
	c := make(Columns, len(names))
	for _, n := range names {
		c[n] = true
	}
	return c
}

// With returns a copy of c extended by names.
func (c Columns) With(names ...string) Columns {
	out := make(Columns, len(c)+len(names))
	for k := range c {
		out[k] = true
	}
	for _, n := range names {
		out[n] = true
	}
	return out
}

// FilterExpr translates one filter item.
func FilterExpr(item filter.Item) (squirrel.Sqlizer, error) {
	switch item.Operator {
	case filter.Equal, filter.InList:
		return squirrel.Eq{item.Field: item.Value}, nil
	case filter.NotEqual, filter.NotInList:
		return squirrel.NotEq{item.Field: item.Value}, nil
	case filter.Less:
		return squirrel.Lt{item.Field: item.Value}, nil
	case filter.LessOrEqual:
		return squirrel.LtOrEq{item.Field: item.Value}, nil
	case filter.Greater:
		return squirrel.Gt{item.Field: item.Value}, nil
	case filter.GreaterOrEqual:
		return squirrel.GtOrEq{item.Field: item.Value}, nil
	case filter.IsNull:
		return squirrel.Eq{item.Field: nil}, nil
	case filter.IsNotNull:
		return squirrel.NotEq{item.Field: nil}, nil
	case filter.Contains:
		return squirrel.ILike{item.Field: fmt.Sprintf("%%%v%%", item.Value)}, nil
	case filter.NotContains:
		return squirrel.NotILike{item.Field: fmt.Sprintf("%%%v%%", item.Value)}, nil
	}
	return nil, apperror.NewValidation("unsupported filter operator").
		WithDetail("field", item.Field).
		WithDetail("operator", item.Operator)
}

// ApplyFilters adds every item to q as a WHERE clause.
func ApplyFilters(q squirrel.SelectBuilder, items []filter.Item, allowed Columns) (squirrel.SelectBuilder, error) {
	for _, item := range items {
		if !allowed[item.Field] {
			return q, apperror.NewValidation("invalid filter column").WithDetail("field", item.Field)
		}
		expr, err := FilterExpr(item)
		if err != nil {
			return q, err
		}
		q = q.Where(expr)
	}
	return q, nil
}

// KeysetExpr renders the strict "after" predicate of k:
//
//	(primary > v OR (primary = v AND tie > id))
//
// with < instead of > on the primary column for descending orderings.
func KeysetExpr(k pagination.Keyset) squirrel.Sqlizer {
	o := k.Ordering
	var after squirrel.Sqlizer = squirrel.Gt{o.Primary: k.Anchor.Value}
	if o.Direction == pagination.Desc {
		after = squirrel.Lt{o.Primary: k.Anchor.Value}
	}
	return squirrel.Or{
		after,
		squirrel.And{
			squirrel.Eq{o.Primary: k.Anchor.Value},
			squirrel.Gt{o.TieBreak: k.Anchor.ID},
		},
	}
}

// OrderByClauses renders o for SelectBuilder.OrderBy.
func OrderByClauses(o pagination.Ordering) []string {
	return []string{
		o.Primary + " " + string(o.Direction),
		o.TieBreak + " ASC",
	}
}

// ApplyPageQuery adds filters, keyset, ordering and limit of pq to q.
func ApplyPageQuery(q squirrel.SelectBuilder, pq pagination.Query, allowed Columns) (squirrel.SelectBuilder, error) {
	if !allowed[pq.Ordering.Primary] || !allowed[pq.Ordering.TieBreak] {
		return q, fmt.Errorf("ordering %q uses columns outside the whitelist", pq.Ordering.Name)
	}
	q, err := ApplyFilters(q, pq.Filters, allowed)
	if err != nil {
		return q, err
	}
	if pq.After != nil {
		q = q.Where(KeysetExpr(*pq.After))
	}
	q = q.OrderBy(OrderByClauses(pq.Ordering)...)
	if pq.Limit > 0 {
		q = q.Limit(uint64(pq.Limit))
	}
	return q, nil
}

// TranslateError maps constraint violations to AppErrors and wraps the rest.
func TranslateError(err error, op, entity string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgForeignKeyViolation:
			return apperror.NewValidation("referenced record does not exist").
				WithDetail("entity", entity).
				WithDetail("constraint", pgErr.ConstraintName).
				WithCause(err)
		case pgUniqueViolation:
			return apperror.NewConflict("record already exists").
				WithDetail("entity", entity).
				WithDetail("constraint", pgErr.ConstraintName).
				WithCause(err)
		}
	}
	return fmt.Errorf("%s %s: %w", op, entity, err)
}
