// Package assoc_repo provides PostgreSQL stores for association rows: the
// show/artist/genre link tables, show ticketing times and show search rows.
// Every store implements reconcile.Store for one side of its table.
package assoc_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"showalert/internal/core/id"
	"showalert/internal/infrastructure/storage/postgres"
)

// table is the shared implementation of an association store. K is the
// reconciliation key and R the scanned row.
type table[K comparable, R any] struct {
	db       postgres.QuerierProvider
	name     string
	ownerCol string

	// selectCols alias the owner column to owner_id so that rows scan into
	// entity.BaseLink whichever side the table is seen from.
	selectCols []string

	// keyCols are written from a key by keyValues, in order.
	keyCols   []string
	keyValues func(K) []any

	key   func(R) K
	rowID func(R) id.ID
}

func (t *table[K, R]) Key(row R) K { return t.key(row) }

func (t *table[K, R]) listActiveQuery(owner id.ID) squirrel.SelectBuilder {
	return postgres.Builder().
		Select(t.selectCols...).
		From(t.name).
		Where(squirrel.Eq{t.ownerCol: owner}).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("created_at ASC", "id ASC")
}

// ListActive returns the live rows of owner, oldest first.
func (t *table[K, R]) ListActive(ctx context.Context, owner id.ID) ([]R, error) {
	sql, args, err := t.listActiveQuery(owner).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	rows := []R{}
	if err := pgxscan.Select(ctx, t.db.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list %s: %w", t.name, err)
	}
	return rows, nil
}

func (t *table[K, R]) insertQuery(owner id.ID, keys []K, now time.Time) squirrel.InsertBuilder {
	cols := append([]string{"id", t.ownerCol}, t.keyCols...)
	cols = append(cols, "deletion_mark", "created_at")

	q := postgres.Builder().Insert(t.name).Columns(cols...)
	for _, k := range keys {
		vals := append([]any{id.New(), owner}, t.keyValues(k)...)
		vals = append(vals, false, now)
		q = q.Values(vals...)
	}
	return q
}

// Insert creates one live row per key in a single multi-row statement.
func (t *table[K, R]) Insert(ctx context.Context, owner id.ID, keys []K) error {
	if len(keys) == 0 {
		return nil
	}
	sql, args, err := t.insertQuery(owner, keys, time.Now().UTC()).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := t.db.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.TranslateError(err, "insert", t.name)
	}
	return nil
}

func (t *table[K, R]) softDeleteQuery(rows []R) squirrel.UpdateBuilder {
	ids := make([]id.ID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, t.rowID(r))
	}
	return postgres.Builder().
		Update(t.name).
		Set("deletion_mark", true).
		Where(squirrel.Eq{"id": ids}).
		Where(squirrel.Eq{"deletion_mark": false})
}

// SoftDelete marks rows deleted. Rows already marked are left alone.
func (t *table[K, R]) SoftDelete(ctx context.Context, rows []R) error {
	if len(rows) == 0 {
		return nil
	}
	sql, args, err := t.softDeleteQuery(rows).ToSql()
	if err != nil {
		return fmt.Errorf("build soft delete: %w", err)
	}
	if _, err := t.db.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("soft delete %s: %w", t.name, err)
	}
	return nil
}
