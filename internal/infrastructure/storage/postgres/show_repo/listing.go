// Package show_repo implements the read side of the show aggregate: cursor
// listings, detail projections, the terminated-ticketing count and the view
// counter.
package show_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"showalert/internal/core/apperror"
	"showalert/internal/core/id"
	"showalert/internal/domain/pagination"
	"showalert/internal/domain/show"
	"showalert/internal/infrastructure/storage/postgres"
)

// Columns a listing query may filter or order on.
var listingColumns = postgres.NewColumns(
	"s.id", "s.deletion_mark", "s.view_count", "s.end_date", "s.start_date",
	"stt.id", "stt.deletion_mark", "stt.ticketing_at", "stt.ticketing_type",
)

func listingFrom(q squirrel.SelectBuilder) squirrel.SelectBuilder {
	return q.From("show s").Join("show_ticketing_time stt ON stt.show_id = s.id")
}

// recentSource lists one row per ticketing time.
type recentSource struct {
	db postgres.QuerierProvider
}

var _ pagination.Source[*show.ListItem] = (*recentSource)(nil)

func (r *recentSource) fetchQuery(pq pagination.Query) (squirrel.SelectBuilder, error) {
	q := listingFrom(postgres.Builder().Select(
		"stt.id AS cursor_id",
		"s.id AS show_id",
		"s.title", "s.location", "s.image", "s.start_date", "s.end_date",
		"stt.ticketing_type", "stt.ticketing_at",
		"s.view_count",
	))
	return postgres.ApplyPageQuery(q, pq, listingColumns)
}

func (r *recentSource) Fetch(ctx context.Context, pq pagination.Query) ([]*show.ListItem, error) {
	q, err := r.fetchQuery(pq)
	if err != nil {
		return nil, err
	}
	return fetchItems(ctx, r.db, q, show.Recent)
}

// resolveByRowQuery finds a live ticketing time of a live show.
func resolveByRowQuery(cursorID id.ID) squirrel.SelectBuilder {
	return postgres.Builder().
		Select("stt.id", "stt.ticketing_at").
		From("show_ticketing_time stt").
		Join("show s ON s.id = stt.show_id").
		Where(squirrel.Eq{"stt.id": cursorID}).
		Where(squirrel.Eq{"stt.deletion_mark": false}).
		Where(squirrel.Eq{"s.deletion_mark": false})
}

// resolveByShowQuery maps a show id to its earliest live ticketing time.
// Clients that kept a show id from a listing row resume after that row, so
// later ticketing times of the same show are listed again rather than skipped.
func resolveByShowQuery(showID id.ID) squirrel.SelectBuilder {
	return postgres.Builder().
		Select("stt.id", "stt.ticketing_at").
		From("show_ticketing_time stt").
		Join("show s ON s.id = stt.show_id").
		Where(squirrel.Eq{"s.id": showID}).
		Where(squirrel.Eq{"stt.deletion_mark": false}).
		Where(squirrel.Eq{"s.deletion_mark": false}).
		OrderBy("stt.ticketing_at ASC", "stt.id ASC").
		Limit(1)
}

func (r *recentSource) ResolveCursor(ctx context.Context, _ pagination.Ordering, cursorID id.ID) (pagination.Key, error) {
	for _, q := range []squirrel.SelectBuilder{resolveByRowQuery(cursorID), resolveByShowQuery(cursorID)} {
		key, found, err := scanKey(ctx, r.db, q)
		if err != nil {
			return pagination.Key{}, err
		}
		if found {
			return key, nil
		}
	}
	return pagination.Key{}, apperror.NewNotFound("show_ticketing_time", cursorID.String())
}

// popularSource lists one row per show, carrying its earliest qualifying
// ticketing time.
type popularSource struct {
	db postgres.QuerierProvider
}

var _ pagination.Source[*show.ListItem] = (*popularSource)(nil)

func (p *popularSource) fetchQuery(pq pagination.Query) (squirrel.SelectBuilder, error) {
	q := listingFrom(postgres.Builder().Select(
		"s.id AS cursor_id",
		"s.id AS show_id",
		"s.title", "s.location", "s.image", "s.start_date", "s.end_date",
		"(array_agg(stt.ticketing_type ORDER BY stt.ticketing_at, stt.id))[1] AS ticketing_type",
		"MIN(stt.ticketing_at) AS ticketing_at",
		"s.view_count",
	)).GroupBy("s.id")
	return postgres.ApplyPageQuery(q, pq, listingColumns)
}

func (p *popularSource) Fetch(ctx context.Context, pq pagination.Query) ([]*show.ListItem, error) {
	q, err := p.fetchQuery(pq)
	if err != nil {
		return nil, err
	}
	return fetchItems(ctx, p.db, q, show.Popular)
}

func resolvePopularQuery(showID id.ID) squirrel.SelectBuilder {
	return postgres.Builder().
		Select("s.id", "s.view_count").
		From("show s").
		Where(squirrel.Eq{"s.id": showID}).
		Where(squirrel.Eq{"s.deletion_mark": false})
}

func (p *popularSource) ResolveCursor(ctx context.Context, _ pagination.Ordering, cursorID id.ID) (pagination.Key, error) {
	key, found, err := scanKey(ctx, p.db, resolvePopularQuery(cursorID))
	if err != nil {
		return pagination.Key{}, err
	}
	if !found {
		return pagination.Key{}, apperror.NewNotFound("show", cursorID.String())
	}
	return key, nil
}

func fetchItems(ctx context.Context, db postgres.QuerierProvider, q squirrel.SelectBuilder, mode show.SortMode) ([]*show.ListItem, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	items := []*show.ListItem{}
	if err := pgxscan.Select(ctx, db.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("fetch %s listing: %w", mode, err)
	}
	for _, it := range items {
		it.Mode = mode
	}
	return items, nil
}

// scanKey reads (id, value) from the first row of q.
func scanKey(ctx context.Context, db postgres.QuerierProvider, q squirrel.SelectBuilder) (pagination.Key, bool, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return pagination.Key{}, false, fmt.Errorf("build query: %w", err)
	}
	var key pagination.Key
	err = db.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&key.ID, &key.Value)
	if err == pgx.ErrNoRows {
		return pagination.Key{}, false, nil
	}
	if err != nil {
		return pagination.Key{}, false, fmt.Errorf("resolve cursor: %w", err)
	}
	return key, true, nil
}
