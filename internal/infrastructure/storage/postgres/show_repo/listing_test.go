package show_repo

import (
	"testing"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"showalert/internal/core/id"
	"showalert/internal/domain/pagination"
	"showalert/internal/domain/show"
)

const listingCols = "s.title, s.location, s.image, s.start_date, s.end_date"

func listingQuery(mode show.SortMode, openOnly bool, anchor *pagination.Key) pagination.Query {
	o := show.Orderings[mode]
	pq := pagination.Query{
		Filters: show.ListFilters(show.ListRequest{
			OnlyOpenSchedule: openOnly,
			Now:              time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		}),
		Ordering: o,
		Limit:    21,
	}
	if anchor != nil {
		pq.After = &pagination.Keyset{Ordering: o, Anchor: *anchor}
	}
	return pq
}

func TestRecentSource_FetchSQL(t *testing.T) {
	src := &recentSource{}
	anchor := pagination.Key{ID: id.New(), Value: time.Date(2026, 3, 2, 20, 0, 0, 0, time.UTC)}

	q, err := src.fetchQuery(listingQuery(show.Recent, true, &anchor))
	require.NoError(t, err)

	sql, args, err := q.ToSql()
	require.NoError(t, err)

	wantSQL := "SELECT stt.id AS cursor_id, s.id AS show_id, " + listingCols + ", stt.ticketing_type, stt.ticketing_at, s.view_count " +
		"FROM show s JOIN show_ticketing_time stt ON stt.show_id = s.id " +
		"WHERE s.deletion_mark = $1 AND stt.deletion_mark = $2 AND stt.ticketing_at > $3 " +
		"AND (stt.ticketing_at > $4 OR (stt.ticketing_at = $5 AND stt.id > $6)) " +
		"ORDER BY stt.ticketing_at ASC, stt.id ASC LIMIT 21"
	if sql != wantSQL {
		t.Errorf("SQL mismatch\nwant: %s\ngot:  %s", wantSQL, sql)
	}
	require.Len(t, args, 6)
	assert.Equal(t, anchor.Value, args[3])
	assert.Equal(t, anchor.ID.String(), args[5])
}

func TestRecentSource_FetchSQL_EndDateFilter(t *testing.T) {
	src := &recentSource{}

	q, err := src.fetchQuery(listingQuery(show.Recent, false, nil))
	require.NoError(t, err)

	sql, args, err := q.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "WHERE s.deletion_mark = $1 AND stt.deletion_mark = $2 AND s.end_date > $3 ORDER BY")
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), args[2])
}

func TestPopularSource_FetchSQL(t *testing.T) {
	src := &popularSource{}
	anchor := pagination.Key{ID: id.New(), Value: int64(7)}

	q, err := src.fetchQuery(listingQuery(show.Popular, true, &anchor))
	require.NoError(t, err)

	sql, args, err := q.ToSql()
	require.NoError(t, err)

	wantSQL := "SELECT s.id AS cursor_id, s.id AS show_id, " + listingCols + ", " +
		"(array_agg(stt.ticketing_type ORDER BY stt.ticketing_at, stt.id))[1] AS ticketing_type, " +
		"MIN(stt.ticketing_at) AS ticketing_at, s.view_count " +
		"FROM show s JOIN show_ticketing_time stt ON stt.show_id = s.id " +
		"WHERE s.deletion_mark = $1 AND stt.deletion_mark = $2 AND stt.ticketing_at > $3 " +
		"AND (s.view_count < $4 OR (s.view_count = $5 AND s.id > $6)) " +
		"GROUP BY s.id ORDER BY s.view_count DESC, s.id ASC LIMIT 21"
	if sql != wantSQL {
		t.Errorf("SQL mismatch\nwant: %s\ngot:  %s", wantSQL, sql)
	}
	assert.Equal(t, int64(7), args[3])
}

func TestResolveQueries(t *testing.T) {
	cursorID := id.New()

	tests := []struct {
		name    string
		q       squirrel.SelectBuilder
		wantSQL string
	}{
		{
			name: "ticketing row",
			q:    resolveByRowQuery(cursorID),
			wantSQL: "SELECT stt.id, stt.ticketing_at FROM show_ticketing_time stt JOIN show s ON s.id = stt.show_id " +
				"WHERE stt.id = $1 AND stt.deletion_mark = $2 AND s.deletion_mark = $3",
		},
		{
			name: "legacy show id",
			q:    resolveByShowQuery(cursorID),
			wantSQL: "SELECT stt.id, stt.ticketing_at FROM show_ticketing_time stt JOIN show s ON s.id = stt.show_id " +
				"WHERE s.id = $1 AND stt.deletion_mark = $2 AND s.deletion_mark = $3 " +
				"ORDER BY stt.ticketing_at ASC, stt.id ASC LIMIT 1",
		},
		{
			name:    "popular",
			q:       resolvePopularQuery(cursorID),
			wantSQL: "SELECT s.id, s.view_count FROM show s WHERE s.id = $1 AND s.deletion_mark = $2",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := tt.q.ToSql()
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, cursorID.String(), args[0])
		})
	}
}
