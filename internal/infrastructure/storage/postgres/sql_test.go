package postgres

import (
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"showalert/internal/core/apperror"
	"showalert/internal/core/id"
	"showalert/internal/domain/filter"
	"showalert/internal/domain/pagination"
)

func TestApplyFilters_Operators(t *testing.T) {
	allowed := NewColumns("id", "col1")

	tests := []struct {
		name     string
		item     filter.Item
		wantSQL  string
		wantArgs []any
	}{
		{"Greater", filter.Item{Field: "col1", Operator: filter.Greater, Value: 10}, "SELECT id, col1 FROM test_table WHERE col1 > $1", []any{10}},
		{"Less", filter.Item{Field: "col1", Operator: filter.Less, Value: 5}, "SELECT id, col1 FROM test_table WHERE col1 < $1", []any{5}},
		{"GreaterOrEqual", filter.Item{Field: "col1", Operator: filter.GreaterOrEqual, Value: 5}, "SELECT id, col1 FROM test_table WHERE col1 >= $1", []any{5}},
		{"Equal", filter.Item{Field: "col1", Operator: filter.Equal, Value: false}, "SELECT id, col1 FROM test_table WHERE col1 = $1", []any{false}},
		{"InList", filter.Item{Field: "col1", Operator: filter.InList, Value: []int{1, 2}}, "SELECT id, col1 FROM test_table WHERE col1 IN ($1,$2)", []any{1, 2}},
		{"IsNull", filter.Item{Field: "col1", Operator: filter.IsNull}, "SELECT id, col1 FROM test_table WHERE col1 IS NULL", nil},
		{"Contains", filter.Item{Field: "col1", Operator: filter.Contains, Value: "iu"}, "SELECT id, col1 FROM test_table WHERE col1 ILIKE $1", []any{"%iu%"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := ApplyFilters(Builder().Select("id", "col1").From("test_table"), []filter.Item{tt.item}, allowed)
			if err != nil {
				t.Fatalf("ApplyFilters failed: %v", err)
			}

			sql, args, err := q.ToSql()
			if err != nil {
				t.Fatalf("ToSql failed: %v", err)
			}
			if sql != tt.wantSQL {
				t.Errorf("SQL mismatch\nwant: %s\ngot:  %s", tt.wantSQL, sql)
			}
			if tt.wantArgs == nil {
				assert.Empty(t, args)
				return
			}
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestApplyFilters_RejectsUnknownColumn(t *testing.T) {
	_, err := ApplyFilters(Builder().Select("id").From("t"), []filter.Item{filter.Eq("id; DROP TABLE t", 1)}, NewColumns("id"))
	assert.True(t, apperror.IsValidation(err))
}

func TestApplyPageQuery_Keyset(t *testing.T) {
	anchorID := id.New()
	at := time.Date(2026, 5, 1, 20, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		ordering pagination.Ordering
		value    any
		wantSQL  string
	}{
		{
			name:     "ascending",
			ordering: pagination.Ordering{Name: "RECENT", Primary: "stt.ticketing_at", Direction: pagination.Asc, TieBreak: "stt.id"},
			value:    at,
			wantSQL: "SELECT x FROM t WHERE s.deletion_mark = $1 AND " +
				"(stt.ticketing_at > $2 OR (stt.ticketing_at = $3 AND stt.id > $4)) " +
				"ORDER BY stt.ticketing_at ASC, stt.id ASC LIMIT 3",
		},
		{
			name:     "descending",
			ordering: pagination.Ordering{Name: "POPULAR", Primary: "s.view_count", Direction: pagination.Desc, TieBreak: "s.id"},
			value:    int64(42),
			wantSQL: "SELECT x FROM t WHERE s.deletion_mark = $1 AND " +
				"(s.view_count < $2 OR (s.view_count = $3 AND s.id > $4)) " +
				"ORDER BY s.view_count DESC, s.id ASC LIMIT 3",
		},
	}

	allowed := NewColumns("s.deletion_mark", "stt.ticketing_at", "stt.id", "s.view_count", "s.id")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pq := pagination.Query{
				Filters:  []filter.Item{filter.NotDeleted("s")},
				Ordering: tt.ordering,
				After:    &pagination.Keyset{Ordering: tt.ordering, Anchor: pagination.Key{ID: anchorID, Value: tt.value}},
				Limit:    3,
			}
			q, err := ApplyPageQuery(Builder().Select("x").From("t"), pq, allowed)
			require.NoError(t, err)

			sql, args, err := q.ToSql()
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			require.Len(t, args, 4)
			assert.Equal(t, false, args[0])
			assert.Equal(t, tt.value, args[1])
			assert.Equal(t, tt.value, args[2])
			assert.Equal(t, anchorID.String(), args[3])
		})
	}
}

func TestApplyPageQuery_FirstPageHasNoKeyset(t *testing.T) {
	o := pagination.Ordering{Name: "NAME", Primary: "name", Direction: pagination.Asc, TieBreak: "id"}
	q, err := ApplyPageQuery(Builder().Select("id").From("artist"), pagination.Query{Ordering: o, Limit: 11}, NewColumns("id", "name"))
	require.NoError(t, err)

	sql, _, err := q.ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM artist ORDER BY name ASC, id ASC LIMIT 11", sql)

	_, err = ApplyPageQuery(Builder().Select("id").From("artist"), pagination.Query{Ordering: o}, NewColumns("id"))
	assert.Error(t, err)
}

func TestTranslateError(t *testing.T) {
	fk := &pgconn.PgError{Code: "23503", ConstraintName: "show_artist_artist_id_fkey"}
	err := TranslateError(fk, "insert", "show_artist")
	assert.True(t, apperror.IsValidation(err))
	assert.ErrorIs(t, err, fk)

	dup := TranslateError(&pgconn.PgError{Code: "23505"}, "insert", "genre")
	app, ok := apperror.AsAppError(dup)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeConflict, app.Code)

	plain := errors.New("conn reset")
	wrapped := TranslateError(plain, "update", "show")
	assert.ErrorIs(t, wrapped, plain)
	assert.Equal(t, "update show: conn reset", wrapped.Error())
}
