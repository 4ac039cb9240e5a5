package catalog_repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"showalert/internal/core/apperror"
	"showalert/internal/core/id"
	"showalert/internal/domain"
	"showalert/internal/domain/artist"
	"showalert/internal/domain/filter"
	"showalert/internal/domain/genre"
	"showalert/internal/domain/pagination"
	"showalert/internal/domain/show"
)

const genreCols = "id, deletion_mark, version, created_at, updated_at, name"

func TestBaseRepo_CreateSQL(t *testing.T) {
	repo := NewGenreRepo(nil)
	g := genre.New("Jazz")

	q, err := repo.createQuery(g)
	require.NoError(t, err)

	sql, args, err := q.ToSql()
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO genre (created_at,deletion_mark,id,name,updated_at,version) VALUES ($1,$2,$3,$4,$5,$6)", sql)
	assert.Len(t, args, 6)
}

func TestBaseRepo_UpdateSQL_CompareAndSwap(t *testing.T) {
	repo := NewGenreRepo(nil)
	g := genre.New("Jazz")
	g.Version = 3

	q, entityID, version, err := repo.updateQuery(g)
	require.NoError(t, err)
	assert.Equal(t, g.ID, entityID)
	assert.Equal(t, 3, version)

	sql, args, err := q.ToSql()
	require.NoError(t, err)

	wantSQL := "UPDATE genre SET name = $1, updated_at = $2, version = version + 1 " +
		"WHERE id = $3 AND version = $4 AND deletion_mark = $5"
	if sql != wantSQL {
		t.Errorf("SQL mismatch\nwant: %s\ngot:  %s", wantSQL, sql)
	}
	require.Len(t, args, 5)
	assert.Equal(t, "Jazz", args[0])
	assert.Equal(t, g.ID.String(), args[2])
	assert.Equal(t, 3, args[3])
	assert.Equal(t, false, args[4])
}

func TestShowRepo_UpdateNeverWritesViewCount(t *testing.T) {
	repo := NewShowRepo(nil)
	s := &show.Show{}
	s.ID = id.New()
	s.Version = 1
	s.ViewCount = 999

	q, _, _, err := repo.updateQuery(s)
	require.NoError(t, err)

	sql, _, err := q.ToSql()
	require.NoError(t, err)
	assert.NotContains(t, sql, "view_count")
	assert.NotContains(t, sql, "created_at")
	assert.Contains(t, sql, "title = $")
	assert.Contains(t, sql, "seat_prices = $")
}

func TestBaseRepo_GetSQL(t *testing.T) {
	repo := NewGenreRepo(nil)
	gid := id.New()

	tests := []struct {
		name        string
		withHistory bool
		wantSQL     string
		wantArgs    int
	}{
		{"live only", false, "SELECT " + genreCols + " FROM genre WHERE id = $1 AND deletion_mark = $2 LIMIT 1", 2},
		{"with history", true, "SELECT " + genreCols + " FROM genre WHERE id = $1 LIMIT 1", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := repo.getQuery(gid, tt.withHistory).ToSql()
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Len(t, args, tt.wantArgs)
		})
	}
}

func TestBaseRepo_ListSQL(t *testing.T) {
	repo := NewGenreRepo(nil)

	f := domain.DefaultListFilter()
	f.Search = "ja"
	f.Limit = 0

	q, countQ, err := repo.listQueries(f)
	require.NoError(t, err)

	sql, args, err := q.ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT "+genreCols+" FROM genre WHERE deletion_mark = $1 AND name ILIKE $2 ORDER BY name ASC, id ASC", sql)
	assert.Equal(t, []any{false, "%ja%"}, args)

	countSQL, _, err := countQ.ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM (SELECT "+genreCols+" FROM genre WHERE deletion_mark = $1 AND name ILIKE $2) AS sub", countSQL)
}

func TestBaseRepo_ListSQL_HistoryAndPaging(t *testing.T) {
	repo := NewGenreRepo(nil)

	q, _, err := repo.listQueries(domain.ListFilter{IncludeDeleted: true, OrderBy: "-created_at", Limit: 10, Offset: 20})
	require.NoError(t, err)

	sql, _, err := q.ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT "+genreCols+" FROM genre ORDER BY created_at DESC, id ASC LIMIT 10 OFFSET 20", sql)
}

func TestBaseRepo_ParseOrderBy(t *testing.T) {
	repo := NewGenreRepo(nil)

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", "name ASC", false},
		{"name", "name ASC", false},
		{"+updated_at", "updated_at ASC", false},
		{"-name", "name DESC", false},
		{"-", "", true},
		{"password", "", true},
		{"name; DROP TABLE genre", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := repo.parseOrderBy(tt.in)
			if tt.wantErr {
				assert.True(t, apperror.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBaseRepo_SetDeletionMarkSQL(t *testing.T) {
	repo := NewGenreRepo(nil)
	gid := id.New()

	sql, args, err := repo.setDeletionMarkQuery(gid, true).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "UPDATE genre SET deletion_mark = $1, version = version + 1, updated_at = now() WHERE id = $2 AND deletion_mark = $3", sql)
	assert.Equal(t, []any{true, gid.String(), false}, args)
}

func TestArtistRepo_FetchSQL(t *testing.T) {
	repo := NewArtistRepo(nil)
	anchor := id.New()

	q, err := repo.fetchQuery(pagination.Query{
		Filters: []filter.Item{
			filter.NotDeleted(""),
			{Field: "name", Operator: filter.Contains, Value: "iu"},
		},
		Ordering: artist.ByName,
		After:    &pagination.Keyset{Ordering: artist.ByName, Anchor: pagination.Key{ID: anchor, Value: "IU"}},
		Limit:    21,
	})
	require.NoError(t, err)

	sql, args, err := q.ToSql()
	require.NoError(t, err)
	wantSQL := "SELECT id, deletion_mark, version, created_at, updated_at, name, image, spotify_id, gender, artist_type " +
		"FROM artist WHERE deletion_mark = $1 AND name ILIKE $2 AND (name > $3 OR (name = $4 AND id > $5)) " +
		"ORDER BY name ASC, id ASC LIMIT 21"
	assert.Equal(t, wantSQL, sql)
	assert.Equal(t, []any{false, "%iu%", "IU", "IU", anchor.String()}, args)
}

func TestArtistRepo_GenreIDsSQL(t *testing.T) {
	aid := id.New()

	sql, args, err := genreIDsQuery(aid).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT genre_id FROM artist_genre WHERE artist_id = $1 AND deletion_mark = $2 ORDER BY created_at ASC, id ASC", sql)
	assert.Equal(t, []any{aid.String(), false}, args)
}
