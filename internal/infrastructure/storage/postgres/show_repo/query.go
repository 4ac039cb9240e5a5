package show_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"showalert/internal/core/apperror"
	"showalert/internal/core/id"
	"showalert/internal/core/tx"
	"showalert/internal/domain/pagination"
	"showalert/internal/domain/show"
	"showalert/internal/infrastructure/storage/postgres"
)

// DB is what the query repository needs from the storage layer.
type DB interface {
	postgres.QuerierProvider
	tx.ReadOnlyManager

	// Pool runs a statement outside any caller transaction.
	Pool() postgres.Querier
}

var _ show.QueryRepository = (*QueryRepo)(nil)

// QueryRepo implements show.QueryRepository.
type QueryRepo struct {
	db       DB
	showCols []string
	recent   *recentSource
	popular  *popularSource
}

// NewQueryRepo creates the show read repository.
func NewQueryRepo(db DB) *QueryRepo {
	cols := postgres.ExtractDBColumns[show.Show]()
	qualified := make([]string, len(cols))
	for i, c := range cols {
		qualified[i] = "s." + c
	}
	return &QueryRepo{
		db:       db,
		showCols: qualified,
		recent:   &recentSource{db: db},
		popular:  &popularSource{db: db},
	}
}

func (r *QueryRepo) RecentListing() pagination.Source[*show.ListItem]  { return r.recent }
func (r *QueryRepo) PopularListing() pagination.Source[*show.ListItem] { return r.popular }

func (r *QueryRepo) showQuery() squirrel.SelectBuilder {
	return postgres.Builder().
		Select(r.showCols...).
		From("show s").
		Where(squirrel.Eq{"s.deletion_mark": false})
}

// artistsQuery selects the live artists of the live shows matched by scope.
func artistsQuery(scope squirrel.Sqlizer, withImages bool) squirrel.SelectBuilder {
	cols := []string{"sa.show_id", "a.id", "a.name"}
	if withImages {
		cols = append(cols, "a.image")
	}
	return postgres.Builder().
		Select(cols...).
		From("show_artist sa").
		Join("artist a ON a.id = sa.artist_id").
		Join("show s ON s.id = sa.show_id").
		Where(scope).
		Where(squirrel.Eq{"sa.deletion_mark": false}).
		Where(squirrel.Eq{"a.deletion_mark": false}).
		Where(squirrel.Eq{"s.deletion_mark": false}).
		OrderBy("sa.show_id", "sa.created_at ASC", "sa.id ASC")
}

func genresQuery(scope squirrel.Sqlizer) squirrel.SelectBuilder {
	return postgres.Builder().
		Select("sg.show_id", "g.id", "g.name").
		From("show_genre sg").
		Join("genre g ON g.id = sg.genre_id").
		Join("show s ON s.id = sg.show_id").
		Where(scope).
		Where(squirrel.Eq{"sg.deletion_mark": false}).
		Where(squirrel.Eq{"g.deletion_mark": false}).
		Where(squirrel.Eq{"s.deletion_mark": false}).
		OrderBy("sg.show_id", "sg.created_at ASC", "sg.id ASC")
}

func ticketingQuery(scope squirrel.Sqlizer) squirrel.SelectBuilder {
	return postgres.Builder().
		Select("stt.show_id", "stt.ticketing_type", "stt.ticketing_at").
		From("show_ticketing_time stt").
		Join("show s ON s.id = stt.show_id").
		Where(scope).
		Where(squirrel.Eq{"stt.deletion_mark": false}).
		Where(squirrel.Eq{"s.deletion_mark": false}).
		OrderBy("stt.show_id", "stt.ticketing_at ASC", "stt.id ASC")
}

type artistRow struct {
	ShowID id.ID `db:"show_id"`
	show.ArtistSummary
}

type genreRow struct {
	ShowID id.ID `db:"show_id"`
	show.GenreSummary
}

type ticketingRow struct {
	ShowID id.ID `db:"show_id"`
	show.TicketingSummary
}

// Detail loads the show and its three association sets with one query each,
// so that the sets never multiply into each other.
func (r *QueryRepo) Detail(ctx context.Context, showID id.ID, opts show.DetailOptions) (*show.Detail, error) {
	var out *show.Detail
	err := r.db.ReadOnly(ctx, func(ctx context.Context) error {
		q := r.db.GetQuerier(ctx)

		sql, args, err := r.showQuery().Where(squirrel.Eq{"s.id": showID}).ToSql()
		if err != nil {
			return fmt.Errorf("build query: %w", err)
		}
		sh := &show.Show{}
		if err := pgxscan.Get(ctx, q, sh, sql, args...); err != nil {
			if pgxscan.NotFound(err) {
				return apperror.NewNotFound("show", showID.String())
			}
			return fmt.Errorf("get show: %w", err)
		}

		details, err := r.attach(ctx, []*show.Show{sh}, squirrel.Eq{"s.id": showID}, opts)
		if err != nil {
			return err
		}
		out = details[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListDetails returns every live show with its associations, ordered by
// start date.
func (r *QueryRepo) ListDetails(ctx context.Context) ([]*show.Detail, error) {
	var out []*show.Detail
	err := r.db.ReadOnly(ctx, func(ctx context.Context) error {
		sql, args, err := r.showQuery().OrderBy("s.start_date ASC", "s.id ASC").ToSql()
		if err != nil {
			return fmt.Errorf("build query: %w", err)
		}
		shows := []*show.Show{}
		if err := pgxscan.Select(ctx, r.db.GetQuerier(ctx), &shows, sql, args...); err != nil {
			return fmt.Errorf("list shows: %w", err)
		}
		out, err = r.attach(ctx, shows, squirrel.Expr("TRUE"), show.DetailOptions{})
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *QueryRepo) attach(ctx context.Context, shows []*show.Show, scope squirrel.Sqlizer, opts show.DetailOptions) ([]*show.Detail, error) {
	byID := make(map[id.ID]*show.Detail, len(shows))
	out := make([]*show.Detail, 0, len(shows))
	for _, sh := range shows {
		d := &show.Detail{
			Show:           sh,
			Artists:        []show.ArtistSummary{},
			Genres:         []show.GenreSummary{},
			TicketingTimes: []show.TicketingSummary{},
		}
		byID[sh.ID] = d
		out = append(out, d)
	}
	if len(shows) == 0 {
		return out, nil
	}

	var artists []artistRow
	if err := selectRows(ctx, r.db, &artists, artistsQuery(scope, opts.ArtistImages)); err != nil {
		return nil, fmt.Errorf("show artists: %w", err)
	}
	for _, a := range artists {
		if d, ok := byID[a.ShowID]; ok {
			d.Artists = append(d.Artists, a.ArtistSummary)
		}
	}

	var genres []genreRow
	if err := selectRows(ctx, r.db, &genres, genresQuery(scope)); err != nil {
		return nil, fmt.Errorf("show genres: %w", err)
	}
	for _, g := range genres {
		if d, ok := byID[g.ShowID]; ok {
			d.Genres = append(d.Genres, g.GenreSummary)
		}
	}

	var times []ticketingRow
	if err := selectRows(ctx, r.db, &times, ticketingQuery(scope)); err != nil {
		return nil, fmt.Errorf("show ticketing times: %w", err)
	}
	for _, t := range times {
		if d, ok := byID[t.ShowID]; ok {
			d.TicketingTimes = append(d.TicketingTimes, t.TicketingSummary)
		}
	}
	return out, nil
}

func selectRows(ctx context.Context, db postgres.QuerierProvider, dst any, q squirrel.SelectBuilder) error {
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	return pgxscan.Select(ctx, db.GetQuerier(ctx), dst, sql, args...)
}

func terminatedQuery(showIDs []id.ID, now time.Time) squirrel.SelectBuilder {
	return postgres.Builder().
		Select("COUNT(DISTINCT id)").
		From("show").
		Where(squirrel.Eq{"id": showIDs}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Where(squirrel.Lt{"last_ticketing_at": now})
}

// CountTerminatedTicketing implements show.QueryRepository.
func (r *QueryRepo) CountTerminatedTicketing(ctx context.Context, showIDs []id.ID, now time.Time) (int64, error) {
	if len(showIDs) == 0 {
		return 0, nil
	}
	sql, args, err := terminatedQuery(showIDs, now).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}
	var n int64
	if err := r.db.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count terminated ticketing: %w", err)
	}
	return n, nil
}

func incrementViewQuery(showID id.ID) squirrel.UpdateBuilder {
	return postgres.Builder().
		Update("show").
		Set("view_count", squirrel.Expr("view_count + 1")).
		Where(squirrel.Eq{"id": showID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Suffix("RETURNING view_count")
}

// IncrementViewCount runs on the pool so a view is counted even when the
// caller's transaction rolls back. The version is not bumped: views are not
// edits.
func (r *QueryRepo) IncrementViewCount(ctx context.Context, showID id.ID) (int64, error) {
	sql, args, err := incrementViewQuery(showID).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build update: %w", err)
	}
	var n int64
	err = r.db.Pool().QueryRow(ctx, sql, args...).Scan(&n)
	if err != nil {
		if pgxscan.NotFound(err) {
			return 0, apperror.NewNotFound("show", showID.String())
		}
		return 0, fmt.Errorf("increment view count: %w", err)
	}
	return n, nil
}
