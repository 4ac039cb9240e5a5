package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"showalert/internal/core/id"
	"showalert/internal/domain/artist"
	"showalert/internal/infrastructure/storage/postgres"
)

const (
	artistTable      = "artist"
	artistGenreTable = "artist_genre"
)

var _ artist.Repository = (*ArtistRepo)(nil)

// ArtistRepo implements artist.Repository, including the name-ordered
// cursor listing.
type ArtistRepo struct {
	*BaseRepo[*artist.Artist]
}

// NewArtistRepo creates a new artist repository.
func NewArtistRepo(db postgres.QuerierProvider) *ArtistRepo {
	return &ArtistRepo{
		BaseRepo: NewBaseRepo[*artist.Artist](
			db,
			artistTable,
			postgres.ExtractDBColumns[artist.Artist](),
			func() *artist.Artist { return &artist.Artist{} },
		),
	}
}

// GetByID retrieves a live artist together with its active genre ids.
func (r *ArtistRepo) GetByID(ctx context.Context, artistID id.ID) (*artist.Artist, error) {
	a, err := r.BaseRepo.GetByID(ctx, artistID)
	if err != nil {
		return nil, err
	}
	if a.GenreIDs, err = r.activeGenreIDs(ctx, artistID); err != nil {
		return nil, err
	}
	return a, nil
}

func genreIDsQuery(artistID id.ID) squirrel.SelectBuilder {
	return postgres.Builder().
		Select("genre_id").
		From(artistGenreTable).
		Where(squirrel.Eq{"artist_id": artistID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("created_at ASC", "id ASC")
}

func (r *ArtistRepo) activeGenreIDs(ctx context.Context, artistID id.ID) ([]id.ID, error) {
	sql, args, err := genreIDsQuery(artistID).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	ids := []id.ID{}
	if err := pgxscan.Select(ctx, r.querier(ctx), &ids, sql, args...); err != nil {
		return nil, fmt.Errorf("artist genres: %w", err)
	}
	return ids, nil
}
