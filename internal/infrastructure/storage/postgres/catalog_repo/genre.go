package catalog_repo

import (
	"showalert/internal/domain/genre"
	"showalert/internal/infrastructure/storage/postgres"
)

const genreTable = "genre"

var _ genre.Repository = (*GenreRepo)(nil)

// GenreRepo implements genre.Repository.
type GenreRepo struct {
	*BaseRepo[*genre.Genre]
}

// NewGenreRepo creates a new genre repository.
func NewGenreRepo(db postgres.QuerierProvider) *GenreRepo {
	return &GenreRepo{
		BaseRepo: NewBaseRepo[*genre.Genre](
			db,
			genreTable,
			postgres.ExtractDBColumns[genre.Genre](),
			func() *genre.Genre { return &genre.Genre{} },
		),
	}
}
