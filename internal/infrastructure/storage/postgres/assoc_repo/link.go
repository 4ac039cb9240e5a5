package assoc_repo

import (
	"showalert/internal/core/id"
	"showalert/internal/domain"
	"showalert/internal/infrastructure/storage/postgres"
)

// Link tables and their columns.
const (
	ShowArtistTable  = "show_artist"
	ShowGenreTable   = "show_genre"
	ArtistGenreTable = "artist_genre"
)

var _ domain.LinkStore = (*LinkRepo)(nil)

// LinkRepo is one side of a many-to-many link table. The same table is
// exposed from both sides by swapping ownerCol and relatedCol.
type LinkRepo struct {
	table[id.ID, domain.Link]
}

// NewLinkRepo creates a link store over tableName owned by ownerCol.
func NewLinkRepo(db postgres.QuerierProvider, tableName, ownerCol, relatedCol string) *LinkRepo {
	return &LinkRepo{table[id.ID, domain.Link]{
		db:       db,
		name:     tableName,
		ownerCol: ownerCol,
		selectCols: []string{
			"id",
			ownerCol + " AS owner_id",
			relatedCol + " AS related_id",
			"deletion_mark",
			"created_at",
		},
		keyCols:   []string{relatedCol},
		keyValues: func(k id.ID) []any { return []any{k} },
		key:       func(l domain.Link) id.ID { return l.RelatedID },
		rowID:     func(l domain.Link) id.ID { return l.ID },
	}}
}

// Links bundles every side of every link table.
type Links struct {
	ShowArtists  *LinkRepo // owner = show
	ShowGenres   *LinkRepo // owner = show
	ArtistGenres *LinkRepo // owner = artist
	ArtistShows  *LinkRepo // show_artist, owner = artist
	GenreArtists *LinkRepo // artist_genre, owner = genre
	GenreShows   *LinkRepo // show_genre, owner = genre
}

// NewLinks wires all link stores.
func NewLinks(db postgres.QuerierProvider) Links {
	return Links{
		ShowArtists:  NewLinkRepo(db, ShowArtistTable, "show_id", "artist_id"),
		ShowGenres:   NewLinkRepo(db, ShowGenreTable, "show_id", "genre_id"),
		ArtistGenres: NewLinkRepo(db, ArtistGenreTable, "artist_id", "genre_id"),
		ArtistShows:  NewLinkRepo(db, ShowArtistTable, "artist_id", "show_id"),
		GenreArtists: NewLinkRepo(db, ArtistGenreTable, "genre_id", "artist_id"),
		GenreShows:   NewLinkRepo(db, ShowGenreTable, "genre_id", "show_id"),
	}
}
