// Package genre manages music genres.
package genre

import (
	"showalert/internal/core/entity"
	"showalert/internal/core/id"
)

// Genre is a named genre. Shows and artists link to it.
type Genre struct {
	entity.Catalog

	// untaggedShows are the shows a delete removed the genre from.
	untaggedShows []id.ID
}

// New creates a genre.
func New(name string) *Genre {
	return &Genre{Catalog: entity.NewCatalog(name)}
}
