// Package artist manages performing artists and their genres.
package artist

import (
	"context"

	"showalert/internal/core/apperror"
	"showalert/internal/core/entity"
	"showalert/internal/core/id"
	"showalert/internal/domain/pagination"
)

// Gender of an artist or group.
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderMixed  Gender = "MIXED"
)

// Type tells a solo act from a group.
type Type string

const (
	TypeSolo  Type = "SOLO"
	TypeGroup Type = "GROUP"
)

// Artist is a performer.
type Artist struct {
	entity.Catalog

	Image     string `db:"image" json:"image"`
	SpotifyID string `db:"spotify_id" json:"spotifyId,omitempty"`
	Gender    Gender `db:"gender" json:"gender"`
	Type      Type   `db:"artist_type" json:"type"`

	// GenreIDs is the desired genre set. Nil leaves the stored links alone.
	GenreIDs []id.ID `db:"-" json:"genreIds,omitempty"`

	// unlinkedShows are the shows a delete detached the artist from.
	unlinkedShows []id.ID
}

// New creates an artist.
func New(name, image string, gender Gender, typ Type) *Artist {
	return &Artist{
		Catalog: entity.NewCatalog(name),
		Image:   image,
		Gender:  gender,
		Type:    typ,
	}
}

// Validate implements entity.Validatable.
func (a *Artist) Validate(ctx context.Context) error {
	if err := a.Catalog.Validate(ctx); err != nil {
		return err
	}
	switch a.Gender {
	case GenderMale, GenderFemale, GenderMixed:
	default:
		return apperror.NewValidation("unknown gender").WithDetail("field", "gender").WithDetail("value", a.Gender)
	}
	switch a.Type {
	case TypeSolo, TypeGroup:
	default:
		return apperror.NewValidation("unknown artist type").WithDetail("field", "type").WithDetail("value", a.Type)
	}
	return nil
}

// PageKey implements pagination.Keyed for the by-name listing.
func (a *Artist) PageKey() pagination.Key {
	return pagination.Key{ID: a.ID, Value: a.Name}
}
