package dto

import (
	"showalert/internal/core/id"
	"showalert/internal/domain/artist"
)

// CreateArtistRequest is the request body for creating an artist.
type CreateArtistRequest struct {
	Name      string        `json:"name" binding:"required"`
	Image     string        `json:"image"`
	SpotifyID string        `json:"spotifyId"`
	Gender    artist.Gender `json:"gender" binding:"required"`
	Type      artist.Type   `json:"type" binding:"required"`
	GenreIDs  []id.ID       `json:"genreIds"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateArtistRequest) ToEntity() *artist.Artist {
	a := artist.New(r.Name, r.Image, r.Gender, r.Type)
	a.SpotifyID = r.SpotifyID
	a.GenreIDs = r.GenreIDs
	return a
}

// UpdateArtistRequest is the request body for updating an artist.
// Omitting genreIds keeps the current genres, an empty list clears them.
type UpdateArtistRequest struct {
	Name      string        `json:"name" binding:"required"`
	Image     string        `json:"image"`
	SpotifyID string        `json:"spotifyId"`
	Gender    artist.Gender `json:"gender" binding:"required"`
	Type      artist.Type   `json:"type" binding:"required"`
	GenreIDs  []id.ID       `json:"genreIds"`
	Version   int           `json:"version" binding:"required,min=1"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateArtistRequest) ApplyTo(a *artist.Artist) {
	a.Name = r.Name
	a.Image = r.Image
	a.SpotifyID = r.SpotifyID
	a.Gender = r.Gender
	a.Type = r.Type
	a.GenreIDs = r.GenreIDs
	a.Version = r.Version
	a.Touch()
}

// ArtistResponse is the response body for an artist.
type ArtistResponse struct {
	CatalogResponse
	Image     string        `json:"image"`
	SpotifyID string        `json:"spotifyId,omitempty"`
	Gender    artist.Gender `json:"gender"`
	Type      artist.Type   `json:"type"`
	GenreIDs  []string      `json:"genreIds,omitempty"`
}

// FromArtist converts domain entity to response DTO.
func FromArtist(a *artist.Artist) ArtistResponse {
	resp := ArtistResponse{
		CatalogResponse: FromCatalog(a.Catalog),
		Image:           a.Image,
		SpotifyID:       a.SpotifyID,
		Gender:          a.Gender,
		Type:            a.Type,
	}
	for _, g := range a.GenreIDs {
		resp.GenreIDs = append(resp.GenreIDs, g.String())
	}
	return resp
}

// ArtistListItem is one row of the public artist listing.
type ArtistListItem struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

// ToArtistListItem converts an artist to a listing row.
func ToArtistListItem(a *artist.Artist) ArtistListItem {
	return ArtistListItem{ID: a.ID.String(), Name: a.Name, Image: a.Image}
}
