package dto

import (
	"showalert/internal/domain/genre"
)

// CreateGenreRequest is the request body for creating a genre.
type CreateGenreRequest struct {
	Name string `json:"name" binding:"required"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateGenreRequest) ToEntity() *genre.Genre {
	return genre.New(r.Name)
}

// UpdateGenreRequest is the request body for renaming a genre.
type UpdateGenreRequest struct {
	Name    string `json:"name" binding:"required"`
	Version int    `json:"version" binding:"required,min=1"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateGenreRequest) ApplyTo(g *genre.Genre) {
	g.Name = r.Name
	g.Version = r.Version
	g.Touch()
}

// GenreResponse is the response body for a genre.
type GenreResponse struct {
	CatalogResponse
}

// FromGenre converts domain entity to response DTO.
func FromGenre(g *genre.Genre) GenreResponse {
	return GenreResponse{CatalogResponse: FromCatalog(g.Catalog)}
}
