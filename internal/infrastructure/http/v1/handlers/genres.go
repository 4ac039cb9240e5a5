package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"showalert/internal/domain/genre"
	"showalert/internal/infrastructure/http/v1/dto"
)

// GenreService is what the genre handlers call.
type GenreService interface {
	CatalogService[*genre.Genre]
	ListActive(ctx context.Context) ([]*genre.Genre, error)
}

// GenreHandler serves the public genre list.
type GenreHandler struct {
	*BaseHandler
	service GenreService
}

// NewGenreHandler creates a genre handler.
func NewGenreHandler(base *BaseHandler, service GenreService) *GenreHandler {
	return &GenreHandler{BaseHandler: base, service: service}
}

// ListActive handles GET /genres.
func (h *GenreHandler) ListActive(c *gin.Context) {
	genres, err := h.service.ListActive(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.GenreResponse, 0, len(genres))
	for _, g := range genres {
		items = append(items, dto.FromGenre(g))
	}
	h.OK(c, gin.H{"data": items})
}

// NewGenreAdminHandler creates the admin CRUD handler for genres.
func NewGenreAdminHandler(base *BaseHandler, service GenreService) *CatalogHandler[*genre.Genre, dto.CreateGenreRequest, dto.UpdateGenreRequest] {
	return NewCatalogHandler(base, CatalogHandlerConfig[*genre.Genre, dto.CreateGenreRequest, dto.UpdateGenreRequest]{
		Service: service,
		MapCreateDTO: func(req *dto.CreateGenreRequest) *genre.Genre {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req *dto.UpdateGenreRequest, existing *genre.Genre) *genre.Genre {
			req.ApplyTo(existing)
			return existing
		},
		MapToDTO: func(g *genre.Genre) any {
			return dto.FromGenre(g)
		},
	})
}
