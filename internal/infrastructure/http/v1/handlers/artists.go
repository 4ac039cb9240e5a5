package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"showalert/internal/core/id"
	"showalert/internal/domain/artist"
	"showalert/internal/domain/pagination"
	"showalert/internal/infrastructure/http/v1/dto"
)

// ArtistService is what the artist handlers call.
type ArtistService interface {
	CatalogService[*artist.Artist]
	Page(ctx context.Context, req artist.PageRequest) (pagination.Page[*artist.Artist], error)
}

// ArtistHandler serves the public artist listing.
type ArtistHandler struct {
	*BaseHandler
	service ArtistService
}

// NewArtistHandler creates an artist handler.
func NewArtistHandler(base *BaseHandler, service ArtistService) *ArtistHandler {
	return &ArtistHandler{BaseHandler: base, service: service}
}

// List handles GET /artists?cursorId=&size=&search=.
func (h *ArtistHandler) List(c *gin.Context) {
	cursorID, ok := h.cursorParam(c)
	if !ok {
		return
	}
	size, ok := h.ParseIntQuery(c, "size", pagination.DefaultSize)
	if !ok {
		return
	}

	page, err := h.service.Page(c.Request.Context(), artist.PageRequest{
		CursorID: cursorID,
		Size:     size,
		Search:   c.Query("search"),
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewCursorPage(page, dto.ToArtistListItem))
}

// cursorParam reads cursorId, or failing that the opaque cursor token.
func (h *BaseHandler) cursorParam(c *gin.Context) (*id.ID, bool) {
	if token := c.Query("cursor"); token != "" && c.Query("cursorId") == "" {
		cur, err := pagination.ParseToken(token)
		if err != nil {
			h.Error(c, err)
			return nil, false
		}
		return &cur.ID, true
	}
	return h.OptionalQueryID(c, "cursorId")
}

// NewArtistAdminHandler creates the admin CRUD handler for artists.
func NewArtistAdminHandler(base *BaseHandler, service ArtistService) *CatalogHandler[*artist.Artist, dto.CreateArtistRequest, dto.UpdateArtistRequest] {
	return NewCatalogHandler(base, CatalogHandlerConfig[*artist.Artist, dto.CreateArtistRequest, dto.UpdateArtistRequest]{
		Service: service,
		MapCreateDTO: func(req *dto.CreateArtistRequest) *artist.Artist {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req *dto.UpdateArtistRequest, existing *artist.Artist) *artist.Artist {
			req.ApplyTo(existing)
			return existing
		},
		MapToDTO: func(a *artist.Artist) any {
			return dto.FromArtist(a)
		},
	})
}
