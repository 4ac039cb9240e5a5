package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"showalert/internal/core/id"
	"showalert/internal/domain/show"
	"showalert/internal/infrastructure/http/v1/dto"
)

// ShowCommands is the write side the admin show handlers call.
type ShowCommands interface {
	Create(ctx context.Context, in show.Input) (*show.Show, error)
	Update(ctx context.Context, showID id.ID, version int, in show.Input) (*show.Show, error)
	Delete(ctx context.Context, showID id.ID) error
}

// AdminShowHandler serves /admin/shows.
type AdminShowHandler struct {
	*BaseHandler
	commands ShowCommands
	queries  ShowQueries
}

// NewAdminShowHandler creates an admin show handler.
func NewAdminShowHandler(base *BaseHandler, commands ShowCommands, queries ShowQueries) *AdminShowHandler {
	return &AdminShowHandler{BaseHandler: base, commands: commands, queries: queries}
}

// Overview handles GET /admin/shows.
func (h *AdminShowHandler) Overview(c *gin.Context) {
	details, err := h.queries.Overview(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.ShowDetailResponse, 0, len(details))
	for _, d := range details {
		items = append(items, dto.FromDetail(d))
	}
	h.OK(c, gin.H{"data": items})
}

// Info handles GET /admin/shows/:id.
func (h *AdminShowHandler) Info(c *gin.Context) {
	showID, ok := h.ParamID(c)
	if !ok {
		return
	}

	d, err := h.queries.Info(c.Request.Context(), showID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromDetail(d))
}

// Create handles POST /admin/shows.
func (h *AdminShowHandler) Create(c *gin.Context) {
	var req dto.ShowRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	sh, err := h.commands.Create(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromShow(sh))
}

// Update handles PUT /admin/shows/:id.
func (h *AdminShowHandler) Update(c *gin.Context) {
	showID, ok := h.ParamID(c)
	if !ok {
		return
	}

	var req dto.UpdateShowRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	sh, err := h.commands.Update(c.Request.Context(), showID, req.Version, in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromShow(sh))
}

// Delete handles DELETE /admin/shows/:id.
func (h *AdminShowHandler) Delete(c *gin.Context) {
	showID, ok := h.ParamID(c)
	if !ok {
		return
	}

	if err := h.commands.Delete(c.Request.Context(), showID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}
