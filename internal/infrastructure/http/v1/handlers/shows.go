package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"showalert/internal/core/apperror"
	"showalert/internal/core/id"
	"showalert/internal/domain/pagination"
	"showalert/internal/domain/show"
	"showalert/internal/infrastructure/http/v1/dto"
	"showalert/internal/infrastructure/metrics"
)

// ShowQueries is the read side the show handlers call.
type ShowQueries interface {
	List(ctx context.Context, req show.ListRequest) (pagination.Page[*show.ListItem], error)
	Detail(ctx context.Context, showID id.ID) (*show.Detail, error)
	Info(ctx context.Context, showID id.ID) (*show.Detail, error)
	Overview(ctx context.Context) ([]*show.Detail, error)
	View(ctx context.Context, showID id.ID) (int64, error)
	CountTerminatedTicketing(ctx context.Context, showIDs []id.ID, now time.Time) (int64, error)
}

// ShowHandler serves the public show endpoints.
type ShowHandler struct {
	*BaseHandler
	queries ShowQueries
	now     func() time.Time
}

// NewShowHandler creates a show handler. now defaults to time.Now.
func NewShowHandler(base *BaseHandler, queries ShowQueries, now func() time.Time) *ShowHandler {
	if now == nil {
		now = time.Now
	}
	return &ShowHandler{BaseHandler: base, queries: queries, now: now}
}

// List handles GET /shows?sort=&cursorId=&size=&onlyOpenSchedule=.
func (h *ShowHandler) List(c *gin.Context) {
	mode, err := show.ParseSortMode(c.Query("sort"))
	if err != nil {
		h.Error(c, err)
		return
	}
	cursorID, ok := h.cursorParam(c)
	if !ok {
		return
	}
	size, ok := h.ParseIntQuery(c, "size", pagination.DefaultSize)
	if !ok {
		return
	}

	var onlyOpen bool
	if raw := c.Query("onlyOpenSchedule"); raw != "" {
		if onlyOpen, err = strconv.ParseBool(raw); err != nil {
			h.Error(c, apperror.NewValidation("invalid onlyOpenSchedule").WithDetail("onlyOpenSchedule", raw))
			return
		}
	}

	page, err := h.queries.List(c.Request.Context(), show.ListRequest{
		Sort:             mode,
		CursorID:         cursorID,
		Size:             size,
		OnlyOpenSchedule: onlyOpen,
		Now:              h.now().UTC(),
	})
	if err != nil {
		if apperror.IsStaleCursor(err) {
			metrics.StaleCursors.WithLabelValues(string(mode)).Inc()
		}
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewCursorPage(page, dto.ToShowListItem))
}

// Detail handles GET /shows/:id.
func (h *ShowHandler) Detail(c *gin.Context) {
	showID, ok := h.ParamID(c)
	if !ok {
		return
	}

	d, err := h.queries.Detail(c.Request.Context(), showID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromDetail(d))
}

// View handles POST /shows/:id/view.
func (h *ShowHandler) View(c *gin.Context) {
	showID, ok := h.ParamID(c)
	if !ok {
		return
	}

	n, err := h.queries.View(c.Request.Context(), showID)
	if err != nil {
		h.Error(c, err)
		return
	}
	metrics.ShowViews.Inc()
	h.OK(c, dto.ViewResponse{ShowID: showID.String(), ViewCount: n})
}

// CountTerminated handles POST /shows/terminated/count.
func (h *ShowHandler) CountTerminated(c *gin.Context) {
	var req dto.TerminatedCountRequest
	if !h.BindJSON(c, &req) {
		return
	}

	n, err := h.queries.CountTerminatedTicketing(c.Request.Context(), req.ShowIDs, h.now().UTC())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.CountResponse{Count: n})
}
