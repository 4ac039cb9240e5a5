// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"time"

	"showalert/internal/core/apperror"
	"showalert/internal/core/entity"
	"showalert/internal/domain/pagination"
)

// --- List Responses ---

// ListResponse wraps offset-paginated results.
type ListResponse struct {
	Items      any   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// CursorResponse points at the last row of a page. Clients pass ID back as
// cursorId, or Token as cursor.
type CursorResponse struct {
	ID    string `json:"id"`
	Value any    `json:"value"`
	Token string `json:"token"`
}

// CursorPage is one page of a keyset listing.
type CursorPage[T any] struct {
	Data    []T             `json:"data"`
	HasNext bool            `json:"hasNext"`
	Cursor  *CursorResponse `json:"cursor"`
}

// NewCursorPage maps a domain page, converting each item with mapFn.
func NewCursorPage[T, R any](p pagination.Page[T], mapFn func(T) R) CursorPage[R] {
	out := CursorPage[R]{
		Data:    make([]R, 0, len(p.Items)),
		HasNext: p.HasNext,
	}
	for _, it := range p.Items {
		out.Data = append(out.Data, mapFn(it))
	}
	if p.Next != nil {
		out.Cursor = &CursorResponse{
			ID:    p.Next.ID.String(),
			Value: p.Next.Value,
			Token: p.Next.Token(),
		}
	}
	return out
}

// --- Base DTOs ---

// BaseResponse contains common response fields.
type BaseResponse struct {
	ID           string    `json:"id"`
	DeletionMark bool      `json:"deletionMark"`
	Version      int       `json:"version"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// FromBase creates BaseResponse from entity.BaseEntity.
func FromBase(b entity.BaseEntity) BaseResponse {
	return BaseResponse{
		ID:           b.ID.String(),
		DeletionMark: b.DeletionMark,
		Version:      b.Version,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

// CatalogResponse contains catalog fields.
type CatalogResponse struct {
	BaseResponse
	Name string `json:"name"`
}

// FromCatalog creates CatalogResponse from entity.Catalog.
func FromCatalog(c entity.Catalog) CatalogResponse {
	return CatalogResponse{
		BaseResponse: FromBase(c.BaseEntity),
		Name:         c.Name,
	}
}

// --- Error Response ---

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// NewErrorResponse renders e for clients. The cause is never exposed.
func NewErrorResponse(e *apperror.AppError) ErrorResponse {
	return ErrorResponse{Code: e.Code, Message: e.Message, Details: e.Details}
}
