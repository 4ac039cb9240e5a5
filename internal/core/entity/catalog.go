package entity

import (
	"context"
	"strings"

	"showalert/internal/core/apperror"
)

// Catalog is the base for named reference records (artists, genres).
type Catalog struct {
	BaseEntity

	Name string `db:"name" json:"name"`
}

// NewCatalog creates a Catalog with a generated ID.
func NewCatalog(name string) Catalog {
	return Catalog{
		BaseEntity: NewBaseEntity(),
		Name:       strings.TrimSpace(name),
	}
}

// Validate implements Validatable.
func (c *Catalog) Validate(ctx context.Context) error {
	if strings.TrimSpace(c.Name) == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if len(c.Name) > 255 {
		return apperror.NewValidation("name is too long").
			WithDetail("field", "name").
			WithDetail("max", 255)
	}
	return nil
}
