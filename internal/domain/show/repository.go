package show

import (
	"context"
	"time"

	"showalert/internal/core/id"
	"showalert/internal/domain"
	"showalert/internal/domain/pagination"
)

// Repository is the write side of the show aggregate.
type Repository interface {
	domain.SoftDeleteStore[*Show]
}

// DetailOptions selects what a detail projection carries.
type DetailOptions struct {
	// ArtistImages adds artist images (user-facing page).
	ArtistImages bool
}

// QueryRepository is the read side.
type QueryRepository interface {
	// RecentListing yields one row per active ticketing time. Sources set
	// ListItem.Mode on every row they return.
	RecentListing() pagination.Source[*ListItem]
	// PopularListing yields one row per show with its earliest qualifying
	// ticketing time.
	PopularListing() pagination.Source[*ListItem]

	// Detail returns NOT_FOUND for a missing or soft-deleted show.
	Detail(ctx context.Context, showID id.ID, opts DetailOptions) (*Detail, error)

	// ListDetails returns every live show with its associations.
	ListDetails(ctx context.Context) ([]*Detail, error)

	// CountTerminatedTicketing counts distinct live shows among showIDs
	// whose last ticketing time is before now.
	CountTerminatedTicketing(ctx context.Context, showIDs []id.ID, now time.Time) (int64, error)

	// IncrementViewCount adds one view in a standalone atomic statement
	// and returns the new count.
	IncrementViewCount(ctx context.Context, showID id.ID) (int64, error)
}

// DetailCache caches user-facing detail projections.
type DetailCache interface {
	Get(ctx context.Context, showID id.ID) (*Detail, bool)
	Set(ctx context.Context, d *Detail)
	Invalidate(ctx context.Context, showID id.ID)
}

type noCache struct{}

func (noCache) Get(context.Context, id.ID) (*Detail, bool) { return nil, false }
func (noCache) Set(context.Context, *Detail)               {}
func (noCache) Invalidate(context.Context, id.ID)          {}
