package domain

import (
	"context"
	"fmt"

	"showalert/internal/core/id"
)

// DetailInvalidator evicts cached show details. show.DetailCache
// satisfies it.
type DetailInvalidator interface {
	Invalidate(ctx context.Context, showID id.ID)
}

// RelatedIDs returns the related side of links.
func RelatedIDs(links []Link) []id.ID {
	out := make([]id.ID, 0, len(links))
	for _, l := range links {
		out = append(out, l.RelatedID)
	}
	return out
}

// InvalidateShows evicts every id in showIDs.
func InvalidateShows(ctx context.Context, cache DetailInvalidator, showIDs []id.ID) {
	for _, showID := range showIDs {
		cache.Invalidate(ctx, showID)
	}
}

// InvalidateLinkedShows evicts the shows owner is actively linked to
// through shows, a show association seen from the catalog side.
func InvalidateLinkedShows(ctx context.Context, cache DetailInvalidator, shows LinkStore, owner id.ID) error {
	links, err := shows.ListActive(ctx, owner)
	if err != nil {
		return fmt.Errorf("list linked shows: %w", err)
	}
	InvalidateShows(ctx, cache, RelatedIDs(links))
	return nil
}
