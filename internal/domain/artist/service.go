package artist

import (
	"context"
	"fmt"

	"showalert/internal/core/id"
	"showalert/internal/core/tx"
	"showalert/internal/domain"
	"showalert/internal/domain/filter"
	"showalert/internal/domain/pagination"
	"showalert/internal/domain/reconcile"
)

// ByName orders artists alphabetically with the id as tie-break.
var ByName = pagination.Ordering{
	Name:      "NAME",
	Primary:   "name",
	Direction: pagination.Asc,
	TieBreak:  "id",
}

// Repository stores artists and serves the cursor listing.
type Repository interface {
	domain.SoftDeleteStore[*Artist]
	pagination.Source[*Artist]
}

// Links are the association tables seen from the artist side.
type Links struct {
	Genres domain.LinkStore // artist_genre, owner = artist
	Shows  domain.LinkStore // show_artist, owner = artist
}

// Service manages artists.
type Service struct {
	*domain.CatalogService[*Artist]
	repo Repository
}

// NewService creates the artist service. Saving an artist with GenreIDs set
// reconciles artist_genre; deleting one cascades into artist_genre and
// show_artist. When cache is not nil, the details of the shows an artist
// appears on are evicted after an update or delete commits.
func NewService(repo Repository, txm tx.Manager, links Links, cache domain.DetailInvalidator) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Artist]{
		Repo:       repo,
		TxManager:  txm,
		EntityName: "artist",
	})

	base.Hooks().On(domain.OnSave, func(ctx context.Context, a *Artist) error {
		if a.GenreIDs == nil {
			return nil
		}
		if _, err := reconcile.Reconcile[id.ID, domain.Link](ctx, links.Genres, a.ID, a.GenreIDs); err != nil {
			return fmt.Errorf("reconcile artist_genre: %w", err)
		}
		return nil
	})

	base.Hooks().On(domain.OnDelete, func(ctx context.Context, a *Artist) error {
		var shows reconcile.Delta[id.ID, domain.Link]
		err := reconcile.All(ctx, a.ID,
			reconcile.BindCascade[id.ID, domain.Link]("artist_genre", links.Genres),
			reconcile.Bind[id.ID, domain.Link]("show_artist", links.Shows, nil, &shows),
		)
		if err != nil {
			return err
		}
		a.unlinkedShows = domain.RelatedIDs(shows.ToRemove)
		return nil
	})

	if cache != nil {
		base.Hooks().On(domain.AfterUpdate, func(ctx context.Context, a *Artist) error {
			return domain.InvalidateLinkedShows(ctx, cache, links.Shows, a.ID)
		})
		base.Hooks().On(domain.AfterDelete, func(ctx context.Context, a *Artist) error {
			domain.InvalidateShows(ctx, cache, a.unlinkedShows)
			return nil
		})
	}

	return &Service{CatalogService: base, repo: repo}
}

// PageRequest asks for one page of the artist listing.
type PageRequest struct {
	CursorID *id.ID
	Size     int
	// Search narrows to names containing it, case-insensitively.
	Search string
}

// Page returns live artists ordered by name.
func (s *Service) Page(ctx context.Context, req PageRequest) (pagination.Page[*Artist], error) {
	filters := []filter.Item{filter.NotDeleted("")}
	if req.Search != "" {
		filters = append(filters, filter.Item{Field: "name", Operator: filter.Contains, Value: req.Search})
	}
	return pagination.Paginate[*Artist](ctx, s.repo, pagination.Request{
		Ordering: ByName,
		CursorID: req.CursorID,
		Size:     req.Size,
		Filters:  filters,
	})
}
