package genre

import (
	"context"
	"fmt"

	"showalert/internal/core/id"
	"showalert/internal/core/tx"
	"showalert/internal/domain"
	"showalert/internal/domain/reconcile"
)

// Repository stores genres.
type Repository interface {
	domain.SoftDeleteStore[*Genre]
}

// Service manages genres. Deleting a genre soft-deletes every artist_genre
// and show_genre row that references it; the artists and shows themselves
// are untouched.
type Service struct {
	*domain.CatalogService[*Genre]
}

// Links are the association tables seen from the genre side.
type Links struct {
	Artists domain.LinkStore // artist_genre, owner = genre
	Shows   domain.LinkStore // show_genre, owner = genre
}

// NewService creates the genre service. When cache is not nil, the details
// of the shows tagged with a genre are evicted after the genre is renamed or
// deleted.
func NewService(repo Repository, txm tx.Manager, links Links, cache domain.DetailInvalidator) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Genre]{
		Repo:       repo,
		TxManager:  txm,
		EntityName: "genre",
	})

	base.Hooks().On(domain.OnDelete, func(ctx context.Context, g *Genre) error {
		var shows reconcile.Delta[id.ID, domain.Link]
		err := reconcile.All(ctx, g.ID,
			reconcile.BindCascade[id.ID, domain.Link]("artist_genre", links.Artists),
			reconcile.Bind[id.ID, domain.Link]("show_genre", links.Shows, nil, &shows),
		)
		if err != nil {
			return fmt.Errorf("cascade genre %s: %w", g.ID, err)
		}
		g.untaggedShows = domain.RelatedIDs(shows.ToRemove)
		return nil
	})

	if cache != nil {
		base.Hooks().On(domain.AfterUpdate, func(ctx context.Context, g *Genre) error {
			return domain.InvalidateLinkedShows(ctx, cache, links.Shows, g.ID)
		})
		base.Hooks().On(domain.AfterDelete, func(ctx context.Context, g *Genre) error {
			domain.InvalidateShows(ctx, cache, g.untaggedShows)
			return nil
		})
	}

	return &Service{CatalogService: base}
}

// ListActive returns every live genre ordered by name.
func (s *Service) ListActive(ctx context.Context) ([]*Genre, error) {
	f := domain.DefaultListFilter()
	f.Limit = 0
	res, err := s.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return res.Items, nil
}
