package show

import (
	"context"
	"fmt"

	"showalert/internal/core/apperror"
	"showalert/internal/core/id"
	"showalert/internal/core/tx"
	"showalert/internal/domain"
	"showalert/internal/domain/reconcile"
	"showalert/pkg/logger"
)

// Event types recorded for shows.
const (
	AggregateType = "show"

	EventRegistered = "show.registered"
	EventUpdated    = "show.updated"
)

// RelationPayload tells subscribers which artists and genres a show was
// linked to. On update only newly added ids are listed.
type RelationPayload struct {
	ShowID    id.ID   `json:"showId"`
	ArtistIDs []id.ID `json:"artistIds"`
	GenreIDs  []id.ID `json:"genreIds"`
}

// Input is an admin create or update request.
type Input struct {
	Info
	ArtistIDs      []id.ID
	GenreIDs       []id.ID
	TicketingTimes []TicketingKey
}

func (in Input) normalizedTicketing() []TicketingKey {
	out := make([]TicketingKey, 0, len(in.TicketingTimes))
	for _, k := range in.TicketingTimes {
		out = append(out, NewTicketingKey(k.Type, k.At))
	}
	return out
}

// AdminService owns every write to shows and their associations.
type AdminService struct {
	repo      Repository
	stores    Stores
	txManager tx.Manager
	events    domain.EventPublisher
	cache     DetailCache
}

// AdminServiceConfig configures AdminService. Cache may be nil.
type AdminServiceConfig struct {
	Repo      Repository
	Stores    Stores
	TxManager tx.Manager
	Events    domain.EventPublisher
	Cache     DetailCache
}

// NewAdminService creates an AdminService.
func NewAdminService(cfg AdminServiceConfig) *AdminService {
	cache := cfg.Cache
	if cache == nil {
		cache = noCache{}
	}
	return &AdminService{
		repo:      cfg.Repo,
		stores:    cfg.Stores,
		txManager: cfg.TxManager,
		events:    cfg.Events,
		cache:     cache,
	}
}

// Create registers a show with its associations and records
// EventRegistered, all in one transaction.
func (s *AdminService) Create(ctx context.Context, in Input) (*Show, error) {
	sh := New(in.Info)
	if err := sh.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, sh); err != nil {
			return fmt.Errorf("create show: %w", err)
		}

		var artists, genres reconcile.Delta[id.ID, domain.Link]
		if err := s.reconcileAll(ctx, sh, in, &artists, &genres); err != nil {
			return err
		}

		return s.events.Publish(ctx, domain.Event{
			AggregateType: AggregateType,
			AggregateID:   sh.ID,
			Type:          EventRegistered,
			Payload: RelationPayload{
				ShowID:    sh.ID,
				ArtistIDs: nonNil(artists.ToAdd),
				GenreIDs:  nonNil(genres.ToAdd),
			},
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "show registered", "show_id", sh.ID, "artists", len(in.ArtistIDs), "genres", len(in.GenreIDs))
	return sh, nil
}

// Update applies in to the show if it is still at version. Associations are
// reconciled in the same transaction. EventUpdated is recorded only when
// artists or genres were newly linked.
func (s *AdminService) Update(ctx context.Context, showID id.ID, version int, in Input) (*Show, error) {
	if version <= 0 {
		return nil, apperror.NewValidation("version is required").WithDetail("field", "version")
	}

	var updated *Show
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		sh, err := s.repo.GetByID(ctx, showID)
		if err != nil {
			return normalizeGetErr(err, showID)
		}
		if sh.Version != version {
			return apperror.NewConcurrentModification("show", showID.String()).
				WithDetail("expectedVersion", version).
				WithDetail("actualVersion", sh.Version)
		}

		sh.ChangeInfo(in.Info)
		if err := sh.Validate(ctx); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, sh); err != nil {
			if apperror.IsAppError(err) {
				return err
			}
			return fmt.Errorf("update show: %w", err)
		}

		var artists, genres reconcile.Delta[id.ID, domain.Link]
		if err := s.reconcileAll(ctx, sh, in, &artists, &genres); err != nil {
			return err
		}

		if len(artists.ToAdd) > 0 || len(genres.ToAdd) > 0 {
			err := s.events.Publish(ctx, domain.Event{
				AggregateType: AggregateType,
				AggregateID:   sh.ID,
				Type:          EventUpdated,
				Payload: RelationPayload{
					ShowID:    sh.ID,
					ArtistIDs: nonNil(artists.ToAdd),
					GenreIDs:  nonNil(genres.ToAdd),
				},
			})
			if err != nil {
				return fmt.Errorf("publish %s: %w", EventUpdated, err)
			}
		}

		updated = sh
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, showID)
	return updated, nil
}

// Delete soft-deletes the show and cascades into every association it owns.
// Artists and genres themselves are untouched.
func (s *AdminService) Delete(ctx context.Context, showID id.ID) error {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetByID(ctx, showID); err != nil {
			return normalizeGetErr(err, showID)
		}
		if err := s.repo.SetDeletionMark(ctx, showID, true); err != nil {
			return fmt.Errorf("delete show: %w", err)
		}
		return reconcile.All(ctx, showID,
			reconcile.BindCascade[string, SearchRow]("show_search", s.stores.Search),
			reconcile.BindCascade[id.ID, domain.Link]("show_artist", s.stores.Artists),
			reconcile.BindCascade[id.ID, domain.Link]("show_genre", s.stores.Genres),
			reconcile.BindCascade[TicketingKey, TicketingTime]("show_ticketing_time", s.stores.Ticketing),
		)
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(ctx, showID)
	logger.Info(ctx, "show deleted", "show_id", showID)
	return nil
}

func (s *AdminService) reconcileAll(
	ctx context.Context,
	sh *Show,
	in Input,
	artists, genres *reconcile.Delta[id.ID, domain.Link],
) error {
	return reconcile.All(ctx, sh.ID,
		reconcile.Bind[string, SearchRow]("show_search", s.stores.Search, []string{sh.SearchName()}, nil),
		reconcile.Bind[id.ID, domain.Link]("show_artist", s.stores.Artists, in.ArtistIDs, artists),
		reconcile.Bind[id.ID, domain.Link]("show_genre", s.stores.Genres, in.GenreIDs, genres),
		reconcile.Bind[TicketingKey, TicketingTime]("show_ticketing_time", s.stores.Ticketing, in.normalizedTicketing(), nil),
	)
}

func nonNil(ids []id.ID) []id.ID {
	if ids == nil {
		return []id.ID{}
	}
	return ids
}
