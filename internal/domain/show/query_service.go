package show

import (
	"context"
	"fmt"
	"time"

	"showalert/internal/core/apperror"
	"showalert/internal/core/id"
	"showalert/internal/domain/filter"
	"showalert/internal/domain/pagination"
)

type listing struct {
	ordering pagination.Ordering
	source   pagination.Source[*ListItem]
}

// QueryService serves listings and show pages.
type QueryService struct {
	repo     QueryRepository
	cache    DetailCache
	listings map[SortMode]listing
}

// NewQueryService wires the listing modes to their sources. cache may be nil.
func NewQueryService(repo QueryRepository, cache DetailCache) *QueryService {
	if cache == nil {
		cache = noCache{}
	}
	return &QueryService{
		repo:  repo,
		cache: cache,
		listings: map[SortMode]listing{
			Recent:  {ordering: Orderings[Recent], source: repo.RecentListing()},
			Popular: {ordering: Orderings[Popular], source: repo.PopularListing()},
		},
	}
}

// ListRequest is one page request of the show listing.
type ListRequest struct {
	Sort     SortMode
	CursorID *id.ID
	Size     int

	// OnlyOpenSchedule keeps ticketing times still in the future. Without
	// it, shows are kept while their end date is after today.
	OnlyOpenSchedule bool

	// Now is supplied by the caller.
	Now time.Time
}

// ListFilters returns the base predicate of a listing request.
func ListFilters(req ListRequest) []filter.Item {
	items := []filter.Item{
		filter.NotDeleted("s"),
		filter.NotDeleted("stt"),
	}
	if req.OnlyOpenSchedule {
		return append(items, filter.Gt("stt.ticketing_at", req.Now.UTC()))
	}
	return append(items, filter.Gt("s.end_date", dateOnly(req.Now.UTC())))
}

// List returns one page of shows.
func (s *QueryService) List(ctx context.Context, req ListRequest) (pagination.Page[*ListItem], error) {
	l, ok := s.listings[req.Sort]
	if !ok {
		return pagination.Page[*ListItem]{}, apperror.NewValidation("unknown sort mode").WithDetail("sort", req.Sort)
	}
	if req.Now.IsZero() {
		return pagination.Page[*ListItem]{}, apperror.NewInternal(fmt.Errorf("list shows: now is not set"))
	}

	return pagination.Paginate(ctx, l.source, pagination.Request{
		Ordering: l.ordering,
		CursorID: req.CursorID,
		Size:     req.Size,
		Filters:  ListFilters(req),
	})
}

// Detail returns the user-facing show page, through the cache.
func (s *QueryService) Detail(ctx context.Context, showID id.ID) (*Detail, error) {
	if d, ok := s.cache.Get(ctx, showID); ok {
		return d, nil
	}
	d, err := s.repo.Detail(ctx, showID, DetailOptions{ArtistImages: true})
	if err != nil {
		return nil, normalizeGetErr(err, showID)
	}
	s.cache.Set(ctx, d)
	return d, nil
}

// Info returns the admin view of a show. Never cached.
func (s *QueryService) Info(ctx context.Context, showID id.ID) (*Detail, error) {
	d, err := s.repo.Detail(ctx, showID, DetailOptions{})
	if err != nil {
		return nil, normalizeGetErr(err, showID)
	}
	return d, nil
}

// Overview returns every live show with its artists, genres and ticketing
// times.
func (s *QueryService) Overview(ctx context.Context) ([]*Detail, error) {
	return s.repo.ListDetails(ctx)
}

// View records one view of a show and returns the new count. It bypasses
// the cache and never joins a surrounding transaction.
func (s *QueryService) View(ctx context.Context, showID id.ID) (int64, error) {
	n, err := s.repo.IncrementViewCount(ctx, showID)
	if err != nil {
		return 0, normalizeGetErr(err, showID)
	}
	return n, nil
}

// CountTerminatedTicketing counts shows among showIDs whose ticketing has
// ended by now.
func (s *QueryService) CountTerminatedTicketing(ctx context.Context, showIDs []id.ID, now time.Time) (int64, error) {
	if len(showIDs) == 0 {
		return 0, nil
	}
	return s.repo.CountTerminatedTicketing(ctx, showIDs, now.UTC())
}

func normalizeGetErr(err error, showID id.ID) error {
	if apperror.IsNotFound(err) {
		return apperror.NewNotFound("show", showID.String())
	}
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewInternal(err).WithDetail("entity", "show").WithDetail("id", showID.String())
}
