// Package domaintest provides in-memory stores for service tests.
package domaintest

import (
	"context"
	"sync"

	"showalert/internal/core/apperror"
	"showalert/internal/core/entity"
	"showalert/internal/core/id"
	"showalert/internal/domain"
)

// PassThroughTx runs fn directly. It satisfies tx.Manager.
type PassThroughTx struct{}

func (PassThroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Record is what MemStore keeps.
type Record interface {
	entity.SoftDeletable
	entity.Versioned
}

// MemStore implements domain.SoftDeleteStore[T] with the same
// compare-and-swap and soft-delete rules as the SQL repositories.
type MemStore[T Record] struct {
	mu       sync.Mutex
	items    map[id.ID]T
	versions map[id.ID]int
	deleted  map[id.ID]bool
	entity   string
}

// NewMemStore creates an empty store. name is used in NOT_FOUND errors.
func NewMemStore[T Record](name string) *MemStore[T] {
	return &MemStore[T]{
		items:    map[id.ID]T{},
		versions: map[id.ID]int{},
		deleted:  map[id.ID]bool{},
		entity:   name,
	}
}

func (s *MemStore[T]) Create(_ context.Context, e T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[e.GetID()]; ok {
		return apperror.NewConflict(s.entity + " already exists")
	}
	s.items[e.GetID()] = e
	s.versions[e.GetID()] = e.GetVersion()
	return nil
}

func (s *MemStore[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	e, err := s.GetByIDWithHistory(ctx, entityID)
	if err != nil {
		return e, err
	}
	if s.IsDeleted(entityID) {
		var zero T
		return zero, apperror.NewNotFound(s.entity, entityID.String())
	}
	return e, nil
}

func (s *MemStore[T]) GetByIDWithHistory(_ context.Context, entityID id.ID) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.items[entityID]
	if !ok {
		return e, apperror.NewNotFound(s.entity, entityID.String())
	}
	return e, nil
}

func (s *MemStore[T]) Update(_ context.Context, e T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.versions[e.GetID()]
	if !ok || s.deleted[e.GetID()] || cur != e.GetVersion() {
		return apperror.NewConcurrentModification(s.entity, e.GetID().String())
	}
	s.versions[e.GetID()] = cur + 1
	e.SetVersion(cur + 1)
	s.items[e.GetID()] = e
	return nil
}

func (s *MemStore[T]) SetDeletionMark(_ context.Context, entityID id.ID, marked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[entityID]; !ok {
		return apperror.NewNotFound(s.entity, entityID.String())
	}
	if s.deleted[entityID] != marked {
		s.deleted[entityID] = marked
		s.versions[entityID]++
	}
	return nil
}

func (s *MemStore[T]) Exists(_ context.Context, entityID id.ID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.items[entityID]
	return ok && !s.deleted[entityID], nil
}

func (s *MemStore[T]) List(_ context.Context, f domain.ListFilter) (domain.ListResult[T], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := domain.ListResult[T]{Items: []T{}, Limit: f.Limit, Offset: f.Offset}
	for entityID, e := range s.items {
		if s.deleted[entityID] && !f.IncludeDeleted {
			continue
		}
		res.Items = append(res.Items, e)
	}
	res.TotalCount = int64(len(res.Items))
	return res, nil
}

// IsDeleted reports the stored deletion mark.
func (s *MemStore[T]) IsDeleted(entityID id.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleted[entityID]
}

// Live returns the records without a deletion mark.
func (s *MemStore[T]) Live() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]T, 0, len(s.items))
	for entityID, e := range s.items {
		if !s.deleted[entityID] {
			out = append(out, e)
		}
	}
	return out
}

type linkRow struct {
	id          id.ID
	left, right id.ID
	deleted     bool
}

// LinkTable is one in-memory association table, e.g. artist_genre, that
// can be seen from either side like the SQL link repositories.
type LinkTable struct {
	mu   sync.Mutex
	rows []*linkRow
}

// Left returns the side owned by the left column (artist in artist_genre).
func (t *LinkTable) Left() domain.LinkStore { return linkSide{t: t, right: false} }

// Right returns the side owned by the right column (genre in artist_genre).
func (t *LinkTable) Right() domain.LinkStore { return linkSide{t: t, right: true} }

// Add inserts an active row directly.
func (t *LinkTable) Add(left, right id.ID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = append(t.rows, &linkRow{id: id.New(), left: left, right: right})
}

// ActiveRight returns the right ids linked to left by active rows.
func (t *LinkTable) ActiveRight(left id.ID) []id.ID {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []id.ID
	for _, r := range t.rows {
		if r.left == left && !r.deleted {
			out = append(out, r.right)
		}
	}
	return out
}

// ActiveLeft returns the left ids linked to right by active rows.
func (t *LinkTable) ActiveLeft(right id.ID) []id.ID {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []id.ID
	for _, r := range t.rows {
		if r.right == right && !r.deleted {
			out = append(out, r.left)
		}
	}
	return out
}

// Len counts rows, deleted ones included.
func (t *LinkTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.rows)
}

type linkSide struct {
	t     *LinkTable
	right bool
}

func (s linkSide) owner(r *linkRow) id.ID {
	if s.right {
		return r.right
	}
	return r.left
}

func (s linkSide) related(r *linkRow) id.ID {
	if s.right {
		return r.left
	}
	return r.right
}

func (s linkSide) ListActive(_ context.Context, owner id.ID) ([]domain.Link, error) {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()
	var out []domain.Link
	for _, r := range s.t.rows {
		if s.owner(r) == owner && !r.deleted {
			out = append(out, domain.Link{
				BaseLink:  entity.BaseLink{ID: r.id, OwnerID: owner},
				RelatedID: s.related(r),
			})
		}
	}
	return out, nil
}

func (s linkSide) Key(l domain.Link) id.ID { return l.RelatedID }

func (s linkSide) Insert(_ context.Context, owner id.ID, keys []id.ID) error {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()
	for _, k := range keys {
		row := &linkRow{id: id.New(), left: owner, right: k}
		if s.right {
			row.left, row.right = k, owner
		}
		s.t.rows = append(s.t.rows, row)
	}
	return nil
}

func (s linkSide) SoftDelete(_ context.Context, links []domain.Link) error {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()
	for _, l := range links {
		for _, r := range s.t.rows {
			if r.id == l.ID {
				r.deleted = true
			}
		}
	}
	return nil
}

// Evictions records cache invalidations. It satisfies domain.DetailInvalidator.
type Evictions struct {
	mu  sync.Mutex
	ids []id.ID
}

func (e *Evictions) Invalidate(_ context.Context, showID id.ID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ids = append(e.ids, showID)
}

// IDs returns the evicted ids in call order.
func (e *Evictions) IDs() []id.ID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]id.ID(nil), e.ids...)
}
