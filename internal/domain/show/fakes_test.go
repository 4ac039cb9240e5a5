package show

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"showalert/internal/core/apperror"
	"showalert/internal/core/entity"
	"showalert/internal/core/id"
	"showalert/internal/domain"
	"showalert/internal/domain/domaintest"
	"showalert/internal/domain/pagination"
)

type memShowRepo struct {
	mu    sync.Mutex
	shows map[id.ID]Show
}

func newMemShowRepo() *memShowRepo {
	return &memShowRepo{shows: map[id.ID]Show{}}
}

func (r *memShowRepo) Create(_ context.Context, s *Show) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shows[s.ID] = *s
	return nil
}

func (r *memShowRepo) GetByID(ctx context.Context, showID id.ID) (*Show, error) {
	s, err := r.GetByIDWithHistory(ctx, showID)
	if err != nil {
		return nil, err
	}
	if s.DeletionMark {
		return nil, apperror.NewNotFound("show", showID)
	}
	return s, nil
}

func (r *memShowRepo) GetByIDWithHistory(_ context.Context, showID id.ID) (*Show, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.shows[showID]
	if !ok {
		return nil, apperror.NewNotFound("show", showID)
	}
	return &s, nil
}

func (r *memShowRepo) Update(_ context.Context, s *Show) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.shows[s.ID]
	if !ok || cur.Version != s.Version {
		return apperror.NewConcurrentModification("show", s.ID)
	}
	next := *s
	next.Version = cur.Version + 1
	next.ViewCount = cur.ViewCount
	r.shows[s.ID] = next
	s.Version = next.Version
	return nil
}

func (r *memShowRepo) SetDeletionMark(_ context.Context, showID id.ID, marked bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.shows[showID]
	if !ok {
		return apperror.NewNotFound("show", showID)
	}
	s.DeletionMark = marked
	r.shows[showID] = s
	return nil
}

func (r *memShowRepo) Exists(_ context.Context, showID id.ID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.shows[showID]
	return ok && !s.DeletionMark, nil
}

func (r *memShowRepo) List(context.Context, domain.ListFilter) (domain.ListResult[*Show], error) {
	return domain.ListResult[*Show]{}, nil
}

type memRow[K comparable] struct {
	id      id.ID
	owner   id.ID
	key     K
	deleted bool
}

// memAssoc is an in-memory association table that keeps deleted rows.
type memAssoc[K comparable, R any] struct {
	mu    sync.Mutex
	rows  []*memRow[K]
	build func(base entity.BaseLink, k K) R
	rowID func(R) id.ID
	keyOf func(R) K
}

func (m *memAssoc[K, R]) ListActive(_ context.Context, owner id.ID) ([]R, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []R
	for _, r := range m.rows {
		if r.owner == owner && !r.deleted {
			out = append(out, m.build(entity.BaseLink{ID: r.id, OwnerID: owner}, r.key))
		}
	}
	return out, nil
}

func (m *memAssoc[K, R]) Key(row R) K { return m.keyOf(row) }

func (m *memAssoc[K, R]) Insert(_ context.Context, owner id.ID, keys []K) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		m.rows = append(m.rows, &memRow[K]{id: id.New(), owner: owner, key: k})
	}
	return nil
}

func (m *memAssoc[K, R]) SoftDelete(_ context.Context, rows []R) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range rows {
		for _, r := range m.rows {
			if r.id == m.rowID(row) {
				r.deleted = true
			}
		}
	}
	return nil
}

func (m *memAssoc[K, R]) active(owner id.ID) []K {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []K
	for _, r := range m.rows {
		if r.owner == owner && !r.deleted {
			out = append(out, r.key)
		}
	}
	return out
}

func (m *memAssoc[K, R]) total() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

func newLinkStore() *memAssoc[id.ID, domain.Link] {
	return &memAssoc[id.ID, domain.Link]{
		build: func(b entity.BaseLink, k id.ID) domain.Link { return domain.Link{BaseLink: b, RelatedID: k} },
		rowID: func(l domain.Link) id.ID { return l.ID },
		keyOf: func(l domain.Link) id.ID { return l.RelatedID },
	}
}

func newTicketingStore() *memAssoc[TicketingKey, TicketingTime] {
	return &memAssoc[TicketingKey, TicketingTime]{
		build: func(b entity.BaseLink, k TicketingKey) TicketingTime {
			// read back in a non-UTC zone like a driver might
			return TicketingTime{BaseLink: b, Type: k.Type, At: k.At.In(time.FixedZone("KST", 9*3600))}
		},
		rowID: func(t TicketingTime) id.ID { return t.ID },
		keyOf: func(t TicketingTime) TicketingKey { return t.Key() },
	}
}

func newSearchStore() *memAssoc[string, SearchRow] {
	return &memAssoc[string, SearchRow]{
		build: func(b entity.BaseLink, k string) SearchRow { return SearchRow{BaseLink: b, Name: k} },
		rowID: func(s SearchRow) id.ID { return s.ID },
		keyOf: func(s SearchRow) string { return s.Name },
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) ofType(t string) []domain.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []domain.Event
	for _, e := range p.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

type memCache struct {
	mu          sync.Mutex
	items       map[id.ID]*Detail
	invalidated []id.ID
}

func newMemCache() *memCache { return &memCache{items: map[id.ID]*Detail{}} }

func (c *memCache) Get(_ context.Context, showID id.ID) (*Detail, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.items[showID]
	return d, ok
}

func (c *memCache) Set(_ context.Context, d *Detail) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[d.Show.ID] = d
}

func (c *memCache) Invalidate(_ context.Context, showID id.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, showID)
	c.invalidated = append(c.invalidated, showID)
}

type fakeSource struct {
	items     []*ListItem
	lastQuery pagination.Query
}

func (f *fakeSource) ResolveCursor(_ context.Context, _ pagination.Ordering, cursorID id.ID) (pagination.Key, error) {
	for _, it := range f.items {
		if it.CursorID == cursorID {
			return it.PageKey(), nil
		}
	}
	return pagination.Key{}, apperror.NewNotFound("show", cursorID)
}

// listItemFields exposes a row to the listing filters. Fakes only hold
// live rows.
func listItemFields(it *ListItem) map[string]any {
	return map[string]any{
		"s.deletion_mark":   false,
		"stt.deletion_mark": false,
		"s.end_date":        it.EndDate,
		"stt.ticketing_at":  it.TicketingAt,
	}
}

func (f *fakeSource) Fetch(_ context.Context, q pagination.Query) ([]*ListItem, error) {
	f.lastQuery = q
	return domaintest.Select(f.items, q, listItemFields)
}

type fakeQueryRepo struct {
	recent, popular *fakeSource
	details         map[id.ID]*Detail
	detailCalls     atomic.Int32
	views           sync.Map // id.ID -> *atomic.Int64
	countCalls      int
}

func newFakeQueryRepo() *fakeQueryRepo {
	return &fakeQueryRepo{
		recent:  &fakeSource{},
		popular: &fakeSource{},
		details: map[id.ID]*Detail{},
	}
}

func (f *fakeQueryRepo) RecentListing() pagination.Source[*ListItem]  { return f.recent }
func (f *fakeQueryRepo) PopularListing() pagination.Source[*ListItem] { return f.popular }

func (f *fakeQueryRepo) Detail(_ context.Context, showID id.ID, _ DetailOptions) (*Detail, error) {
	f.detailCalls.Add(1)
	d, ok := f.details[showID]
	if !ok {
		return nil, apperror.NewNotFound("show", showID)
	}
	return d, nil
}

func (f *fakeQueryRepo) ListDetails(context.Context) ([]*Detail, error) {
	out := make([]*Detail, 0, len(f.details))
	for _, d := range f.details {
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeQueryRepo) CountTerminatedTicketing(context.Context, []id.ID, time.Time) (int64, error) {
	f.countCalls++
	return 1, nil
}

func (f *fakeQueryRepo) IncrementViewCount(_ context.Context, showID id.ID) (int64, error) {
	v, ok := f.views.Load(showID)
	if !ok {
		return 0, apperror.NewNotFound("show", showID)
	}
	return v.(*atomic.Int64).Add(1), nil
}
