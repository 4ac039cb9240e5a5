package assoc_repo

import (
	"showalert/internal/core/id"
	"showalert/internal/domain/show"
	"showalert/internal/infrastructure/storage/postgres"
)

const (
	TicketingTable = "show_ticketing_time"
	SearchTable    = "show_search"
)

var (
	_ show.TicketingStore = (*TicketingRepo)(nil)
	_ show.SearchStore    = (*SearchRepo)(nil)
)

// TicketingRepo stores show_ticketing_time rows keyed by (type, instant).
type TicketingRepo struct {
	table[show.TicketingKey, show.TicketingTime]
}

// NewTicketingRepo creates the ticketing time store.
func NewTicketingRepo(db postgres.QuerierProvider) *TicketingRepo {
	return &TicketingRepo{table[show.TicketingKey, show.TicketingTime]{
		db:       db,
		name:     TicketingTable,
		ownerCol: "show_id",
		selectCols: []string{
			"id", "show_id AS owner_id", "ticketing_type", "ticketing_at", "deletion_mark", "created_at",
		},
		keyCols: []string{"ticketing_type", "ticketing_at"},
		keyValues: func(k show.TicketingKey) []any {
			return []any{k.Type, k.At}
		},
		key:   func(t show.TicketingTime) show.TicketingKey { return t.Key() },
		rowID: func(t show.TicketingTime) id.ID { return t.ID },
	}}
}

// SearchRepo stores the normalized search names of shows.
type SearchRepo struct {
	table[string, show.SearchRow]
}

// NewSearchRepo creates the show search store.
func NewSearchRepo(db postgres.QuerierProvider) *SearchRepo {
	return &SearchRepo{table[string, show.SearchRow]{
		db:         db,
		name:       SearchTable,
		ownerCol:   "show_id",
		selectCols: []string{"id", "show_id AS owner_id", "name", "deletion_mark", "created_at"},
		keyCols:    []string{"name"},
		keyValues:  func(k string) []any { return []any{k} },
		key:        func(r show.SearchRow) string { return r.Name },
		rowID:      func(r show.SearchRow) id.ID { return r.ID },
	}}
}

// NewShowStores wires the association stores owned by a show.
func NewShowStores(db postgres.QuerierProvider, links Links) show.Stores {
	return show.Stores{
		Artists:   links.ShowArtists,
		Genres:    links.ShowGenres,
		Ticketing: NewTicketingRepo(db),
		Search:    NewSearchRepo(db),
	}
}
