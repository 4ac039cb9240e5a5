package show

import (
	"fmt"
	"time"

	"showalert/internal/core/entity"
	"showalert/internal/domain"
	"showalert/internal/domain/reconcile"
)

// TicketingType tells pre-sale from general sale.
type TicketingType string

const (
	TicketingPre    TicketingType = "PRE"
	TicketingNormal TicketingType = "NORMAL"
)

// ParseTicketingType validates s.
func ParseTicketingType(s string) (TicketingType, error) {
	switch t := TicketingType(s); t {
	case TicketingPre, TicketingNormal:
		return t, nil
	}
	return "", fmt.Errorf("unknown ticketing type %q", s)
}

// TicketingKey identifies a ticketing time by value. At is normalised to
// UTC at microsecond precision so keys read back from PostgreSQL compare
// equal to the ones that were written.
type TicketingKey struct {
	Type TicketingType
	At   time.Time
}

// NewTicketingKey builds a normalised key.
func NewTicketingKey(typ TicketingType, at time.Time) TicketingKey {
	return TicketingKey{Type: typ, At: at.UTC().Truncate(time.Microsecond)}
}

// TicketingTime is one show_ticketing_time row. OwnerID is the show.
type TicketingTime struct {
	entity.BaseLink
	Type TicketingType `db:"ticketing_type" json:"ticketingType"`
	At   time.Time     `db:"ticketing_at" json:"ticketingAt"`
}

// Key returns the reconciliation key of t.
func (t TicketingTime) Key() TicketingKey {
	return NewTicketingKey(t.Type, t.At)
}

// TicketingStore persists ticketing times per show.
type TicketingStore interface {
	reconcile.Store[TicketingKey, TicketingTime]
}

// SearchRow is one show_search row. OwnerID is the show.
type SearchRow struct {
	entity.BaseLink
	Name string `db:"name" json:"name"`
}

// SearchStore persists search rows per show.
type SearchStore interface {
	reconcile.Store[string, SearchRow]
}

// Stores groups every association the show owns.
type Stores struct {
	Artists   domain.LinkStore // show_artist, owner = show
	Genres    domain.LinkStore // show_genre, owner = show
	Ticketing TicketingStore
	Search    SearchStore
}
