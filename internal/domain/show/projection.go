package show

import (
	"strings"
	"time"

	"showalert/internal/core/apperror"
	"showalert/internal/core/id"
	"showalert/internal/domain/pagination"
)

// SortMode selects a listing order.
type SortMode string

const (
	// Recent lists one row per upcoming ticketing time, soonest first.
	Recent SortMode = "RECENT"
	// Popular lists one row per show, most viewed first.
	Popular SortMode = "POPULAR"
)

// Orderings are the registered listing orders. Column names use the
// listing query's aliases: s = show, stt = show_ticketing_time.
var Orderings = map[SortMode]pagination.Ordering{
	Recent: {
		Name:      string(Recent),
		Primary:   "stt.ticketing_at",
		Direction: pagination.Asc,
		TieBreak:  "stt.id",
	},
	Popular: {
		Name:      string(Popular),
		Primary:   "s.view_count",
		Direction: pagination.Desc,
		TieBreak:  "s.id",
	},
}

// ParseSortMode accepts a mode name in any case. Empty means Recent.
func ParseSortMode(s string) (SortMode, error) {
	if s == "" {
		return Recent, nil
	}
	m := SortMode(strings.ToUpper(s))
	if _, ok := Orderings[m]; !ok {
		return "", apperror.NewValidation("unknown sort mode").WithDetail("sort", s)
	}
	return m, nil
}

// ListItem is one row of a show listing.
type ListItem struct {
	// CursorID is the tie-break row: the ticketing time for Recent, the
	// show for Popular.
	CursorID id.ID `db:"cursor_id" json:"cursorId"`

	ShowID        id.ID          `db:"show_id" json:"id"`
	Title         string         `db:"title" json:"title"`
	Location      string         `db:"location" json:"location"`
	Image         string         `db:"image" json:"image"`
	StartDate     time.Time      `db:"start_date" json:"startDate"`
	EndDate       time.Time      `db:"end_date" json:"endDate"`
	TicketingType *TicketingType `db:"ticketing_type" json:"ticketingType,omitempty"`
	TicketingAt   time.Time      `db:"ticketing_at" json:"ticketingAt"`
	ViewCount     int64          `db:"view_count" json:"viewCount"`

	Mode SortMode `db:"-" json:"-"`
}

// PageKey implements pagination.Keyed.
func (i *ListItem) PageKey() pagination.Key {
	if i.Mode == Popular {
		return pagination.Key{ID: i.CursorID, Value: i.ViewCount}
	}
	return pagination.Key{ID: i.CursorID, Value: i.TicketingAt}
}

// ArtistSummary is an artist as shown on a show page.
type ArtistSummary struct {
	ID    id.ID  `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Image string `db:"image" json:"image,omitempty"`
}

// GenreSummary is a genre as shown on a show page.
type GenreSummary struct {
	ID   id.ID  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// TicketingSummary is a ticketing time as shown on a show page.
type TicketingSummary struct {
	Type TicketingType `db:"ticketing_type" json:"ticketingType"`
	At   time.Time     `db:"ticketing_at" json:"ticketingAt"`
}

// Detail is a show with its active associations, each collected into its own
// set rather than one row per combination.
type Detail struct {
	Show           *Show              `json:"show"`
	Artists        []ArtistSummary    `json:"artists"`
	Genres         []GenreSummary     `json:"genres"`
	TicketingTimes []TicketingSummary `json:"ticketingTimes"`
}

// ArtistIDs returns the ids of d.Artists.
func (d *Detail) ArtistIDs() []id.ID {
	out := make([]id.ID, 0, len(d.Artists))
	for _, a := range d.Artists {
		out = append(out, a.ID)
	}
	return out
}
