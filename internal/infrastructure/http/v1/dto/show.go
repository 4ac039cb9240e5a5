package dto

import (
	"time"

	"showalert/internal/core/apperror"
	"showalert/internal/core/id"
	"showalert/internal/domain/show"
)

// TicketingTimeRequest is one ticketing time in a show request.
type TicketingTimeRequest struct {
	Type string    `json:"ticketingType" binding:"required"`
	At   time.Time `json:"ticketingAt" binding:"required"`
}

// ShowRequest is the request body for creating a show.
type ShowRequest struct {
	Title           string                 `json:"title" binding:"required"`
	Content         string                 `json:"content"`
	StartDate       string                 `json:"startDate" binding:"required"`
	EndDate         string                 `json:"endDate" binding:"required"`
	Location        string                 `json:"location" binding:"required"`
	Image           string                 `json:"image"`
	LastTicketingAt time.Time              `json:"lastTicketingAt"`
	SeatPrices      show.SeatPrices        `json:"seatPrices"`
	TicketingSites  show.TicketingSites    `json:"ticketingSites"`
	ArtistIDs       []id.ID                `json:"artistIds"`
	GenreIDs        []id.ID                `json:"genreIds"`
	TicketingTimes  []TicketingTimeRequest `json:"ticketingTimes"`
}

// ToInput converts the request to the admin service input. Dates use the
// YYYY-MM-DD form.
func (r *ShowRequest) ToInput() (show.Input, error) {
	start, err := time.Parse(time.DateOnly, r.StartDate)
	if err != nil {
		return show.Input{}, apperror.NewValidation("invalid startDate").WithDetail("startDate", r.StartDate)
	}
	end, err := time.Parse(time.DateOnly, r.EndDate)
	if err != nil {
		return show.Input{}, apperror.NewValidation("invalid endDate").WithDetail("endDate", r.EndDate)
	}

	in := show.Input{
		Info: show.Info{
			Title:           r.Title,
			Content:         r.Content,
			StartDate:       start,
			EndDate:         end,
			Location:        r.Location,
			Image:           r.Image,
			LastTicketingAt: r.LastTicketingAt,
			SeatPrices:      r.SeatPrices,
			TicketingSites:  r.TicketingSites,
		},
		ArtistIDs: r.ArtistIDs,
		GenreIDs:  r.GenreIDs,
	}
	for _, t := range r.TicketingTimes {
		typ, err := show.ParseTicketingType(t.Type)
		if err != nil {
			return show.Input{}, apperror.NewValidation(err.Error()).WithDetail("field", "ticketingTimes")
		}
		in.TicketingTimes = append(in.TicketingTimes, show.NewTicketingKey(typ, t.At))
	}
	if in.LastTicketingAt.IsZero() {
		in.LastTicketingAt = latestTicketing(in.TicketingTimes)
	}
	return in, nil
}

func latestTicketing(keys []show.TicketingKey) time.Time {
	var last time.Time
	for _, k := range keys {
		if k.At.After(last) {
			last = k.At
		}
	}
	return last
}

// UpdateShowRequest is the request body for updating a show.
type UpdateShowRequest struct {
	ShowRequest
	Version int `json:"version" binding:"required,min=1"`
}

// ShowResponse is the response body for a show.
type ShowResponse struct {
	BaseResponse
	Title           string              `json:"title"`
	Content         string              `json:"content"`
	StartDate       string              `json:"startDate"`
	EndDate         string              `json:"endDate"`
	Location        string              `json:"location"`
	Image           string              `json:"image"`
	LastTicketingAt time.Time           `json:"lastTicketingAt"`
	ViewCount       int64               `json:"viewCount"`
	SeatPrices      show.SeatPrices     `json:"seatPrices,omitempty"`
	TicketingSites  show.TicketingSites `json:"ticketingSites,omitempty"`
}

// FromShow converts domain entity to response DTO.
func FromShow(s *show.Show) ShowResponse {
	return ShowResponse{
		BaseResponse:    FromBase(s.BaseEntity),
		Title:           s.Title,
		Content:         s.Content,
		StartDate:       s.StartDate.Format(time.DateOnly),
		EndDate:         s.EndDate.Format(time.DateOnly),
		Location:        s.Location,
		Image:           s.Image,
		LastTicketingAt: s.LastTicketingAt,
		ViewCount:       s.ViewCount,
		SeatPrices:      s.SeatPrices,
		TicketingSites:  s.TicketingSites,
	}
}

// ShowDetailResponse is a show page: the show plus its artists, genres and
// ticketing times.
type ShowDetailResponse struct {
	ShowResponse
	Artists        []show.ArtistSummary    `json:"artists"`
	Genres         []show.GenreSummary     `json:"genres"`
	TicketingTimes []show.TicketingSummary `json:"ticketingTimes"`
}

// FromDetail converts a detail projection to response DTO.
func FromDetail(d *show.Detail) ShowDetailResponse {
	resp := ShowDetailResponse{
		ShowResponse:   FromShow(d.Show),
		Artists:        d.Artists,
		Genres:         d.Genres,
		TicketingTimes: d.TicketingTimes,
	}
	if resp.Artists == nil {
		resp.Artists = []show.ArtistSummary{}
	}
	if resp.Genres == nil {
		resp.Genres = []show.GenreSummary{}
	}
	if resp.TicketingTimes == nil {
		resp.TicketingTimes = []show.TicketingSummary{}
	}
	return resp
}

// ShowListItem is one row of a show listing.
type ShowListItem struct {
	ID            string              `json:"id"`
	Title         string              `json:"title"`
	Location      string              `json:"location"`
	Image         string              `json:"image"`
	StartDate     string              `json:"startDate"`
	EndDate       string              `json:"endDate"`
	TicketingType *show.TicketingType `json:"ticketingType,omitempty"`
	TicketingAt   time.Time           `json:"ticketingAt"`
	ViewCount     int64               `json:"viewCount"`
}

// ToShowListItem converts a listing row.
func ToShowListItem(i *show.ListItem) ShowListItem {
	return ShowListItem{
		ID:            i.ShowID.String(),
		Title:         i.Title,
		Location:      i.Location,
		Image:         i.Image,
		StartDate:     i.StartDate.Format(time.DateOnly),
		EndDate:       i.EndDate.Format(time.DateOnly),
		TicketingType: i.TicketingType,
		TicketingAt:   i.TicketingAt,
		ViewCount:     i.ViewCount,
	}
}

// ViewResponse reports the view count after a view.
type ViewResponse struct {
	ShowID    string `json:"showId"`
	ViewCount int64  `json:"viewCount"`
}

// TerminatedCountRequest asks how many of ShowIDs stopped selling tickets.
type TerminatedCountRequest struct {
	ShowIDs []id.ID `json:"showIds" binding:"required"`
}

// CountResponse carries a count.
type CountResponse struct {
	Count int64 `json:"count"`
}
