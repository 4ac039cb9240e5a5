// Package show holds the show aggregate, its admin workflow and the read
// side that serves listings and detail pages.
package show

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	"showalert/internal/core/apperror"
	"showalert/internal/core/entity"
)

// SeatPrices maps a seat grade to its price. Stored as JSONB.
type SeatPrices map[string]decimal.Decimal

// TicketingSites maps a vendor name to its booking URL. Stored as JSONB.
type TicketingSites map[string]string

// Show is a concert or performance.
type Show struct {
	entity.BaseEntity

	Title           string         `db:"title" json:"title"`
	Content         string         `db:"content" json:"content"`
	StartDate       time.Time      `db:"start_date" json:"startDate"`
	EndDate         time.Time      `db:"end_date" json:"endDate"`
	Location        string         `db:"location" json:"location"`
	Image           string         `db:"image" json:"image"`
	LastTicketingAt time.Time      `db:"last_ticketing_at" json:"lastTicketingAt"`
	ViewCount       int64          `db:"view_count" json:"viewCount"`
	SeatPrices      SeatPrices     `db:"seat_prices" json:"seatPrices"`
	TicketingSites  TicketingSites `db:"ticketing_sites" json:"ticketingSites"`
}

// Info is the admin-editable part of a show.
type Info struct {
	Title           string
	Content         string
	StartDate       time.Time
	EndDate         time.Time
	Location        string
	Image           string
	LastTicketingAt time.Time
	SeatPrices      SeatPrices
	TicketingSites  TicketingSites
}

// New creates a show with zero views.
func New(info Info) *Show {
	s := &Show{BaseEntity: entity.NewBaseEntity()}
	s.ChangeInfo(info)
	return s
}

// ChangeInfo replaces the editable fields. ViewCount is never touched here.
func (s *Show) ChangeInfo(info Info) {
	s.Title = strings.TrimSpace(info.Title)
	s.Content = info.Content
	s.StartDate = dateOnly(info.StartDate)
	s.EndDate = dateOnly(info.EndDate)
	s.Location = info.Location
	s.Image = info.Image
	s.LastTicketingAt = info.LastTicketingAt.UTC()
	s.SeatPrices = info.SeatPrices
	s.TicketingSites = info.TicketingSites
	s.Touch()
}

// Validate implements entity.Validatable.
func (s *Show) Validate(ctx context.Context) error {
	if s.Title == "" {
		return apperror.NewValidation("title is required").WithDetail("field", "title")
	}
	if s.Location == "" {
		return apperror.NewValidation("location is required").WithDetail("field", "location")
	}
	if s.StartDate.IsZero() || s.EndDate.IsZero() {
		return apperror.NewValidation("start and end dates are required").WithDetail("field", "startDate")
	}
	if s.EndDate.Before(s.StartDate) {
		return apperror.NewValidation("end date is before start date").
			WithDetail("startDate", s.StartDate.Format(time.DateOnly)).
			WithDetail("endDate", s.EndDate.Format(time.DateOnly))
	}
	for grade, price := range s.SeatPrices {
		if price.IsNegative() {
			return apperror.NewValidation("seat price must not be negative").
				WithDetail("field", "seatPrices").
				WithDetail("grade", grade)
		}
	}
	return nil
}

// SearchName is the value indexed in show_search for this show.
func (s *Show) SearchName() string {
	return NormalizeSearchName(s.Title)
}

// NormalizeSearchName lowercases s and strips every whitespace rune, so that
// "IU  Concert" and "iuconcert" index the same.
func NormalizeSearchName(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

func dateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
