// Package core holds the domain model and the derived-state computations:
// month ledger aggregation, schedule resolution and slot suggestion.
//
// Everything in this package is pure. Operations take the caller's user id
// and a reference instant explicitly and never read a clock or a store, so
// the surrounding HTTP/storage layer stays the only place doing I/O.
package core

import (
	"errors"
	"strings"
	"time"
)

type (
	// Money is an amount in integer cents. Calculations stay in cents to
	// avoid floating-point drift; floats appear only at the JSON boundary.
	Money struct {
		Cents int64
	}

	// Expense is a single spend on a calendar day. Immutable once recorded.
	Expense struct {
		ID          int64
		UserID      int64
		Amount      Money
		Description string
		Date        time.Time // calendar day, time-of-day ignored
	}

	// Budget is the amount a user plans to spend in one month.
	// At most one row exists per (user, month).
	Budget struct {
		ID     int64
		UserID int64
		Month  string // YYYY-MM
		Amount Money
	}

	// Activity is a scheduled block of time, either anchored to an absolute
	// date-time or repeating weekly.
	Activity struct {
		ID              int64
		UserID          int64
		Title           string
		Kind            string // "fixed" or "recurring"
		Descriptor      string // raw schedule descriptor as submitted
		Schedule        Schedule
		DurationMinutes int
	}
)

const (
	KindFixed     = "fixed"
	KindRecurring = "recurring"
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyTitle       = errors.New("empty title")
	ErrInvalidDuration  = errors.New("duration must be positive")
	ErrInvalidKind      = errors.New("invalid activity kind")
	ErrInvalidMonth     = errors.New("invalid month")
)

// MonthKey formats t's year and month as YYYY-MM, the key budgets are
// stored under.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// DayKey formats t's calendar date as YYYY-MM-DD.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// ValidMonthKey reports whether s is a well-formed YYYY-MM month key.
func ValidMonthKey(s string) bool {
	_, err := time.Parse("2006-01", s)
	return err == nil
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (e Expense) Validate() error {
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Description) == "" {
		return ErrEmptyDescription
	}
	if len(e.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if e.Date.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

func (b Budget) Validate() error {
	// Zero is allowed: an unset budget and a deliberately empty one look
	// the same to the aggregator.
	if b.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	if !ValidMonthKey(b.Month) {
		return ErrInvalidMonth
	}
	return nil
}

func (a Activity) Validate() error {
	if strings.TrimSpace(a.Title) == "" {
		return ErrEmptyTitle
	}
	if len(a.Title) > 200 {
		return errors.New("title too long (max 200 characters)")
	}
	if a.Kind != KindFixed && a.Kind != KindRecurring {
		return ErrInvalidKind
	}
	if a.DurationMinutes <= 0 {
		return ErrInvalidDuration
	}
	return nil
}
