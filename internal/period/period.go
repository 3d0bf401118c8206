// Package period resolves named reporting periods into calendar-date
// ranges and splits ranges into day or month buckets.
//
// All dates handled here are calendar dates stored as UTC midnight, the
// same representation the ledger uses for entry dates.
package period

import (
	"errors"
	"fmt"
	"time"

	"ledgerbook/internal/models"
)

// Name identifies a predefined period.
type Name string

const (
	Today       Name = "today"
	Yesterday   Name = "yesterday"
	ThisWeek    Name = "this_week"
	Last7Days   Name = "last_7_days"
	ThisMonth   Name = "this_month"
	LastMonth   Name = "last_month"
	Last30Days  Name = "last_30_days"
	ThisQuarter Name = "this_quarter"
	ThisYear    Name = "this_year"
	LastYear    Name = "last_year"
	All         Name = "all"
)

// Names lists every supported period name.
var Names = []Name{Today, Yesterday, ThisWeek, Last7Days, ThisMonth, LastMonth, Last30Days, ThisQuarter, ThisYear, LastYear, All}

// MaxBuckets bounds the number of buckets a single range may produce.
const MaxBuckets = 1000

var (
	ErrUnknownPeriod  = errors.New("unknown period")
	ErrInvalidRange   = errors.New("invalid date range")
	ErrUnbounded      = errors.New("range is unbounded")
	ErrTooManyBuckets = errors.New("range produces too many buckets")
)

// Range is a closed interval of calendar dates. A zero From or To leaves
// that side unbounded.
type Range struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Unbounded reports whether the range has no limits at all.
func (r Range) Unbounded() bool {
	return r.From.IsZero() && r.To.IsZero()
}

// Contains reports whether the calendar date of t falls inside the range.
func (r Range) Contains(t time.Time) bool {
	d := models.CalendarDate(t)
	if !r.From.IsZero() && d.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && d.After(r.To) {
		return false
	}
	return true
}

// Days returns the number of calendar days covered by a bounded range.
func (r Range) Days() int {
	if r.From.IsZero() || r.To.IsZero() {
		return 0
	}
	return int(r.To.Sub(r.From).Hours()/24) + 1
}

func (r Range) String() string {
	switch {
	case r.Unbounded():
		return "all"
	case r.From.IsZero():
		return "until " + r.To.Format(time.DateOnly)
	case r.To.IsZero():
		return "from " + r.From.Format(time.DateOnly)
	}
	return r.From.Format(time.DateOnly) + " to " + r.To.Format(time.DateOnly)
}

// Resolve turns a period name into a range relative to now, evaluated in
// loc. Periods that are still running end today.
func Resolve(name Name, now time.Time, loc *time.Location) (Range, error) {
	if loc == nil {
		loc = time.UTC
	}
	today := models.CalendarDate(now.In(loc))
	y, m, _ := today.Date()

	switch name {
	case Today:
		return Range{From: today, To: today}, nil
	case Yesterday:
		d := today.AddDate(0, 0, -1)
		return Range{From: d, To: d}, nil
	case ThisWeek:
		// Weeks start on Monday.
		offset := (int(today.Weekday()) + 6) % 7
		return Range{From: today.AddDate(0, 0, -offset), To: today}, nil
	case Last7Days:
		return Range{From: today.AddDate(0, 0, -6), To: today}, nil
	case ThisMonth:
		return Range{From: date(y, m, 1), To: today}, nil
	case LastMonth:
		first := date(y, m, 1).AddDate(0, -1, 0)
		return Month(first), nil
	case Last30Days:
		return Range{From: today.AddDate(0, 0, -29), To: today}, nil
	case ThisQuarter:
		qm := time.Month((int(m)-1)/3*3 + 1)
		return Range{From: date(y, qm, 1), To: today}, nil
	case ThisYear:
		return Range{From: date(y, time.January, 1), To: today}, nil
	case LastYear:
		return Range{From: date(y-1, time.January, 1), To: date(y-1, time.December, 31)}, nil
	case All, "":
		return Range{}, nil
	}
	return Range{}, fmt.Errorf("%w: %q", ErrUnknownPeriod, name)
}

// Custom builds a range from explicit dates. Either side may be zero.
func Custom(from, to time.Time) (Range, error) {
	r := Range{}
	if !from.IsZero() {
		r.From = models.CalendarDate(from)
	}
	if !to.IsZero() {
		r.To = models.CalendarDate(to)
	}
	if !r.From.IsZero() && !r.To.IsZero() && r.From.After(r.To) {
		return Range{}, fmt.Errorf("%w: from %s is after to %s", ErrInvalidRange,
			r.From.Format(time.DateOnly), r.To.Format(time.DateOnly))
	}
	return r, nil
}

// Month returns the full calendar month containing t.
func Month(t time.Time) Range {
	d := models.CalendarDate(t)
	first := date(d.Year(), d.Month(), 1)
	return Range{From: first, To: first.AddDate(0, 1, -1)}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
