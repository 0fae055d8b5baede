package dateutil

import (
	"fmt"
	"time"
)

// Layout is the storage and wire format for calendar dates.
const Layout = "2006-01-02"

// Parse reads a YYYY-MM-DD string as a civil date.
// PRE: s is in YYYY-MM-DD format
// POST: Returns midnight UTC of that date, or an error
func Parse(s string) (time.Time, error) {
	d, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD)", s)
	}
	return d, nil
}

// MustParse is Parse for constants in tests and seeds. Panics on bad input.
func MustParse(s string) time.Time {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Of returns the calendar day of t as seen in t's own location.
// The result is midnight UTC so days compare without zone drift.
func Of(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the calendar day of now in loc. A nil loc means UTC.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return Of(now.In(loc))
}

// Format renders a civil date as YYYY-MM-DD.
func Format(d time.Time) string {
	return d.Format(Layout)
}

// DaysBetween returns the signed number of whole days from `from` to `to`.
// INVARIANT: DaysBetween(a, b) == -DaysBetween(b, a)
func DaysBetween(from, to time.Time) int {
	return int(Of(to).Sub(Of(from)).Hours() / 24)
}

// AddDays shifts a civil date by n days.
func AddDays(d time.Time, n int) time.Time {
	return Of(d).AddDate(0, 0, n)
}
