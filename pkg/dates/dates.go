package dates

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Format renders t as the "YYYY-MM-DD" string the server expects, using the
// calendar fields of t's own location. Never replace this with a UTC ISO
// serialization: near midnight in a non-UTC timezone that shifts the date by
// one day.
func Format(t time.Time) string {
	return fmt.Sprintf("%04d-%02d-%02d", t.Year(), int(t.Month()), t.Day())
}

// Parse converts a "YYYY-MM-DD" string into local midnight of that calendar
// day. It splits the fields manually instead of delegating to a layout-based
// parser so the result can never be interpreted as UTC.
func Parse(s string) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("invalid preorder date %q: want YYYY-MM-DD", s)
	}

	year, err := strconv.Atoi(parts[0])
	if err != nil || len(parts[0]) != 4 {
		return time.Time{}, fmt.Errorf("invalid year in preorder date %q", s)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("invalid month in preorder date %q", s)
	}
	day, err := strconv.Atoi(parts[2])
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("invalid day in preorder date %q", s)
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)
	// time.Date normalizes out-of-range days (Feb 30 becomes Mar 1); reject
	// anything that did not round-trip.
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, fmt.Errorf("nonexistent calendar day in preorder date %q", s)
	}
	return t, nil
}

// StartOfDay returns local midnight of t's calendar day
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// EarliestOrderDate returns the first date an order may target: tomorrow.
// "Today" is reserved for viewing pending and historical orders, never for
// placing new ones.
func EarliestOrderDate(now time.Time) time.Time {
	return StartOfDay(now).AddDate(0, 0, 1)
}

// ClampOrderDate forces d into the orderable window [tomorrow, max]. A zero
// max means the server imposed no upper bound.
func ClampOrderDate(d, now, max time.Time) time.Time {
	earliest := EarliestOrderDate(now)
	if d.Before(earliest) {
		return earliest
	}
	if !max.IsZero() && d.After(StartOfDay(max)) {
		return StartOfDay(max)
	}
	return StartOfDay(d)
}

// ClampHistoryDate forces d to today or earlier. Historical and pending-order
// views allow past dates but never future ones.
func ClampHistoryDate(d, now time.Time) time.Time {
	today := StartOfDay(now)
	if d.After(today) {
		return today
	}
	return StartOfDay(d)
}

// PreorderLimit is the response of GET /settings/preorder-limit. This
// endpoint does not use the standard envelope.
type PreorderLimit struct {
	Success            bool   `json:"success"`
	PreorderLimitWeeks int    `json:"preorder_limit_weeks"`
	MaxPreorderDate    string `json:"max_preorder_date"`
}

// MaxDate parses the server-provided upper bound for date selection. A zero
// time with a nil error means the server sent no bound.
func (p PreorderLimit) MaxDate() (time.Time, error) {
	if p.MaxPreorderDate == "" {
		return time.Time{}, nil
	}
	return Parse(p.MaxPreorderDate)
}
