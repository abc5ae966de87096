package common

import (
	"strings"
	"time"
)

// DateFormat is the canonical calendar-date layout used on the wire.
const DateFormat = "2006-01-02"

// dateLayouts lists the accepted input layouts, most specific first.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	DateFormat,
	"2006-1-2",
}

// ParseDate parses a date string in any accepted layout and returns it truncated
// to midnight UTC. Invalid or empty input yields the zero time.
func ParseDate(s string) time.Time {
	t, ok := ParseTimestamp(s)
	if !ok {
		return time.Time{}
	}
	return TruncateDay(t)
}

// ParseTimestamp parses a date or date-time string keeping the time of day.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// TruncateDay drops the time of day, keeping the calendar date in UTC.
func TruncateDay(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddMonths adds n calendar months to t. The day is clamped to the last day
// of the target month, so Jan 31 + 1 month is Feb 28 (or 29).
func AddMonths(t time.Time, n int) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole calendar days from a to b.
// Negative when b is before a.
func DaysBetween(a, b time.Time) int {
	a, b = TruncateDay(a), TruncateDay(b)
	return int(b.Sub(a).Hours() / 24)
}

// FormatDate renders t as YYYY-MM-DD, or "" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateFormat)
}
