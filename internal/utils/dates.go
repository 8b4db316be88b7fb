package utils

import (
	"fmt"
	"time"
)

const (
	// DateLayout is the YYYY-MM-DD form used for planted/terminated dates
	// and command-line arguments.
	DateLayout = "2006-01-02"
	// TimestampLayout is the datetime form the hourly measurement tables use.
	TimestampLayout = "2006-01-02 15:04:05"
)

// ParseDate parses a YYYY-MM-DD date string.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return t, nil
}

// ParseTimestamp parses a timestamp as stored by either supported driver:
// MySQL datetime text, RFC3339, or a bare date.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range []string{TimestampLayout, time.RFC3339, DateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatTimestamp renders t in the measurement-table datetime form.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// DayOf truncates t to midnight UTC so it can key per-day maps.
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
