package utils

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2012-07-01")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	want := time.Date(2012, 7, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ParseDate = %v; want %v", got, want)
	}
}

func TestParseDate_Invalid(t *testing.T) {
	for _, s := range []string{"", "01.07.2012", "2012-7-1x", "not-a-date"} {
		if _, err := ParseDate(s); err == nil {
			t.Errorf("ParseDate(%q): expected error", s)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"2012-07-15 11:00:00", time.Date(2012, 7, 15, 11, 0, 0, 0, time.UTC)},
		{"2012-07-15T11:00:00Z", time.Date(2012, 7, 15, 11, 0, 0, 0, time.UTC)},
		{"2012-07-15", time.Date(2012, 7, 15, 0, 0, 0, 0, time.UTC)},
	}
	for _, c := range cases {
		got, err := ParseTimestamp(c.in)
		if err != nil {
			t.Fatalf("ParseTimestamp(%q): %v", c.in, err)
		}
		if !got.Equal(c.want) {
			t.Errorf("ParseTimestamp(%q) = %v; want %v", c.in, got, c.want)
		}
	}
	if _, err := ParseTimestamp("gibberish"); err == nil {
		t.Error("ParseTimestamp(gibberish): expected error")
	}
}

func TestDayOf(t *testing.T) {
	in := time.Date(2012, 7, 15, 23, 59, 59, 0, time.UTC)
	want := time.Date(2012, 7, 15, 0, 0, 0, 0, time.UTC)
	if got := DayOf(in); !got.Equal(want) {
		t.Errorf("DayOf = %v; want %v", got, want)
	}
}
