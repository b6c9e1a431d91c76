package core

import (
	"testing"
	"time"
)

func TestRange_Resolve(t *testing.T) {
	now := time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name      string
		r         Range
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "today covers the current calendar day",
			r:         RangeToday,
			wantStart: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 3, 15, 23, 59, 59, 999999999, time.UTC),
		},
		{
			name:      "yesterday covers the previous calendar day",
			r:         RangeYesterday,
			wantStart: time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 3, 14, 23, 59, 59, 999999999, time.UTC),
		},
		{
			name:      "week is a rolling 7 day window",
			r:         RangeWeek,
			wantStart: time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 3, 15, 23, 59, 59, 999999999, time.UTC),
		},
		{
			name:      "month is a rolling calendar month",
			r:         RangeMonth,
			wantStart: time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 3, 15, 23, 59, 59, 999999999, time.UTC),
		},
		{
			name:      "year is a rolling calendar year",
			r:         RangeYear,
			wantStart: time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 3, 15, 23, 59, 59, 999999999, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := tt.r.Resolve(now)
			if !start.Equal(tt.wantStart) {
				t.Errorf("Resolve() start = %v, want %v", start, tt.wantStart)
			}
			if !end.Equal(tt.wantEnd) {
				t.Errorf("Resolve() end = %v, want %v", end, tt.wantEnd)
			}
		})
	}
}

func TestRange_Days(t *testing.T) {
	tests := []struct {
		r    Range
		want int
	}{
		{RangeToday, 1},
		{RangeYesterday, 1},
		{RangeWeek, 7},
		{RangeMonth, 30},
		{RangeYear, 365},
	}

	for _, tt := range tests {
		t.Run(string(tt.r), func(t *testing.T) {
			if got := tt.r.Days(); got != tt.want {
				t.Errorf("Days() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRange_Contains(t *testing.T) {
	now := time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		r    Range
		ts   time.Time
		want bool
	}{
		{"today includes the current instant", RangeToday, now, true},
		{"today excludes yesterday", RangeToday, now.AddDate(0, 0, -1), false},
		{"week includes six days ago", RangeWeek, now.AddDate(0, 0, -6), true},
		{"week includes the start boundary", RangeWeek, time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC), true},
		{"week excludes eight days ago", RangeWeek, now.AddDate(0, 0, -8), false},
		{"year includes eleven months ago", RangeYear, now.AddDate(0, -11, 0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.Contains(tt.ts, now); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.ts, got, tt.want)
			}
		})
	}
}

func TestRange_Resolve_UnknownPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unknown range")
		}
	}()
	Range("fortnight").Resolve(time.Now())
}

func TestParseRange(t *testing.T) {
	if _, err := ParseRange("week"); err != nil {
		t.Fatalf("ParseRange(week) unexpected error: %v", err)
	}
	if _, err := ParseRange("decade"); err == nil {
		t.Fatal("ParseRange(decade) expected error")
	}
}
