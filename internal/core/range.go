package core

import (
	"fmt"
	"time"
)

// Range is a symbolic selector for a rolling time window ending at "now".
type Range string

const (
	RangeToday     Range = "today"
	RangeYesterday Range = "yesterday"
	RangeWeek      Range = "week"
	RangeMonth     Range = "month"
	RangeYear      Range = "year"
)

// ParseRange validates a range selector coming from an external caller.
func ParseRange(s string) (Range, error) {
	switch r := Range(s); r {
	case RangeToday, RangeYesterday, RangeWeek, RangeMonth, RangeYear:
		return r, nil
	default:
		return "", fmt.Errorf("unknown range %q", s)
	}
}

// Days returns the fixed divisor used for daily averages. It is a constant
// per range, deliberately insensitive to month lengths and leap years.
func (r Range) Days() int {
	switch r {
	case RangeToday, RangeYesterday:
		return 1
	case RangeWeek:
		return 7
	case RangeMonth:
		return 30
	case RangeYear:
		return 365
	default:
		panic(fmt.Sprintf("unknown range %q", r))
	}
}

// Resolve maps the selector to a concrete interval [start, end], both
// inclusive. Start is floored to midnight; end is the last instant of the
// window's final day. An unrecognized range is a programming error.
func (r Range) Resolve(now time.Time) (start, end time.Time) {
	switch r {
	case RangeToday:
		return midnight(now), endOfDay(now)
	case RangeYesterday:
		yesterday := now.AddDate(0, 0, -1)
		return midnight(yesterday), endOfDay(yesterday)
	case RangeWeek:
		return midnight(now.AddDate(0, 0, -7)), endOfDay(now)
	case RangeMonth:
		return midnight(now.AddDate(0, -1, 0)), endOfDay(now)
	case RangeYear:
		return midnight(now.AddDate(-1, 0, 0)), endOfDay(now)
	default:
		panic(fmt.Sprintf("unknown range %q", r))
	}
}

// Contains reports whether t falls inside the resolved window.
func (r Range) Contains(t, now time.Time) bool {
	start, end := r.Resolve(now)
	return !t.Before(start) && !t.After(end)
}

func midnight(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// SameDay reports whether two instants fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return a.Format("2006-01-02") == b.Format("2006-01-02")
}
