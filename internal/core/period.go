package core

import (
	"errors"
	"fmt"
	"strings"
)

// Period is an aggregation granularity.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

var ErrInvalidPeriod = errors.New("invalid period")

// ParsePeriod accepts day, week, month or year in any case.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodYear:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
}

// Bounds is an inclusive range of calendar days.
type Bounds struct {
	Start Date
	End   Date
}

// Contains reports whether an ISO date string falls inside the bounds.
// ISO dates sort chronologically, so the check is a string comparison.
func (b Bounds) Contains(date string) bool {
	return b.Start.String() <= date && date <= b.End.String()
}

// Days returns the number of calendar days covered.
func (b Bounds) Days() int {
	return int(b.End.Sub(b.Start.Time).Hours()/24) + 1
}

// BoundsFor resolves the window of the given period around ref. Weeks start
// on Sunday regardless of locale. An unknown period resolves like day.
func BoundsFor(period Period, ref Date) Bounds {
	y, m, d := ref.Year(), int(ref.Month()), ref.Day()
	switch period {
	case PeriodWeek:
		start := ref.AddDays(-int(ref.Weekday()))
		return Bounds{Start: start, End: start.AddDays(6)}
	case PeriodMonth:
		return Bounds{Start: NewDate(y, m, 1), End: NewDate(y, m+1, 0)}
	case PeriodYear:
		return Bounds{Start: NewDate(y, 1, 1), End: NewDate(y, 12, 31)}
	default:
		day := NewDate(y, m, d)
		return Bounds{Start: day, End: day}
	}
}
