package core

import (
	"math"
	"strings"
)

// WorkedDayHours is the credit given to a day marked with the "worked" status.
const WorkedDayHours = 8.0

const minutesPerDay = 24 * 60

// HoursFor converts an entry into hours worked. It never fails: missing or
// malformed data contributes zero.
func HoursFor(e WorkEntry) float64 {
	switch k := e.Kind.(type) {
	case TimeRange:
		return k.WorkedHours()
	case FixedDuration:
		return k.WorkedHours()
	case DayStatus:
		return k.WorkedHours()
	default:
		return 0
	}
}

// Elapsed returns the hours between start and end before the break is
// deducted, wrapping past midnight when end is earlier than start. ok is
// false when either clock is missing or malformed.
func (r TimeRange) Elapsed() (hours float64, ok bool) {
	if r.Start == "" || r.End == "" {
		return 0, false
	}
	start, err := ParseClock(r.Start)
	if err != nil {
		return 0, false
	}
	end, err := ParseClock(r.End)
	if err != nil {
		return 0, false
	}
	if end < start {
		end += minutesPerDay
	}
	return float64(end-start) / 60, true
}

// WorkedHours is the elapsed time minus the break, never below zero.
func (r TimeRange) WorkedHours() float64 {
	elapsed, ok := r.Elapsed()
	if !ok {
		return 0
	}
	return math.Max(0, elapsed-r.BreakMinutes/60)
}

// WorkedHours passes the recorded value through unchanged, negatives included.
func (d FixedDuration) WorkedHours() float64 {
	if math.IsNaN(d.Hours) || math.IsInf(d.Hours, 0) {
		return 0
	}
	return d.Hours
}

// WorkedHours credits a full day only for the worked status.
func (s DayStatus) WorkedHours() float64 {
	if strings.EqualFold(strings.TrimSpace(s.Status), StatusWorked) {
		return WorkedDayHours
	}
	return 0
}
