package core

import (
	"math"
	"testing"
)

func TestHoursFor(t *testing.T) {
	cases := []struct {
		name string
		kind EntryKind
		want float64
	}{
		{"day shift", TimeRange{Start: "09:00", End: "17:00"}, 8},
		{"overnight wraps past midnight", TimeRange{Start: "22:00", End: "06:00"}, 8},
		{"break deducted", TimeRange{Start: "09:00", End: "17:00", BreakMinutes: 30}, 7.5},
		{"break larger than shift clamps to zero", TimeRange{Start: "09:00", End: "09:15", BreakMinutes: 60}, 0},
		{"equal start and end", TimeRange{Start: "12:00", End: "12:00"}, 0},
		{"quarter hours", TimeRange{Start: "08:15", End: "12:45"}, 4.5},
		{"missing start", TimeRange{End: "17:00"}, 0},
		{"missing end", TimeRange{Start: "09:00", BreakMinutes: -60}, 0},
		{"malformed clock", TimeRange{Start: "nine", End: "17:00"}, 0},
		{"fractional duration", FixedDuration{Hours: 6.5}, 6.5},
		{"negative duration passes through", FixedDuration{Hours: -2}, -2},
		{"NaN duration", FixedDuration{Hours: math.NaN()}, 0},
		{"worked status", DayStatus{Status: "worked"}, 8},
		{"worked status any case", DayStatus{Status: "WORKED"}, 8},
		{"holiday status", DayStatus{Status: "holiday"}, 0},
		{"sick status", DayStatus{Status: "sick"}, 0},
		{"custom status", DayStatus{Status: "overtime"}, 0},
		{"no kind", nil, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := HoursFor(WorkEntry{ID: "e", JobID: "j", Date: "2024-03-04", Kind: tc.kind})
			if got != tc.want {
				t.Fatalf("HoursFor = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestTimeRangeElapsed(t *testing.T) {
	elapsed, ok := TimeRange{Start: "23:30", End: "00:30", BreakMinutes: 90}.Elapsed()
	if !ok || elapsed != 1 {
		t.Fatalf("expected 1h before break, got %v ok=%v", elapsed, ok)
	}
	if _, ok := (TimeRange{Start: "23:30"}).Elapsed(); ok {
		t.Fatalf("expected !ok when end is missing")
	}
}

func TestTimeRangeMatchesClockDifference(t *testing.T) {
	for start := 0; start < 1440; start += 45 {
		for end := start + 1; end < 1440; end += 53 {
			r := TimeRange{Start: FormatClock(start), End: FormatClock(end)}
			want := float64(end-start) / 60
			if got := r.WorkedHours(); math.Abs(got-want) > 1e-9 {
				t.Fatalf("%s-%s: got %v, want %v", r.Start, r.End, got, want)
			}
		}
	}
}
