package core

import (
	"reflect"
	"testing"
)

func scenario() ([]Job, []WorkEntry) {
	jobs := []Job{
		{ID: "A", Name: "Cafe", HourlyRate: 25, Currency: USD},
		{ID: "B", Name: "Studio", HourlyRate: 30, Currency: EUR},
	}
	entries := []WorkEntry{
		{ID: "1", JobID: "A", Date: "2024-03-04", Kind: TimeRange{Start: "09:00", End: "17:00"}},
		{ID: "2", JobID: "B", Date: "2024-03-04", Kind: FixedDuration{Hours: 4}},
		{ID: "3", JobID: "A", Date: "2024-03-05", Kind: DayStatus{Status: "off"}},
	}
	return jobs, entries
}

func TestCalculateTotalsWeekScenario(t *testing.T) {
	jobs, entries := scenario()
	got := CalculateTotals(jobs, entries, PeriodWeek, NewDate(2024, 3, 4), AllJobs)

	want := CalculatedTotals{
		TotalHours:         12,
		TotalDays:          1,
		HoursByJob:         map[string]float64{"A": 8, "B": 4},
		EarningsByJob:      map[string]float64{"A": 200, "B": 120},
		EarningsByCurrency: map[Currency]float64{USD: 200, EUR: 120},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("totals mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestCalculateTotalsJobFilter(t *testing.T) {
	jobs, entries := scenario()
	ref := NewDate(2024, 3, 4)

	t.Run("single job", func(t *testing.T) {
		got := CalculateTotals(jobs, entries, PeriodWeek, ref, "B")
		if got.TotalHours != 4 || got.TotalDays != 1 {
			t.Fatalf("unexpected totals %+v", got)
		}
		if _, ok := got.HoursByJob["A"]; ok {
			t.Fatalf("job A leaked into filtered totals: %+v", got.HoursByJob)
		}
		if got.EarningsByCurrency[EUR] != 120 || len(got.EarningsByCurrency) != 1 {
			t.Fatalf("unexpected currency buckets %+v", got.EarningsByCurrency)
		}
	})

	t.Run("unknown job yields zeroes", func(t *testing.T) {
		got := CalculateTotals(jobs, entries, PeriodWeek, ref, "nope")
		if got.TotalHours != 0 || got.TotalDays != 0 {
			t.Fatalf("expected zero totals, got %+v", got)
		}
		if got.HoursByJob == nil || len(got.HoursByJob) != 0 || len(got.EarningsByCurrency) != 0 {
			t.Fatalf("expected empty maps, got %+v", got)
		}
	})

	t.Run("empty filter means all", func(t *testing.T) {
		got := CalculateTotals(jobs, entries, PeriodWeek, ref, "")
		if got.TotalHours != 12 {
			t.Fatalf("expected 12h, got %v", got.TotalHours)
		}
	})
}

func TestCalculateTotalsWindow(t *testing.T) {
	jobs, entries := scenario()
	entries = append(entries,
		WorkEntry{ID: "4", JobID: "A", Date: "2024-03-02", Kind: FixedDuration{Hours: 3}},
		WorkEntry{ID: "5", JobID: "A", Date: "2024-03-10", Kind: FixedDuration{Hours: 5}},
	)

	cases := []struct {
		name   string
		period Period
		ref    Date
		hours  float64
		days   int
	}{
		{"day", PeriodDay, NewDate(2024, 3, 4), 12, 1},
		{"day with only off status", PeriodDay, NewDate(2024, 3, 5), 0, 0},
		{"week excludes saturday before and sunday after", PeriodWeek, NewDate(2024, 3, 6), 12, 1},
		{"month", PeriodMonth, NewDate(2024, 3, 31), 20, 3},
		{"year", PeriodYear, NewDate(2024, 1, 1), 20, 3},
		{"other year", PeriodYear, NewDate(2023, 3, 4), 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := CalculateTotals(jobs, entries, tc.period, tc.ref, AllJobs)
			if got.TotalHours != tc.hours || got.TotalDays != tc.days {
				t.Fatalf("got %vh/%dd, want %vh/%dd", got.TotalHours, got.TotalDays, tc.hours, tc.days)
			}
		})
	}
}

func TestCalculateTotalsSharedCurrencyAndSplitShifts(t *testing.T) {
	jobs := []Job{
		{ID: "A", HourlyRate: 10, Currency: USD},
		{ID: "B", HourlyRate: 20, Currency: USD},
		{ID: "C", HourlyRate: 1000, Currency: VND},
		{ID: "D", HourlyRate: 50, Currency: GBP},
	}
	entries := []WorkEntry{
		{ID: "1", JobID: "A", Date: "2024-05-01", Kind: TimeRange{Start: "08:00", End: "12:00"}},
		{ID: "2", JobID: "A", Date: "2024-05-01", Kind: TimeRange{Start: "13:00", End: "15:00"}},
		{ID: "3", JobID: "B", Date: "2024-05-02", Kind: DayStatus{Status: "Worked"}},
		{ID: "4", JobID: "C", Date: "2024-05-02", Kind: FixedDuration{Hours: 2}},
		{ID: "5", JobID: "D", Date: "2024-05-03", Kind: DayStatus{Status: "holiday"}},
	}
	got := CalculateTotals(jobs, entries, PeriodMonth, NewDate(2024, 5, 1), AllJobs)

	if got.HoursByJob["A"] != 6 {
		t.Fatalf("split shifts should sum to 6h, got %v", got.HoursByJob["A"])
	}
	if got.TotalDays != 2 {
		t.Fatalf("expected 2 worked days, got %d", got.TotalDays)
	}
	wantCurrency := map[Currency]float64{USD: 60 + 160, VND: 2000}
	if !reflect.DeepEqual(got.EarningsByCurrency, wantCurrency) {
		t.Fatalf("currency buckets %+v, want %+v", got.EarningsByCurrency, wantCurrency)
	}
	if _, ok := got.EarningsByJob["D"]; ok {
		t.Fatalf("zero-hour job D should have no earnings entry")
	}
	if v, ok := got.HoursByJob["D"]; !ok || v != 0 {
		t.Fatalf("job D with a zero-hour entry should report 0 hours, got %v ok=%v", v, ok)
	}
}

func TestCalculateTotalsNegativeDurationHasNoEarnings(t *testing.T) {
	jobs := []Job{{ID: "A", HourlyRate: 10, Currency: USD}}
	entries := []WorkEntry{{ID: "1", JobID: "A", Date: "2024-05-01", Kind: FixedDuration{Hours: -3}}}
	got := CalculateTotals(jobs, entries, PeriodDay, NewDate(2024, 5, 1), AllJobs)
	if got.TotalHours != -3 || got.TotalDays != 0 || len(got.EarningsByJob) != 0 {
		t.Fatalf("unexpected totals %+v", got)
	}
}
