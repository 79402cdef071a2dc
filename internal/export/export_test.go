package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"reflect"
	"testing"

	"worklog/internal/core"
)

func sampleSnapshot() core.Snapshot {
	return core.Snapshot{
		Jobs: []core.Job{
			{ID: "j1", Name: "Main Job", HourlyRate: 25, Currency: core.USD},
			{ID: "j2", Name: "Side Gig", HourlyRate: 30, Currency: core.EUR},
		},
		Entries: []core.WorkEntry{
			{ID: "e1", JobID: "j1", Date: "2024-03-12", Kind: core.TimeRange{Start: "09:00", End: "17:00", BreakMinutes: 30}, Notes: "late lunch"},
			{ID: "e2", JobID: "j2", Date: "2024-03-11", Kind: core.FixedDuration{Hours: 2.5}},
			{ID: "e3", JobID: "j1", Date: "2024-03-11", Kind: core.DayStatus{Status: "worked"}},
			{ID: "e4", JobID: "j1", Date: "2024-04-01", Kind: core.FixedDuration{Hours: 1}},
			{ID: "e5", JobID: "gone", Date: "2024-03-20", Kind: core.FixedDuration{Hours: 1.333}},
		},
	}
}

func entryIDs(rows []Row) []string {
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.EntryID
	}
	return ids
}

func TestBuildRows_Filters(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"march all jobs sorted by date", Filter{Year: 2024, Month: 3}, []string{"e2", "e3", "e1", "e5"}},
		{"march one job", Filter{Year: 2024, Month: 3, JobID: "j1"}, []string{"e3", "e1"}},
		{"explicit all", Filter{Year: 2024, Month: 4, JobID: core.AllJobs}, []string{"e4"}},
		{"whole year", Filter{Year: 2024}, []string{"e2", "e3", "e1", "e5", "e4"}},
		{"other year", Filter{Year: 2023, Month: 3}, []string{}},
		{"unknown job", Filter{Year: 2024, Month: 3, JobID: "nope"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := entryIDs(BuildRows(sampleSnapshot(), tt.filter))
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("rows = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRowFor(t *testing.T) {
	snap := sampleSnapshot()
	job := &snap.Jobs[0]

	tests := []struct {
		name  string
		entry core.WorkEntry
		job   *core.Job
		want  []string
	}{
		{
			name:  "time range",
			entry: snap.Entries[0],
			job:   job,
			want:  []string{"2024-03-12", "Main Job", "09:00 - 17:00", "7.50", "187.50", "USD", "late lunch"},
		},
		{
			name:  "status has no time",
			entry: snap.Entries[2],
			job:   job,
			want:  []string{"2024-03-11", "Main Job", "", "8.00", "200.00", "USD", ""},
		},
		{
			name:  "unknown job",
			entry: snap.Entries[4],
			job:   nil,
			want:  []string{"2024-03-20", UnknownJob, "", "1.33", "0.00", "", ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RowFor(tt.entry, tt.job).Values(); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Values() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	rows := BuildRows(sampleSnapshot(), Filter{Year: 2024, Month: 3, JobID: "j1"})
	if err := WriteCSV(&buf, rows); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(records))
	}
	if !reflect.DeepEqual(records[0], Header) {
		t.Errorf("header = %q", records[0])
	}
	if records[2][2] != "09:00 - 17:00" {
		t.Errorf("time column = %q", records[2][2])
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, []Row{}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	var out []Row
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out == nil || len(out) != 0 {
		t.Fatalf("expected empty array, got %s", buf.String())
	}
}

func TestFilter(t *testing.T) {
	if err := (Filter{Month: 13}).Validate(); err == nil {
		t.Error("month 13 should be rejected")
	}
	if err := (Filter{Year: 2024, Month: 12}).Validate(); err != nil {
		t.Errorf("valid filter rejected: %v", err)
	}

	names := map[Filter]string{
		{}:                     "work-log.csv",
		{Year: 2024}:           "work-log-2024.csv",
		{Year: 2024, Month: 3}: "work-log-2024-3.csv",
	}
	for f, want := range names {
		if got := f.FileName("csv"); got != want {
			t.Errorf("FileName(%+v) = %q, want %q", f, got, want)
		}
	}
}
