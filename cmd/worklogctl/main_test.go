package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"worklog/internal/config"
	"worklog/internal/core"
)

func execute(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd(&config.Config{LogFormat: "text", SQLiteDBPath: dbPath})
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestWorklogctl(t *testing.T) {
	db := filepath.Join(t.TempDir(), "worklog.db")

	out, err := execute(t, db, "jobs", "list")
	if err != nil {
		t.Fatalf("jobs list: %v", err)
	}
	if !strings.Contains(out, "Job 1") || !strings.Contains(out, "Mon,Wed,Fri") {
		t.Fatalf("default jobs missing:\n%s", out)
	}

	if _, err := execute(t, db, "jobs", "add", "--name", "Tutoring", "--rate", "40", "--currency", "eur", "--schedule", "sat"); err != nil {
		t.Fatalf("jobs add: %v", err)
	}

	steps := [][]string{
		{"entries", "add", "--job", "job-1", "--date", "2024-03-11", "--start", "22:00", "--end", "02:00"},
		{"entries", "add", "--job", "job-2", "--date", "2024-03-12", "--hours", "2", "--notes", "review"},
		{"entries", "add", "--job", "job-1", "--date", "2024-03-13", "--status", "sick"},
	}
	for _, args := range steps {
		if _, err := execute(t, db, args...); err != nil {
			t.Fatalf("%v: %v", args, err)
		}
	}

	out, err = execute(t, db, "entries", "list", "--date", "2024-03-11")
	if err != nil {
		t.Fatalf("entries list: %v", err)
	}
	if !strings.Contains(out, "22:00-02:00") || !strings.Contains(out, "4") {
		t.Fatalf("entries list output:\n%s", out)
	}

	out, err = execute(t, db, "totals", "--period", "week", "--date", "2024-03-13")
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	for _, want := range []string{"2024-03-10 .. 2024-03-16", "Hours: 6.00", "Days worked: 2", "Earnings USD: 160.00"} {
		if !strings.Contains(out, want) {
			t.Fatalf("totals output missing %q:\n%s", want, out)
		}
	}

	out, err = execute(t, db, "export", "--year", "2024", "--month", "3")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("parse export: %v", err)
	}
	if len(records) != 4 || records[2][6] != "review" {
		t.Fatalf("records = %v", records)
	}
}

func TestWorklogctl_Errors(t *testing.T) {
	db := filepath.Join(t.TempDir(), "worklog.db")
	tests := []struct {
		name string
		args []string
	}{
		{"two kinds", []string{"entries", "add", "--job", "job-1", "--hours", "1", "--status", "off"}},
		{"no kind", []string{"entries", "add", "--job", "job-1"}},
		{"start without end", []string{"entries", "add", "--job", "job-1", "--start", "09:00"}},
		{"unknown job", []string{"entries", "add", "--job", "nope", "--hours", "1"}},
		{"bad period", []string{"totals", "--period", "decade"}},
		{"bad format", []string{"export", "--format", "xml"}},
		{"missing name", []string{"jobs", "add"}},
		{"bad currency", []string{"jobs", "add", "--name", "x", "--currency", "ZZZ"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, db, tt.args...); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestParseSchedule(t *testing.T) {
	tests := []struct {
		in      string
		want    []time.Weekday
		wantErr bool
	}{
		{"", nil, false},
		{"mon, Wednesday ,fri", []time.Weekday{time.Monday, time.Wednesday, time.Friday}, false},
		{"0,6", []time.Weekday{time.Sunday, time.Saturday}, false},
		{"7", nil, true},
		{"funday", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseSchedule(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("parseSchedule(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestKindFlags(t *testing.T) {
	k, err := kindFlags{start: "09:00", end: "17:00", breakMinutes: 30}.kind(false)
	if err != nil {
		t.Fatalf("kind: %v", err)
	}
	if got := core.HoursFor(core.WorkEntry{Kind: k}); got != 7.5 {
		t.Fatalf("hours = %v, want 7.5", got)
	}
	if k, _ := (kindFlags{}).kind(true); k != (core.FixedDuration{Hours: 0}) {
		t.Fatalf("zero hours set explicitly should be a duration, got %#v", k)
	}
}
