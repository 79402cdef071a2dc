package storage

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"worklog/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "worklog.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	jobA := core.Job{ID: "A", Name: "Cafe", HourlyRate: 25, Currency: core.USD, Schedule: []time.Weekday{time.Monday, time.Friday}}
	jobB := core.Job{ID: "B", Name: "Studio", HourlyRate: 30, Currency: core.EUR, Schedule: []time.Weekday{}}
	for _, j := range []core.Job{jobA, jobB} {
		if err := repo.SaveJob(ctx, j); err != nil {
			t.Fatalf("save job: %v", err)
		}
	}

	entries := []core.WorkEntry{
		{ID: "1", JobID: "A", Date: "2024-03-04", Kind: core.TimeRange{Start: "22:00", End: "06:00", BreakMinutes: 30}},
		{ID: "2", JobID: "B", Date: "2024-03-04", Kind: core.FixedDuration{Hours: 4}, Notes: "remote"},
		{ID: "3", JobID: "A", Date: "2024-03-05", Kind: core.DayStatus{Status: "off"}},
	}
	for _, e := range entries {
		if err := repo.SaveEntry(ctx, e); err != nil {
			t.Fatalf("save entry: %v", err)
		}
	}

	snap, err := repo.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	if !reflect.DeepEqual(snap.Jobs, []core.Job{jobA, jobB}) {
		t.Fatalf("jobs mismatch: %+v", snap.Jobs)
	}
	if !reflect.DeepEqual(snap.Entries, entries) {
		t.Fatalf("entries mismatch:\n got %+v\nwant %+v", snap.Entries, entries)
	}
}

func TestRepositoryUpsertKeepsOrder(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	if err := repo.SaveJob(ctx, core.Job{ID: "A", Name: "Cafe", Currency: core.USD}); err != nil {
		t.Fatalf("save job: %v", err)
	}
	for _, id := range []string{"1", "2"} {
		e := core.WorkEntry{ID: id, JobID: "A", Date: "2024-01-01", Kind: core.FixedDuration{Hours: 1}}
		if err := repo.SaveEntry(ctx, e); err != nil {
			t.Fatalf("save entry: %v", err)
		}
	}
	updated := core.WorkEntry{ID: "1", JobID: "A", Date: "2024-01-02", Kind: core.DayStatus{Status: "worked"}}
	if err := repo.SaveEntry(ctx, updated); err != nil {
		t.Fatalf("update entry: %v", err)
	}

	snap, err := repo.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	if len(snap.Entries) != 2 || snap.Entries[0].ID != "1" || snap.Entries[0].Kind != (core.DayStatus{Status: "worked"}) {
		t.Fatalf("upsert lost order or value: %+v", snap.Entries)
	}
}

func TestRepositoryDeleteJobCascades(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	for _, j := range []core.Job{{ID: "A", Name: "a", Currency: core.USD}, {ID: "B", Name: "b", Currency: core.USD}} {
		if err := repo.SaveJob(ctx, j); err != nil {
			t.Fatalf("save job: %v", err)
		}
	}
	for i, job := range []string{"A", "A", "B"} {
		e := core.WorkEntry{ID: string(rune('1' + i)), JobID: job, Date: "2024-01-01", Kind: core.FixedDuration{Hours: 1}}
		if err := repo.SaveEntry(ctx, e); err != nil {
			t.Fatalf("save entry: %v", err)
		}
	}

	if err := repo.DeleteJob(ctx, "A"); err != nil {
		t.Fatalf("delete job: %v", err)
	}
	snap, err := repo.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	if len(snap.Jobs) != 1 || len(snap.Entries) != 1 || snap.Entries[0].JobID != "B" {
		t.Fatalf("cascade failed: %+v", snap)
	}
}

func TestRepositoryEntryRequiresJob(t *testing.T) {
	repo := newTestRepo(t)
	err := repo.SaveEntry(context.Background(), core.WorkEntry{ID: "x", JobID: "ghost", Date: "2024-01-01", Kind: core.FixedDuration{Hours: 1}})
	if err == nil {
		t.Fatalf("expected foreign key violation for unknown job")
	}
}

func TestRepositoryObserveChange(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	job := core.Job{ID: "A", Name: "Cafe", HourlyRate: 25, Currency: core.USD, Schedule: []time.Weekday{}}
	entry := core.WorkEntry{ID: "1", JobID: "A", Date: "2024-03-04", Kind: core.FixedDuration{Hours: 2}}

	steps := []core.Change{
		{Kind: core.JobUpserted, Job: &job},
		{Kind: core.EntryUpserted, Entry: &entry, Job: &job},
	}
	for _, c := range steps {
		if err := repo.ObserveChange(ctx, c); err != nil {
			t.Fatalf("observe %s: %v", c.Kind, err)
		}
	}

	inWeek, err := repo.ListEntriesBetween(ctx, core.NewDate(2024, 3, 3), core.NewDate(2024, 3, 9))
	if err != nil || len(inWeek) != 1 {
		t.Fatalf("expected one entry in week, got %+v (err=%v)", inWeek, err)
	}
	outside, err := repo.ListEntriesBetween(ctx, core.NewDate(2024, 3, 10), core.NewDate(2024, 3, 16))
	if err != nil || len(outside) != 0 {
		t.Fatalf("expected no entries next week, got %+v (err=%v)", outside, err)
	}

	if err := repo.ObserveChange(ctx, core.Change{Kind: core.EntryDeleted, Entry: &entry}); err != nil {
		t.Fatalf("observe delete: %v", err)
	}
	if err := repo.ObserveChange(ctx, core.Change{Kind: core.JobDeleted, Job: &job}); err != nil {
		t.Fatalf("observe job delete: %v", err)
	}
	snap, _ := repo.LoadSnapshot(ctx)
	if len(snap.Jobs) != 0 || len(snap.Entries) != 0 {
		t.Fatalf("expected empty database, got %+v", snap)
	}

	if err := repo.ObserveChange(ctx, core.Change{Kind: "bogus"}); err == nil {
		t.Fatalf("expected error for unknown change kind")
	}
	if err := repo.ObserveChange(ctx, core.Change{Kind: core.EntryUpserted}); err == nil {
		t.Fatalf("expected error for entry change without entry")
	}
}
