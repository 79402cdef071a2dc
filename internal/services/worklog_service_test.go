package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"

	"worklog/internal/core"
	"worklog/internal/log"
	"worklog/internal/store/memory"
)

type recordingObserver struct {
	kinds []core.ChangeKind
	err   error
}

func (r *recordingObserver) ObserveChange(_ context.Context, c core.Change) error {
	r.kinds = append(r.kinds, c.Kind)
	return r.err
}

type fakeLoader struct {
	snap core.Snapshot
	err  error
}

func (f fakeLoader) LoadSnapshot(context.Context) (core.Snapshot, error) { return f.snap, f.err }

type fakeCloser struct {
	closed bool
	err    error
}

func (f *fakeCloser) Close() error {
	f.closed = true
	return f.err
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestService(opts ...Option) *WorkLogService {
	st := memory.NewSeeded(memory.WithIDGenerator(sequentialIDs()))
	return NewWorkLogService(st, log.Discard(), opts...)
}

func rangeEntry(jobID, date string) core.WorkEntry {
	return core.WorkEntry{JobID: jobID, Date: date, Kind: core.TimeRange{Start: "09:00", End: "17:00", BreakMinutes: 30}}
}

func TestWorkLogService_NotifiesObserversInOrder(t *testing.T) {
	ctx := context.Background()
	persist := &recordingObserver{}
	notify := &recordingObserver{}
	svc := newTestService(WithPersistence(persist), WithNotifier("test", notify))

	e, err := svc.AddEntry(ctx, rangeEntry("job-1", "2024-03-11"))
	if err != nil {
		t.Fatalf("AddEntry: %v", err)
	}
	e.Notes = "updated"
	if _, err := svc.UpdateEntry(ctx, e); err != nil {
		t.Fatalf("UpdateEntry: %v", err)
	}
	if err := svc.DeleteEntry(ctx, e.ID); err != nil {
		t.Fatalf("DeleteEntry: %v", err)
	}

	want := []core.ChangeKind{core.EntryUpserted, core.EntryUpserted, core.EntryDeleted}
	if !slices.Equal(persist.kinds, want) {
		t.Fatalf("persist saw %v, want %v", persist.kinds, want)
	}
	if !slices.Equal(notify.kinds, want) {
		t.Fatalf("notifier saw %v, want %v", notify.kinds, want)
	}
}

func TestWorkLogService_UnknownIDsDoNotNotify(t *testing.T) {
	ctx := context.Background()
	persist := &recordingObserver{}
	svc := newTestService(WithPersistence(persist))

	tests := []struct {
		name string
		op   func() error
		want error
	}{
		{"update entry", func() error {
			e := rangeEntry("job-1", "2024-03-11")
			e.ID = "missing"
			_, err := svc.UpdateEntry(ctx, e)
			return err
		}, ErrEntryNotFound},
		{"delete entry", func() error { return svc.DeleteEntry(ctx, "missing") }, ErrEntryNotFound},
		{"update job", func() error {
			_, err := svc.UpdateJob(ctx, core.Job{ID: "missing", Name: "x", Currency: core.USD})
			return err
		}, ErrJobNotFound},
		{"delete job", func() error {
			_, err := svc.DeleteJob(ctx, "missing")
			return err
		}, ErrJobNotFound},
		{"entry for unknown job", func() error {
			_, err := svc.AddEntry(ctx, rangeEntry("missing", "2024-03-11"))
			return err
		}, ErrJobNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.op(); !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
		})
	}
	if len(persist.kinds) != 0 {
		t.Fatalf("observer called for no-op changes: %v", persist.kinds)
	}
}

func TestWorkLogService_PersistenceErrorIsReturned(t *testing.T) {
	persist := &recordingObserver{err: errors.New("disk full")}
	notify := &recordingObserver{}
	svc := newTestService(WithPersistence(persist), WithNotifier("test", notify))

	_, err := svc.AddEntry(context.Background(), rangeEntry("job-1", "2024-03-11"))
	if err == nil || !errors.Is(err, persist.err) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if len(notify.kinds) != 0 {
		t.Fatalf("notifier must not run after a failed save, saw %v", notify.kinds)
	}
}

func TestWorkLogService_NotifierErrorIsLoggedOnly(t *testing.T) {
	notify := &recordingObserver{err: errors.New("broker down")}
	svc := newTestService(WithNotifier("amqp", notify))

	j, err := svc.AddJob(context.Background(), core.Job{Name: "Cafe", HourlyRate: 12})
	if err != nil {
		t.Fatalf("AddJob: %v", err)
	}
	if j.Currency != core.USD {
		t.Fatalf("currency = %q, want default USD", j.Currency)
	}
	if _, ok := svc.JobByID(j.ID); !ok {
		t.Fatalf("job %s not stored", j.ID)
	}
}

func TestWorkLogService_Validation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.AddJob(ctx, core.Job{Name: "  "}); !errors.Is(err, core.ErrInvalidJob) {
		t.Fatalf("blank job name: got %v", err)
	}
	if _, err := svc.AddJob(ctx, core.Job{Name: "x", HourlyRate: -1}); !errors.Is(err, core.ErrInvalidJob) {
		t.Fatalf("negative rate: got %v", err)
	}
	bad := core.WorkEntry{JobID: "job-1", Date: "2024-03-11", Kind: core.TimeRange{Start: "25:00", End: "17:00"}}
	if _, err := svc.AddEntry(ctx, bad); !errors.Is(err, core.ErrInvalidEntry) {
		t.Fatalf("bad clock: got %v", err)
	}
}

func TestWorkLogService_StoresCanonicalDate(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	added, err := svc.AddEntry(ctx, rangeEntry("job-1", " 2024-03-04\t"))
	if err != nil {
		t.Fatalf("AddEntry: %v", err)
	}
	if added.Date != "2024-03-04" {
		t.Fatalf("added date = %q, want 2024-03-04", added.Date)
	}
	if got := svc.EntriesOnDate("2024-03-04"); len(got) != 1 {
		t.Fatalf("entries on date = %d, want 1", len(got))
	}
	if got := svc.CalculateTotals(core.PeriodWeek, core.NewDate(2024, 3, 4), core.AllJobs); got.TotalHours != 7.5 {
		t.Fatalf("week hours = %v, want 7.5", got.TotalHours)
	}

	upd := rangeEntry("job-1", "2024-03-05 ")
	upd.ID = added.ID
	updated, err := svc.UpdateEntry(ctx, upd)
	if err != nil {
		t.Fatalf("UpdateEntry: %v", err)
	}
	if updated.Date != "2024-03-05" {
		t.Fatalf("updated date = %q, want 2024-03-05", updated.Date)
	}
}

func TestWorkLogService_DeleteJobCascades(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	a, _ := svc.AddEntry(ctx, rangeEntry("job-1", "2024-03-11"))
	b, _ := svc.AddEntry(ctx, rangeEntry("job-1", "2024-03-12"))
	other, _ := svc.AddEntry(ctx, rangeEntry("job-2", "2024-03-12"))

	removed, err := svc.DeleteJob(ctx, "job-1")
	if err != nil {
		t.Fatalf("DeleteJob: %v", err)
	}
	if !slices.Equal(removed, []string{a.ID, b.ID}) {
		t.Fatalf("cascaded = %v, want [%s %s]", removed, a.ID, b.ID)
	}
	snap := svc.Snapshot()
	if len(snap.Entries) != 1 || snap.Entries[0].ID != other.ID {
		t.Fatalf("remaining entries = %+v", snap.Entries)
	}
}

func TestWorkLogService_Bootstrap(t *testing.T) {
	ctx := context.Background()

	t.Run("loads snapshot", func(t *testing.T) {
		svc := NewWorkLogService(memory.New(), log.Discard())
		snap := core.Snapshot{
			Jobs:    []core.Job{{ID: "j", Name: "Only", HourlyRate: 10, Currency: core.EUR}},
			Entries: []core.WorkEntry{{ID: "e", JobID: "j", Date: "2024-01-01", Kind: core.FixedDuration{Hours: 2}}},
		}
		if err := svc.Bootstrap(ctx, fakeLoader{snap: snap}, true); err != nil {
			t.Fatalf("Bootstrap: %v", err)
		}
		if got := svc.Jobs(); len(got) != 1 || got[0].ID != "j" {
			t.Fatalf("jobs = %+v", got)
		}
	})

	t.Run("seeds and persists defaults when empty", func(t *testing.T) {
		persist := &recordingObserver{}
		svc := NewWorkLogService(memory.New(), log.Discard(), WithPersistence(persist))
		if err := svc.Bootstrap(ctx, fakeLoader{}, true); err != nil {
			t.Fatalf("Bootstrap: %v", err)
		}
		if got := len(svc.Jobs()); got != len(core.DefaultJobs()) {
			t.Fatalf("jobs = %d, want %d", got, len(core.DefaultJobs()))
		}
		if len(persist.kinds) != len(core.DefaultJobs()) {
			t.Fatalf("persisted %d changes, want %d", len(persist.kinds), len(core.DefaultJobs()))
		}
	})

	t.Run("loader error", func(t *testing.T) {
		svc := NewWorkLogService(memory.New(), log.Discard())
		if err := svc.Bootstrap(ctx, fakeLoader{err: errors.New("boom")}, true); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestWorkLogService_Close(t *testing.T) {
	t.Run("no closers", func(t *testing.T) {
		if err := newTestService().Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
	})

	t.Run("aggregates errors", func(t *testing.T) {
		ok := &fakeCloser{}
		bad := &fakeCloser{err: errors.New("still busy")}
		svc := newTestService(WithCloser("db", ok), WithCloser("amqp", bad))

		err := svc.Close()
		if err == nil || !errors.Is(err, bad.err) {
			t.Fatalf("Close error = %v", err)
		}
		if !ok.closed || !bad.closed {
			t.Fatal("every closer must run")
		}
	})
}
