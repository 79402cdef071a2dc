package store

import (
	"context"

	"worklog/internal/core"
)

// Ports for collaborators of the work log.
type (
	// Observer is told about every successful mutation, after it happened.
	Observer interface {
		ObserveChange(ctx context.Context, c core.Change) error
	}

	// SnapshotLoader returns the persisted state used to warm a store.
	SnapshotLoader interface {
		LoadSnapshot(ctx context.Context) (core.Snapshot, error)
	}

	// EntryExporter mirrors entries into an external sink such as a
	// spreadsheet. job is nil when the entry's job is unknown.
	EntryExporter interface {
		UpsertEntry(ctx context.Context, entry core.WorkEntry, job *core.Job) error
		DeleteEntries(ctx context.Context, ids ...string) error
	}
)

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx context.Context, c core.Change) error

// ObserveChange calls f.
func (f ObserverFunc) ObserveChange(ctx context.Context, c core.Change) error {
	return f(ctx, c)
}
