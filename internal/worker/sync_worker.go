package worker

import (
	"context"
	"fmt"

	"worklog/internal/amqp"
	"worklog/internal/core"
	"worklog/internal/log"
	"worklog/internal/store"
)

// SyncWorker mirrors work log changes into an entry exporter such as a
// Google Sheets tab.
type SyncWorker struct {
	exporter store.EntryExporter
	// loader is optional; with it job edits refresh the job's rows and
	// StartupSync can reconcile the whole log.
	loader store.SnapshotLoader
	logger *log.Logger
}

func NewSyncWorker(exporter store.EntryExporter, loader store.SnapshotLoader, logger *log.Logger) *SyncWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &SyncWorker{
		exporter: exporter,
		loader:   loader,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// HandleChange applies one change message. A returned error makes the
// consumer requeue the message.
func (w *SyncWorker) HandleChange(ctx context.Context, msg *amqp.ChangeMessage) error {
	w.logger.InfoContext(ctx, "Processing change message",
		"message_id", msg.ID,
		log.FieldChangeKind, string(msg.Kind))

	switch msg.Kind {
	case core.EntryUpserted:
		if err := w.exporter.UpsertEntry(ctx, *msg.Entry, msg.Job); err != nil {
			return fmt.Errorf("export entry %s: %w", msg.Entry.ID, err)
		}
	case core.EntryDeleted:
		if err := w.exporter.DeleteEntries(ctx, msg.Entry.ID); err != nil {
			return fmt.Errorf("delete entry %s: %w", msg.Entry.ID, err)
		}
	case core.JobDeleted:
		if err := w.exporter.DeleteEntries(ctx, msg.CascadedEntryIDs...); err != nil {
			return fmt.Errorf("delete entries of job %s: %w", msg.Job.ID, err)
		}
	case core.JobUpserted:
		return w.refreshJob(ctx, *msg.Job)
	default:
		w.logger.WarnContext(ctx, "Ignoring unknown change kind", log.FieldChangeKind, string(msg.Kind))
	}
	return nil
}

// refreshJob rewrites the rows of a job so its name and earnings follow
// the latest job settings. Without a loader the change is only logged.
func (w *SyncWorker) refreshJob(ctx context.Context, job core.Job) error {
	if w.loader == nil {
		w.logger.DebugContext(ctx, "Job change acknowledged", log.FieldJobID, job.ID)
		return nil
	}
	snap, err := w.loader.LoadSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	n := 0
	for _, e := range snap.Entries {
		if e.JobID != job.ID {
			continue
		}
		if err := w.exporter.UpsertEntry(ctx, e, &job); err != nil {
			return fmt.Errorf("refresh entry %s: %w", e.ID, err)
		}
		n++
	}
	w.logger.InfoContext(ctx, "Job rows refreshed", log.FieldJobID, job.ID, "entries", n)
	return nil
}

// StartupSync exports every stored entry so rows missed while the worker
// was down are written. Failures are counted and logged, not returned.
func (w *SyncWorker) StartupSync(ctx context.Context) error {
	if w.loader == nil {
		w.logger.InfoContext(ctx, "No snapshot source, skipping startup sync")
		return nil
	}
	snap, err := w.loader.LoadSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot for startup sync: %w", err)
	}

	jobs := make(map[string]*core.Job, len(snap.Jobs))
	for i := range snap.Jobs {
		jobs[snap.Jobs[i].ID] = &snap.Jobs[i]
	}

	synced, failed := 0, 0
	for _, e := range snap.Entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.exporter.UpsertEntry(ctx, e, jobs[e.JobID]); err != nil {
			w.logger.ErrorContext(ctx, "Failed to sync entry during startup",
				log.FieldEntryID, e.ID,
				log.FieldEntryType, string(e.Type()),
				log.FieldDate, e.Date,
				log.FieldError, err)
			failed++
			continue
		}
		synced++
	}

	w.logger.InfoContext(ctx, "Startup sync completed",
		log.FieldOperation, log.OpSync,
		"total", len(snap.Entries),
		"synced", synced,
		"errors", failed)
	return nil
}
