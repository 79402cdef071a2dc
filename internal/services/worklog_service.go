package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"worklog/internal/core"
	"worklog/internal/log"
	"worklog/internal/store"
	"worklog/internal/store/memory"
)

var (
	ErrJobNotFound   = errors.New("job not found")
	ErrEntryNotFound = errors.New("entry not found")
)

type namedObserver struct {
	name     string
	observer store.Observer
}

// WorkLogService applies mutations to the in-memory store and then tells
// observers about them. The persistence observer is part of the operation
// and its error is returned; notifiers are best effort and only logged.
type WorkLogService struct {
	store     *memory.Store
	persist   store.Observer
	notifiers []namedObserver
	closers   []namedCloser
	logger    *log.Logger
	events    *log.StructuredLogger
}

type namedCloser struct {
	name   string
	closer io.Closer
}

// Option configures a WorkLogService.
type Option func(*WorkLogService)

// WithPersistence sets the observer that must succeed for a mutation to be
// reported as saved.
func WithPersistence(o store.Observer) Option {
	return func(s *WorkLogService) { s.persist = o }
}

// WithNotifier adds a best-effort observer, e.g. a message publisher or a
// cache invalidator.
func WithNotifier(name string, o store.Observer) Option {
	return func(s *WorkLogService) {
		s.notifiers = append(s.notifiers, namedObserver{name: name, observer: o})
	}
}

// WithCloser registers a resource released by Close.
func WithCloser(name string, c io.Closer) Option {
	return func(s *WorkLogService) {
		s.closers = append(s.closers, namedCloser{name: name, closer: c})
	}
}

func NewWorkLogService(st *memory.Store, logger *log.Logger, opts ...Option) *WorkLogService {
	s := &WorkLogService{store: st, logger: logger.WithComponent(log.ComponentWorkLog)}
	for _, opt := range opts {
		opt(s)
	}
	s.events = log.NewStructuredLogger(s.logger)
	return s
}

// Bootstrap loads persisted state into the store. When nothing has been
// saved yet and seedDefaults is set, the default jobs are created.
func (s *WorkLogService) Bootstrap(ctx context.Context, loader store.SnapshotLoader, seedDefaults bool) error {
	if loader != nil {
		snap, err := loader.LoadSnapshot(ctx)
		if err != nil {
			return fmt.Errorf("load snapshot: %w", err)
		}
		s.store.Load(snap)
		s.logger.InfoContext(ctx, "Work log loaded", "jobs", len(snap.Jobs), "entries", len(snap.Entries))
	}
	if !seedDefaults || len(s.store.Jobs()) > 0 {
		return nil
	}
	for _, j := range core.DefaultJobs() {
		if _, err := s.AddJob(ctx, j); err != nil {
			return fmt.Errorf("seed default job %s: %w", j.ID, err)
		}
	}
	return nil
}

// AddJob validates and stores a new job.
func (s *WorkLogService) AddJob(ctx context.Context, j core.Job) (core.Job, error) {
	j = core.NormalizeJob(j)
	if err := j.Validate(); err != nil {
		return core.Job{}, err
	}
	c := s.store.AddJob(j)
	if err := s.apply(ctx, c); err != nil {
		return *c.Job, err
	}
	return *c.Job, nil
}

// UpdateJob replaces an existing job's fields.
func (s *WorkLogService) UpdateJob(ctx context.Context, j core.Job) (core.Job, error) {
	j = core.NormalizeJob(j)
	if err := j.Validate(); err != nil {
		return core.Job{}, err
	}
	c, ok := s.store.UpdateJob(j)
	if !ok {
		return core.Job{}, fmt.Errorf("%w: %s", ErrJobNotFound, j.ID)
	}
	return *c.Job, s.apply(ctx, c)
}

// DeleteJob removes a job together with its entries and returns the ids of
// the removed entries.
func (s *WorkLogService) DeleteJob(ctx context.Context, id string) ([]string, error) {
	c, ok := s.store.DeleteJob(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	if err := s.apply(ctx, c); err != nil {
		return c.CascadedEntryIDs, err
	}
	if n := len(c.CascadedEntryIDs); n > 0 {
		s.logger.InfoContext(ctx, "Removed entries of deleted job",
			log.FieldJobID, id,
			log.FieldCascaded, n)
	}
	return c.CascadedEntryIDs, nil
}

// AddEntry validates the entry, checks its job exists and stores it under a
// fresh id.
func (s *WorkLogService) AddEntry(ctx context.Context, e core.WorkEntry) (core.WorkEntry, error) {
	e, err := s.checkEntry(e)
	if err != nil {
		return core.WorkEntry{}, err
	}
	c := s.store.AddEntry(e)
	return *c.Entry, s.apply(ctx, c)
}

// UpdateEntry replaces an existing entry, keeping its id.
func (s *WorkLogService) UpdateEntry(ctx context.Context, e core.WorkEntry) (core.WorkEntry, error) {
	e, err := s.checkEntry(e)
	if err != nil {
		return core.WorkEntry{}, err
	}
	c, ok := s.store.UpdateEntry(e)
	if !ok {
		return core.WorkEntry{}, fmt.Errorf("%w: %s", ErrEntryNotFound, e.ID)
	}
	return *c.Entry, s.apply(ctx, c)
}

// DeleteEntry removes one entry.
func (s *WorkLogService) DeleteEntry(ctx context.Context, id string) error {
	c, ok := s.store.DeleteEntry(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}
	return s.apply(ctx, c)
}

func (s *WorkLogService) Jobs() []core.Job { return s.store.Jobs() }

func (s *WorkLogService) JobByID(id string) (core.Job, bool) { return s.store.JobByID(id) }

func (s *WorkLogService) EntryByID(id string) (core.WorkEntry, bool) { return s.store.EntryByID(id) }

func (s *WorkLogService) EntriesOnDate(date string) []core.WorkEntry {
	return s.store.EntriesOnDate(date)
}

func (s *WorkLogService) Snapshot() core.Snapshot { return s.store.Snapshot() }

// CalculateTotals aggregates the current state for a period around ref.
func (s *WorkLogService) CalculateTotals(period core.Period, ref core.Date, filter string) core.CalculatedTotals {
	return s.store.CalculateTotals(period, ref, filter)
}

// checkEntry validates e and returns it with its date in canonical form.
func (s *WorkLogService) checkEntry(e core.WorkEntry) (core.WorkEntry, error) {
	if err := e.Validate(); err != nil {
		return core.WorkEntry{}, err
	}
	d, err := core.ParseDate(e.Date)
	if err != nil {
		return core.WorkEntry{}, err
	}
	e.Date = d.String()
	if _, ok := s.store.JobByID(e.JobID); !ok {
		return core.WorkEntry{}, fmt.Errorf("%w: %s", ErrJobNotFound, e.JobID)
	}
	return e, nil
}

// apply runs the observers for a change that already happened in the store.
func (s *WorkLogService) apply(ctx context.Context, c core.Change) error {
	jobID, entryID := changeIDs(c)

	if s.persist != nil {
		if err := s.persist.ObserveChange(ctx, c); err != nil {
			s.events.LogError(ctx, "Failed to persist change", err, log.ComponentStorage, string(c.Kind),
				log.NewFields().WithChange(string(c.Kind), jobID, entryID))
			return fmt.Errorf("persist %s: %w", c.Kind, err)
		}
	}

	s.events.LogChange(ctx, string(c.Kind), jobID, entryID)

	for _, n := range s.notifiers {
		if err := n.observer.ObserveChange(ctx, c); err != nil {
			// The change is saved locally; a failed notification is not fatal.
			s.logger.WarnContext(ctx, "Change notification failed",
				log.FieldObserver, n.name,
				log.FieldChangeKind, string(c.Kind),
				log.FieldError, err)
		}
	}
	return nil
}

func changeIDs(c core.Change) (jobID, entryID string) {
	if c.Job != nil {
		jobID = c.Job.ID
	}
	if c.Entry != nil {
		entryID = c.Entry.ID
		if jobID == "" {
			jobID = c.Entry.JobID
		}
	}
	return jobID, entryID
}

// Close releases registered resources in reverse order.
func (s *WorkLogService) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		c := s.closers[i]
		if err := c.closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c.name, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("close work log service: %w", err)
	}
	return nil
}
