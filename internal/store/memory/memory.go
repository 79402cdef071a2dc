// Package memory holds the in-memory work log: jobs and entries with CRUD
// operations, date lookup and totals over the current state.
package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"worklog/internal/core"
)

// Store keeps jobs and entries in insertion order. All methods are safe for
// concurrent use; every mutation is visible to the next read.
type Store struct {
	mu      sync.RWMutex
	jobs    []core.Job
	entries []core.WorkEntry
	newID   func() string
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator replaces the uuid v4 generator, mostly for tests.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

func New(opts ...Option) *Store {
	s := &Store{newID: uuid.NewString}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewSeeded returns a store holding the default jobs.
func NewSeeded(opts ...Option) *Store {
	s := New(opts...)
	s.Load(core.Snapshot{Jobs: core.DefaultJobs()})
	return s
}

// NewFromFile loads a JSON snapshot ({"jobs": [...], "entries": [...]}).
// A missing file yields a store seeded with the default jobs.
func NewFromFile(path string, opts ...Option) (*Store, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return NewSeeded(opts...), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}
	var snap core.Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	s := New(opts...)
	s.Load(snap)
	return s, nil
}

// Load replaces the whole state. Jobs are normalized and entries whose job
// does not exist are dropped.
func (s *Store) Load(snap core.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = make([]core.Job, 0, len(snap.Jobs))
	known := make(map[string]bool, len(snap.Jobs))
	for _, j := range snap.Jobs {
		if j.ID == "" || known[j.ID] {
			continue
		}
		known[j.ID] = true
		s.jobs = append(s.jobs, core.NormalizeJob(j))
	}
	s.entries = make([]core.WorkEntry, 0, len(snap.Entries))
	for _, e := range snap.Entries {
		if known[e.JobID] {
			s.entries = append(s.entries, e)
		}
	}
}

// AddJob stores a job. An empty or already used id is replaced with a
// fresh one.
func (s *Store) AddJob(j core.Job) core.Change {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j.ID == "" || s.jobIndex(j.ID) >= 0 {
		j.ID = s.newID()
	}
	j = core.NormalizeJob(j)
	s.jobs = append(s.jobs, j)
	return core.Change{Kind: core.JobUpserted, Job: jobPtr(j)}
}

// UpdateJob replaces every mutable field of the job with the same id. An
// unknown id leaves the store untouched and reports false.
func (s *Store) UpdateJob(j core.Job) (core.Change, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.jobIndex(j.ID)
	if i < 0 {
		return core.Change{}, false
	}
	j = core.NormalizeJob(j)
	s.jobs[i] = j
	return core.Change{Kind: core.JobUpserted, Job: jobPtr(j)}, true
}

// DeleteJob removes the job and every entry that references it.
func (s *Store) DeleteJob(id string) (core.Change, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.jobIndex(id)
	if i < 0 {
		return core.Change{}, false
	}
	removed := s.jobs[i]
	s.jobs = append(s.jobs[:i], s.jobs[i+1:]...)

	var cascaded []string
	kept := s.entries[:0]
	for _, e := range s.entries {
		if e.JobID == id {
			cascaded = append(cascaded, e.ID)
			continue
		}
		kept = append(kept, e)
	}
	clear(s.entries[len(kept):])
	s.entries = kept

	return core.Change{Kind: core.JobDeleted, Job: jobPtr(removed), CascadedEntryIDs: cascaded}, true
}

// AddEntry stores the entry under a freshly generated id.
func (s *Store) AddEntry(e core.WorkEntry) core.Change {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.newID()
	s.entries = append(s.entries, e)
	return s.entryChange(core.EntryUpserted, e)
}

// UpdateEntry replaces the entry with the same id in place. An unknown id
// is a no-op and reports false.
func (s *Store) UpdateEntry(e core.WorkEntry) (core.Change, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.entryIndex(e.ID)
	if i < 0 {
		return core.Change{}, false
	}
	s.entries[i] = e
	return s.entryChange(core.EntryUpserted, e), true
}

// DeleteEntry removes a single entry.
func (s *Store) DeleteEntry(id string) (core.Change, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.entryIndex(id)
	if i < 0 {
		return core.Change{}, false
	}
	removed := s.entries[i]
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	return s.entryChange(core.EntryDeleted, removed), true
}

// EntriesOnDate returns the entries for an ISO date in insertion order.
func (s *Store) EntriesOnDate(date string) []core.WorkEntry {
	return s.filterEntries(func(e core.WorkEntry) bool { return e.Date == date })
}

// EntriesForJob returns the entries of one job in insertion order.
func (s *Store) EntriesForJob(jobID string) []core.WorkEntry {
	return s.filterEntries(func(e core.WorkEntry) bool { return e.JobID == jobID })
}

// JobByID looks up a job.
func (s *Store) JobByID(id string) (core.Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.jobIndex(id); i >= 0 {
		return cloneJob(s.jobs[i]), true
	}
	return core.Job{}, false
}

// EntryByID looks up an entry.
func (s *Store) EntryByID(id string) (core.WorkEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.entryIndex(id); i >= 0 {
		return s.entries[i], true
	}
	return core.WorkEntry{}, false
}

// Jobs returns a copy of all jobs.
func (s *Store) Jobs() []core.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Job, len(s.jobs))
	for i, j := range s.jobs {
		out[i] = cloneJob(j)
	}
	return out
}

// Entries returns a copy of all entries.
func (s *Store) Entries() []core.WorkEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.WorkEntry(nil), s.entries...)
}

// Snapshot returns a consistent copy of the whole state.
func (s *Store) Snapshot() core.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	jobs := make([]core.Job, len(s.jobs))
	for i, j := range s.jobs {
		jobs[i] = cloneJob(j)
	}
	return core.Snapshot{Jobs: jobs, Entries: append([]core.WorkEntry{}, s.entries...)}
}

// CalculateTotals aggregates the current state.
func (s *Store) CalculateTotals(period core.Period, ref core.Date, filter string) core.CalculatedTotals {
	snap := s.Snapshot()
	return core.CalculateTotals(snap.Jobs, snap.Entries, period, ref, filter)
}

func (s *Store) filterEntries(keep func(core.WorkEntry) bool) []core.WorkEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []core.WorkEntry{}
	for _, e := range s.entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

// entryChange attaches the owning job when it exists. Callers hold the lock.
func (s *Store) entryChange(kind core.ChangeKind, e core.WorkEntry) core.Change {
	c := core.Change{Kind: kind, Entry: &e}
	if i := s.jobIndex(e.JobID); i >= 0 {
		c.Job = jobPtr(s.jobs[i])
	}
	return c
}

func (s *Store) jobIndex(id string) int {
	for i, j := range s.jobs {
		if j.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) entryIndex(id string) int {
	for i, e := range s.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func cloneJob(j core.Job) core.Job {
	j.Schedule = append([]time.Weekday{}, j.Schedule...)
	return j
}

func jobPtr(j core.Job) *core.Job {
	c := cloneJob(j)
	return &c
}
