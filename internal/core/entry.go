package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// EntryType is the wire discriminant of an entry kind.
type EntryType string

const (
	EntryTypeTimeRange EntryType = "time_range"
	EntryTypeDuration  EntryType = "duration"
	EntryTypeStatus    EntryType = "status"
)

// Canonical day statuses. Any other string is accepted as a custom status.
const (
	StatusWorked  = "worked"
	StatusOff     = "off"
	StatusHoliday = "holiday"
	StatusSick    = "sick"
)

var (
	ErrUnknownEntryType = errors.New("unknown entry type")
	ErrInvalidEntry     = errors.New("invalid entry")
)

// EntryKind is the closed set of ways an entry can record work:
// TimeRange, FixedDuration or DayStatus.
type EntryKind interface {
	Type() EntryType
	isEntryKind()
}

// TimeRange is a shift between two HH:mm clock times. An end before the
// start means the shift ran past midnight.
type TimeRange struct {
	Start        string
	End          string
	BreakMinutes float64
}

// FixedDuration records a number of hours without clock times.
type FixedDuration struct {
	Hours float64
}

// DayStatus marks the whole day, e.g. worked, off, holiday or sick.
type DayStatus struct {
	Status string
}

func (TimeRange) Type() EntryType     { return EntryTypeTimeRange }
func (FixedDuration) Type() EntryType { return EntryTypeDuration }
func (DayStatus) Type() EntryType     { return EntryTypeStatus }

func (TimeRange) isEntryKind()     {}
func (FixedDuration) isEntryKind() {}
func (DayStatus) isEntryKind()     {}

// WorkEntry is a single logged record for one job on one calendar day.
// Date is kept in canonical YYYY-MM-DD form so window checks compare strings.
type WorkEntry struct {
	ID    string
	JobID string
	Date  string
	Kind  EntryKind
	Notes string
}

// Type returns the entry's discriminant, or "" when it has no kind.
func (e WorkEntry) Type() EntryType {
	if e.Kind == nil {
		return ""
	}
	return e.Kind.Type()
}

// Validate checks the structure of an entry arriving from outside. Numeric
// values are not range checked.
func (e WorkEntry) Validate() error {
	if strings.TrimSpace(e.JobID) == "" {
		return fmt.Errorf("%w: missing job id", ErrInvalidEntry)
	}
	if _, err := ParseDate(e.Date); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, err)
	}
	switch k := e.Kind.(type) {
	case TimeRange:
		if _, err := ParseClock(k.Start); err != nil {
			return fmt.Errorf("%w: start: %w", ErrInvalidEntry, err)
		}
		if _, err := ParseClock(k.End); err != nil {
			return fmt.Errorf("%w: end: %w", ErrInvalidEntry, err)
		}
	case FixedDuration:
	case DayStatus:
		if strings.TrimSpace(k.Status) == "" {
			return fmt.Errorf("%w: empty status", ErrInvalidEntry)
		}
	default:
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrUnknownEntryType)
	}
	return nil
}

// EntryRecord is the flat shape of an entry used on the wire and in storage.
// Only the fields belonging to EntryType are meaningful.
type EntryRecord struct {
	ID            string    `json:"id"`
	JobID         string    `json:"jobId"`
	Date          string    `json:"date"`
	EntryType     EntryType `json:"entryType"`
	StartTime     string    `json:"startTime,omitempty"`
	EndTime       string    `json:"endTime,omitempty"`
	BreakMinutes  *float64  `json:"breakMinutes,omitempty"`
	DurationHours *float64  `json:"durationHours,omitempty"`
	Status        string    `json:"status,omitempty"`
	Notes         string    `json:"notes,omitempty"`
}

// Record flattens the entry.
func (e WorkEntry) Record() EntryRecord {
	r := EntryRecord{
		ID:        e.ID,
		JobID:     e.JobID,
		Date:      e.Date,
		EntryType: e.Type(),
		Notes:     e.Notes,
	}
	switch k := e.Kind.(type) {
	case TimeRange:
		r.StartTime = k.Start
		r.EndTime = k.End
		b := k.BreakMinutes
		r.BreakMinutes = &b
	case FixedDuration:
		h := k.Hours
		r.DurationHours = &h
	case DayStatus:
		r.Status = k.Status
	}
	return r
}

// Entry rebuilds the typed entry, reading only the fields of the tagged
// variant. Missing numeric fields read as zero.
func (r EntryRecord) Entry() (WorkEntry, error) {
	e := WorkEntry{
		ID:    r.ID,
		JobID: r.JobID,
		Date:  r.Date,
		Notes: r.Notes,
	}
	switch r.EntryType {
	case EntryTypeTimeRange:
		e.Kind = TimeRange{Start: r.StartTime, End: r.EndTime, BreakMinutes: deref(r.BreakMinutes)}
	case EntryTypeDuration:
		e.Kind = FixedDuration{Hours: deref(r.DurationHours)}
	case EntryTypeStatus:
		e.Kind = DayStatus{Status: r.Status}
	default:
		return WorkEntry{}, fmt.Errorf("%w: %q", ErrUnknownEntryType, r.EntryType)
	}
	return e, nil
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

// MarshalJSON encodes the entry in its flat record form.
func (e WorkEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Record())
}

// UnmarshalJSON decodes a flat record and rejects unknown entry types.
func (e *WorkEntry) UnmarshalJSON(data []byte) error {
	var r EntryRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	entry, err := r.Entry()
	if err != nil {
		return err
	}
	*e = entry
	return nil
}
