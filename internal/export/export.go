// Package export turns work log entries into spreadsheet rows and writes
// them as CSV or JSON.
package export

import (
	"fmt"
	"sort"

	"worklog/internal/core"
)

// UnknownJob is shown for entries whose job no longer exists.
const UnknownJob = "Unknown Job"

// Header lists the exported columns in order.
var Header = []string{"Date", "Job", "Time", "Duration (h)", "Earnings", "Currency", "Notes"}

// Filter selects entries by calendar month. Year or Month set to 0 match
// any value; an empty JobID or core.AllJobs matches every job.
type Filter struct {
	Year  int
	Month int
	JobID string
}

func (f Filter) matches(e core.WorkEntry) bool {
	if f.JobID != "" && f.JobID != core.AllJobs && e.JobID != f.JobID {
		return false
	}
	d, err := core.ParseDate(e.Date)
	if err != nil {
		return false
	}
	if f.Year != 0 && d.Year() != f.Year {
		return false
	}
	return f.Month == 0 || int(d.Month()) == f.Month
}

// Validate rejects months outside 0-12 and negative years.
func (f Filter) Validate() error {
	if f.Month < 0 || f.Month > 12 {
		return fmt.Errorf("month %d out of range", f.Month)
	}
	if f.Year < 0 {
		return fmt.Errorf("year %d out of range", f.Year)
	}
	return nil
}

// FileName returns a download name such as work-log-2024-3.csv.
func (f Filter) FileName(ext string) string {
	switch {
	case f.Year == 0:
		return "work-log." + ext
	case f.Month == 0:
		return fmt.Sprintf("work-log-%d.%s", f.Year, ext)
	default:
		return fmt.Sprintf("work-log-%d-%d.%s", f.Year, f.Month, ext)
	}
}

// Row is one exported entry.
type Row struct {
	EntryID  string  `json:"entryId"`
	Date     string  `json:"date"`
	Job      string  `json:"job"`
	Time     string  `json:"time"`
	Hours    float64 `json:"durationHours"`
	Earnings float64 `json:"earnings"`
	Currency string  `json:"currency"`
	Notes    string  `json:"notes"`
}

// RowFor builds the row for one entry. job may be nil when the entry's job
// is unknown, in which case earnings are zero.
func RowFor(e core.WorkEntry, job *core.Job) Row {
	hours := core.HoursFor(e)
	row := Row{
		EntryID: e.ID,
		Date:    e.Date,
		Job:     UnknownJob,
		Hours:   core.Round2(hours),
		Notes:   e.Notes,
	}
	if tr, ok := e.Kind.(core.TimeRange); ok {
		row.Time = tr.Start + " - " + tr.End
	}
	if job != nil {
		row.Job = job.Name
		row.Earnings = core.Round2(hours * job.HourlyRate)
		row.Currency = string(job.Currency)
	}
	return row
}

// Values renders the row in Header order.
func (r Row) Values() []string {
	return []string{
		r.Date,
		r.Job,
		r.Time,
		core.FormatAmount(r.Hours),
		core.FormatAmount(r.Earnings),
		r.Currency,
		r.Notes,
	}
}

// BuildRows filters the snapshot and returns rows sorted by date. Entries on
// the same date keep their insertion order.
func BuildRows(snap core.Snapshot, f Filter) []Row {
	jobs := make(map[string]*core.Job, len(snap.Jobs))
	for i := range snap.Jobs {
		jobs[snap.Jobs[i].ID] = &snap.Jobs[i]
	}

	rows := []Row{}
	for _, e := range snap.Entries {
		if f.matches(e) {
			rows = append(rows, RowFor(e, jobs[e.JobID]))
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date < rows[j].Date })
	return rows
}
