package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"worklog/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// dsn enables foreign keys and a busy timeout on every pooled connection.
func dsn(dbPath string) string {
	return "file:" + dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// SaveJob inserts or replaces a job by id.
func (r *SQLiteRepository) SaveJob(ctx context.Context, j core.Job) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO jobs (id, name, hourly_rate, currency, schedule)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			hourly_rate = excluded.hourly_rate,
			currency = excluded.currency,
			schedule = excluded.schedule,
			updated_at = CURRENT_TIMESTAMP`,
		j.ID, j.Name, j.HourlyRate, string(j.Currency), encodeSchedule(j.Schedule))
	if err != nil {
		return fmt.Errorf("save job %s: %w", j.ID, err)
	}
	slog.DebugContext(ctx, "Job saved to SQLite", "id", j.ID, "name", j.Name)
	return nil
}

// DeleteJob removes a job and its entries in one transaction. It does not
// rely on the foreign key cascade being enabled on the connection.
func (r *SQLiteRepository) DeleteJob(ctx context.Context, id string) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete job: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `DELETE FROM work_entries WHERE job_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete entries of job %s: %w", id, err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete job %s: %w", id, err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete job %s: %w", id, err)
	}

	cascaded, _ := res.RowsAffected()
	slog.InfoContext(ctx, "Job deleted from SQLite", "id", id, "cascaded_entries", cascaded)
	return nil
}

// SaveEntry inserts or replaces an entry by id. Columns of other entry
// types are stored as NULL.
func (r *SQLiteRepository) SaveEntry(ctx context.Context, e core.WorkEntry) error {
	rec := e.Record()
	if rec.EntryType == "" {
		return fmt.Errorf("save entry %s: %w", e.ID, core.ErrUnknownEntryType)
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO work_entries (id, job_id, date, entry_type, start_time, end_time,
			break_minutes, duration_hours, status, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			job_id = excluded.job_id,
			date = excluded.date,
			entry_type = excluded.entry_type,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			break_minutes = excluded.break_minutes,
			duration_hours = excluded.duration_hours,
			status = excluded.status,
			notes = excluded.notes,
			updated_at = CURRENT_TIMESTAMP`,
		rec.ID, rec.JobID, rec.Date, string(rec.EntryType),
		nullString(rec.StartTime, rec.EntryType == core.EntryTypeTimeRange),
		nullString(rec.EndTime, rec.EntryType == core.EntryTypeTimeRange),
		nullFloat(rec.BreakMinutes),
		nullFloat(rec.DurationHours),
		nullString(rec.Status, rec.EntryType == core.EntryTypeStatus),
		rec.Notes)
	if err != nil {
		return fmt.Errorf("save entry %s: %w", e.ID, err)
	}
	slog.DebugContext(ctx, "Entry saved to SQLite", "id", rec.ID, "job_id", rec.JobID, "date", rec.Date)
	return nil
}

// DeleteEntry removes one entry. Deleting an unknown id is not an error.
func (r *SQLiteRepository) DeleteEntry(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM work_entries WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete entry %s: %w", id, err)
	}
	return nil
}

// LoadSnapshot reads every job and entry in insertion order.
func (r *SQLiteRepository) LoadSnapshot(ctx context.Context) (core.Snapshot, error) {
	jobs, err := r.listJobs(ctx)
	if err != nil {
		return core.Snapshot{}, err
	}
	entries, err := r.listEntries(ctx, "", "")
	if err != nil {
		return core.Snapshot{}, err
	}
	return core.Snapshot{Jobs: jobs, Entries: entries}, nil
}

// ListEntriesBetween returns entries whose date lies in [start, end].
func (r *SQLiteRepository) ListEntriesBetween(ctx context.Context, start, end core.Date) ([]core.WorkEntry, error) {
	return r.listEntries(ctx, start.String(), end.String())
}

// ObserveChange applies a store mutation to the database.
func (r *SQLiteRepository) ObserveChange(ctx context.Context, c core.Change) error {
	switch c.Kind {
	case core.JobUpserted:
		if c.Job == nil {
			return errors.New("job change without job")
		}
		return r.SaveJob(ctx, *c.Job)
	case core.JobDeleted:
		if c.Job == nil {
			return errors.New("job change without job")
		}
		return r.DeleteJob(ctx, c.Job.ID)
	case core.EntryUpserted:
		if c.Entry == nil {
			return errors.New("entry change without entry")
		}
		return r.SaveEntry(ctx, *c.Entry)
	case core.EntryDeleted:
		if c.Entry == nil {
			return errors.New("entry change without entry")
		}
		return r.DeleteEntry(ctx, c.Entry.ID)
	default:
		return fmt.Errorf("unknown change kind %q", c.Kind)
	}
}

func (r *SQLiteRepository) listJobs(ctx context.Context) ([]core.Job, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, hourly_rate, currency, schedule
		FROM jobs ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	jobs := []core.Job{}
	for rows.Next() {
		var (
			j        core.Job
			currency string
			schedule string
		)
		if err := rows.Scan(&j.ID, &j.Name, &j.HourlyRate, &currency, &schedule); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		j.Currency = core.Currency(currency)
		j.Schedule = decodeSchedule(schedule)
		jobs = append(jobs, core.NormalizeJob(j))
	}
	return jobs, rows.Err()
}

func (r *SQLiteRepository) listEntries(ctx context.Context, start, end string) ([]core.WorkEntry, error) {
	query := `
		SELECT id, job_id, date, entry_type, start_time, end_time,
			break_minutes, duration_hours, status, notes
		FROM work_entries`
	var args []any
	if start != "" && end != "" {
		query += ` WHERE date BETWEEN ? AND ?`
		args = append(args, start, end)
	}
	query += ` ORDER BY rowid`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	entries := []core.WorkEntry{}
	for rows.Next() {
		var (
			rec                 core.EntryRecord
			entryType           string
			startTime, endTime  sql.NullString
			breakMinutes, hours sql.NullFloat64
			status              sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.JobID, &rec.Date, &entryType, &startTime, &endTime,
			&breakMinutes, &hours, &status, &rec.Notes); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		rec.EntryType = core.EntryType(entryType)
		rec.StartTime = startTime.String
		rec.EndTime = endTime.String
		rec.Status = status.String
		if breakMinutes.Valid {
			rec.BreakMinutes = &breakMinutes.Float64
		}
		if hours.Valid {
			rec.DurationHours = &hours.Float64
		}
		e, err := rec.Entry()
		if err != nil {
			slog.WarnContext(ctx, "Skipping unreadable entry", "id", rec.ID, "error", err)
			continue
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func encodeSchedule(days []time.Weekday) string {
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(int(d))
	}
	return strings.Join(parts, ",")
}

func decodeSchedule(s string) []time.Weekday {
	var days []time.Weekday
	for _, p := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			continue
		}
		days = append(days, time.Weekday(n))
	}
	return days
}

func nullString(s string, valid bool) sql.NullString {
	return sql.NullString{String: s, Valid: valid}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
