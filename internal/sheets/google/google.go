// Package google mirrors work log entries into a Google Sheets tab. Each
// entry owns one row keyed by its id in column A.
package google

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	gsheet "google.golang.org/api/sheets/v4"

	"worklog/internal/config"
	"worklog/internal/core"
	"worklog/internal/export"
	"worklog/internal/log"
	"worklog/internal/store"
)

const idColumn = "Entry ID"

// Exporter writes entries to one sheet.
type Exporter struct {
	api    sheetAPI
	sheet  string
	logger *log.Logger

	mu            sync.Mutex
	headerWritten bool
}

var _ store.EntryExporter = (*Exporter)(nil)

// NewFromConfig builds an exporter from the Google settings in cfg.
func NewFromConfig(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Exporter, error) {
	if strings.TrimSpace(cfg.GoogleSpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	creds, err := CredentialsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	opts, err := clientOptions(ctx, creds)
	if err != nil {
		return nil, err
	}
	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	sheet := strings.TrimSpace(cfg.GoogleSheetName)
	if sheet == "" {
		sheet = "Work Log"
	}
	e := newExporter(&valuesAPI{svc: svc, spreadsheetID: cfg.GoogleSpreadsheetID}, sheet, logger)
	e.logger.InfoContext(ctx, "Google Sheets exporter ready", "sheet", sheet)
	return e, nil
}

func newExporter(api sheetAPI, sheet string, logger *log.Logger) *Exporter {
	if logger == nil {
		logger = log.Discard()
	}
	return &Exporter{api: api, sheet: sheet, logger: logger.WithComponent(log.ComponentSheets)}
}

// UpsertEntry rewrites the entry's row, appending one if the id is new.
func (e *Exporter) UpsertEntry(ctx context.Context, entry core.WorkEntry, job *core.Job) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ensureHeader(ctx); err != nil {
		return err
	}
	ids, err := e.readIDs(ctx)
	if err != nil {
		return err
	}

	values := [][]any{rowValues(export.RowFor(entry, job))}
	if i := slices.Index(ids, entry.ID); i >= 0 {
		row := i + 1
		if err := e.api.Update(ctx, e.a1(fmt.Sprintf("A%d:H%d", row, row)), values); err != nil {
			return err
		}
		e.logger.DebugContext(ctx, "Entry row updated", log.FieldEntryID, entry.ID, "row", row)
		return nil
	}

	if err := e.api.Append(ctx, e.a1("A:H"), values); err != nil {
		return err
	}
	e.logger.DebugContext(ctx, "Entry row appended", log.FieldEntryID, entry.ID)
	return nil
}

// DeleteEntries removes the rows of the given ids. Ids without a row are
// ignored.
func (e *Exporter) DeleteEntries(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	current, err := e.readIDs(ctx)
	if err != nil {
		return err
	}
	var rows []int
	for i, id := range current {
		if i > 0 && slices.Contains(ids, id) {
			rows = append(rows, i)
		}
	}
	// Bottom-up so earlier indexes stay valid.
	slices.Reverse(rows)
	for _, r := range rows {
		if err := e.api.DeleteRows(ctx, e.sheet, int64(r), int64(r+1)); err != nil {
			return err
		}
	}
	if len(rows) > 0 {
		e.logger.DebugContext(ctx, "Entry rows deleted", "rows", len(rows))
	}
	return nil
}

func (e *Exporter) ensureHeader(ctx context.Context) error {
	if e.headerWritten {
		return nil
	}
	first, err := e.api.Get(ctx, e.a1("A1:H1"))
	if err != nil {
		return err
	}
	if len(first) == 0 || len(first[0]) == 0 {
		header := append([]any{idColumn}, toAny(export.Header)...)
		if err := e.api.Update(ctx, e.a1("A1:H1"), [][]any{header}); err != nil {
			return err
		}
		e.logger.InfoContext(ctx, "Header row written", "sheet", e.sheet)
	}
	e.headerWritten = true
	return nil
}

// readIDs returns column A; index i is sheet row i+1.
func (e *Exporter) readIDs(ctx context.Context) ([]string, error) {
	values, err := e.api.Get(ctx, e.a1("A:A"))
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(values))
	for i, row := range values {
		if len(row) > 0 {
			ids[i] = strings.TrimSpace(fmt.Sprint(row[0]))
		}
	}
	return ids, nil
}

// a1 builds an A1 range on the exporter's sheet, quoting the sheet name.
func (e *Exporter) a1(cells string) string {
	return "'" + strings.ReplaceAll(e.sheet, "'", "''") + "'!" + cells
}

func rowValues(r export.Row) []any {
	return []any{
		r.EntryID,
		r.Date,
		r.Job,
		r.Time,
		r.Hours,
		r.Earnings,
		r.Currency,
		r.Notes,
	}
}

func toAny(in []string) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
