// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data:
// JSON bodies, query parameters and path values.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"worklog/internal/core"
	"worklog/internal/export"
)

// maxBodyBytes bounds request bodies; a job or an entry is far smaller.
const maxBodyBytes = 1 << 20

var (
	errMalformedBody = errors.New("malformed request body")
	errInvalidParam  = errors.New("invalid parameter")
)

// decodeJSON reads a single JSON document from the request body into v.
// Domain decoding errors, such as an unknown entry type, are kept so they
// map to 422 rather than 400.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, core.ErrUnknownEntryType) {
			return fmt.Errorf("%w: %w", core.ErrInvalidEntry, err)
		}
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errMalformedBody)
		}
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data", errMalformedBody)
	}
	return nil
}

// jobRequest is the body of job create and update calls.
type jobRequest struct {
	Name       string         `json:"name"`
	HourlyRate float64        `json:"hourlyRate"`
	Currency   string         `json:"currency"`
	Schedule   []time.Weekday `json:"schedule"`
}

func (j jobRequest) job(id string) (core.Job, error) {
	job := core.Job{
		ID:         id,
		Name:       sanitizeInput(j.Name),
		HourlyRate: j.HourlyRate,
		Schedule:   j.Schedule,
	}
	if strings.TrimSpace(j.Currency) != "" {
		c, err := core.ParseCurrency(j.Currency)
		if err != nil {
			return core.Job{}, fmt.Errorf("%w: %w", core.ErrInvalidJob, err)
		}
		job.Currency = c
	}
	return job, nil
}

// parseJobRequest decodes a job body. id is empty on create.
func parseJobRequest(w http.ResponseWriter, r *http.Request, id string) (core.Job, error) {
	var req jobRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return core.Job{}, err
	}
	return req.job(id)
}

// parseEntryRequest decodes an entry body in its flat record form. On
// update the path id wins over any id in the body.
func parseEntryRequest(w http.ResponseWriter, r *http.Request, id string) (core.WorkEntry, error) {
	var e core.WorkEntry
	if err := decodeJSON(w, r, &e); err != nil {
		return core.WorkEntry{}, err
	}
	e.ID = id
	e.JobID = strings.TrimSpace(e.JobID)
	e.Date = strings.TrimSpace(e.Date)
	e.Notes = sanitizeInput(e.Notes)
	if s, ok := e.Kind.(core.DayStatus); ok {
		e.Kind = core.DayStatus{Status: sanitizeInput(s.Status)}
	}
	return e, nil
}

// parseDateParam reads a YYYY-MM-DD query parameter, defaulting to today.
func parseDateParam(query url.Values, key string) (core.Date, error) {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return core.Today(), nil
	}
	return core.ParseDate(v)
}

// parsePeriodParam reads the period query parameter, defaulting to week.
func parsePeriodParam(query url.Values) (core.Period, error) {
	v := strings.TrimSpace(query.Get("period"))
	if v == "" {
		return core.PeriodWeek, nil
	}
	return core.ParsePeriod(v)
}

// parseJobFilter reads the job query parameter; empty means every job.
func parseJobFilter(query url.Values) string {
	if v := sanitizeInput(query.Get("job")); v != "" {
		return v
	}
	return core.AllJobs
}

// parseIntParam reads an optional integer query parameter, 0 when absent.
func parseIntParam(query url.Values, key string) (int, error) {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", errInvalidParam, key, v)
	}
	return n, nil
}

// parseExportFilter reads year, month and job for the export endpoints.
func parseExportFilter(query url.Values) (export.Filter, error) {
	year, err := parseIntParam(query, "year")
	if err != nil {
		return export.Filter{}, err
	}
	month, err := parseIntParam(query, "month")
	if err != nil {
		return export.Filter{}, err
	}
	f := export.Filter{Year: year, Month: month, JobID: parseJobFilter(query)}
	if err := f.Validate(); err != nil {
		return export.Filter{}, fmt.Errorf("%w: %w", errInvalidParam, err)
	}
	return f, nil
}
