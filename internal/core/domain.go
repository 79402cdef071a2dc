package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Currency is an ISO 4217 code from the closed set the work log supports.
type Currency string

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
	JPY Currency = "JPY"
	CNY Currency = "CNY"
	KRW Currency = "KRW"
	INR Currency = "INR"
	RUB Currency = "RUB"
	TRY Currency = "TRY"
	BRL Currency = "BRL"
	CAD Currency = "CAD"
	AUD Currency = "AUD"
	CHF Currency = "CHF"
	SEK Currency = "SEK"
	NOK Currency = "NOK"
	DKK Currency = "DKK"
	PLN Currency = "PLN"
	MXN Currency = "MXN"
	IDR Currency = "IDR"
	THB Currency = "THB"
	VND Currency = "VND"
	MYR Currency = "MYR"
	PHP Currency = "PHP"
	SGD Currency = "SGD"
	HKD Currency = "HKD"
	NZD Currency = "NZD"
	ZAR Currency = "ZAR"
	SAR Currency = "SAR"
	AED Currency = "AED"
	ARS Currency = "ARS"
	CLP Currency = "CLP"
	COP Currency = "COP"
	EGP Currency = "EGP"
	ILS Currency = "ILS"
	TWD Currency = "TWD"
)

// DefaultCurrency is assigned to jobs that were stored without one.
const DefaultCurrency = USD

var supportedCurrencies = []Currency{
	USD, EUR, GBP, JPY, CNY, KRW, INR, RUB, TRY, BRL,
	CAD, AUD, CHF, SEK, NOK, DKK, PLN, MXN, IDR, THB,
	VND, MYR, PHP, SGD, HKD, NZD, ZAR, SAR, AED, ARS,
	CLP, COP, EGP, ILS, TWD,
}

var (
	ErrInvalidJob          = errors.New("invalid job")
	ErrEmptyJobName        = errors.New("empty job name")
	ErrNegativeRate        = errors.New("hourly rate cannot be negative")
	ErrUnsupportedCurrency = errors.New("unsupported currency")
)

// Currencies returns the supported currency codes in display order.
func Currencies() []Currency {
	out := make([]Currency, len(supportedCurrencies))
	copy(out, supportedCurrencies)
	return out
}

// Valid reports whether c belongs to the supported set.
func (c Currency) Valid() bool {
	for _, s := range supportedCurrencies {
		if c == s {
			return true
		}
	}
	return false
}

// ParseCurrency normalizes case and checks membership.
func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedCurrency, s)
	}
	return c, nil
}

// Job is a named pay context. Schedule lists planned weekdays and never
// influences totals.
type Job struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	HourlyRate float64        `json:"hourlyRate"`
	Currency   Currency       `json:"currency"`
	Schedule   []time.Weekday `json:"schedule"`
}

// Validate checks a job at the input boundary. The store itself accepts any job.
func (j Job) Validate() error {
	var errs []error
	if strings.TrimSpace(j.Name) == "" {
		errs = append(errs, ErrEmptyJobName)
	}
	if j.HourlyRate < 0 {
		errs = append(errs, ErrNegativeRate)
	}
	if !j.Currency.Valid() {
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnsupportedCurrency, j.Currency))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidJob, errors.Join(errs...))
	}
	return nil
}

// WorksOn reports whether the weekday is part of the job's planned schedule.
func (j Job) WorksOn(d time.Weekday) bool {
	for _, s := range j.Schedule {
		if s == d {
			return true
		}
	}
	return false
}

// NormalizeJob fills defaults for jobs loaded from older records: a missing
// currency becomes USD and the schedule is deduplicated, sorted and clamped
// to Sunday..Saturday.
func NormalizeJob(j Job) Job {
	j.Name = strings.TrimSpace(j.Name)
	if j.Currency == "" {
		j.Currency = DefaultCurrency
	}
	seen := make(map[time.Weekday]bool, len(j.Schedule))
	schedule := make([]time.Weekday, 0, len(j.Schedule))
	for _, d := range j.Schedule {
		if d < time.Sunday || d > time.Saturday || seen[d] {
			continue
		}
		seen[d] = true
		schedule = append(schedule, d)
	}
	sort.Slice(schedule, func(a, b int) bool { return schedule[a] < schedule[b] })
	j.Schedule = schedule
	return j
}

// DefaultJobs seeds an empty work log.
func DefaultJobs() []Job {
	return []Job{
		{
			ID:         "job-1",
			Name:       "Job 1",
			HourlyRate: 25,
			Currency:   USD,
			Schedule:   []time.Weekday{time.Monday, time.Wednesday, time.Friday},
		},
		{
			ID:         "job-2",
			Name:       "Job 2",
			HourlyRate: 30,
			Currency:   USD,
			Schedule:   []time.Weekday{time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
		},
	}
}

// ChangeKind names the store mutation a Change describes.
type ChangeKind string

const (
	JobUpserted   ChangeKind = "job_upserted"
	JobDeleted    ChangeKind = "job_deleted"
	EntryUpserted ChangeKind = "entry_upserted"
	EntryDeleted  ChangeKind = "entry_deleted"
)

// Change is emitted after a successful mutation of the work log. Job is set
// for job changes, Entry for entry changes. CascadedEntryIDs lists the
// entries removed together with a deleted job.
type Change struct {
	Kind             ChangeKind
	Job              *Job
	Entry            *WorkEntry
	CascadedEntryIDs []string
}

// Snapshot is the complete state of a work log.
type Snapshot struct {
	Jobs    []Job       `json:"jobs"`
	Entries []WorkEntry `json:"entries"`
}
