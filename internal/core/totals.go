package core

// AllJobs is the job filter matching every job.
const AllJobs = "all"

// CalculatedTotals is the aggregate of a set of entries over a window.
type CalculatedTotals struct {
	TotalHours         float64              `json:"totalHours"`
	TotalDays          int                  `json:"totalDays"`
	HoursByJob         map[string]float64   `json:"hoursByJob"`
	EarningsByJob      map[string]float64   `json:"earningsByJob"`
	EarningsByCurrency map[Currency]float64 `json:"earningsByCurrency"`
}

func newTotals() CalculatedTotals {
	return CalculatedTotals{
		HoursByJob:         map[string]float64{},
		EarningsByJob:      map[string]float64{},
		EarningsByCurrency: map[Currency]float64{},
	}
}

// CalculateTotals folds the entries that fall inside the period around ref
// and match filter (AllJobs or a job id) into totals. Earnings are kept per
// currency and never converted. A filter naming no known job yields zeroes.
func CalculateTotals(jobs []Job, entries []WorkEntry, period Period, ref Date, filter string) CalculatedTotals {
	bounds := BoundsFor(period, ref)
	totals := newTotals()

	if filter == "" {
		filter = AllJobs
	}
	if filter != AllJobs && !hasJob(jobs, filter) {
		return totals
	}
	matchesFilter := func(jobID string) bool {
		return filter == AllJobs || jobID == filter
	}

	workedDays := make(map[string]struct{})
	for _, e := range entries {
		if !matchesFilter(e.JobID) || !bounds.Contains(e.Date) {
			continue
		}
		hours := HoursFor(e)
		totals.TotalHours += hours
		totals.HoursByJob[e.JobID] += hours
		if hours > 0 {
			workedDays[e.Date] = struct{}{}
		}
	}
	totals.TotalDays = len(workedDays)

	for _, job := range jobs {
		if !matchesFilter(job.ID) {
			continue
		}
		hours := totals.HoursByJob[job.ID]
		if hours <= 0 {
			continue
		}
		earnings := hours * job.HourlyRate
		totals.EarningsByJob[job.ID] = earnings
		totals.EarningsByCurrency[job.Currency] += earnings
	}

	return totals
}

func hasJob(jobs []Job, id string) bool {
	for _, j := range jobs {
		if j.ID == id {
			return true
		}
	}
	return false
}
