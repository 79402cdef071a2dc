package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"worklog/internal/core"
	"worklog/internal/services"
)

// kindFlags are the mutually exclusive ways to describe an entry.
type kindFlags struct {
	start, end   string
	breakMinutes float64
	hours        float64
	status       string
}

func (f kindFlags) kind(hoursSet bool) (core.EntryKind, error) {
	set := 0
	if f.start != "" || f.end != "" {
		set++
	}
	if hoursSet {
		set++
	}
	if f.status != "" {
		set++
	}
	if set != 1 {
		return nil, errors.New("give exactly one of --start/--end, --hours or --status")
	}

	switch {
	case f.start != "" || f.end != "":
		if f.start == "" || f.end == "" {
			return nil, errors.New("--start and --end go together")
		}
		return core.TimeRange{Start: f.start, End: f.end, BreakMinutes: f.breakMinutes}, nil
	case hoursSet:
		return core.FixedDuration{Hours: f.hours}, nil
	default:
		return core.DayStatus{Status: f.status}, nil
	}
}

func newEntriesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entries",
		Short: "List and add work entries",
	}

	var listDate string
	list := &cobra.Command{
		Use:   "list",
		Short: "List the entries of one day",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, svc *services.WorkLogService) error {
			d, err := dateOrToday(listDate)
			if err != nil {
				return err
			}
			printEntries(cmd, svc, svc.EntriesOnDate(d.String()))
			return nil
		}),
	}
	list.Flags().StringVar(&listDate, "date", "", "Day as YYYY-MM-DD (default today)")

	var (
		jobID string
		date  string
		notes string
		kf    kindFlags
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Add an entry as a time range, a duration or a day status",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, svc *services.WorkLogService) error {
			kind, err := kf.kind(cmd.Flags().Changed("hours"))
			if err != nil {
				return err
			}
			d, err := dateOrToday(date)
			if err != nil {
				return err
			}
			e, err := svc.AddEntry(cmd.Context(), core.WorkEntry{
				JobID: jobID,
				Date:  d.String(),
				Kind:  kind,
				Notes: notes,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added entry %s: %s on %s\n", e.ID, core.FormatAmount(core.HoursFor(e))+"h", e.Date)
			return nil
		}),
	}
	add.Flags().StringVar(&jobID, "job", "", "Job id")
	add.Flags().StringVar(&date, "date", "", "Day as YYYY-MM-DD (default today)")
	add.Flags().StringVar(&notes, "notes", "", "Free text notes")
	add.Flags().StringVar(&kf.start, "start", "", "Start time HH:mm")
	add.Flags().StringVar(&kf.end, "end", "", "End time HH:mm, before start for overnight shifts")
	add.Flags().Float64Var(&kf.breakMinutes, "break", 0, "Unpaid break in minutes")
	add.Flags().Float64Var(&kf.hours, "hours", 0, "Worked hours without clock times")
	add.Flags().StringVar(&kf.status, "status", "", "Day status: worked, off, holiday, sick or custom")
	_ = add.MarkFlagRequired("job")

	cmd.AddCommand(list, add)
	return cmd
}

func dateOrToday(s string) (core.Date, error) {
	if s == "" {
		return core.Today(), nil
	}
	return core.ParseDate(s)
}

func printEntries(cmd *cobra.Command, svc *services.WorkLogService, entries []core.WorkEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No entries found.")
		return
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tJOB\tKIND\tHOURS\tNOTES")
	for _, e := range entries {
		job := e.JobID
		if j, ok := svc.JobByID(e.JobID); ok {
			job = j.Name
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", e.ID, e.Date, job, describeKind(e.Kind), core.FormatAmount(core.HoursFor(e)), e.Notes)
	}
	_ = tw.Flush()
}

func describeKind(k core.EntryKind) string {
	switch k := k.(type) {
	case core.TimeRange:
		if k.BreakMinutes > 0 {
			return fmt.Sprintf("%s-%s (-%sm)", k.Start, k.End, core.FormatAmount(k.BreakMinutes))
		}
		return k.Start + "-" + k.End
	case core.FixedDuration:
		return "duration"
	case core.DayStatus:
		return k.Status
	default:
		return "?"
	}
}
