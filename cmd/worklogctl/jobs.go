package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"worklog/internal/core"
	"worklog/internal/services"
)

func newJobsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List and add jobs",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List jobs",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, svc *services.WorkLogService) error {
			printJobs(cmd, svc.Jobs())
			return nil
		}),
	}

	var (
		name     string
		rate     string
		currency string
		schedule string
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a job",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, svc *services.WorkLogService) error {
			hourly, err := core.ParseRate(rate)
			if err != nil {
				return err
			}
			days, err := parseSchedule(schedule)
			if err != nil {
				return err
			}
			cur, err := core.ParseCurrency(currency)
			if err != nil {
				return err
			}
			job, err := svc.AddJob(cmd.Context(), core.Job{
				Name:       name,
				HourlyRate: hourly,
				Currency:   cur,
				Schedule:   days,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added job %s (%s)\n", job.Name, job.ID)
			return nil
		}),
	}
	add.Flags().StringVar(&name, "name", "", "Job name")
	add.Flags().StringVar(&rate, "rate", "0", "Hourly rate, e.g. 25 or 12,50")
	add.Flags().StringVar(&currency, "currency", string(core.DefaultCurrency), "Currency code")
	add.Flags().StringVar(&schedule, "schedule", "", "Planned weekdays, e.g. mon,wed,fri")
	_ = add.MarkFlagRequired("name")

	cmd.AddCommand(list, add)
	return cmd
}

func printJobs(cmd *cobra.Command, jobs []core.Job) {
	if len(jobs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No jobs found.")
		return
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tRATE\tCURRENCY\tSCHEDULE")
	for _, j := range jobs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", j.ID, j.Name, core.FormatAmount(j.HourlyRate), j.Currency, formatSchedule(j.Schedule))
	}
	_ = tw.Flush()
}

// parseSchedule accepts comma separated weekday names (sun, monday, ...)
// or numbers 0-6 with Sunday as 0.
func parseSchedule(s string) ([]time.Weekday, error) {
	var days []time.Weekday
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		if n, err := strconv.Atoi(part); err == nil {
			if n < 0 || n > 6 {
				return nil, fmt.Errorf("invalid weekday %q", part)
			}
			days = append(days, time.Weekday(n))
			continue
		}
		found := false
		for d := time.Sunday; d <= time.Saturday; d++ {
			full := strings.ToLower(d.String())
			if part == full || part == full[:3] {
				days = append(days, d)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("invalid weekday %q", part)
		}
	}
	return days, nil
}

func formatSchedule(days []time.Weekday) string {
	if len(days) == 0 {
		return "-"
	}
	names := make([]string, len(days))
	for i, d := range days {
		names[i] = d.String()[:3]
	}
	return strings.Join(names, ",")
}
