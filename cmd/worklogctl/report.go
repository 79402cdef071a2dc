package main

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"worklog/internal/core"
	"worklog/internal/export"
	"worklog/internal/services"
)

func newTotalsCmd(a *app) *cobra.Command {
	var (
		period string
		date   string
		job    string
	)
	cmd := &cobra.Command{
		Use:   "totals",
		Short: "Show hours and earnings for a day, week, month or year",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, svc *services.WorkLogService) error {
			p, err := core.ParsePeriod(period)
			if err != nil {
				return err
			}
			ref, err := dateOrToday(date)
			if err != nil {
				return err
			}
			printTotals(cmd, svc, p, core.BoundsFor(p, ref), svc.CalculateTotals(p, ref, job))
			return nil
		}),
	}
	cmd.Flags().StringVar(&period, "period", string(core.PeriodWeek), "day, week, month or year")
	cmd.Flags().StringVar(&date, "date", "", "Any day inside the period (default today)")
	cmd.Flags().StringVar(&job, "job", core.AllJobs, "Job id or all")
	return cmd
}

func printTotals(cmd *cobra.Command, svc *services.WorkLogService, p core.Period, b core.Bounds, t core.CalculatedTotals) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s .. %s\n", p, b.Start, b.End)
	fmt.Fprintf(out, "Hours: %s  Days worked: %d\n", core.FormatAmount(t.TotalHours), t.TotalDays)

	if len(t.HoursByJob) > 0 {
		ids := make([]string, 0, len(t.HoursByJob))
		for id := range t.HoursByJob {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "JOB\tHOURS\tEARNINGS")
		for _, id := range ids {
			name := id
			if j, ok := svc.JobByID(id); ok {
				name = j.Name
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", name, core.FormatAmount(t.HoursByJob[id]), core.FormatAmount(t.EarningsByJob[id]))
		}
		_ = tw.Flush()
	}

	currencies := make([]string, 0, len(t.EarningsByCurrency))
	for c := range t.EarningsByCurrency {
		currencies = append(currencies, string(c))
	}
	sort.Strings(currencies)
	for _, c := range currencies {
		fmt.Fprintf(out, "Earnings %s: %s\n", c, core.FormatAmount(t.EarningsByCurrency[core.Currency(c)]))
	}
}

func newExportCmd(a *app) *cobra.Command {
	var (
		year   int
		month  int
		job    string
		format string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write entries as CSV or JSON to stdout",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, svc *services.WorkLogService) error {
			f := export.Filter{Year: year, Month: month, JobID: job}
			if err := f.Validate(); err != nil {
				return err
			}
			rows := export.BuildRows(svc.Snapshot(), f)
			switch format {
			case "csv":
				return export.WriteCSV(cmd.OutOrStdout(), rows)
			case "json":
				return export.WriteJSON(cmd.OutOrStdout(), rows)
			default:
				return fmt.Errorf("unknown format %q: use csv or json", format)
			}
		}),
	}
	cmd.Flags().IntVar(&year, "year", 0, "Only this year")
	cmd.Flags().IntVar(&month, "month", 0, "Only this month (1-12)")
	cmd.Flags().StringVar(&job, "job", core.AllJobs, "Job id or all")
	cmd.Flags().StringVar(&format, "format", "csv", "csv or json")
	return cmd
}
