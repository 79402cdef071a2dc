package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"worklog/internal/backend"
	"worklog/internal/cli"
	"worklog/internal/config"
	"worklog/internal/log"
	"worklog/internal/services"
)

// app carries what every subcommand needs. The service is opened lazily
// so --help never touches the database.
type app struct {
	cfg     *config.Config
	dbPath  string
	verbose bool

	res *backend.BackendResult
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	a := &app{cfg: cfg}

	root := &cobra.Command{
		Use:   "worklogctl",
		Short: "Work log command line client",
		Long: `worklogctl reads and edits the work log stored in the SQLite database.
Changes are published to the broker when AMQP_URL is set, so the sheet
export stays in sync.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&a.dbPath, "db", cfg.SQLiteDBPath, "SQLite database path")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log at debug level")

	root.AddCommand(newJobsCmd(a))
	root.AddCommand(newEntriesCmd(a))
	root.AddCommand(newTotalsCmd(a))
	root.AddCommand(newExportCmd(a))
	return root
}

// service opens the SQLite backed work log on first use.
func (a *app) service(ctx context.Context, stderr io.Writer) (*services.WorkLogService, error) {
	if a.res != nil {
		return a.res.Service, nil
	}

	level := "error"
	if a.verbose {
		level = "debug"
	}
	logger := cli.SetupLogger(level, a.cfg.LogFormat, stderr).WithComponent(log.ComponentCLI)

	bcfg := backend.Config{
		Type:         backend.SQLiteBackend,
		SQLiteDBPath: a.dbPath,
		AMQPURL:      a.cfg.AMQPURL,
		AMQPExchange: a.cfg.AMQPExchange,
		AMQPQueue:    a.cfg.AMQPQueue,
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("open work log: %w", err)
	}
	a.res = res
	return res.Service, nil
}

func (a *app) close() error {
	if a.res == nil {
		return nil
	}
	return a.res.Cleanup()
}

// run wraps a subcommand body with service setup and teardown.
func (a *app) run(fn func(cmd *cobra.Command, svc *services.WorkLogService) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) (err error) {
		svc, err := a.service(cmd.Context(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer func() {
			if cerr := a.close(); cerr != nil && err == nil {
				err = cerr
			}
			a.res = nil
		}()
		return fn(cmd, svc)
	}
}

func main() {
	cli.LoadEnvFile()
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := newRootCmd(cfg).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
