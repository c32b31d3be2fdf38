package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/turtacn/cnsipo-attrs/internal/application/auxfill"
	"github.com/turtacn/cnsipo-attrs/internal/config"
	"github.com/turtacn/cnsipo-attrs/internal/infrastructure/database/postgres"
	"github.com/turtacn/cnsipo-attrs/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/cnsipo-attrs/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/cnsipo-attrs/pkg/errors"
)

// FillOptions holds the flags of the fill command. Database and batch flags
// override the configuration only when given.
type FillOptions struct {
	Database    string
	User        string
	Password    string
	Host        string
	Port        int
	PatentTable string
	AuxTable    string
	BatchSize   int
	Concurrency int
	LocFile     string
	DryRun      bool
	CreateTable bool
	MetricsFile string
}

// NewFillCmd creates the fill command.
func NewFillCmd() *cobra.Command {
	opts := &FillOptions{}

	cmd := &cobra.Command{
		Use:   "fill address|applicant|int_cl YEAR [YEAR...]",
		Short: "Fill the auxiliary patent table for the given application years",
		Long: "Classify one field of every patent filed in the given years and write the\n" +
			"result to the auxiliary table: country and state for address, the\n" +
			"organisation bitmask for applicant, and the technology flags for int_cl.\n" +
			"The address fill inserts the rows the other fields update, so run it first.",
		Example: "  cnsipo fill address 1998 1999\n" +
			"  cnsipo fill applicant -b 5000 -H db.internal 1998\n" +
			"  cnsipo fill int_cl -n 2001",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			return runFill(cmd, cliCtx, opts, args)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.Database, "database", "d", "", "database name")
	f.StringVarP(&opts.User, "user", "u", "", "database username")
	f.StringVarP(&opts.Password, "password", "p", "", "database password")
	f.StringVarP(&opts.Host, "host", "H", "", "database host")
	f.IntVar(&opts.Port, "port", 0, "database port")
	f.StringVarP(&opts.PatentTable, "patent-table", "t", "", "patent table")
	f.StringVarP(&opts.AuxTable, "patent-aux-table", "a", "", "patent auxiliary table")
	f.IntVarP(&opts.BatchSize, "batch-size", "b", 0, "size of batch insertion")
	f.IntVarP(&opts.Concurrency, "concurrency", "j", 0, "years processed in parallel")
	f.StringVarP(&opts.LocFile, "loc-file", "l", "", "country/state/city list (default: built-in)")
	f.BoolVarP(&opts.DryRun, "dry-run", "n", false, "show what would have been done")
	f.BoolVar(&opts.CreateTable, "create-table", false, "create the auxiliary table if it does not exist")
	f.StringVar(&opts.MetricsFile, "metrics-file", "", "write run metrics to this file in Prometheus text format")

	return cmd
}

func runFill(cmd *cobra.Command, cliCtx *CLIContext, opts *FillOptions, args []string) error {
	field, err := auxfill.ParseField(args[0])
	if err != nil {
		return err
	}
	years, err := auxfill.ParseYears(args[1:])
	if err != nil {
		return err
	}

	cfg := *cliCtx.Config
	applyFillFlags(cmd.Flags(), &cfg, opts)
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, errors.CodeConfigInvalid, "invalid configuration")
	}
	logger := cliCtx.Logger

	parser, err := cliCtx.NewParser(opts.LocFile)
	if err != nil {
		return err
	}

	var (
		collector prometheus.MetricsCollector
		metrics   *prometheus.AppMetrics
	)
	if opts.MetricsFile != "" || cfg.Metrics.Enabled {
		collector, err = prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace: cfg.Metrics.Namespace,
			Subsystem: cfg.Metrics.Subsystem,
		}, logger)
		if err != nil {
			return err
		}
		metrics = prometheus.NewAppMetrics(collector)
		prometheus.RecordRefDataSizes(metrics, parser.Tables().Stats().Map())
	}

	ctx, cancel := cliCtx.commandContext(cmd)
	defer cancel()

	var store *postgres.PatentStore
	if cfg.Batch.DryRun {
		store, err = postgres.NewPatentStore(nil, cfg.Database.PatentTable, cfg.Database.AuxTable, logger)
		if err != nil {
			return err
		}
	} else {
		pool, err := postgres.NewConnectionPool(ctx, cfg.Database, logger)
		if err != nil {
			return err
		}
		defer postgres.Close(pool)

		store, err = postgres.NewPatentStore(pool, cfg.Database.PatentTable, cfg.Database.AuxTable, logger)
		if err != nil {
			return err
		}
		if opts.CreateTable {
			if err := postgres.EnsureAuxTable(ctx, pool, store.AuxTable()); err != nil {
				return err
			}
		}
	}

	svc, err := auxfill.NewService(store, parser, auxfill.Options{
		BatchSize:   cfg.Batch.Size,
		Concurrency: cfg.Batch.Concurrency,
		DryRun:      cfg.Batch.DryRun,
		DryRunOut:   cmd.OutOrStdout(),
	}, metrics, logger)
	if err != nil {
		return err
	}

	summary, runErr := svc.Run(ctx, field, years)
	if collector != nil && opts.MetricsFile != "" {
		if err := prometheus.WriteTextfile(collector, opts.MetricsFile); err != nil {
			logger.Warn("failed to write metrics file", logging.String("path", opts.MetricsFile), logging.Err(err))
		}
	}
	if runErr != nil {
		return runErr
	}
	if summary.DryRun {
		return nil
	}
	return PrintResult(cmd, fillReport{summary})
}

// applyFillFlags copies the flags that were set onto cfg.
func applyFillFlags(fs *pflag.FlagSet, cfg *config.Config, opts *FillOptions) {
	set := func(name string, apply func()) {
		if fs.Changed(name) {
			apply()
		}
	}
	set("database", func() { cfg.Database.DBName = opts.Database })
	set("user", func() { cfg.Database.User = opts.User })
	set("password", func() { cfg.Database.Password = opts.Password })
	set("host", func() { cfg.Database.Host = opts.Host })
	set("port", func() { cfg.Database.Port = opts.Port })
	set("patent-table", func() { cfg.Database.PatentTable = opts.PatentTable })
	set("patent-aux-table", func() { cfg.Database.AuxTable = opts.AuxTable })
	set("batch-size", func() { cfg.Batch.Size = opts.BatchSize })
	set("concurrency", func() { cfg.Batch.Concurrency = opts.Concurrency })
	set("dry-run", func() { cfg.Batch.DryRun = opts.DryRun })
}

// fillReport renders a RunSummary for the output formats.
type fillReport struct {
	*auxfill.RunSummary
}

func (r fillReport) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %d records in %d years (%s, run %s)\n",
		r.Field, r.Records(), len(r.Years), r.Duration.Round(time.Millisecond), r.RunID)
	for _, y := range r.Years {
		fmt.Fprintf(&sb, "  %d: %d records, %d skipped, %d batches, %s\n",
			y.Year, y.Records, y.Skipped, y.Batches, y.Duration.Round(time.Millisecond))
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func (r fillReport) TableHeaders() []string {
	return []string{"YEAR", "RECORDS", "SKIPPED", "BATCHES", "DURATION"}
}

func (r fillReport) TableRows() [][]string {
	rows := make([][]string, 0, len(r.Years))
	for _, y := range r.Years {
		rows = append(rows, []string{
			strconv.Itoa(y.Year),
			strconv.Itoa(y.Records),
			strconv.Itoa(y.Skipped),
			strconv.Itoa(y.Batches),
			y.Duration.Round(time.Millisecond).String(),
		})
	}
	return rows
}

//Personal.AI order the ending
