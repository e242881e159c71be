package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yourusername/arr-forecast/internal/datasource"
	"github.com/yourusername/arr-forecast/internal/service"
)

type runOptions struct {
	file         string
	source       string
	algorithm    string
	periods      int
	targetColumn string
	timeColumn   string
	monteCarlo   bool
	simulations  int
	seed         int64
	persist      bool
	output       string
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Forecast a CSV file or a configured source",
		Example: `  forecast run --file data/arr.csv --algorithm seasonal --periods 4
  forecast run --source finance_sheet --monte-carlo --simulations 5000 --output json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runForecast(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.file, "file", "f", "", "Local CSV file to forecast")
	flags.StringVarP(&opts.source, "source", "s", "", "Configured source name to forecast")
	flags.StringVarP(&opts.algorithm, "algorithm", "a", "", "Algorithm: linear, exponential, seasonal or moving_average")
	flags.IntVarP(&opts.periods, "periods", "p", 0, "Number of periods to forecast")
	flags.StringVar(&opts.targetColumn, "target-column", "", "Header hint for the value column")
	flags.StringVar(&opts.timeColumn, "time-column", "", "Header hint for the period column")
	flags.BoolVar(&opts.monteCarlo, "monte-carlo", false, "Run the Monte Carlo risk simulation")
	flags.IntVar(&opts.simulations, "simulations", 0, "Number of simulated paths")
	flags.Int64Var(&opts.seed, "seed", 0, "Random seed for reproducible simulations (0 = time seeded)")
	flags.BoolVar(&opts.persist, "persist", false, "Store the run in the forecast history")
	flags.StringVarP(&opts.output, "output", "o", outputTable, "Output format: table or json")
	cmd.MarkFlagsMutuallyExclusive("file", "source")
	cmd.MarkFlagsOneRequired("file", "source")

	return cmd
}

func runForecast(cmd *cobra.Command, opts *runOptions) error {
	if opts.output != outputTable && opts.output != outputJSON {
		return fmt.Errorf("unknown output format %q", opts.output)
	}
	ctx := cmd.Context()

	overrides := service.Overrides{
		Algorithm:       opts.algorithm,
		ForecastPeriods: opts.periods,
		TargetColumn:    opts.targetColumn,
		TimeColumn:      opts.timeColumn,
		Simulations:     opts.simulations,
		Seed:            opts.seed,
	}
	if cmd.Flags().Changed("monte-carlo") {
		overrides.MonteCarlo = &opts.monteCarlo
	}
	forecastCfg, err := service.ConfigFromSettings(*cfg, overrides)
	if err != nil {
		return err
	}

	src, closeSource, err := resolveSource(opts.file, opts.source)
	if err != nil {
		return err
	}
	defer closeSource()

	db, repos, err := openRepositories(ctx)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}
	if opts.persist && repos == nil {
		return fmt.Errorf("--persist requires database.enabled")
	}

	outcome, err := newForecastService(repos).ForecastFromSource(ctx, src, forecastCfg, opts.persist)
	if err != nil {
		return err
	}
	return printOutcome(os.Stdout, outcome, opts.output)
}

// resolveSource opens a local CSV file or a configured source by name
func resolveSource(file, source string) (datasource.TableSource, func(), error) {
	if file != "" {
		return datasource.NewFileSource(file, file), func() {}, nil
	}

	sourceCfg, ok := cfg.Source(source)
	if !ok {
		return nil, nil, fmt.Errorf("source %q is not configured", source)
	}
	factory, client := newSourceFactory()
	src, err := factory.NewSource(sourceCfg)
	if err != nil {
		client.Close()
		return nil, nil, err
	}
	return src, func() { client.Close() }, nil
}
