package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yourusername/arr-forecast/internal/extract"
	"github.com/yourusername/arr-forecast/internal/forecast"
	"github.com/yourusername/arr-forecast/internal/models"
	"github.com/yourusername/arr-forecast/internal/service"
)

func newBacktestCmd() *cobra.Command {
	var (
		file, source, algorithm  string
		targetColumn, timeColumn string
		output                   string
		btCfg                    forecast.BacktestConfig
	)
	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "Score algorithms on held-out periods with a rolling origin",
		Long: `Refits each algorithm on growing prefixes of the history and measures how well it
predicted the periods that followed. Without --algorithm every algorithm is compared.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != outputTable && output != outputJSON {
				return fmt.Errorf("unknown output format %q", output)
			}
			forecastCfg, err := service.ConfigFromSettings(*cfg, service.Overrides{
				Algorithm:    algorithm,
				TargetColumn: targetColumn,
				TimeColumn:   timeColumn,
			})
			if err != nil {
				return err
			}
			if btCfg.Horizon == 0 {
				btCfg.Horizon = forecastCfg.ForecastPeriods
			}

			src, closeSource, err := resolveSource(file, source)
			if err != nil {
				return err
			}
			defer closeSource()

			table, err := src.FetchTable(cmd.Context())
			if err != nil {
				return err
			}
			historical, err := extract.Extract(table, forecastCfg)
			if err != nil {
				return err
			}

			var results []*forecast.BacktestResult
			if algorithm != "" {
				result, err := forecast.Backtest(historical, forecastCfg.Algorithm, btCfg)
				if err != nil {
					return err
				}
				results = []*forecast.BacktestResult{result}
			} else if results, err = forecast.CompareAlgorithms(historical, btCfg); err != nil {
				return err
			}
			return printBacktest(os.Stdout, results, output)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&file, "file", "f", "", "Local CSV file to backtest")
	flags.StringVarP(&source, "source", "s", "", "Configured source name to backtest")
	flags.StringVarP(&algorithm, "algorithm", "a", "", "Backtest a single algorithm instead of comparing all")
	flags.StringVar(&targetColumn, "target-column", "", "Header hint for the value column")
	flags.StringVar(&timeColumn, "time-column", "", "Header hint for the period column")
	flags.IntVar(&btCfg.Horizon, "horizon", 0, "Periods predicted from each origin (default forecast.forecast_periods)")
	flags.IntVar(&btCfg.MinTrain, "min-train", forecast.MinHistoricalPoints, "Size of the first training window")
	flags.IntVar(&btCfg.Step, "step", 1, "Periods the origin advances between windows")
	flags.StringVarP(&output, "output", "o", outputTable, "Output format: table or json")
	cmd.MarkFlagsMutuallyExclusive("file", "source")
	cmd.MarkFlagsOneRequired("file", "source")

	return cmd
}

func printBacktest(w io.Writer, results []*forecast.BacktestResult, format string) error {
	if format == outputJSON {
		return writeJSON(w, results)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ALGORITHM\tWINDOWS\tHOLDOUT MAPE\tMAE\tCONSISTENCY\tOVERFIT")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%d\t%.2f%%\t%.2f\t%.0f%%\t%.2f\n",
			r.Algorithm, len(r.Windows), r.MAPE, r.MAE, r.ConsistencyScore*100, r.OverfitScore)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(results) > 1 {
		fmt.Fprintf(w, "\nBest on held-out periods: %s\n", bestAlgorithm(results))
	}
	return nil
}

func bestAlgorithm(results []*forecast.BacktestResult) models.Algorithm {
	if len(results) == 0 {
		return ""
	}
	return results[0].Algorithm
}
