package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/yourusername/arr-forecast/internal/models"
	"github.com/yourusername/arr-forecast/internal/service"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printOutcome(w io.Writer, outcome *service.Outcome, format string) error {
	if format == outputJSON {
		body := struct {
			RunID string `json:"runId,omitempty"`
			*models.ForecastResult
		}{ForecastResult: outcome.Result}
		if outcome.Run != nil {
			body.RunID = outcome.Run.ID.String()
		}
		return writeJSON(w, body)
	}

	result := outcome.Result
	if outcome.Run != nil {
		fmt.Fprintf(w, "Run:        %s\n", outcome.Run.ID)
	}
	algorithm := string(result.Algorithm)
	if result.FellBack() {
		algorithm = fmt.Sprintf("%s (requested %s)", result.Algorithm, result.RequestedAlgorithm)
	}
	fmt.Fprintf(w, "Algorithm:  %s\n", algorithm)
	fmt.Fprintf(w, "Confidence: %.1f\n", result.Confidence)
	fmt.Fprintf(w, "R²: %.4f  MAPE: %.2f%%  Trend: %.2f  Seasonality: %.2f\n\n",
		result.Metrics.R2, result.Metrics.MAPE, result.Metrics.Trend, result.Metrics.Seasonality)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	if mc := result.MonteCarlo; mc != nil {
		fmt.Fprintln(tw, "Period\tForecast\tP10\tP50\tP90\t")
		for i, p := range result.Predictions {
			fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\t%.2f\t\n", p.Period, p.Value,
				bandValue(mc.Percentiles.P10, i), bandValue(mc.Percentiles.P50, i), bandValue(mc.Percentiles.P90, i))
		}
	} else {
		fmt.Fprintln(tw, "Period\tForecast\t")
		for _, p := range result.Predictions {
			fmt.Fprintf(tw, "%s\t%.2f\t\n", p.Period, p.Value)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if mc := result.MonteCarlo; mc != nil {
		r := mc.RiskMetrics
		fmt.Fprintf(w, "\nMonte Carlo (%d paths): VaR95 %.2f%%  ES %.2f%%  Max drawdown %.2f%%  P(loss) %.1f%%\n",
			mc.Simulations, r.ValueAtRisk95*100, r.ExpectedShortfall*100, r.MaxDrawdown*100, r.ProbabilityOfLoss*100)
	}

	fmt.Fprintln(w)
	for _, insight := range result.Insights {
		fmt.Fprintf(w, "- %s\n", insight)
	}
	for _, warning := range result.Warnings {
		fmt.Fprintf(w, "! %s\n", warning)
	}
	return nil
}

func bandValue(band []models.TimePoint, i int) float64 {
	if i < len(band) {
		return band[i].Value
	}
	return 0
}

func printRuns(w io.Writer, runs []*models.ForecastRun, format string) error {
	if format == outputJSON {
		return writeJSON(w, runs)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tSOURCE\tALGORITHM\tPERIODS\tCONFIDENCE\tMONTE CARLO")
	for _, run := range runs {
		algorithm := string(run.Algorithm)
		if run.Algorithm != run.RequestedAlgorithm {
			algorithm += "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%.1f\t%t\n",
			run.ID, run.CreatedAt.Format("2006-01-02 15:04"), run.Source, algorithm,
			run.ForecastPeriods, run.Confidence, run.MonteCarlo)
	}
	return tw.Flush()
}
