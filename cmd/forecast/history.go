package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yourusername/arr-forecast/internal/models"
)

func newHistoryCmd() *cobra.Command {
	var (
		limit  int
		source string
		output string
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored forecast runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != outputTable && output != outputJSON {
				return fmt.Errorf("unknown output format %q", output)
			}
			db, repos, err := openRepositories(cmd.Context())
			if err != nil {
				return err
			}
			if db == nil {
				return fmt.Errorf("history requires database.enabled")
			}
			defer db.Close()

			svc := newForecastService(repos)
			var runs []*models.ForecastRun
			if source != "" {
				runs, err = svc.RecentForSource(cmd.Context(), source, limit)
			} else {
				runs, err = svc.Recent(cmd.Context(), limit)
			}
			if err != nil {
				return err
			}
			return printRuns(os.Stdout, runs, output)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of runs to list")
	cmd.Flags().StringVarP(&source, "source", "s", "", "Only list runs of this source")
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "Output format: table or json")
	return cmd
}
