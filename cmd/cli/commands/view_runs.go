package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ViewRunsCmd creates the viewRuns command
func ViewRunsCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "viewRuns",
		Short: "List recorded allocation runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")

			runs, err := app.Database.GetAllocationRuns(app.Ctx, app.Cfg.AppID)
			if err != nil {
				return fmt.Errorf("failed to fetch allocation runs: %w", err)
			}

			if limit > 0 && len(runs) > limit {
				runs = runs[:limit]
			}
			printRuns(cmd.OutOrStdout(), runs)
			return nil
		},
	}

	cmd.Flags().Int("limit", 10, "Maximum number of runs to show (0 for all)")

	return cmd
}
