package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/lead-allocator/pkg/core/services"
)

// ViewSnapshotCmd creates the viewSnapshot command
func ViewSnapshotCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "viewSnapshot",
		Short: "Show the managers, categories and leads of the snapshot window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, _ := cmd.Flags().GetString("start")
			end, _ := cmd.Flags().GetString("end")
			detail, _ := cmd.Flags().GetBool("detail")

			windowStart, windowEnd, err := app.Window(start, end)
			if err != nil {
				return err
			}

			app.Logger.Debug("viewSnapshot command",
				zap.String("start", formatDate(windowStart)),
				zap.String("end", formatDate(windowEnd)))

			overview, err := services.ViewSnapshot(app.Ctx, app.Cache, app.Cfg.AppID, windowStart, windowEnd, app.Logger)
			if err != nil {
				return err
			}

			printOverview(cmd.OutOrStdout(), overview, detail)
			return nil
		},
	}

	cmd.Flags().String("start", "", "Window start date (YYYY-MM-DD)")
	cmd.Flags().String("end", "", "Window end date (YYYY-MM-DD), inclusive")
	cmd.Flags().Bool("detail", false, "List managers and leads")

	return cmd
}
