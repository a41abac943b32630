package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jakechorley/lead-allocator/pkg/core/overlay"
	"github.com/jakechorley/lead-allocator/pkg/core/services"
)

// SampleOverlayCmd creates the sampleOverlay command
func SampleOverlayCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sampleOverlay",
		Short: "Generate an overlay pre-filled from the manager and category rosters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outPath, _ := cmd.Flags().GetString("out")
			toSheet, _ := cmd.Flags().GetBool("sheet")

			o, err := services.SampleOverlay(app.Ctx, app.Database, app.Cfg.AppID, app.Logger)
			if err != nil {
				return err
			}

			if toSheet {
				if app.Cfg.Overlay.SheetID == "" {
					return fmt.Errorf("no overlay.sheetID configured")
				}
				sheets, err := app.Sheets()
				if err != nil {
					return err
				}
				if err := sheets.WriteOverlay(app.Cfg.Overlay.SheetID, app.overlayTabs(), o); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %d managers and %d categories to sheet %s\n",
					len(o.Managers), len(o.Categories), app.Cfg.Overlay.SheetID)
				return nil
			}

			data, err := overlay.Marshal(o)
			if err != nil {
				return err
			}

			if outPath == "" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(outPath, data, 0644); err != nil {
				return fmt.Errorf("failed to write overlay file: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote sample overlay to %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().String("out", "", "Write the overlay YAML to this file instead of stdout")
	cmd.Flags().Bool("sheet", false, "Write the overlay to the configured overlay spreadsheet")

	return cmd
}
