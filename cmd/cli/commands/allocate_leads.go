package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/lead-allocator/internal/config"
	"github.com/jakechorley/lead-allocator/pkg/core/overlay"
	"github.com/jakechorley/lead-allocator/pkg/core/services"
	"github.com/jakechorley/lead-allocator/pkg/core/solver"
	"github.com/jakechorley/lead-allocator/pkg/metrics"
)

// AllocateLeadsCmd creates the allocateLeads command
func AllocateLeadsCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "allocateLeads",
		Short: "Assign the window's leads to managers and print the allocation matrix",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, _ := cmd.Flags().GetString("start")
			end, _ := cmd.Flags().GetString("end")
			overlayPath, _ := cmd.Flags().GetString("overlay")
			backend, _ := cmd.Flags().GetString("backend")
			timeout, _ := cmd.Flags().GetDuration("timeout")
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			publish, _ := cmd.Flags().GetBool("publish")
			email, _ := cmd.Flags().GetBool("email")
			pushURL, _ := cmd.Flags().GetString("push-url")
			detail, _ := cmd.Flags().GetBool("detail")

			windowStart, windowEnd, err := app.Window(start, end)
			if err != nil {
				return fmt.Errorf("failed to resolve window: %w", err)
			}

			o, err := loadOverlay(app, overlayPath)
			if err != nil {
				return err
			}

			if backend == "" {
				backend = app.Cfg.Solver.Backend
			}
			if timeout <= 0 {
				timeout = app.Cfg.SolverTimeout()
			}

			app.Logger.Debug("allocateLeads command",
				zap.String("backend", backend),
				zap.Duration("timeout", timeout),
				zap.Bool("dry_run", dryRun))

			result, err := services.AllocateLeads(app.Ctx, app.Cache, app.Database, metrics.Recorder{}, services.AllocateLeadsRequest{
				AppID:         app.Cfg.AppID,
				Start:         windowStart,
				End:           windowEnd,
				Overlay:       o,
				BaselineLevel: app.Cfg.BaselineLevel,
				Backend:       solver.Backend(backend),
				Timeout:       timeout,
				Persist:       app.Cfg.PersistRuns && !dryRun,
			}, app.Logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printAllocation(out, result, detail)

			if publish {
				sheets, err := app.Sheets()
				if err != nil {
					return err
				}
				published, err := services.PublishReport(result, sheets, app.Cfg.Report.SheetID, app.Logger)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "✓ Published to tab %q\n", published.SheetTitle)
			}

			if email {
				if len(app.Cfg.Report.EmailRecipients) == 0 {
					return fmt.Errorf("no report.emailRecipients configured")
				}
				gmail, err := app.Gmail()
				if err != nil {
					return err
				}
				printEmailResult(out, services.EmailReport(result, gmail, app.Cfg.Report.EmailRecipients, app.Logger))
			}

			if pushURL != "" {
				if err := metrics.Push(pushURL); err != nil {
					app.Logger.Warn("Failed to push metrics", zap.Error(err))
				}
			}

			return nil
		},
	}

	cmd.Flags().String("start", "", "Window start date (YYYY-MM-DD), overrides the configured window")
	cmd.Flags().String("end", "", "Window end date (YYYY-MM-DD), inclusive; defaults to --start")
	cmd.Flags().String("overlay", "", "Overlay YAML file, overrides the configured overlay")
	cmd.Flags().String("backend", "", "Solver backend: flow or simplex")
	cmd.Flags().Duration("timeout", 0, "Solver time budget (e.g. 30s)")
	cmd.Flags().Bool("dry-run", false, "Run without saving to database")
	cmd.Flags().Bool("publish", false, "Publish the report to the report spreadsheet")
	cmd.Flags().Bool("email", false, "Email the report summary to the configured recipients")
	cmd.Flags().String("push-url", "", "Pushgateway URL to push solve metrics to")
	cmd.Flags().Bool("detail", false, "List every assignment")

	return cmd
}

// loadOverlay reads the overlay from the flag path, the configured path, or the
// configured spreadsheet, in that order
func loadOverlay(app *AppContext, path string) (*overlay.Overlay, error) {
	if path == "" {
		path = app.Cfg.Overlay.Path
	}
	if path != "" {
		app.Logger.Debug("Loading overlay file", zap.String("path", path))
		return overlay.LoadFile(path)
	}

	if app.Cfg.Overlay.SheetID == "" {
		return nil, fmt.Errorf("no overlay configured: set overlay.path or overlay.sheetID, or pass --overlay")
	}

	sheets, err := app.Sheets()
	if err != nil {
		return nil, err
	}
	app.Logger.Debug("Loading overlay sheet", zap.String("sheet_id", app.Cfg.Overlay.SheetID))
	return sheets.LoadOverlay(app.Cfg.Overlay.SheetID, app.overlayTabs())
}

func formatDate(t time.Time) string {
	return t.Format(config.DateLayout)
}
