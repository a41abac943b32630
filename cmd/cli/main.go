package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/lead-allocator/cmd/cli/commands"
	"github.com/jakechorley/lead-allocator/internal/config"
	"github.com/jakechorley/lead-allocator/pkg/core/services"
	"github.com/jakechorley/lead-allocator/pkg/core/session"
	"github.com/jakechorley/lead-allocator/pkg/postgres"
	"github.com/jakechorley/lead-allocator/pkg/utils/logging"
)

var (
	env string
	app = &commands.AppContext{}
	pg  *postgres.DB
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cli",
		Short: "Lead Allocator CLI - Assign leads to managers",
		Long:  `A CLI tool for inspecting lead snapshots, preparing configuration overlays and solving lead-to-manager allocations.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[commands.SkipInitAnnotation] == "true" {
				return nil
			}
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if pg != nil {
				pg.Close()
			}
			if app.Logger != nil {
				app.Logger.Sync()
			}
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.MarkPersistentFlagRequired("env")

	rootCmd.AddCommand(commands.AllocateLeadsCmd(app))
	rootCmd.AddCommand(commands.ViewSnapshotCmd(app))
	rootCmd.AddCommand(commands.SampleOverlayCmd(app))
	rootCmd.AddCommand(commands.ViewRunsCmd(app))
	rootCmd.AddCommand(commands.InteractiveCmd(app))
	rootCmd.AddCommand(commands.HashPasswordCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config, database and the session. Google clients are
// created on first use.
func initApp() error {
	var err error
	app.Ctx = context.Background()
	app.Env = env

	app.Logger, err = logging.InitLogger(env)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Logger.Info("Starting application", zap.String("environment", env))

	app.Logger.Info("Loading configuration")
	app.Cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Logger.Debug("Configuration loaded successfully", zap.String("app_id", app.Cfg.AppID))

	app.Logger.Info("Connecting to database")
	pg, err = postgres.NewDB(app.Ctx, app.Cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pg.RunMigrations(app.Ctx, app.Logger); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	app.Database = pg
	app.Logger.Info("Database initialized successfully")

	app.Cache = services.NewSnapshotCache(pg, app.Cfg.BaselineLevel, app.Logger)

	app.Gate, err = session.NewGate(app.Cfg.SessionPasswordHash, &session.MemoryStore{})
	if err != nil {
		return err
	}

	return nil
}
