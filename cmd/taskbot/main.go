package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/avoronova/qc-taskbot/cmd/taskbot/commands"
	"github.com/avoronova/qc-taskbot/internal/config"
	"github.com/avoronova/qc-taskbot/pkg/clients/sheetsclient"
	"github.com/avoronova/qc-taskbot/pkg/core/ingest"
	"github.com/avoronova/qc-taskbot/pkg/postgres"
	"github.com/avoronova/qc-taskbot/pkg/utils/logging"
)

var (
	env string
	app *commands.AppContext
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "taskbot",
		Short: "QC taskbot - distribute support tickets to auditors over Telegram",
		Long:  `A Telegram bot that assigns support tickets to auditors by declared skill, records assessments into a spreadsheet, and keeps rosters and the backlog in sync.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil && app.Logger != nil {
				app.Logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "prod", "Environment name used for log files")

	rootCmd.AddCommand(commands.RunCmd(appRef()))
	rootCmd.AddCommand(commands.ResyncCmd(appRef()))
	rootCmd.AddCommand(commands.RosterCmd(appRef()))
	rootCmd.AddCommand(commands.DumpCmd(appRef()))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// appRef returns the shared AppContext; it is populated by initApp before
// any command runs.
func appRef() *commands.AppContext {
	if app == nil {
		app = &commands.AppContext{}
	}
	return app
}

// initApp sets up logger, config, clients, and database
func initApp() error {
	a := appRef()
	a.Ctx = context.Background()

	logger, logPath, err := logging.InitLogger(env)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.Logger = logger
	a.LogPath = logPath

	a.Logger.Info("Starting application", zap.String("environment", env))

	a.Logger.Info("Loading configuration")
	a.Cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	database, err := postgres.NewDB(a.Ctx, a.Cfg.DatabaseURL, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.RunMigrations(a.Ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	a.Database = database

	a.SheetsClient, err = sheetsclient.NewClient(a.Ctx, a.Cfg)
	if err != nil {
		return fmt.Errorf("failed to create sheets client: %w", err)
	}

	a.Syncer = ingest.NewSyncer(a.SheetsClient, a.Database, a.Logger)

	a.Logger.Debug("Application initialized")
	return nil
}
