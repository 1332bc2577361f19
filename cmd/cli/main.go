package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/ad-distributor/cmd/cli/commands"
	"github.com/jakechorley/ad-distributor/internal/config"
	"github.com/jakechorley/ad-distributor/pkg/clients/gmailclient"
	"github.com/jakechorley/ad-distributor/pkg/clients/sheetsclient"
	"github.com/jakechorley/ad-distributor/pkg/db"
	"github.com/jakechorley/ad-distributor/pkg/postgres"
	"github.com/jakechorley/ad-distributor/pkg/utils/logging"
)

var (
	env     string
	verbose bool
	app     = &commands.AppContext{}

	// closeDatabase releases the postgres pool when that backend is in use
	closeDatabase func()
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cli",
		Short: "Ad Distributor CLI - Distribute marketing ads across projects",
		Long: `A CLI tool for distributing an employee's marketing ads across the projects of a region,
tracking employee balances and the global ad budget.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if closeDatabase != nil {
				closeDatabase()
			}
			if app.Logger != nil {
				_ = app.Logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show debug logs on the console")
	rootCmd.MarkPersistentFlagRequired("env")

	rootCmd.AddCommand(commands.DistributeCmd(app))
	rootCmd.AddCommand(commands.PreviewScoresCmd(app))
	rootCmd.AddCommand(commands.ListRegionsCmd(app))
	rootCmd.AddCommand(commands.ListEmployeesCmd(app))
	rootCmd.AddCommand(commands.InitBalancesCmd(app))
	rootCmd.AddCommand(commands.ViewBalancesCmd(app))
	rootCmd.AddCommand(commands.TopUpBudgetCmd(app))
	rootCmd.AddCommand(commands.ViewLogCmd(app))
	rootCmd.AddCommand(commands.InteractiveCmd(app))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config, clients, and database
func initApp() error {
	var err error
	app.Ctx = context.Background()

	app.Logger, err = logging.InitLogger(logging.Options{Env: env, Verbose: verbose})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Logger.Info("Starting application", zap.String("environment", env))

	app.Logger.Debug("Loading configuration")
	app.Cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	app.Logger.Debug("Loading OAuth client configuration")
	oauthCfg, err := config.LoadOAuthClientWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load OAuth client config: %w", err)
	}

	app.Logger.Debug("Initializing sheets client")
	app.SheetsClient, err = sheetsclient.NewClient(app.Ctx, oauthCfg, env, app.Logger)
	if err != nil {
		return fmt.Errorf("failed to create sheets client: %w", err)
	}

	if app.Cfg.NotifyEmployees {
		// Uses the same OAuth token as the sheets client
		app.Logger.Debug("Initializing gmail client")
		app.GmailClient, err = gmailclient.NewClient(app.Ctx, oauthCfg, app.SheetsClient.Token(), app.Cfg.GmailSender)
		if err != nil {
			return fmt.Errorf("failed to create gmail client: %w", err)
		}
	}

	app.Database, err = openDatabase()
	if err != nil {
		return err
	}

	app.Logger.Info("Initialization complete", zap.String("backend", app.Cfg.Database.Backend))
	return nil
}

// openDatabase connects to the ledger backend named in the config
func openDatabase() (db.Database, error) {
	switch app.Cfg.Database.Backend {
	case config.BackendPostgres:
		app.Logger.Debug("Connecting to postgres")
		pg, err := postgres.NewDB(app.Ctx, app.Cfg.Database.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		if err := pg.RunMigrations(app.Ctx); err != nil {
			pg.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		closeDatabase = pg.Close
		return pg, nil

	default:
		app.Logger.Debug("Connecting to ledger spreadsheet", zap.String("spreadsheet_id", app.Cfg.Database.SheetID))
		database, err := db.Open(app.SheetsClient, app.Cfg.Database.SheetID)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return database, nil
	}
}
