package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/basket/internal/contract"
	"github.com/huangsam/basket/internal/iocache"
	"github.com/huangsam/basket/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// readRunsBackend reads and validates the run store backend settings.
func readRunsBackend() (schema.DatabaseBackend, string, error) {
	backend := backendFromViper("runs-backend")
	connStr := viper.GetString("runs-db-connect")

	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", "", fmt.Errorf("invalid runs backend '%s'. must be sqlite, mysql, postgresql, none", backend)
	}
	if err := contract.ValidateDatabaseConnectionString(backend, connStr, "runs-db-connect"); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// runsSetup loads minimal configuration needed for run history operations.
// This is used by commands that need run store access without full shared setup.
func runsSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend, connStr, err := readRunsBackend()
	if err != nil {
		return err
	}

	// Get output-related config values (used by export command)
	outputFile := viper.GetString("output-file")

	// No snapshot caching for run commands
	if err := iocache.InitStores("", "", backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize run store: %w", err)
	}

	cfg.RunsBackend = backend
	cfg.RunsDBConnect = connStr
	cfg.OutputFile = outputFile

	return nil
}

// runsSetupWrapper wraps runsSetup to provide PreRunE for run commands.
func runsSetupWrapper(_ *cobra.Command, _ []string) error {
	return runsSetup()
}

// runsMigrateSetup loads minimal configuration needed for migrate operations.
// This is a specialized setup that does NOT initialize stores or create tables,
// allowing migrations to run on a fresh database.
func runsMigrateSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend, connStr, err := readRunsBackend()
	if err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetRunsDBFilePath()
	}

	cfg.RunsBackend = backend
	cfg.RunsDBConnect = connStr

	return nil
}

// runsMigrateSetupWrapper wraps runsMigrateSetup to provide PreRunE for migrate command.
func runsMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	return runsMigrateSetup()
}

// runsCmd focused on report run history.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage report run history and exports",
	Long: `Manage the history of report runs used for trend tracking.

When enabled with --runs-backend, Basket records every report run:
- Run metadata (report, timestamps, configuration, row counts)
- Per-customer RFM scores, segment and value tier of RFM and combined runs

This enables segment migration analysis and export to BI tools.

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled, default)

Subcommands:
  status  - Show run tracking statistics
  export  - Export data to Parquet
  clear   - Remove all tracking data
  migrate - Run database schema migrations

Examples:
  # Check tracking status
  basket runs status --runs-backend sqlite

  # Export for analysis in pandas/DuckDB
  basket runs export --runs-backend sqlite --output-file history`,
}

// runsClearCmd clears the run history.
var runsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all report run history",
	Long: `Delete all stored report runs and customer score history.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  # Export before clearing
  basket runs export --output-file backup
  basket runs clear`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		// Release the handle opened during setup before removing the file
		iocache.CloseCaching()
		if err := iocache.ClearRuns(cfg.RunsBackend, iocache.GetRunsDBFilePath(), cfg.RunsDBConnect); err != nil {
			contract.LogFatal("Failed to clear run history", err)
		}
		fmt.Println("Run history cleared successfully.")
	},
}

// runsStatusCmd shows run tracking status.
var runsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run tracking statistics and connection details",
	Long: `Show detailed information about report run tracking.

Displays:
- Backend type and connection status
- Total number of runs and scored customer rows
- Last and oldest run timestamps
- Database table sizes

Examples:
  # Check run tracking status
  basket runs status`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetRunStore()
		if store == nil {
			contract.LogFatal("Failed to get run status", fmt.Errorf("run tracking is disabled. Set --runs-backend to enable it"))
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get run status", err)
		}
		iocache.PrintRunStatus(os.Stdout, status)
	},
}

// runsExportCmd exports run history to Parquet files.
var runsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run history to Parquet for BI tools and analytics",
	Long: `Export all stored run data to Parquet.

Writes two files:
- <output-file>.report_runs.parquet     - one row per report run
- <output-file>.customer_scores.parquet - one row per scored customer per run

Requires: --output-file parameter

Examples:
  # Export all data
  basket runs export --output-file history

  # Segment movement between runs with DuckDB
  duckdb -c "SELECT segment, count(*) FROM read_parquet('history.customer_scores.parquet') GROUP BY ALL"`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteRunsExport(os.Stdout, iocache.Manager.GetRunStore(), cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export run history", err)
		}
	},
}

// runsMigrateCmd runs database migrations for the run store.
var runsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the run tracking store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  basket runs migrate --runs-backend postgresql --runs-db-connect "$RUNS_DSN"

  # Migrate to specific version
  basket runs migrate --target-version 1

  # Roll back every migration
  basket runs migrate --target-version 0`,
	PreRunE: runsMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateRuns(cfg.RunsBackend, cfg.RunsDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
