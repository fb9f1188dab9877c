package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/planbench/core"
	"github.com/huangsam/planbench/internal/contract"
	"github.com/huangsam/planbench/internal/runstore"
	"github.com/huangsam/planbench/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// storeBackendFromViper reads the configured run store backend, treating empty as none.
func storeBackendFromViper() (schema.DatabaseBackend, string, error) {
	backend := schema.DatabaseBackend(strings.ToLower(viper.GetString("store-backend")))
	if backend == "" {
		backend = schema.NoneBackend
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", "", fmt.Errorf("invalid store backend '%s'. must be sqlite, mysql, postgresql, none", backend)
	}
	connStr := viper.GetString("store-db-connect")

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// runsSetup loads minimal configuration needed for run store operations.
// This is used by commands that need store access without full shared setup.
func runsSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend, connStr, err := storeBackendFromViper()
	if err != nil {
		return err
	}

	// Get output-related config values (used by list, show and export)
	output := schema.OutputMode(strings.ToLower(viper.GetString("output")))
	if _, ok := schema.ValidOutputModes[output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", output)
	}
	useColors, err := contract.ParseBoolString(viper.GetString("color"))
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	precision := viper.GetInt("precision")
	if precision < 1 || precision > contract.MaxPrecision {
		return fmt.Errorf("precision must be between 1 and %d (received %d)", contract.MaxPrecision, precision)
	}

	if err := runstore.InitStores(backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize run store: %w", err)
	}

	cfg.StoreBackend = backend
	cfg.StoreDBConnect = connStr
	cfg.Output = output
	cfg.OutputFile = viper.GetString("output-file")
	cfg.Precision = precision
	cfg.Width = viper.GetInt("width")
	cfg.UseColors = useColors
	color.NoColor = !useColors

	return nil
}

// runsSetupWrapper wraps runsSetup to provide PreRunE for runs commands.
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

	backend, connStr, err := storeBackendFromViper()
	if err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetRunsDBFilePath()
	}

	cfg.StoreBackend = backend
	cfg.StoreDBConnect = connStr

	return nil
}

// runsMigrateSetupWrapper wraps runsMigrateSetup to provide PreRunE for migrate command.
func runsMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	return runsMigrateSetup()
}

// runsCmd focused on run store management.
//
// Note: runs subcommands use minimal initialization (runsSetup) instead of
// the full sharedSetup used by the run command. This avoids planner and
// scenario validation for simple store operations.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage stored benchmark runs and exports",
	Long: `Manage benchmark runs recorded by the run store.

When enabled with --store-backend, planbench tracks every run, storing:
- Run metadata (scenario, steering mode, settings, duration)
- Statistics of every planner, anytime budget and smoother

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled, default)

Subcommands:
  status  - Show run store statistics
  list    - List stored runs
  show    - Show the plan statistics of a run
  export  - Export data to Parquet for analytics
  clear   - Remove all stored runs
  migrate - Run database schema migrations

Examples:
  # Check tracking status
  planbench runs status --store-backend sqlite

  # Export for analysis in pandas/DuckDB
  planbench runs export --store-backend sqlite --output-file planbench`,
}

// runsStatusCmd shows run store status.
var runsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run store statistics and connection details",
	Long: `Show detailed information about the run store.

Displays:
- Backend type and connection status
- Total number of runs and plan records stored
- Last and oldest run timestamps
- Database table sizes

Examples:
  # Check run store status
  planbench runs status --store-backend sqlite`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := runstore.Manager.GetRunStore()
		if store == nil {
			contract.LogFatal("Failed to get run store status", core.ErrStoreDisabled)
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get run store status", err)
		}
		runstore.PrintStoreStatus(os.Stdout, status)
	},
}

// runsListCmd lists stored runs.
var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored benchmark runs",
	Long: `List every stored run with its scenario, steering mode, start time, duration and plan count.

Examples:
  # List runs as a table
  planbench runs list --store-backend sqlite

  # List runs as JSON
  planbench runs list --store-backend sqlite --output json`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteRunsList(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Failed to list runs", err)
		}
	},
}

// runsShowCmd shows the stored statistics of one run.
var runsShowCmd = &cobra.Command{
	Use:   "show [run-id]",
	Short: "Show the stored plan statistics of a run",
	Long: `Show the plan, anytime and smoothing statistics stored for one run.
Without a run ID, statistics of all runs are shown.

Examples:
  # Show run 3
  planbench runs show 3 --store-backend sqlite

  # Export every stored statistic as CSV
  planbench runs show --store-backend sqlite --output csv --output-file stats.csv`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		var runID int64
		if len(args) == 1 {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				contract.LogFatal("Invalid run ID", fmt.Errorf("'%s' is not a positive integer", args[0]))
			}
			runID = id
		}
		if err := core.ExecuteRunShow(rootCtx, cfg, storeManager, runID); err != nil {
			contract.LogFatal("Failed to show run", err)
		}
	},
}

// runsExportCmd exports stored runs to Parquet files.
var runsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored runs to Parquet for BI tools and analytics",
	Long: `Export all stored run data to Parquet format for use with analytics tools.

Exports two datasets:
- <output-file>.runs.parquet - metadata about each run
- <output-file>.plan_stats.parquet - statistics per planner, budget and smoother

Requires: --output-file parameter

Examples:
  # Export all data
  planbench runs export --store-backend sqlite --output-file planbench

  # Use with DuckDB for analysis
  duckdb -c "SELECT planner, avg(path_length) FROM read_parquet('planbench.plan_stats.parquet') GROUP BY planner"`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := runstore.ExecuteRunsExport(os.Stdout, runstore.Manager.GetRunStore(), cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export run data", err)
		}
	},
}

// runsClearCmd clears the run store.
var runsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all stored benchmark runs",
	Long: `Delete all stored runs and plan statistics.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  # Export before clearing
  planbench runs export --store-backend sqlite --output-file backup
  planbench runs clear --store-backend sqlite`,
	PreRunE: runsMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := runstore.ClearRuns(cfg.StoreBackend, cfg.StoreDBConnect, cfg.StoreDBConnect); err != nil {
			contract.LogFatal("Failed to clear run data", err)
		}
		fmt.Println("Run data cleared successfully.")
	},
}

// runsMigrateCmd runs database migrations for the run store.
var runsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the run store.

By default, migrates to the latest version. Use --target-version for specific versions.
MySQL connection strings need multiStatements=true for migrations.

Examples:
  # Migrate to latest version (default)
  planbench runs migrate --store-backend sqlite

  # Rollback to initial state
  planbench runs migrate --store-backend sqlite --target-version 0`,
	PreRunE: runsMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := runstore.MigrateRuns(os.Stdout, cfg.StoreBackend, cfg.StoreDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
