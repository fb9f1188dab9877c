// Package cmd defines the command-line interface for planbench.
package cmd

import (
	"github.com/huangsam/planbench/internal/contract"
	"github.com/huangsam/planbench/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(templateCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(mcpCmd)

	// Add the runs subcommands to the parent runs command
	runsCmd.AddCommand(runsStatusCmd)
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsExportCmd)
	runsCmd.AddCommand(runsClearCmd)
	runsCmd.AddCommand(runsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level for run diagnostics: debug or info or warn or error")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("store-backend", string(schema.NoneBackend), "Run store backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("store-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname?parseTime=true)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	rootCmd.PersistentFlags().String("traces", string(schema.NoExporter), "Trace exporter: none or stdout or otlp")
	rootCmd.PersistentFlags().String("metrics", string(schema.NoExporter), "Metric exporter: none or stdout or prometheus")
	rootCmd.PersistentFlags().String("otlp-endpoint", "", "OTLP gRPC collector endpoint (e.g., localhost:4317)")
	rootCmd.PersistentFlags().String("metrics-addr", ":9464", "Listen address of the Prometheus endpoint served by the mcp command")

	// Planning flags are shared by the run and mcp commands
	rootCmd.PersistentFlags().String("planners", "", "Comma-separated planner names defined in the scenario")
	rootCmd.PersistentFlags().String("smoothers", "", "Comma-separated smoothers to apply: shortcut, spacing")
	rootCmd.PersistentFlags().String("steering", string(schema.LinearSteering), "Comma-separated steering modes: linear, dubins, reeds_shepp, cc_dubins, posq")
	rootCmd.PersistentFlags().Int("runs", contract.DefaultRuns, "Number of repetitions per steering mode")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent planner evaluations")
	rootCmd.PersistentFlags().String("max-planning-time", contract.DefaultMaxPlanningTime.String(), "Time limit per planner run (seconds or duration)")
	rootCmd.PersistentFlags().String("budgets", "", "Comma-separated anytime budgets (seconds or durations)")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of runCmd to Viper
	runCmd.Flags().Int("interpolation-limit", contract.DefaultInterpolationLimit, "Maximum number of poses after interpolation")
	runCmd.Flags().Float64("max-path-length", contract.DefaultMaxPathLength, "Maximum path length to interpolate")
	runCmd.Flags().Float64("interpolation-step", contract.DefaultInterpolationStep, "Distance between interpolated poses")
	runCmd.Flags().Float64("cusp-threshold", contract.DefaultCuspAngleThreshold, "Heading change in radians above which a pose is a cusp")
	runCmd.Flags().Float64("exact-goal-radius", contract.DefaultExactGoalRadius, "Distance to the goal that counts as an exact solution")
	runCmd.Flags().Bool("evaluate-clearing", false, "Compute obstacle clearing distances")
	runCmd.Flags().Float64("min-node-distance", contract.DefaultMinNodeDistance, "Vertex spacing used by spacing sensitive smoothers")
	runCmd.Flags().String("objective", string(schema.PathLengthObjective), "Path cost objective: path_length or clearance")
	runCmd.Flags().String("collision-model", string(schema.PointCollision), "Collision model: point or polygon")
	runCmd.Flags().String("plot-dir", "", "Directory to write PNG plots and HTML dashboards to")
	if err := viper.BindPFlags(runCmd.Flags()); err != nil {
		contract.LogFatal("Error binding run flags", err)
	}

	// Bind all flags of runsMigrateCmd to Viper
	runsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(runsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding runs migrate flags", err)
	}
}
