package cmd

import (
	"os"

	"github.com/huangsam/planbench/core"
	"github.com/huangsam/planbench/internal/contract"
	"github.com/huangsam/planbench/internal/scenario"
	"github.com/spf13/cobra"
)

// runCmd benchmarks the planners of one scenario.
var runCmd = &cobra.Command{
	Use:   "run <scenario>",
	Short: "Run and score planners on a scenario.",
	Long: `Run every selected planner on a scenario file, validate its path and compute path metrics.

For each run and steering mode, planbench:
- Builds each planner and applies its configured settings
- Runs it within the planning time limit (or once per anytime budget)
- Interpolates and validates the solution against the collision model
- Computes length, cost, curvature, smoothness, clearing and cusps
- Optionally smooths successful paths and scores the smoothed result

Failed planners still get a report entry describing how they failed.

Examples:
  # Run the default planners of a scenario
  planbench run examples/scenarios/corridor.yaml

  # Pick planners, smoothers and steering modes
  planbench run corridor.yaml --planners direct,detour --smoothers shortcut --steering linear,dubins

  # Anytime evaluation across budgets, stored in SQLite
  planbench run corridor.yaml --planners detour --budgets 0.5,1,2 --store-backend sqlite

  # Export the report, PNG plots and HTML dashboards
  planbench run corridor.yaml --output json --output-file report.json --plot-dir plots`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		s, err := scenario.Load(cfg.ScenarioPath)
		if err != nil {
			contract.LogFatal("Cannot load scenario", err)
		}
		bench, err := s.Benchmark(cfg)
		if err != nil {
			contract.LogFatal("Cannot build benchmark", err)
		}
		logger := contract.NewLogger(os.Stderr, cfg.LogLevel)
		if err := core.ExecuteBenchmark(rootCtx, cfg, bench, storeManager, logger); err != nil {
			contract.LogFatal("Cannot run benchmark", err)
		}
	},
}
