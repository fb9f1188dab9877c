package cmd

import (
	"github.com/huangsam/planbench/core"
	"github.com/huangsam/planbench/internal/contract"
	"github.com/spf13/cobra"
)

// metricsCmd displays the definitions of all path metrics.
var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Display formulas and units for all path metrics",
	Long: `Show the definition, unit and formula of every metric in a report.

No planner is run - this is purely informational.

Use this to:
- Understand what each column of a report measures
- Compare planners on the right metric
- Document benchmark methodology

Examples:
  # Show metric definitions
  planbench metrics

  # Export them as CSV
  planbench metrics --output csv --output-file metrics.csv`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteMetrics(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot display metrics", err)
		}
	},
}
