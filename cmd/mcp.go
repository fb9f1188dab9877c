package cmd

import (
	"context"

	"github.com/huangsam/planbench/internal/contract"
	"github.com/huangsam/planbench/internal/mcp"
	"github.com/huangsam/planbench/internal/telemetry"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the planbench MCP server",
	Long: `Launch an MCP server on stdio that allows AI agents to evaluate scenarios
and query stored runs via standard tools.

Tools:
  evaluate_scenario - run planners on a scenario file
  list_runs         - list stored runs
  get_run_stats     - stored statistics of one run
  get_store_status  - run store status
  describe_metrics  - path metric definitions

With --metrics prometheus, evaluation counters are served on
http://<metrics-addr>/metrics while the server runs.`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, cancel := context.WithCancel(rootCtx)
		defer cancel()
		go func() {
			if err := telemetry.ServeMetrics(ctx, cfg.MetricsAddr); err != nil {
				contract.LogWarn("Metrics endpoint stopped", err)
			}
		}()
		return mcp.StartMCPServer(ctx, cfg, storeManager)
	},
}
