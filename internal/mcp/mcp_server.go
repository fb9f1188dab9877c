// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/planbench/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the planbench MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Planbench Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: evaluate_scenario ---
	s.AddTool(mcp.NewTool("evaluate_scenario",
		mcp.WithDescription("Run the planners of a scenario file and return one evaluation report per run and steering mode."),
		mcp.WithString("scenario_path", mcp.Description("Path to the scenario YAML file."), mcp.Required()),
		mcp.WithString("planners", mcp.Description("Comma-separated planner names (defaults to the configured planners).")),
		mcp.WithString("smoothers", mcp.Description("Comma-separated smoothers to apply (shortcut, spacing).")),
		mcp.WithString("steering", mcp.Description("Comma-separated steering modes (linear, dubins, reeds_shepp, cc_dubins, posq).")),
		mcp.WithString("budgets", mcp.Description("Comma-separated anytime budgets in seconds (e.g., '0.5,1,2').")),
		mcp.WithNumber("runs", mcp.Description("Number of repetitions per steering mode.")),
	), h.handleEvaluateScenario)

	// --- 2. Tool: list_runs ---
	s.AddTool(mcp.NewTool("list_runs",
		mcp.WithDescription("List benchmark runs recorded in the run store."),
		mcp.WithNumber("limit", mcp.Description("Only return the most recent runs.")),
	), h.handleListRuns)

	// --- 3. Tool: get_run_stats ---
	s.AddTool(mcp.NewTool("get_run_stats",
		mcp.WithDescription("Return the stored plan, anytime and smoothing statistics of one run."),
		mcp.WithNumber("run_id", mcp.Description("Numeric ID of the run."), mcp.Required()),
	), h.handleGetRunStats)

	// --- 4. Tool: get_store_status ---
	s.AddTool(mcp.NewTool("get_store_status",
		mcp.WithDescription("Report the run store backend, connection state and table sizes."),
	), h.handleGetStoreStatus)

	// --- 5. Tool: describe_metrics ---
	s.AddTool(mcp.NewTool("describe_metrics",
		mcp.WithDescription("Describe every path metric reported by planbench."),
	), h.handleDescribeMetrics)

	return s
}

// StartMCPServer starts the planbench MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
