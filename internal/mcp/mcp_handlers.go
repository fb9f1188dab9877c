package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/huangsam/planbench/core"
	"github.com/huangsam/planbench/internal/contract"
	"github.com/huangsam/planbench/internal/outwriter"
	"github.com/huangsam/planbench/internal/scenario"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
}

// jsonResult renders data as an indented JSON tool result.
func jsonResult(data any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// runStore returns the configured run store or a tool error result.
func (h *toolHandler) runStore() (contract.RunStore, *mcp.CallToolResult) {
	if h.mgr == nil {
		return nil, mcp.NewToolResultError(core.ErrStoreDisabled.Error())
	}
	store := h.mgr.GetRunStore()
	if store == nil {
		return nil, mcp.NewToolResultError(core.ErrStoreDisabled.Error())
	}
	return store, nil
}

func (h *toolHandler) handleEvaluateScenario(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cfg.ScenarioPath = request.GetString("scenario_path", "")
	if cfg.ScenarioPath == "" {
		return mcp.NewToolResultError("scenario_path is required"), nil
	}
	if r := request.GetInt("runs", 0); r > 0 {
		cfg.Runs = r
	}

	if err := contract.RevalidateEvaluation(cfg,
		request.GetString("planners", ""),
		request.GetString("smoothers", ""),
		request.GetString("steering", ""),
		request.GetString("budgets", ""),
	); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid evaluation parameters: %v", err)), nil
	}

	s, err := scenario.Load(cfg.ScenarioPath)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("cannot load scenario: %v", err)), nil
	}
	bench, err := s.Benchmark(cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid benchmark: %v", err)), nil
	}

	reports, err := core.RunBenchmark(ctx, cfg, bench, h.mgr, nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("evaluation failed: %v", err)), nil
	}
	return jsonResult(reports)
}

func (h *toolHandler) handleListRuns(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	store, errResult := h.runStore()
	if errResult != nil {
		return errResult, nil
	}
	runs, err := store.GetAllRuns()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list runs: %v", err)), nil
	}
	if l := request.GetInt("limit", 0); l > 0 && len(runs) > l {
		runs = runs[len(runs)-l:]
	}
	return jsonResult(runs)
}

func (h *toolHandler) handleGetRunStats(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	runID := request.GetInt("run_id", 0)
	if runID <= 0 {
		return mcp.NewToolResultError("run_id must be a positive integer"), nil
	}
	store, errResult := h.runStore()
	if errResult != nil {
		return errResult, nil
	}
	stats, err := store.GetPlanStats(int64(runID))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get plan stats: %v", err)), nil
	}
	if len(stats) == 0 {
		return mcp.NewToolResultError(fmt.Sprintf("no plan statistics stored for run %d", runID)), nil
	}
	return jsonResult(stats)
}

func (h *toolHandler) handleGetStoreStatus(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	store, errResult := h.runStore()
	if errResult != nil {
		return errResult, nil
	}
	status, err := store.GetStatus()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get store status: %v", err)), nil
	}
	return jsonResult(status)
}

func (h *toolHandler) handleDescribeMetrics(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(outwriter.MetricDefinitions())
}
