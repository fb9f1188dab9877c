package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/planbench/core/metric"
	"github.com/huangsam/planbench/internal/contract"
	"github.com/huangsam/planbench/schema"
)

// Benchmark is everything a run needs besides the configuration.
type Benchmark struct {
	Name        string
	Environment contract.CollisionModel
	Start       schema.Pose
	Goal        schema.Pose
	RobotShape  []schema.Point
	Planners    []contract.PlannerFactory
	Smoothers   []contract.SmootherFactory
}

// RunBenchmark validates the setup once, then sweeps every planner for each run and steering mode.
// It returns one report per (run, steering mode) pair. Store failures are logged and never fatal.
func RunBenchmark(ctx context.Context, cfg *contract.Config, bench *Benchmark, mgr contract.StoreManager, logger *slog.Logger) ([]*schema.EvaluationReport, error) {
	if err := contract.ValidateRunSetup(cfg, bench.RobotShape); err != nil {
		return nil, err
	}
	if len(bench.Planners) == 0 {
		return nil, fmt.Errorf("no planners to evaluate in %s", bench.Name)
	}
	objective, err := metric.NewObjective(cfg.Objective, bench.Environment)
	if err != nil {
		return nil, err
	}

	modes := cfg.SteeringModes
	if len(modes) == 0 {
		modes = []schema.SteeringMode{schema.LinearSteering}
	}

	reports := make([]*schema.EvaluationReport, 0, cfg.Runs*len(modes))
	for iteration := range max(cfg.Runs, 1) {
		for _, mode := range modes {
			report, err := runIteration(ctx, cfg, bench, mgr, logger, objective, mode, iteration)
			if report != nil {
				reports = append(reports, report)
			}
			if err != nil {
				return reports, err
			}
		}
	}
	return reports, nil
}

// runIteration runs one sweep for one steering mode and tracks it in the run store.
func runIteration(
	ctx context.Context,
	cfg *contract.Config,
	bench *Benchmark,
	mgr contract.StoreManager,
	logger *slog.Logger,
	objective contract.Objective,
	mode schema.SteeringMode,
	iteration int,
) (*schema.EvaluationReport, error) {
	runCfg := cfg.Clone()
	runCfg.Steering = mode

	rc := contract.NewRunContext(runCfg, bench.Environment, bench.Start, bench.Goal, logger)
	rc.Objective = objective

	report := schema.NewEvaluationReport(uuid.NewString(), bench.Name, mode, runCfg.Snapshot())
	report.Iteration = iteration
	rc.Logger.Info("starting sweep", "run", report.RunID, "steering", mode, "iteration", iteration, "planners", len(bench.Planners))

	// --- Begin Run Tracking (if configured) ---
	var runStore contract.RunStore
	if mgr != nil {
		runStore = mgr.GetRunStore()
		ctx = contextWithStoreManager(ctx, mgr)
	}
	var runID int64
	if runStore != nil {
		id, err := runStore.BeginRun(report.RunID, bench.Name, mode, report.StartedAt, report.Settings)
		if err != nil {
			contract.LogWarn("Run tracking initialization failed", err)
		} else if id > 0 {
			runID = id
			ctx = withRunID(ctx, runID)
		}
	}

	entries, err := Sweep(ctx, rc, bench.Planners, SweepOptions{
		Workers:   runCfg.Workers,
		Budgets:   runCfg.AnytimeBudgets,
		Smoothers: bench.Smoothers,
	})
	for _, entry := range entries {
		report.Add(entry)
	}
	report.EndedAt = time.Now()

	// --- End Run Tracking ---
	if runStore != nil && runID > 0 {
		if eerr := runStore.EndRun(runID, report.EndedAt, len(report.Plans)); eerr != nil {
			contract.LogWarn("Failed to finalize run tracking", eerr)
		}
	}
	return report, err
}

// recordPlanEntry writes the flattened records of one entry to the run store in the context.
func recordPlanEntry(ctx context.Context, entry *schema.PlanEntry) {
	runID := runIDFromContext(ctx)
	if runID <= 0 {
		return
	}
	mgr := storeManagerFromContext(ctx)
	if mgr == nil {
		return
	}
	runStore := mgr.GetRunStore()
	if runStore == nil {
		return
	}
	for _, record := range entry.StatsRecords(runID, time.Now()) {
		if err := runStore.RecordPlanStats(runID, record); err != nil {
			contract.LogWarn(fmt.Sprintf("Run tracking failed for %s", record.EntryName), err)
		}
	}
}
