// Package core has core logic for evaluating, smoothing and benchmarking planners.
package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/huangsam/planbench/internal/contract"
	"github.com/huangsam/planbench/internal/outwriter"
)

// ErrStoreDisabled is returned by store backed commands when run tracking is not configured.
var ErrStoreDisabled = errors.New("run tracking is not enabled (set --store-backend)")

// ExecuteBenchmark runs the benchmark and prints its reports.
// Reports that completed before a failure are still printed.
func ExecuteBenchmark(ctx context.Context, cfg *contract.Config, bench *Benchmark, mgr contract.StoreManager, logger *slog.Logger) error {
	start := time.Now()
	reports, runErr := RunBenchmark(ctx, cfg, bench, mgr, logger)
	duration := time.Since(start)
	if len(reports) == 0 {
		return runErr
	}

	ow := outwriter.NewOutWriter()
	if err := ow.WriteReports(reports, cfg, duration); err != nil {
		return errors.Join(runErr, err)
	}
	files, err := ow.WritePlots(reports, cfg)
	if err != nil {
		return errors.Join(runErr, fmt.Errorf("failed to write plots: %w", err))
	}
	for _, f := range files {
		_, _ = fmt.Fprintf(os.Stderr, "📈 Wrote plot to %s\n", f)
	}
	return runErr
}

// ExecuteMetrics displays the definitions of all reported metrics.
// This is a static display that does not require a benchmark run.
func ExecuteMetrics(_ context.Context, cfg *contract.Config) error {
	return outwriter.NewOutWriter().WriteMetrics(cfg)
}

// ExecuteRunsList prints every stored run.
func ExecuteRunsList(_ context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	store, err := runStoreOf(mgr)
	if err != nil {
		return err
	}
	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	return outwriter.NewOutWriter().WriteRuns(runs, cfg)
}

// ExecuteRunShow prints the stored plan statistics of one run, or of all runs when runID <= 0.
func ExecuteRunShow(_ context.Context, cfg *contract.Config, mgr contract.StoreManager, runID int64) error {
	store, err := runStoreOf(mgr)
	if err != nil {
		return err
	}
	stats, err := store.GetPlanStats(runID)
	if err != nil {
		return fmt.Errorf("failed to get plan stats: %w", err)
	}
	if len(stats) == 0 && runID > 0 {
		return fmt.Errorf("no plan statistics stored for run %d", runID)
	}
	return outwriter.NewOutWriter().WritePlanStats(stats, cfg)
}

// runStoreOf returns the configured run store or ErrStoreDisabled.
func runStoreOf(mgr contract.StoreManager) (contract.RunStore, error) {
	if mgr == nil {
		return nil, ErrStoreDisabled
	}
	store := mgr.GetRunStore()
	if store == nil {
		return nil, ErrStoreDisabled
	}
	return store, nil
}
