package runstore

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/planbench/internal/contract"
	"github.com/huangsam/planbench/internal/parquet"
)

// ExecuteRunsExport exports every stored run and plan stats record to two Parquet files
// named after outputFile.
func ExecuteRunsExport(w io.Writer, store contract.RunStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("run tracking is not enabled")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get store status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no run data found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total plan stats records: %d\n", status.TableSizes[planStatsTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	stats, err := store.GetPlanStats(0)
	if err != nil {
		return fmt.Errorf("failed to retrieve plan stats: %w", err)
	}

	runsFile := outputFile + ".runs.parquet"
	parquetRuns := parquet.ConvertRunRecords(runs)
	if err := parquet.WriteRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d runs to: %s\n", len(parquetRuns), runsFile)

	statsFile := outputFile + ".plan_stats.parquet"
	parquetStats := parquet.ConvertPlanStatsRecords(stats)
	if err := parquet.WritePlanStatsParquet(parquetStats, statsFile); err != nil {
		return fmt.Errorf("failed to write plan stats: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d plan stats records to: %s\n", len(parquetStats), statsFile)
	return nil
}
