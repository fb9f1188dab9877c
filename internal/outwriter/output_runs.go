package outwriter

import (
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/planbench/internal/contract"
	"github.com/huangsam/planbench/internal/parquet"
	"github.com/huangsam/planbench/schema"
)

// WriteRunRecords prints stored runs in the configured output mode.
func WriteRunRecords(runs []schema.RunRecord, cfg *contract.Config) error {
	return writeOutput(cfg, renderers{
		json:    runs,
		csv:     func(w io.Writer) error { return writeRunsCSV(w, runs) },
		parquet: func(w io.Writer) error { return parquet.WriteRuns(w, parquet.ConvertRunRecords(runs)) },
		table:   func(w io.Writer) error { return writeRunsText(w, runs) },
	})
}

// WritePlanStatsRecords prints stored plan stats in the configured output mode.
func WritePlanStatsRecords(stats []schema.PlanStatsRecord, cfg *contract.Config) error {
	return writeOutput(cfg, renderers{
		json:    stats,
		csv:     func(w io.Writer) error { return writePlanStatsCSV(w, stats, cfg.Precision) },
		parquet: func(w io.Writer) error { return parquet.WritePlanStats(w, parquet.ConvertPlanStatsRecords(stats)) },
		table:   func(w io.Writer) error { return writePlanStatsText(w, stats, cfg) },
	})
}

// formatDuration renders a nullable duration in milliseconds.
func formatDuration(ms *int32) string {
	if ms == nil {
		return "-"
	}
	return strconv.Itoa(int(*ms))
}

func writeRunsText(w io.Writer, runs []schema.RunRecord) error {
	table := newTable(w, []string{"ID", "UUID", "Scenario", "Steering", "Started", "Duration (ms)", "Plans"})
	var data [][]string
	for _, r := range runs {
		data = append(data, []string{
			strconv.FormatInt(r.RunID, 10),
			r.RunUUID,
			r.Scenario,
			r.Steering,
			r.StartTime.Local().Format(contract.DateTimeFormat),
			formatDuration(r.RunDurationMs),
			strconv.Itoa(int(r.TotalPlans)),
		})
	}
	if err := renderTable(table, data); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d runs stored\n", len(runs))
	return err
}

func writeRunsCSV(w io.Writer, runs []schema.RunRecord) error {
	header := []string{"run_id", "run_uuid", "scenario", "steering", "start_time", "end_time", "run_duration_ms", "total_plans", "config_params"}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		end, params := "", ""
		if r.EndTime != nil {
			end = r.EndTime.Format(contract.DateTimeFormat)
		}
		if r.ConfigParams != nil {
			params = *r.ConfigParams
		}
		rows = append(rows, []string{
			strconv.FormatInt(r.RunID, 10), r.RunUUID, r.Scenario, r.Steering,
			r.StartTime.Format(contract.DateTimeFormat), end,
			formatDuration(r.RunDurationMs), strconv.Itoa(int(r.TotalPlans)), params,
		})
	}
	return writeCSV(w, header, rows)
}

func writePlanStatsText(w io.Writer, stats []schema.PlanStatsRecord, cfg *contract.Config) error {
	f := cellFormat{precision: cfg.Precision}
	nameWidth := nameColumnWidth(cfg, 10)

	table := newTable(w, []string{"Run", "Entry", "Kind", "Budget", "Result", "Time", "Length", "Cost", "Smooth", "Clearing", "Cusps"})
	var data [][]string
	for _, r := range stats {
		data = append(data, []string{
			strconv.FormatInt(r.RunID, 10),
			contract.TruncateName(r.EntryName, nameWidth),
			r.EntryKind,
			f.num(r.Budget),
			recordLabel(r),
			f.metric(r.PlanningTime),
			f.metric(r.PathLength),
			f.metric(r.TotalCost),
			f.metric(r.Smoothness),
			f.metric(r.MeanClearing),
			strconv.Itoa(int(r.CuspCount)),
		})
	}
	if err := renderTable(table, data); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d entries\n", len(stats))
	return err
}

func writePlanStatsCSV(w io.Writer, stats []schema.PlanStatsRecord, precision int) error {
	f := cellFormat{precision: precision}
	header := []string{
		"run_id", "entry_name", "entry_kind", "planner", "budget", "outcome", "record_time",
		"path_found", "path_collides", "exact_goal_path", "planning_time", "collision_time", "steering_time",
		"path_length", "total_cost", "max_curvature", "normalized_curvature", "aol", "smoothness",
		"mean_clearing", "cusp_count",
	}
	rows := make([][]string, 0, len(stats))
	for _, r := range stats {
		rows = append(rows, []string{
			strconv.FormatInt(r.RunID, 10), r.EntryName, r.EntryKind, r.Planner, f.num(r.Budget), r.Outcome,
			r.RecordTime.Format(contract.DateTimeFormat),
			strconv.FormatBool(r.PathFound), strconv.FormatBool(r.PathCollides), strconv.FormatBool(r.ExactGoalPath),
			f.num(r.PlanningTime), f.num(r.CollisionTime), f.num(r.SteeringTime),
			f.num(r.PathLength), f.num(r.TotalCost), f.num(r.MaxCurvature), f.num(r.NormalizedCurvature),
			f.num(r.AOL), f.num(r.Smoothness), f.num(r.MeanClearing), strconv.Itoa(int(r.CuspCount)),
		})
	}
	return writeCSV(w, header, rows)
}
