package outwriter

import (
	"io"
	"strconv"

	"github.com/huangsam/planbench/internal/contract"
	"github.com/huangsam/planbench/internal/parquet"
	"github.com/huangsam/planbench/schema"
)

// reportRow is one flattened entry together with the report it came from.
type reportRow struct {
	report *schema.EvaluationReport
	record schema.PlanStatsRecord
}

// flattenReports turns every report into plan, anytime and smoothing rows.
func flattenReports(reports []*schema.EvaluationReport) []reportRow {
	var rows []reportRow
	for _, report := range reports {
		for _, entry := range report.Entries() {
			for _, record := range entry.StatsRecords(0, report.EndedAt) {
				rows = append(rows, reportRow{report: report, record: record})
			}
		}
	}
	return rows
}

// recordLabel derives the plain outcome label of a flattened row.
func recordLabel(r schema.PlanStatsRecord) string {
	return contract.GetPlainLabel(schema.Outcome(r.Outcome), schema.PathStatistics{
		PathFound:    r.PathFound,
		PathCollides: r.PathCollides,
	})
}

// writeReportsCSV writes one CSV row per flattened entry.
func writeReportsCSV(w io.Writer, reports []*schema.EvaluationReport, precision int) error {
	f := cellFormat{precision: precision}
	header := []string{
		"run_uuid", "scenario", "steering", "iteration",
		"entry_name", "entry_kind", "planner", "budget", "outcome", "label",
		"path_found", "path_collides", "exact_goal_path",
		"planning_time", "collision_time", "steering_time",
		"path_length", "total_cost", "max_curvature", "normalized_curvature",
		"aol", "smoothness", "mean_clearing", "cusp_count",
	}
	flat := flattenReports(reports)
	rows := make([][]string, 0, len(flat))
	for _, row := range flat {
		r := row.record
		rows = append(rows, []string{
			row.report.RunID,
			row.report.Scenario,
			string(row.report.Steering),
			strconv.Itoa(row.report.Iteration + 1),
			r.EntryName,
			r.EntryKind,
			r.Planner,
			f.num(r.Budget),
			r.Outcome,
			recordLabel(r),
			strconv.FormatBool(r.PathFound),
			strconv.FormatBool(r.PathCollides),
			strconv.FormatBool(r.ExactGoalPath),
			f.num(r.PlanningTime),
			f.num(r.CollisionTime),
			f.num(r.SteeringTime),
			f.num(r.PathLength),
			f.num(r.TotalCost),
			f.num(r.MaxCurvature),
			f.num(r.NormalizedCurvature),
			f.num(r.AOL),
			f.num(r.Smoothness),
			f.num(r.MeanClearing),
			strconv.Itoa(int(r.CuspCount)),
		})
	}
	return writeCSV(w, header, rows)
}

// writeReportsParquet writes the flattened rows as a Parquet stream.
func writeReportsParquet(w io.Writer, reports []*schema.EvaluationReport) error {
	rows := flattenReports(reports)
	records := make([]schema.PlanStatsRecord, len(rows))
	for i, row := range rows {
		records[i] = row.record
	}
	return parquet.WritePlanStats(w, parquet.ConvertPlanStatsRecords(records))
}
