// Package parquet provides data structures and functions for exporting planbench
// run data to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/planbench/schema"
	"github.com/parquet-go/parquet-go"
)

// Run represents a single benchmark run with metadata.
// This struct maps to the planbench_runs database table.
type Run struct {
	// RunID is the unique identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// RunUUID is the report identifier shown to users
	RunUUID string `parquet:"run_uuid,snappy"`

	// Scenario is the name of the benchmarked scenario
	Scenario string `parquet:"scenario,snappy"`

	// Steering is the steering mode of the run
	Steering string `parquet:"steering,snappy"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// TotalPlans is the number of planner entries in the run
	TotalPlans int32 `parquet:"total_plans,snappy"`

	// ConfigParams contains the JSON-encoded configuration snapshot (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// PlanStats represents the statistics of one planner, anytime or smoothing entry.
// This struct maps to the planbench_plan_stats database table.
type PlanStats struct {
	RunID               int64     `parquet:"run_id,snappy"`
	EntryName           string    `parquet:"entry_name,snappy"`
	EntryKind           string    `parquet:"entry_kind,snappy"`
	Planner             string    `parquet:"planner,snappy"`
	Budget              float64   `parquet:"budget,snappy"`
	Outcome             string    `parquet:"outcome,snappy"`
	RecordTime          time.Time `parquet:"record_time,snappy"`
	PathFound           bool      `parquet:"path_found"`
	PathCollides        bool      `parquet:"path_collides"`
	ExactGoalPath       bool      `parquet:"exact_goal_path"`
	PlanningTime        float64   `parquet:"planning_time,snappy"`
	CollisionTime       float64   `parquet:"collision_time,snappy"`
	SteeringTime        float64   `parquet:"steering_time,snappy"`
	PathLength          float64   `parquet:"path_length,snappy"`
	TotalCost           float64   `parquet:"total_cost,snappy"`
	MaxCurvature        float64   `parquet:"max_curvature,snappy"`
	NormalizedCurvature float64   `parquet:"normalized_curvature,snappy"`
	AOL                 float64   `parquet:"aol,snappy"`
	Smoothness          float64   `parquet:"smoothness,snappy"`
	MeanClearing        float64   `parquet:"mean_clearing,snappy"`
	CuspCount           int32     `parquet:"cusp_count,snappy"`
}

// WriteRunsParquet writes runs to a Parquet file.
func WriteRunsParquet(data []Run, outputPath string) error {
	return writeFile(data, outputPath)
}

// WritePlanStatsParquet writes plan stats to a Parquet file.
func WritePlanStatsParquet(data []PlanStats, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteRuns writes runs as a Parquet stream to w.
func WriteRuns(w io.Writer, data []Run) error {
	return write(w, data)
}

// WritePlanStats writes plan stats as a Parquet stream to w.
func WritePlanStats(w io.Writer, data []PlanStats) error {
	return write(w, data)
}

// writeFile creates outputPath and writes rows whose schema is inferred from T.
func writeFile[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := write(file, data); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// write encodes rows to w. The writer must be closed to flush the footer.
func write[T any](w io.Writer, data []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ConvertRunRecords converts stored runs for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, record := range records {
		result[i] = Run{
			RunID:         record.RunID,
			RunUUID:       record.RunUUID,
			Scenario:      record.Scenario,
			Steering:      record.Steering,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			TotalPlans:    record.TotalPlans,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertPlanStatsRecords converts stored plan stats for Parquet export.
func ConvertPlanStatsRecords(records []schema.PlanStatsRecord) []PlanStats {
	result := make([]PlanStats, len(records))
	for i, r := range records {
		result[i] = PlanStats{
			RunID:               r.RunID,
			EntryName:           r.EntryName,
			EntryKind:           r.EntryKind,
			Planner:             r.Planner,
			Budget:              r.Budget,
			Outcome:             r.Outcome,
			RecordTime:          r.RecordTime,
			PathFound:           r.PathFound,
			PathCollides:        r.PathCollides,
			ExactGoalPath:       r.ExactGoalPath,
			PlanningTime:        r.PlanningTime,
			CollisionTime:       r.CollisionTime,
			SteeringTime:        r.SteeringTime,
			PathLength:          r.PathLength,
			TotalCost:           r.TotalCost,
			MaxCurvature:        r.MaxCurvature,
			NormalizedCurvature: r.NormalizedCurvature,
			AOL:                 r.AOL,
			Smoothness:          r.Smoothness,
			MeanClearing:        r.MeanClearing,
			CuspCount:           r.CuspCount,
		}
	}
	return result
}

// MockFetchRuns generates sample Run data for demonstration.
func MockFetchRuns() []Run {
	now := time.Now()
	start1 := now.Add(-2 * time.Hour)
	end1 := start1.Add(90 * time.Second)
	duration1 := int32(end1.Sub(start1).Milliseconds())
	config1 := `{"planners":["detour","direct"],"steering":"linear","runs":1}`

	start2 := now.Add(-10 * time.Minute)

	return []Run{
		{
			RunID:         1,
			RunUUID:       "6f1c2a9e-3b7d-4f0a-9c1e-2d8b5a4e7f10",
			Scenario:      "corridor",
			Steering:      "linear",
			StartTime:     start1,
			EndTime:       &end1,
			RunDurationMs: &duration1,
			TotalPlans:    2,
			ConfigParams:  &config1,
		},
		{
			RunID:     2,
			RunUUID:   "0b9e7d3c-1a2f-4e5d-8c7b-6a5f4e3d2c1b",
			Scenario:  "corridor",
			Steering:  "reeds_shepp",
			StartTime: start2,
			// Still running: end time, duration and config are null
		},
	}
}

// MockFetchPlanStats generates sample PlanStats data for demonstration.
func MockFetchPlanStats() []PlanStats {
	at := time.Now().Add(-2 * time.Hour)
	return []PlanStats{
		{
			RunID: 1, EntryName: "detour", EntryKind: "plan", Planner: "detour", Outcome: "ok", RecordTime: at,
			PathFound: true, ExactGoalPath: true,
			PlanningTime: 1.92, CollisionTime: 0.004, SteeringTime: 0.001,
			PathLength: 12.41, TotalCost: 12.41, MaxCurvature: 0.83, NormalizedCurvature: 0.21,
			AOL: 0.19, Smoothness: 0.35, MeanClearing: 0.71, CuspCount: 0,
		},
		{
			RunID: 1, EntryName: "direct", EntryKind: "plan", Planner: "direct", Outcome: "planning_failure", RecordTime: at,
			PlanningTime: -1, CollisionTime: -1, SteeringTime: -1,
			PathLength: -1, TotalCost: -1, MaxCurvature: -1, NormalizedCurvature: -1,
			AOL: -1, Smoothness: -1, MeanClearing: -1,
		},
	}
}
