package parquet

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/planbench/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readAll decodes every row of a Parquet stream.
func readAll[T any](t *testing.T, r io.ReaderAt) []T {
	t.Helper()
	reader := parquet.NewGenericReader[T](r)
	defer func() { _ = reader.Close() }()

	rows := make([]T, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	return rows[:n]
}

func readFile[T any](t *testing.T, path string) []T {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()
	return readAll[T](t, file)
}

func TestStructTags(t *testing.T) {
	tests := []struct {
		name    string
		schema  *parquet.Schema
		columns []string
	}{
		{
			name:   "runs",
			schema: parquet.SchemaOf(new(Run)),
			columns: []string{
				"run_id", "run_uuid", "scenario", "steering", "start_time",
				"end_time", "run_duration_ms", "total_plans", "config_params",
			},
		},
		{
			name:   "plan stats",
			schema: parquet.SchemaOf(new(PlanStats)),
			columns: []string{
				"run_id", "entry_name", "entry_kind", "planner", "budget", "outcome", "record_time",
				"path_found", "path_collides", "exact_goal_path", "planning_time", "collision_time",
				"steering_time", "path_length", "total_cost", "max_curvature", "normalized_curvature",
				"aol", "smoothness", "mean_clearing", "cusp_count",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, col := range tt.columns {
				_, ok := tt.schema.Lookup(col)
				assert.True(t, ok, "column %s should exist in schema", col)
			}
		})
	}
}

func TestWriteRunsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "runs.parquet")
	data := MockFetchRuns()
	require.NoError(t, WriteRunsParquet(data, outputPath))

	got := readFile[Run](t, outputPath)
	require.Len(t, got, len(data))
	for i := range data {
		assert.Equal(t, data[i].RunID, got[i].RunID)
		assert.Equal(t, data[i].RunUUID, got[i].RunUUID)
		assert.Equal(t, data[i].Steering, got[i].Steering)
		assert.WithinDuration(t, data[i].StartTime, got[i].StartTime, time.Nanosecond)
		if data[i].EndTime == nil {
			assert.Nil(t, got[i].EndTime)
			assert.Nil(t, got[i].RunDurationMs)
			assert.Nil(t, got[i].ConfigParams)
		} else {
			require.NotNil(t, got[i].EndTime)
			assert.WithinDuration(t, *data[i].EndTime, *got[i].EndTime, time.Nanosecond)
			assert.Equal(t, *data[i].RunDurationMs, *got[i].RunDurationMs)
			assert.Equal(t, *data[i].ConfigParams, *got[i].ConfigParams)
		}
	}
}

func TestWritePlanStatsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "plan_stats.parquet")
	data := MockFetchPlanStats()
	require.NoError(t, WritePlanStatsParquet(data, outputPath))

	got := readFile[PlanStats](t, outputPath)
	require.Len(t, got, len(data))
	for i := range data {
		assert.Equal(t, data[i].EntryName, got[i].EntryName)
		assert.Equal(t, data[i].Outcome, got[i].Outcome)
		assert.Equal(t, data[i].PathFound, got[i].PathFound)
		assert.InDelta(t, data[i].PathLength, got[i].PathLength, 1e-12)
		assert.InDelta(t, data[i].Smoothness, got[i].Smoothness, 1e-12)
		assert.Equal(t, data[i].CuspCount, got[i].CuspCount)
	}
}

func TestWritePlanStatsStream(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePlanStats(&buf, MockFetchPlanStats()))

	got := readAll[PlanStats](t, bytes.NewReader(buf.Bytes()))
	require.Len(t, got, 2)
	assert.Equal(t, "planning_failure", got[1].Outcome)
	assert.Equal(t, -1.0, got[1].TotalCost)
}

func TestWriteEmptyData(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteRunsParquet([]Run{}, filepath.Join(dir, "runs.parquet")))
	require.NoError(t, WritePlanStatsParquet([]PlanStats{}, filepath.Join(dir, "stats.parquet")))

	for _, name := range []string{"runs.parquet", "stats.parquet"} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Positive(t, info.Size(), "file should contain the schema even if empty")
	}
}

func TestWriteInvalidPath(t *testing.T) {
	assert.Error(t, WriteRunsParquet(MockFetchRuns(), "/nonexistent/directory/output.parquet"))
	assert.Error(t, WritePlanStatsParquet(MockFetchPlanStats(), "/nonexistent/directory/output.parquet"))
}

func TestConvertRecords(t *testing.T) {
	now := time.Now()
	duration := int32(1500)
	config := `{"runs":1}`
	runs := ConvertRunRecords([]schema.RunRecord{{
		RunID: 4, RunUUID: "abc", Scenario: "corridor", Steering: "dubins",
		StartTime: now, RunDurationMs: &duration, TotalPlans: 3, ConfigParams: &config,
	}})
	require.Len(t, runs, 1)
	assert.Equal(t, int64(4), runs[0].RunID)
	assert.Equal(t, "dubins", runs[0].Steering)
	assert.Equal(t, &duration, runs[0].RunDurationMs)
	assert.Nil(t, runs[0].EndTime)

	stats := ConvertPlanStatsRecords([]schema.PlanStatsRecord{{
		RunID: 4, EntryName: "detour+shortcut", EntryKind: "smoothing", Planner: "detour",
		Outcome: "ok", RecordTime: now, PathFound: true, PathLength: 9.5, CuspCount: 2,
	}})
	require.Len(t, stats, 1)
	assert.Equal(t, "detour+shortcut", stats[0].EntryName)
	assert.Equal(t, "smoothing", stats[0].EntryKind)
	assert.True(t, stats[0].PathFound)
	assert.Equal(t, 9.5, stats[0].PathLength)
	assert.Equal(t, int32(2), stats[0].CuspCount)

	assert.Empty(t, ConvertRunRecords(nil))
}
