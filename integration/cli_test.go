//go:build basic

package integration

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/planbench/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPlanbenchTemplate checks that the printed template runs as a scenario.
func TestPlanbenchTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "template.yaml")
	_, err := runPlanbench(t, nil, "template", "--output-file", path)
	require.NoError(t, err)

	output, err := runPlanbench(t, nil, "run", path, "--planners", "detour", "--color", "no")
	require.NoError(t, err)
	assert.Contains(t, output, "detour")
	assert.Contains(t, output, "Evaluated 1 plans")
}

// TestPlanbenchRunVerification runs the corridor scenario and verifies outcomes in the JSON report.
func TestPlanbenchRunVerification(t *testing.T) {
	dir := t.TempDir()
	reportPath := filepath.Join(dir, "report.json")
	plotDir := filepath.Join(dir, "plots")

	_, err := runPlanbench(t, nil,
		"run", "examples/scenarios/corridor.yaml",
		"--planners", "direct,detour,SBPL_lattice,broken",
		"--smoothers", "shortcut",
		"--steering", "linear,dubins",
		"--output", "json", "--output-file", reportPath,
		"--plot-dir", plotDir,
	)
	require.NoError(t, err)

	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	var reports []schema.EvaluationReport
	require.NoError(t, json.Unmarshal(data, &reports))
	require.Len(t, reports, 2)

	for _, report := range reports {
		t.Run(string(report.Steering), func(t *testing.T) {
			assert.Equal(t, "corridor", report.Scenario)
			require.Len(t, report.Plans, 4)
			assert.Equal(t, schema.OutcomePlanningFault, report.Plans["broken"].Outcome)
			assert.Equal(t, schema.OutcomePlanningFailure, report.Plans["direct"].Outcome)
			for name, entry := range report.Plans {
				if entry.Outcome != schema.OutcomeOK {
					assert.False(t, entry.Stats.PathFound, name)
					continue
				}
				assert.True(t, entry.Stats.PathFound, name)
				assert.Positive(t, entry.Stats.PathLength, name)
			}
		})
	}

	plots, err := filepath.Glob(filepath.Join(plotDir, "*.png"))
	require.NoError(t, err)
	assert.NotEmpty(t, plots)
}

// TestPlanbenchMetrics checks the metric definitions command.
func TestPlanbenchMetrics(t *testing.T) {
	output, err := runPlanbench(t, nil, "metrics", "--color", "no")
	require.NoError(t, err)
	assert.Contains(t, output, "path_length")
	assert.Contains(t, output, "cusps")
}

// TestPlanbenchInvalidInputs checks that bad input exits non-zero.
func TestPlanbenchInvalidInputs(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing scenario", []string{"run", "examples/scenarios/missing.yaml"}},
		{"unknown smoother", []string{"run", "examples/scenarios/corridor.yaml", "--smoothers", "bezier"}},
		{"bad steering", []string{"run", "examples/scenarios/corridor.yaml", "--steering", "teleport"}},
		{"bad run id", []string{"runs", "show", "abc", "--store-backend", "sqlite"}},
		{"otlp without endpoint", []string{"run", "examples/scenarios/corridor.yaml", "--traces", "otlp"}},
		{"unknown metrics exporter", []string{"run", "examples/scenarios/corridor.yaml", "--metrics", "statsd"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runPlanbench(t, nil, tt.args...)
			assert.Error(t, err)
		})
	}
}

// TestPlanbenchWithSQLite runs every run store command against a SQLite file.
func TestPlanbenchWithSQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	env := []string{
		"PLANBENCH_STORE_BACKEND=sqlite",
		"PLANBENCH_STORE_DB_CONNECT=" + dbPath,
	}
	runStoreCycle(t, env)

	_, err := runPlanbench(t, env, "run", "examples/scenarios/open_field.yaml", "--planners", "direct,staged,slow")
	require.NoError(t, err)

	output, err := runPlanbench(t, env, "runs", "status")
	require.NoError(t, err)
	assert.Contains(t, output, "Total Runs: 1")

	exportBase := filepath.Join(t.TempDir(), "planbench")
	_, err = runPlanbench(t, env, "runs", "export", "--output-file", exportBase)
	require.NoError(t, err)
	assert.FileExists(t, exportBase+".runs.parquet")
	assert.FileExists(t, exportBase+".plan_stats.parquet")
}
