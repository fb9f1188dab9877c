package contract

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/planbench/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPlainLabel(t *testing.T) {
	found := schema.NewPathStatistics("p")
	found.PathFound = true
	colliding := found
	colliding.PathCollides = true

	tests := []struct {
		name     string
		outcome  schema.Outcome
		stats    schema.PathStatistics
		expected string
	}{
		{"solved", schema.OutcomeOK, found, SolvedValue},
		{"no path", schema.OutcomePlanningFailure, schema.NewPathStatistics("p"), NoPathValue},
		{"ok without path", schema.OutcomeOK, schema.NewPathStatistics("p"), NoPathValue},
		{"collides", schema.OutcomeOK, colliding, CollidesValue},
		{"validation fault", schema.OutcomeValidationFault, found, CollidesValue},
		{"fault", schema.OutcomePlanningFault, schema.NewPathStatistics("p"), FaultValue},
		{"construction", schema.OutcomeConstructionFailure, schema.NewPathStatistics("p"), ConstructValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetPlainLabel(tt.outcome, tt.stats))
		})
	}
}

func TestGetColorLabel(t *testing.T) {
	stats := schema.NewPathStatistics("p")
	stats.PathFound = true
	label := GetColorLabel(schema.OutcomeOK, stats)
	assert.Contains(t, label, SolvedValue)

	label = GetColorLabel(schema.OutcomePlanningFault, schema.NewPathStatistics("p"))
	assert.Contains(t, label, FaultValue)
}

func TestSelectOutputFile(t *testing.T) {
	t.Run("empty path is stdout", func(t *testing.T) {
		f, err := SelectOutputFile("")
		require.NoError(t, err)
		assert.Equal(t, os.Stdout, f)
	})

	t.Run("creates file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.csv")
		f, err := SelectOutputFile(path)
		require.NoError(t, err)
		defer func() { _ = f.Close() }()
		_, err = os.Stat(path)
		assert.NoError(t, err)
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := SelectOutputFile(filepath.Join(t.TempDir(), "missing", "out.csv"))
		assert.Error(t, err)
	})
}

func TestGetRunsDBFilePath(t *testing.T) {
	path := GetRunsDBFilePath()
	assert.True(t, strings.HasSuffix(path, ".planbench_runs.db"))
}

func TestTruncateName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		width    int
		expected string
	}{
		{"short", "RRT", 10, "RRT"},
		{"exact", "RRTstar", 7, "RRTstar"},
		{"truncated", "InformedRRTstar", 8, "Infor..."},
		{"tiny width", "InformedRRTstar", 3, "InformedRRTstar"},
		{"unicode", "αβγδεζηθ", 5, "αβ..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TruncateName(tt.input, tt.width))
		})
	}
}

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"yes", "TRUE", "1"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.True(t, v, s)
	}
	for _, s := range []string{"no", "False", "0"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.False(t, v, s)
	}
	_, err := ParseBoolString("maybe")
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelWarn)
	logger.Info("hidden")
	logger.Warn("shown", "planner", "RRT")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "planner=RRT")
}
