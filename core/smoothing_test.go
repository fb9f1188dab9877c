package core

import (
	"context"
	"testing"

	"github.com/huangsam/planbench/internal/contract"
	"github.com/huangsam/planbench/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmoothAll(t *testing.T) {
	rc := testRunContext(testConfig(), openField{size: 20})
	planner := newFakePlanner("RRT", nil)
	base := schema.Trajectory{{X: 0, Y: 1}, {X: 3, Y: 1}, {X: 6, Y: 1}, {X: 10, Y: 1}}

	shortcut := &fakeSmoother{name: "shortcut"}
	second := &fakeSmoother{name: "second"}
	results, err := NewEvaluator(rc).SmoothAll(context.Background(), planner, base, []contract.Smoother{shortcut, second})
	require.NoError(t, err)
	require.Len(t, results, 2)

	entry := results["shortcut"]
	assert.Equal(t, "shortcut", entry.Name)
	assert.Len(t, entry.Path, 2)
	assert.InDelta(t, 10, entry.Cost, 1e-9)
	assert.Equal(t, 0.001, entry.Time)
	assert.True(t, entry.Stats.PathFound)
	assert.Equal(t, true, entry.Extra["pruned"])
	assert.Len(t, base, 4, "base trajectory untouched")
}

func TestSmoothAllStopsOnError(t *testing.T) {
	rc := testRunContext(testConfig(), openField{size: 20})
	planner := newFakePlanner("RRT", nil)

	first := &fakeSmoother{name: "first"}
	broken := &fakeSmoother{name: "broken", err: errSmoother}
	never := &fakeSmoother{name: "never"}
	results, err := NewEvaluator(rc).SmoothAll(context.Background(), planner, straightLine(10), []contract.Smoother{first, broken, never})
	assert.ErrorIs(t, err, errSmoother)
	assert.Contains(t, err.Error(), "broken")
	assert.Len(t, results, 1)
	assert.Contains(t, results, "first")
	assert.Empty(t, never.observed)
}

func TestSmoothAllKeepsEntriesOnPanic(t *testing.T) {
	rc := testRunContext(testConfig(), openField{size: 20})
	planner := newFakePlanner("RRT", nil)

	first := &fakeSmoother{name: "first"}
	crash := &fakeSmoother{name: "crash", panics: true}
	never := &fakeSmoother{name: "never"}
	results, err := NewEvaluator(rc).SmoothAll(context.Background(), planner, straightLine(10), []contract.Smoother{first, crash, never})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smoother crash")
	assert.Contains(t, err.Error(), "smoother exploded")
	require.Len(t, results, 1)
	assert.Contains(t, results, "first")
	assert.Empty(t, never.observed)
}

func TestSmoothAllNodeSpacingOverride(t *testing.T) {
	t.Run("restored after error", func(t *testing.T) {
		cfg := testConfig()
		cfg.Steering = schema.CCDubinsSteering
		rc := testRunContext(cfg, openField{size: 20})

		smoother := &fakeSmoother{name: "spacing", spacing: true, err: errSmoother}
		_, err := NewEvaluator(rc).SmoothAll(context.Background(), newFakePlanner("RRT", nil), straightLine(10), []contract.Smoother{smoother})
		require.Error(t, err)
		assert.Equal(t, []float64{contract.CCDubinsMinNodeDistance}, smoother.observed)
		assert.Equal(t, contract.DefaultMinNodeDistance, rc.Config.MinNodeDistance)
	})

	t.Run("restored after panic", func(t *testing.T) {
		cfg := testConfig()
		cfg.Steering = schema.CCDubinsSteering
		rc := testRunContext(cfg, openField{size: 20})

		smoother := &fakeSmoother{name: "spacing", spacing: true, panics: true}
		_, err := NewEvaluator(rc).SmoothAll(context.Background(), newFakePlanner("RRT", nil), straightLine(10), []contract.Smoother{smoother})
		require.Error(t, err)
		assert.Equal(t, contract.DefaultMinNodeDistance, rc.Config.MinNodeDistance)
	})

	t.Run("scoped to one smoother", func(t *testing.T) {
		cfg := testConfig()
		cfg.Steering = schema.CCDubinsSteering
		rc := testRunContext(cfg, openField{size: 20})

		spacing := &fakeSmoother{name: "spacing", spacing: true}
		plain := &fakeSmoother{name: "plain"}
		_, err := NewEvaluator(rc).SmoothAll(context.Background(), newFakePlanner("RRT", nil), straightLine(10), []contract.Smoother{spacing, plain})
		require.NoError(t, err)
		assert.Equal(t, []float64{contract.CCDubinsMinNodeDistance}, spacing.observed)
		assert.Equal(t, []float64{contract.DefaultMinNodeDistance}, plain.observed)
	})

	t.Run("other steering modes keep spacing", func(t *testing.T) {
		cfg := testConfig()
		cfg.Steering = schema.DubinsSteering
		rc := testRunContext(cfg, openField{size: 20})

		spacing := &fakeSmoother{name: "spacing", spacing: true}
		_, err := NewEvaluator(rc).SmoothAll(context.Background(), newFakePlanner("RRT", nil), straightLine(10), []contract.Smoother{spacing})
		require.NoError(t, err)
		assert.Equal(t, []float64{contract.DefaultMinNodeDistance}, spacing.observed)
	})
}
