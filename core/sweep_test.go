package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/huangsam/planbench/internal/contract"
	"github.com/huangsam/planbench/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyFactory fails run on the planner it builds first and succeeds on later ones.
func flakyFactory(name string, calls *int) contract.PlannerFactory {
	return contract.PlannerFactory{
		Name: name,
		New: func(*contract.RunContext) (contract.Planner, error) {
			*calls++
			if *calls == 1 {
				return newFakePlanner(name), nil
			}
			return newFakePlanner(name, straightLine(10)), nil
		},
	}
}

func TestSweepFailureDoesNotAbort(t *testing.T) {
	rc := testRunContext(testConfig(), openField{size: 20})
	flakyCalls := 0
	factories := []contract.PlannerFactory{
		flakyFactory("flaky", &flakyCalls),
		factoryFor(newFakePlanner("steady", straightLine(10)), nil),
	}

	entries, err := Sweep(context.Background(), rc, factories, SweepOptions{Workers: 2})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	failed := entries[0]
	assert.Equal(t, "flaky", failed.Planner)
	assert.Equal(t, schema.OutcomePlanningFailure, failed.Outcome)
	assertEmptyMetrics(t, failed.Stats)
	assert.Empty(t, failed.Trajectory)

	assert.Equal(t, "steady", entries[1].Planner)
	assert.True(t, entries[1].Succeeded())

	entries, err = Sweep(context.Background(), rc, factories[:1], SweepOptions{Workers: 1})
	require.NoError(t, err)
	assert.True(t, entries[0].Succeeded(), "second construction succeeds")
	assert.Equal(t, 2, flakyCalls)
}

func TestSweepIsolatesRunContexts(t *testing.T) {
	cfg := testConfig()
	cfg.Steering = schema.CCDubinsSteering
	rc := testRunContext(cfg, openField{size: 20})

	spacing := &fakeSmoother{name: "spacing", spacing: true}
	smoothers := []contract.SmootherFactory{{
		Name: "spacing",
		New:  func(*contract.RunContext) (contract.Smoother, error) { return spacing, nil },
	}}
	factories := []contract.PlannerFactory{
		factoryFor(newFakePlanner("A", straightLine(10)), nil),
		factoryFor(newFakePlanner("B", straightLine(8)), nil),
		factoryFor(newFakePlanner("C", straightLine(6)), nil),
	}

	entries, err := Sweep(context.Background(), rc, factories, SweepOptions{Workers: 3, Smoothers: smoothers})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for _, entry := range entries {
		assert.Contains(t, entry.Smoothing, "spacing")
	}
	assert.Len(t, spacing.observed, 3)
	assert.Equal(t, contract.DefaultMinNodeDistance, rc.Config.MinNodeDistance)
	assert.Zero(t, rc.Recorder.CollisionSeconds(), "parent timers untouched")
}

func TestSweepAnytime(t *testing.T) {
	rc := testRunContext(testConfig(), openField{size: 20})
	factories := []contract.PlannerFactory{factoryFor(newFakePlanner("A", straightLine(10)), nil)}

	budgets := []time.Duration{time.Second, 2 * time.Second}
	entries, err := Sweep(context.Background(), rc, factories, SweepOptions{Workers: 1, Budgets: budgets})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Len(t, entries[0].Intermediary, 2)
	assert.Equal(t, time.Second, rc.Config.MaxPlanningTime)
}

func TestSweepSmoothingFailures(t *testing.T) {
	rc := testRunContext(testConfig(), openField{size: 20})
	factories := []contract.PlannerFactory{factoryFor(newFakePlanner("A", straightLine(10)), nil)}

	t.Run("panic", func(t *testing.T) {
		smoothers := []contract.SmootherFactory{{
			Name: "crash",
			New: func(*contract.RunContext) (contract.Smoother, error) {
				return &fakeSmoother{name: "crash", panics: true}, nil
			},
		}}
		entries, err := Sweep(context.Background(), rc, factories, SweepOptions{Workers: 1, Smoothers: smoothers})
		require.NoError(t, err)
		assert.True(t, entries[0].Succeeded())
		assert.Empty(t, entries[0].Smoothing)
	})

	t.Run("panic keeps finished smoothers", func(t *testing.T) {
		smoothers := []contract.SmootherFactory{
			{
				Name: "ok",
				New: func(*contract.RunContext) (contract.Smoother, error) {
					return &fakeSmoother{name: "ok"}, nil
				},
			},
			{
				Name: "crash",
				New: func(*contract.RunContext) (contract.Smoother, error) {
					return &fakeSmoother{name: "crash", panics: true}, nil
				},
			},
		}
		entries, err := Sweep(context.Background(), rc, factories, SweepOptions{Workers: 1, Smoothers: smoothers})
		require.NoError(t, err)
		require.Len(t, entries[0].Smoothing, 1)
		assert.Contains(t, entries[0].Smoothing, "ok")
	})

	t.Run("construction", func(t *testing.T) {
		smoothers := []contract.SmootherFactory{{
			Name: "missing",
			New: func(*contract.RunContext) (contract.Smoother, error) {
				return nil, errors.New("unknown smoother")
			},
		}}
		entries, err := Sweep(context.Background(), rc, factories, SweepOptions{Workers: 1, Smoothers: smoothers})
		require.NoError(t, err)
		assert.True(t, entries[0].Succeeded())
		assert.Empty(t, entries[0].Smoothing)
	})
}

func TestSweepPlannerAccessorPanics(t *testing.T) {
	for _, method := range []string{"Solution", "PlanningTime", "Settings", "Name"} {
		t.Run(method, func(t *testing.T) {
			rc := testRunContext(testConfig(), openField{size: 20})
			broken := newFakePlanner("broken", straightLine(10))
			broken.panicIn = method
			factories := []contract.PlannerFactory{
				factoryFor(broken, nil),
				factoryFor(newFakePlanner("steady", straightLine(10)), nil),
			}

			entries, err := Sweep(context.Background(), rc, factories, SweepOptions{Workers: 1})
			require.NoError(t, err)
			require.Len(t, entries, 2)

			assert.Equal(t, "broken", entries[0].Planner)
			assert.False(t, entries[0].Succeeded())
			assert.Contains(t, entries[0].Error, "exploded")
			assertEmptyMetrics(t, entries[0].Stats)
			assert.True(t, entries[1].Succeeded())
		})
	}
}

func TestSweepCancelled(t *testing.T) {
	rc := testRunContext(testConfig(), openField{size: 20})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	factories := []contract.PlannerFactory{factoryFor(newFakePlanner("A", straightLine(10)), nil)}
	entries, err := Sweep(ctx, rc, factories, SweepOptions{Workers: 1})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, entries)
}
