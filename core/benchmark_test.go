package core

import (
	"context"
	"errors"
	"testing"

	"github.com/huangsam/planbench/internal/contract"
	"github.com/huangsam/planbench/internal/runstore"
	"github.com/huangsam/planbench/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testBenchmark() *Benchmark {
	return &Benchmark{
		Name:        "open-field",
		Environment: openField{size: 20},
		Start:       schema.Pose{X: 0, Y: 1},
		Goal:        schema.Pose{X: 10, Y: 1},
		Planners: []contract.PlannerFactory{
			factoryFor(newFakePlanner("A", straightLine(10)), nil),
			factoryFor(newFakePlanner("B"), nil),
		},
		Smoothers: []contract.SmootherFactory{{
			Name: "shortcut",
			New:  func(*contract.RunContext) (contract.Smoother, error) { return &fakeSmoother{name: "shortcut"}, nil },
		}},
	}
}

func TestRunBenchmark(t *testing.T) {
	cfg := testConfig()
	cfg.Runs = 2
	cfg.SteeringModes = []schema.SteeringMode{schema.LinearSteering, schema.DubinsSteering}

	mockStore := &runstore.MockRunStore{}
	mockStore.On("BeginRun", mock.Anything, "open-field", mock.Anything, mock.Anything, mock.Anything).Return(int64(7), nil)
	mockStore.On("RecordPlanStats", int64(7), mock.Anything).Return(nil)
	mockStore.On("EndRun", int64(7), mock.Anything, 2).Return(nil)
	mockMgr := &runstore.MockStoreManager{}
	mockMgr.On("GetRunStore").Return(mockStore)

	reports, err := RunBenchmark(context.Background(), cfg, testBenchmark(), mockMgr, nil)
	require.NoError(t, err)
	require.Len(t, reports, 4)

	assert.Equal(t, schema.LinearSteering, reports[0].Steering)
	assert.Equal(t, schema.DubinsSteering, reports[1].Steering)
	assert.Equal(t, 1, reports[2].Iteration)
	assert.NotEqual(t, reports[0].RunID, reports[1].RunID)

	for _, report := range reports {
		assert.Equal(t, []string{"A", "B"}, report.Order)
		assert.True(t, report.Plans["A"].Succeeded())
		assert.Contains(t, report.Plans["A"].Smoothing, "shortcut")
		assert.False(t, report.Plans["B"].Succeeded())
		assert.False(t, report.EndedAt.Before(report.StartedAt))
		assert.Equal(t, string(report.Steering), report.Settings["steering"])
	}

	mockStore.AssertNumberOfCalls(t, "BeginRun", 4)
	mockStore.AssertNumberOfCalls(t, "EndRun", 4)
	// A: plan and smoothing rows, B: plan row.
	mockStore.AssertNumberOfCalls(t, "RecordPlanStats", 12)
	assert.Equal(t, schema.LinearSteering, cfg.Steering, "caller config untouched")
}

func TestRunBenchmarkStoreFailures(t *testing.T) {
	mockStore := &runstore.MockRunStore{}
	mockStore.On("BeginRun", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(int64(0), errors.New("database is locked"))
	mockMgr := &runstore.MockStoreManager{}
	mockMgr.On("GetRunStore").Return(mockStore)

	reports, err := RunBenchmark(context.Background(), testConfig(), testBenchmark(), mockMgr, nil)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	mockStore.AssertNotCalled(t, "RecordPlanStats", mock.Anything, mock.Anything)
	mockStore.AssertNotCalled(t, "EndRun", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunBenchmarkWithoutStore(t *testing.T) {
	mockMgr := &runstore.MockStoreManager{}
	mockMgr.On("GetRunStore").Return(nil)

	reports, err := RunBenchmark(context.Background(), testConfig(), testBenchmark(), mockMgr, nil)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	mockMgr.AssertExpectations(t)

	reports, err = RunBenchmark(context.Background(), testConfig(), testBenchmark(), nil, nil)
	require.NoError(t, err)
	assert.Len(t, reports, 1)
}

func TestRunBenchmarkSetupErrors(t *testing.T) {
	cfg := testConfig()
	cfg.CollisionModel = schema.PolygonCollision
	bench := testBenchmark()
	bench.RobotShape = []schema.Point{{X: 0, Y: 0}, {X: 1, Y: 0}}

	reports, err := RunBenchmark(context.Background(), cfg, bench, nil, nil)
	assert.Error(t, err)
	assert.Nil(t, reports)

	bench = testBenchmark()
	bench.Planners = nil
	_, err = RunBenchmark(context.Background(), testConfig(), bench, nil, nil)
	assert.Error(t, err)

	cfg = testConfig()
	cfg.Objective = "energy"
	_, err = RunBenchmark(context.Background(), cfg, testBenchmark(), nil, nil)
	assert.Error(t, err)
}
