package metric

import (
	"math"
	"testing"

	"github.com/huangsam/planbench/internal/contract"
	"github.com/huangsam/planbench/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wallModel has a single wall along x = 10.
type wallModel struct{ noDistance bool }

func (w wallModel) Collides(x, _ float64) bool { return x >= 10 }

func (w wallModel) CollidesPolygon(polygon []schema.Point) bool {
	for _, p := range polygon {
		if w.Collides(p.X, p.Y) {
			return true
		}
	}
	return false
}

func (w wallModel) Distance(x, _ float64) float64 {
	if w.noDistance {
		return -1
	}
	return math.Max(0, 10-x)
}

func (w wallModel) DistanceGradient(_, _ float64) (float64, float64) { return -1, 0 }

var _ contract.CollisionModel = wallModel{}

func poses(xy ...float64) schema.Trajectory {
	out := make(schema.Trajectory, 0, len(xy)/2)
	for i := 0; i+1 < len(xy); i += 2 {
		out = append(out, schema.Pose{X: xy[i], Y: xy[i+1]})
	}
	return out
}

func TestCuspsStraightLine(t *testing.T) {
	for _, threshold := range []float64{0.1, math.Pi / 2, contract.DefaultCuspAngleThreshold, math.Pi} {
		assert.Empty(t, Cusps(poses(0, 0, 1, 0, 2, 0, 3, 0, 4, 0), threshold))
	}
}

func TestCuspsReversal(t *testing.T) {
	traj := poses(0, 0, 1, 0, 2, 0, 1, 0, 0, 0)
	for _, threshold := range []float64{0.1, 1, math.Pi / 2, contract.DefaultCuspAngleThreshold, math.Pi - 1e-6} {
		cusps := Cusps(traj, threshold)
		require.Len(t, cusps, 1, "threshold %v", threshold)
		assert.Equal(t, schema.Pose{X: 2, Y: 0}, cusps[0])
	}
}

func TestCuspsSkipsDuplicates(t *testing.T) {
	traj := poses(0, 0, 0, 0, 1, 0, 2, 0, 2, 0, 2, 0, 1, 0)
	cusps := Cusps(traj, contract.DefaultCuspAngleThreshold)
	require.Len(t, cusps, 1)
	assert.Equal(t, schema.Pose{X: 2, Y: 0}, cusps[0])
}

func TestCuspsShortInput(t *testing.T) {
	assert.Empty(t, Cusps(nil, 1))
	assert.Empty(t, Cusps(poses(0, 0, 1, 0), 1))
	assert.NotNil(t, Cusps(nil, 1))
}

func TestRightAngleTurn(t *testing.T) {
	turn := poses(0, 0, 1, 0, 1, 1, 2, 1)
	maxK, normalized := Curvature(turn)
	assert.Positive(t, maxK)
	assert.Positive(t, normalized)
	assert.Empty(t, Cusps(turn, contract.DefaultCuspAngleThreshold))

	reversed := poses(0, 0, 1, 1, 1, 0, 2, 1)
	assert.NotEmpty(t, Cusps(reversed, contract.DefaultCuspAngleThreshold))
}

func TestCurvature(t *testing.T) {
	maxK, normalized := Curvature(poses(0, 0, 1, 0, 2, 0))
	assert.Zero(t, maxK)
	assert.Zero(t, normalized)

	// Points on a circle of radius 2 have curvature 1/2.
	circle := schema.Trajectory{}
	for i := range 5 {
		a := float64(i) * math.Pi / 8
		circle = append(circle, schema.Pose{X: 2 * math.Cos(a), Y: 2 * math.Sin(a)})
	}
	maxK, _ = Curvature(circle)
	assert.InDelta(t, 0.5, maxK, 1e-9)

	maxK, _ = Curvature(poses(0, 0, 0, 0, 1, 0))
	assert.Zero(t, maxK, "degenerate triple skipped")
}

func TestAngleOverLength(t *testing.T) {
	assert.Zero(t, AngleOverLength(poses(0, 0, 1, 0, 2, 0)))
	assert.InDelta(t, (math.Pi/2)/2, AngleOverLength(poses(0, 0, 1, 0, 1, 1)), 1e-12)
	assert.Zero(t, AngleOverLength(poses(1, 1, 1, 1)))
}

func TestSmoothness(t *testing.T) {
	assert.InDelta(t, 0, Smoothness(poses(0, 0, 1, 0, 2, 0)), 1e-12)
	assert.Greater(t, Smoothness(poses(0, 0, 1, 0, 1, 1)), Smoothness(poses(0, 0, 1, 0, 2, 1)))
}

func TestClearingDistances(t *testing.T) {
	traj := poses(0, 0, 2, 0, 4, 0, 9, 0)
	c := ClearingDistances(traj, wallModel{})
	assert.InDelta(t, (10+8+6+1)/4.0, c.Mean, 1e-12)
	assert.Equal(t, 1.0, c.Min)
	assert.Equal(t, 10.0, c.Max)
	assert.Equal(t, 6.0, c.Median)

	assert.Equal(t, EmptyClearing(), ClearingDistances(traj, wallModel{noDistance: true}))
	assert.Equal(t, EmptyClearing(), ClearingDistances(nil, wallModel{}))
}

func TestTotalCost(t *testing.T) {
	traj := poses(0, 0, 3, 4, 3, 5)
	assert.InDelta(t, 6, TotalCost(traj, PathLength{}), 1e-12)

	clearance := &Clearance{Collision: wallModel{}}
	assert.Greater(t, TotalCost(traj, clearance), TotalCost(traj, PathLength{}))

	fallback := &Clearance{Collision: wallModel{noDistance: true}}
	assert.InDelta(t, 6, TotalCost(traj, fallback), 1e-12)
}

func TestNewObjective(t *testing.T) {
	obj, err := NewObjective(schema.PathLengthObjective, wallModel{})
	require.NoError(t, err)
	assert.Equal(t, "path_length", obj.Name())

	obj, err = NewObjective(schema.ClearanceObjective, wallModel{})
	require.NoError(t, err)
	assert.Equal(t, "clearance", obj.Name())

	_, err = NewObjective("energy", wallModel{})
	assert.Error(t, err)
}
