// Package metric computes path quality metrics over trajectories.
package metric

import (
	"math"
	"slices"

	"github.com/huangsam/planbench/internal/contract"
	"github.com/huangsam/planbench/schema"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// minSegment is the shortest segment that still contributes to angle based metrics.
const minSegment = 1e-9

// Clearing holds the clearing distance statistics of a trajectory.
type Clearing struct {
	Mean   float64
	Median float64
	Min    float64
	Max    float64
}

// EmptyClearing returns clearing statistics with every field unset.
func EmptyClearing() Clearing {
	return Clearing{
		Mean:   schema.EmptyMetric,
		Median: schema.EmptyMetric,
		Min:    schema.EmptyMetric,
		Max:    schema.EmptyMetric,
	}
}

// TotalCost sums the objective motion cost of every segment.
func TotalCost(traj schema.Trajectory, objective contract.Objective) float64 {
	cost := 0.0
	for i := 1; i < len(traj); i++ {
		cost += objective.MotionCost(traj[i-1], traj[i])
	}
	return cost
}

// Curvature returns the maximum curvature and the length normalized curvature of a trajectory.
// Curvature at an interior pose is the Menger curvature of the triangle it forms with its neighbours.
// Degenerate triples are skipped.
func Curvature(traj schema.Trajectory) (maxCurvature, normalized float64) {
	length := traj.Length()
	if len(traj) < 3 || length < minSegment {
		return 0, 0
	}
	integral := 0.0
	for i := 1; i+1 < len(traj); i++ {
		a, b, c := traj[i-1], traj[i], traj[i+1]
		ab, bc, ca := a.DistanceTo(b), b.DistanceTo(c), c.DistanceTo(a)
		if ab < minSegment || bc < minSegment || ca < minSegment {
			continue
		}
		cross := (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
		k := 2 * math.Abs(cross) / (ab * bc * ca)
		maxCurvature = math.Max(maxCurvature, k)
		integral += k * (ab + bc) / 2
	}
	return maxCurvature, integral / length
}

// AngleOverLength returns the summed absolute heading change divided by the length.
func AngleOverLength(traj schema.Trajectory) float64 {
	length := traj.Length()
	if length < minSegment {
		return 0
	}
	turn := 0.0
	prev := math.NaN()
	for i := 1; i < len(traj); i++ {
		if traj[i-1].DistanceTo(traj[i]) < minSegment {
			continue
		}
		slope := schema.Slope(traj[i-1], traj[i])
		if !math.IsNaN(prev) {
			turn += math.Abs(schema.NormalizeAngle(slope - prev))
		}
		prev = slope
	}
	return turn / length
}

// Smoothness returns the sum of squared turning angles weighted by the adjacent segment lengths.
// Straight paths score 0; the value grows with sharper turns.
func Smoothness(traj schema.Trajectory) float64 {
	s := 0.0
	for i := 2; i < len(traj); i++ {
		a := traj[i-2].DistanceTo(traj[i-1])
		b := traj[i-1].DistanceTo(traj[i])
		c := traj[i-2].DistanceTo(traj[i])
		if a < minSegment || b < minSegment {
			continue
		}
		cosine := (a*a + b*b - c*c) / (2 * a * b)
		cosine = math.Max(-1, math.Min(1, cosine))
		k := 2 * (math.Pi - math.Acos(cosine)) / (a + b)
		s += k * k
	}
	return s
}

// ClearingDistances returns distance statistics to the closest obstacle over all poses.
// It returns EmptyClearing when the collision model does not support distance queries.
func ClearingDistances(traj schema.Trajectory, collision contract.CollisionModel) Clearing {
	if len(traj) == 0 || collision.Distance(0, 0) < 0 {
		return EmptyClearing()
	}
	distances := make([]float64, len(traj))
	for i, p := range traj {
		distances[i] = collision.Distance(p.X, p.Y)
	}
	slices.Sort(distances)
	return Clearing{
		Mean:   stat.Mean(distances, nil),
		Median: stat.Quantile(0.5, stat.Empirical, distances, nil),
		Min:    floats.Min(distances),
		Max:    floats.Max(distances),
	}
}

// Cusps returns the poses where the heading of travel changes by more than threshold radians.
// Duplicate poses are skipped so a repeated pose never hides or creates a cusp.
func Cusps(traj schema.Trajectory, threshold float64) []schema.Pose {
	cusps := []schema.Pose{}
	if len(traj) < 3 {
		return cusps
	}
	prev, cur, next := 0, 1, 2
	for next < len(traj) {
		switch {
		case traj[prev].DistanceTo(traj[cur]) <= 0:
			cur++
			next++
		case traj[cur].DistanceTo(traj[next]) <= 0:
			next++
		default:
			before := schema.Slope(traj[prev], traj[cur])
			after := schema.Slope(traj[cur], traj[next])
			if math.Abs(schema.NormalizeAngle(after-before)) > threshold {
				cusps = append(cusps, traj[cur])
			}
			prev = cur
			cur = next
			next++
		}
	}
	return cusps
}
