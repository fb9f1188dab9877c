package schema

import "math"

// interpolationEpsilon absorbs rounding so already interpolated segments are not split again.
const interpolationEpsilon = 1e-9

// Point is a 2D location, used for robot footprints and obstacle polygons.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Pose is a 2D position plus heading in radians.
type Pose struct {
	X       float64 `json:"x" yaml:"x"`
	Y       float64 `json:"y" yaml:"y"`
	Heading float64 `json:"heading" yaml:"heading"`
}

// DistanceTo returns the Euclidean distance between the positions of two poses.
func (p Pose) DistanceTo(o Pose) float64 {
	return math.Hypot(o.X-p.X, o.Y-p.Y)
}

// Trajectory is an ordered sequence of poses.
type Trajectory []Pose

// InterpolationLimits bounds how far a trajectory may be densified.
type InterpolationLimits struct {
	MaxPoses  int     // Inputs or outputs above this pose count are left untouched
	MaxLength float64 // Inputs longer than this are left untouched
	Step      float64 // Maximum distance between consecutive interpolated poses
}

// NormalizeAngle wraps an angle into (-pi, pi].
func NormalizeAngle(a float64) float64 {
	n := math.Atan2(math.Sin(a), math.Cos(a))
	if n == -math.Pi {
		return math.Pi
	}
	return n
}

// Slope returns the normalized heading of the segment from a to b.
func Slope(a, b Pose) float64 {
	return NormalizeAngle(math.Atan2(b.Y-a.Y, b.X-a.X))
}

// Valid reports whether the trajectory has enough poses for metrics.
func (t Trajectory) Valid() bool {
	return len(t) >= 2
}

// Length returns the summed Euclidean length of all segments.
func (t Trajectory) Length() float64 {
	total := 0.0
	for i := 1; i < len(t); i++ {
		total += t[i-1].DistanceTo(t[i])
	}
	return total
}

// Clone returns a copy that does not share the backing array.
func (t Trajectory) Clone() Trajectory {
	if t == nil {
		return nil
	}
	out := make(Trajectory, len(t))
	copy(out, t)
	return out
}

// Last returns the final pose and false when the trajectory is empty.
func (t Trajectory) Last() (Pose, bool) {
	if len(t) == 0 {
		return Pose{}, false
	}
	return t[len(t)-1], true
}

// Interpolate returns a densified copy where no segment is longer than limits.Step.
// The original trajectory is returned unchanged when it is too short to interpolate,
// when it already exceeds MaxPoses or MaxLength, or when the result would exceed MaxPoses.
func (t Trajectory) Interpolate(limits InterpolationLimits) Trajectory {
	if len(t) < 2 || limits.Step <= 0 {
		return t
	}
	if limits.MaxPoses > 0 && len(t) > limits.MaxPoses {
		return t
	}
	if limits.MaxLength > 0 && t.Length() > limits.MaxLength {
		return t
	}

	total := 1
	for i := 1; i < len(t); i++ {
		total += segmentSteps(t[i-1], t[i], limits.Step)
	}
	if limits.MaxPoses > 0 && total > limits.MaxPoses {
		return t
	}

	out := make(Trajectory, 0, total)
	out = append(out, t[0])
	for i := 1; i < len(t); i++ {
		a, b := t[i-1], t[i]
		n := segmentSteps(a, b, limits.Step)
		heading := Slope(a, b)
		for k := 1; k < n; k++ {
			f := float64(k) / float64(n)
			out = append(out, Pose{
				X:       a.X + f*(b.X-a.X),
				Y:       a.Y + f*(b.Y-a.Y),
				Heading: heading,
			})
		}
		out = append(out, b)
	}
	return out
}

// segmentSteps returns how many sub-segments a segment is split into.
func segmentSteps(a, b Pose, step float64) int {
	d := a.DistanceTo(b)
	if d <= step*(1+interpolationEpsilon) {
		return 1
	}
	return int(math.Ceil(d/step - interpolationEpsilon))
}
