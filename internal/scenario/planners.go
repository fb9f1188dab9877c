package scenario

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math"
	"time"

	"github.com/huangsam/planbench/internal/contract"
	"github.com/huangsam/planbench/schema"
)

// budgetEpsilon lets a stage budget equal to the time limit count as reached.
const budgetEpsilon = 1e-9

// planner is the demo strategy behind the direct and replay kinds.
// Direct connects start and goal and fails when the segment collides.
// Replay returns recorded waypoints, optionally staged by time budget.
type planner struct {
	def      PlannerDef
	shape    []schema.Point
	settings map[string]any
	fail     bool
	delay    time.Duration

	solution     schema.Trajectory
	planningTime time.Duration
	intermediary []schema.IntermediateSolution
}

var (
	_ contract.Planner          = &planner{} // Compile-time check
	_ contract.SettingsReporter = &planner{}
	_ contract.ControlPlanner   = &planner{}
)

// newPlanner builds a planner from its definition.
func newPlanner(def PlannerDef, shape []schema.Point, _ *contract.RunContext) (contract.Planner, error) {
	if def.ConstructError != "" {
		return nil, errors.New(def.ConstructError)
	}
	p := &planner{
		def:      def,
		shape:    shape,
		settings: map[string]any{"kind": def.Kind},
		fail:     def.Fail,
		delay:    time.Duration(def.DelaySeconds * float64(time.Second)),
	}
	maps.Copy(p.settings, def.Settings)
	return p, nil
}

func (p *planner) Name() string { return p.def.Name }

// Configure applies run-time settings. "fail" and "delay" change behavior; other keys are only reported.
func (p *planner) Configure(settings map[string]any) error {
	for key, value := range settings {
		switch key {
		case "fail":
			fail, ok := value.(bool)
			if !ok {
				return fmt.Errorf("setting fail must be a boolean (received %v)", value)
			}
			p.fail = fail
		case "delay":
			secs, ok := toFloat(value)
			if !ok || secs < 0 {
				return fmt.Errorf("setting delay must be a non-negative number of seconds (received %v)", value)
			}
			p.delay = time.Duration(secs * float64(time.Second))
		}
		p.settings[key] = value
	}
	return nil
}

func (p *planner) Run(ctx context.Context, rc *contract.RunContext) (bool, error) {
	started := time.Now()
	defer func() { p.planningTime = time.Since(started) }()
	p.solution = nil
	p.intermediary = nil

	if err := ctx.Err(); err != nil {
		return false, err
	}
	if p.delay > 0 {
		timer := time.NewTimer(min(p.delay, rc.Config.MaxPlanningTime))
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-timer.C:
		}
	}
	if p.def.Fault != "" {
		return false, errors.New(p.def.Fault)
	}
	if p.fail {
		return false, nil
	}

	if p.def.Kind == DirectPlanner {
		traj := steer(rc, nil)
		if pathCollides(rc, traj) {
			return false, nil
		}
		p.solution = traj
		return true, nil
	}

	waypoints, ok := p.selectWaypoints(rc)
	if !ok {
		return false, nil
	}
	p.solution = steer(rc, waypoints)
	return true, nil
}

// selectWaypoints picks the latest stage reachable within the time limit.
func (p *planner) selectWaypoints(rc *contract.RunContext) ([]schema.Pose, bool) {
	if len(p.def.Stages) == 0 {
		return p.def.Waypoints, true
	}
	limit := rc.Config.MaxPlanningTime.Seconds() + budgetEpsilon
	chosen := -1
	for i, stage := range p.def.Stages {
		if stage.Budget <= limit {
			chosen = i
		}
	}
	if chosen < 0 {
		return nil, false
	}
	if p.def.Intermediary {
		for _, stage := range p.def.Stages[:chosen+1] {
			traj := steer(rc, stage.Waypoints)
			p.intermediary = append(p.intermediary, schema.IntermediateSolution{
				Time:       stage.Budget,
				Cost:       traj.Length(),
				Trajectory: traj,
			})
		}
	}
	return p.def.Stages[chosen].Waypoints, true
}

func (p *planner) Solution() schema.Trajectory { return p.solution }

func (p *planner) PlanningTime() time.Duration { return p.planningTime }

func (p *planner) IntermediarySolutions() []schema.IntermediateSolution { return p.intermediary }

func (p *planner) IsValid(rc *contract.RunContext, traj schema.Trajectory) (bool, []schema.Pose) {
	return validateTrajectory(rc, p.shape, traj)
}

func (p *planner) Settings() map[string]any { return maps.Clone(p.settings) }

func (p *planner) ControlBased() bool { return p.def.Control }

// steer connects start, waypoints and goal. Interior poses face the next pose.
func steer(rc *contract.RunContext, waypoints []schema.Pose) schema.Trajectory {
	traj := make(schema.Trajectory, 0, len(waypoints)+2)
	rc.Recorder.Steering.Time(func() {
		traj = append(traj, rc.Start)
		traj = append(traj, waypoints...)
		traj = append(traj, rc.Goal)
		reheading(traj)
	})
	return traj
}

// reheading points every interior pose at its successor.
func reheading(traj schema.Trajectory) {
	for i := 1; i+1 < len(traj); i++ {
		traj[i].Heading = schema.Slope(traj[i], traj[i+1])
	}
}

// segmentChecker is a collision model that can test a straight segment exactly.
type segmentChecker interface {
	CollidesSegment(a, b schema.Point) bool
}

// pathCollides checks every segment of the trajectory.
func pathCollides(rc *contract.RunContext, traj schema.Trajectory) bool {
	for i := 1; i < len(traj); i++ {
		if segmentCollides(rc, traj[i-1], traj[i]) {
			return true
		}
	}
	return false
}

// segmentCollides checks the segment from a to b. Grid environments walk every cell the
// segment crosses; other models are sampled at a quarter of the interpolation step.
func segmentCollides(rc *contract.RunContext, a, b schema.Pose) bool {
	if sc, ok := rc.Environment().(segmentChecker); ok {
		var hit bool
		rc.Recorder.Collision.Time(func() {
			hit = sc.CollidesSegment(schema.Point{X: a.X, Y: a.Y}, schema.Point{X: b.X, Y: b.Y})
		})
		return hit
	}
	step := rc.Config.InterpolationStep
	if step <= 0 {
		step = contract.DefaultInterpolationStep
	}
	step /= 4
	n := max(1, int(math.Ceil(a.DistanceTo(b)/step)))
	for k := 0; k <= n; k++ {
		f := float64(k) / float64(n)
		if rc.Collision.Collides(a.X+f*(b.X-a.X), a.Y+f*(b.Y-a.Y)) {
			return true
		}
	}
	return false
}

// validateTrajectory checks every pose as a point or, for the polygon model, as a footprint.
// In the point model a pose also collides when the segment reaching it crosses an obstacle.
func validateTrajectory(rc *contract.RunContext, shape []schema.Point, traj schema.Trajectory) (bool, []schema.Pose) {
	polygon := rc.Config.CollisionModel == schema.PolygonCollision && len(shape) >= 3
	collisions := []schema.Pose{}
	for i, pose := range traj {
		var hit bool
		if polygon {
			hit = rc.Collision.CollidesPolygon(Footprint(shape, pose))
		} else {
			hit = rc.Collision.Collides(pose.X, pose.Y) || (i > 0 && segmentCollides(rc, traj[i-1], pose))
		}
		if hit {
			collisions = append(collisions, pose)
		}
	}
	return len(collisions) == 0, collisions
}

// toFloat converts YAML and JSON numbers.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
