package core

import (
	"context"
	"errors"
	"maps"
	"math"
	"sync"
	"time"

	"github.com/huangsam/planbench/internal/contract"
	"github.com/huangsam/planbench/schema"
)

// openField is an obstacle free square of the given size with a wall at x = size.
type openField struct {
	size       float64
	noDistance bool
}

func (o openField) Collides(x, y float64) bool {
	return x < 0 || y < 0 || x >= o.size || y >= o.size
}

func (o openField) CollidesPolygon(polygon []schema.Point) bool {
	for _, p := range polygon {
		if o.Collides(p.X, p.Y) {
			return true
		}
	}
	return false
}

func (o openField) Distance(x, _ float64) float64 {
	if o.noDistance {
		return -1
	}
	return math.Max(0, o.size-x)
}

func (o openField) DistanceGradient(_, _ float64) (float64, float64) { return -1, 0 }

// fakePlanner replays scripted results, one per Run call.
type fakePlanner struct {
	name         string
	solutions    []schema.Trajectory // nil solution means no path found
	errs         []error
	panicOn      int // Run index that panics, -1 for never
	panicIn      string // Method other than Run that panics
	invalid      bool
	control      bool
	settings     map[string]any
	intermediary []schema.IntermediateSolution
	configureErr error

	runs     int
	budgets  []time.Duration
	current  schema.Trajectory
	lastTime time.Duration
}

func newFakePlanner(name string, solutions ...schema.Trajectory) *fakePlanner {
	return &fakePlanner{name: name, solutions: solutions, panicOn: -1}
}

func (p *fakePlanner) Name() string {
	if p.panicIn == "Name" {
		panic("name exploded")
	}
	return p.name
}

func (p *fakePlanner) Configure(settings map[string]any) error {
	if p.configureErr != nil {
		return p.configureErr
	}
	if p.settings == nil {
		p.settings = map[string]any{}
	}
	maps.Copy(p.settings, settings)
	return nil
}

func (p *fakePlanner) Run(_ context.Context, rc *contract.RunContext) (bool, error) {
	idx := p.runs
	p.runs++
	p.budgets = append(p.budgets, rc.Config.MaxPlanningTime)
	p.lastTime = time.Duration(idx+1) * time.Millisecond
	rc.Collision.Collides(1, 1)
	rc.Recorder.Steering.Time(func() {})

	if idx == p.panicOn {
		panic("planner exploded")
	}
	if idx < len(p.errs) && p.errs[idx] != nil {
		return false, p.errs[idx]
	}
	if len(p.solutions) == 0 {
		return false, nil
	}
	sol := p.solutions[min(idx, len(p.solutions)-1)]
	if sol == nil {
		return false, nil
	}
	p.current = sol
	return true, nil
}

func (p *fakePlanner) Solution() schema.Trajectory {
	if p.panicIn == "Solution" {
		panic("solution exploded")
	}
	return p.current
}

func (p *fakePlanner) PlanningTime() time.Duration {
	if p.panicIn == "PlanningTime" {
		panic("planning time exploded")
	}
	return p.lastTime
}

func (p *fakePlanner) IntermediarySolutions() []schema.IntermediateSolution { return p.intermediary }

func (p *fakePlanner) IsValid(rc *contract.RunContext, traj schema.Trajectory) (bool, []schema.Pose) {
	if p.invalid {
		return false, []schema.Pose{traj[len(traj)/2]}
	}
	for _, pose := range traj {
		if rc.Collision.Collides(pose.X, pose.Y) {
			return false, []schema.Pose{pose}
		}
	}
	return true, nil
}

func (p *fakePlanner) Settings() map[string]any {
	if p.panicIn == "Settings" {
		panic("settings exploded")
	}
	return p.settings
}

func (p *fakePlanner) ControlBased() bool { return p.control }

// factoryFor wraps a fixed planner instance and counts constructions.
func factoryFor(p *fakePlanner, calls *int) contract.PlannerFactory {
	return contract.PlannerFactory{
		Name: p.name,
		New: func(*contract.RunContext) (contract.Planner, error) {
			if calls != nil {
				*calls++
			}
			return p, nil
		},
	}
}

// fakeSmoother records the node spacing it ran under.
type fakeSmoother struct {
	name     string
	spacing  bool
	err      error
	panics   bool
	mu       sync.Mutex
	observed []float64
}

func (s *fakeSmoother) Name() string { return s.name }

func (s *fakeSmoother) Run(_ context.Context, rc *contract.RunContext, traj schema.Trajectory) (schema.Trajectory, error) {
	s.mu.Lock()
	s.observed = append(s.observed, rc.Config.MinNodeDistance)
	s.mu.Unlock()
	if s.panics {
		panic("smoother exploded")
	}
	if s.err != nil {
		return nil, s.err
	}
	if len(traj) <= 2 {
		return traj, nil
	}
	return schema.Trajectory{traj[0], traj[len(traj)-1]}, nil
}

func (s *fakeSmoother) Elapsed() time.Duration { return time.Millisecond }

func (s *fakeSmoother) ExtraStats() map[string]any { return map[string]any{"pruned": true} }

func (s *fakeSmoother) RequiresNodeSpacing() bool { return s.spacing }

var errSmoother = errors.New("smoother failed")

func straightLine(length float64) schema.Trajectory {
	return schema.Trajectory{{X: 0, Y: 1}, {X: length / 2, Y: 1}, {X: length, Y: 1}}
}

func testConfig() *contract.Config {
	return &contract.Config{
		Planners:           []string{"A"},
		SteeringModes:      []schema.SteeringMode{schema.LinearSteering},
		Steering:           schema.LinearSteering,
		Runs:               1,
		Workers:            2,
		MaxPlanningTime:    time.Second,
		InterpolationLimit: contract.DefaultInterpolationLimit,
		MaxPathLength:      contract.DefaultMaxPathLength,
		InterpolationStep:  contract.DefaultInterpolationStep,
		CuspAngleThreshold: contract.DefaultCuspAngleThreshold,
		ExactGoalRadius:    contract.DefaultExactGoalRadius,
		MinNodeDistance:    contract.DefaultMinNodeDistance,
		Objective:          schema.PathLengthObjective,
		CollisionModel:     schema.PointCollision,
	}
}

func testRunContext(cfg *contract.Config, env contract.CollisionModel) *contract.RunContext {
	return contract.NewRunContext(cfg, env, schema.Pose{X: 0, Y: 1}, schema.Pose{X: 10, Y: 1}, nil)
}
