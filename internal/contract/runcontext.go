package contract

import (
	"io"
	"log/slog"

	"github.com/huangsam/planbench/schema"
)

// CCDubinsMinNodeDistance is the node spacing spacing-sensitive smoothers need under cc_dubins steering.
const CCDubinsMinNodeDistance = 40.0

// SearchPlannerPrefix marks search-based planners that use their own grid steering.
const SearchPlannerPrefix = "SBPL"

// RunContext carries the configuration, timers and environment of one benchmark task.
// A RunContext must not be shared by concurrent evaluations; use Isolate instead.
type RunContext struct {
	Config    *Config
	Recorder  *RunRecorder
	Collision CollisionModel // timed by Recorder.Collision
	Objective Objective
	Start     schema.Pose
	Goal      schema.Pose
	Logger    *slog.Logger

	environment CollisionModel
}

// NewRunContext builds a RunContext whose collision checks are timed by a fresh recorder.
// The objective may be nil and set later by the caller.
func NewRunContext(cfg *Config, environment CollisionModel, start, goal schema.Pose, logger *slog.Logger) *RunContext {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	recorder := NewRunRecorder()
	return &RunContext{
		Config:      cfg,
		Recorder:    recorder,
		Collision:   &timedCollision{inner: environment, watch: &recorder.Collision},
		Start:       start,
		Goal:        goal,
		Logger:      logger,
		environment: environment,
	}
}

// Environment returns the collision model without timing.
func (rc *RunContext) Environment() CollisionModel {
	return rc.environment
}

// Isolate returns a copy with a cloned Config and fresh timers.
// The environment and objective are shared and must be safe for concurrent reads.
func (rc *RunContext) Isolate() *RunContext {
	iso := NewRunContext(rc.Config.Clone(), rc.environment, rc.Start, rc.Goal, rc.Logger)
	iso.Objective = rc.Objective
	return iso
}

// timedCollision charges every collision query to a stopwatch.
type timedCollision struct {
	inner CollisionModel
	watch *Stopwatch
}

var _ CollisionModel = &timedCollision{} // Compile-time check

func (t *timedCollision) Collides(x, y float64) bool {
	t.watch.Start()
	defer t.watch.Stop()
	return t.inner.Collides(x, y)
}

func (t *timedCollision) CollidesPolygon(polygon []schema.Point) bool {
	t.watch.Start()
	defer t.watch.Stop()
	return t.inner.CollidesPolygon(polygon)
}

func (t *timedCollision) Distance(x, y float64) float64 {
	return t.inner.Distance(x, y)
}

func (t *timedCollision) DistanceGradient(x, y float64) (float64, float64) {
	return t.inner.DistanceGradient(x, y)
}

// Preserve snapshots *target and returns a function that restores it.
// Use it as `defer Preserve(&field)()` around code that mutates the field.
func Preserve[T any](target *T) (restore func()) {
	prev := *target
	return func() { *target = prev }
}

// Override sets *target to value and returns a function that restores the previous value.
func Override[T any](target *T, value T) (restore func()) {
	restore = Preserve(target)
	*target = value
	return restore
}
