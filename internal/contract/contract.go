// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/planbench/schema"
)

// Planner is an opaque planning strategy driven by the evaluator.
// Implementations are expected to respect rc.Config.MaxPlanningTime on their own.
type Planner interface {
	// Name returns the display name used as the report key.
	Name() string

	// Configure applies planner specific settings before the first run.
	Configure(settings map[string]any) error

	// Run searches for a solution. It returns false when no solution was found
	// and an error only for exceptional conditions.
	Run(ctx context.Context, rc *RunContext) (bool, error)

	// Solution returns the latest solution found by Run.
	Solution() schema.Trajectory

	// PlanningTime returns the wall-clock time spent in the latest Run.
	PlanningTime() time.Duration

	// IntermediarySolutions returns the solutions reported while searching, in order.
	IntermediarySolutions() []schema.IntermediateSolution

	// IsValid re-checks a trajectory against the collision model and returns the colliding poses.
	IsValid(rc *RunContext, traj schema.Trajectory) (bool, []schema.Pose)
}

// SettingsReporter is implemented by planners that expose their configuration snapshot.
type SettingsReporter interface {
	Settings() map[string]any
}

// ControlPlanner is implemented by planners that produce control-based paths,
// for which smoothness is not defined.
type ControlPlanner interface {
	ControlBased() bool
}

// PlannerFactory builds a new planner instance for one evaluation.
type PlannerFactory struct {
	Name string
	New  func(rc *RunContext) (Planner, error)
}

// Smoother is a post-processing strategy applied to a planner solution.
type Smoother interface {
	Name() string
	Run(ctx context.Context, rc *RunContext, traj schema.Trajectory) (schema.Trajectory, error)
	Elapsed() time.Duration
	ExtraStats() map[string]any
}

// SmootherFactory builds a new smoother instance for one evaluation.
type SmootherFactory struct {
	Name string
	New  func(rc *RunContext) (Smoother, error)
}

// SpacingSensitive is implemented by smoothers that depend on Config.MinNodeDistance.
type SpacingSensitive interface {
	RequiresNodeSpacing() bool
}

// CollisionModel is the environment a planner is evaluated against.
type CollisionModel interface {
	// Collides reports whether the point is in collision or outside the environment.
	Collides(x, y float64) bool

	// CollidesPolygon reports whether any part of the polygon is in collision.
	CollidesPolygon(polygon []schema.Point) bool

	// Distance returns the distance to the closest obstacle, or a negative value if unsupported.
	Distance(x, y float64) float64

	// DistanceGradient returns the gradient of the distance field.
	DistanceGradient(x, y float64) (dx, dy float64)
}

// Objective assigns a cost to a motion between two poses.
type Objective interface {
	Name() string
	MotionCost(a, b schema.Pose) float64
}

// StoreManager defines the interface for managing the run store.
// This allows the persistence layer to be mocked for testing.
type StoreManager interface {
	GetRunStore() RunStore
}

// RunStore defines the interface for tracking benchmark runs and storing plan statistics.
type RunStore interface {
	// BeginRun creates a new run and returns its unique ID
	BeginRun(runUUID, scenario string, steering schema.SteeringMode, startTime time.Time, configParams map[string]any) (int64, error)

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, totalPlans int) error

	// RecordPlanStats stores the statistics of one planner, anytime or smoothing entry
	RecordPlanStats(runID int64, record schema.PlanStatsRecord) error

	// GetStatus returns status information about the run store
	GetStatus() (schema.StoreStatus, error)

	// GetAllRuns returns every stored run ordered by ID
	GetAllRuns() ([]schema.RunRecord, error)

	// GetPlanStats returns the stats of one run, or of all runs when runID <= 0
	GetPlanStats(runID int64) ([]schema.PlanStatsRecord, error)

	// Close closes the underlying connection
	Close() error
}
