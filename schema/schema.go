// Package schema has models, constants and report types for all parts of planbench.
package schema

import (
	"maps"
	"time"
)

// PathStatistics is the metric record computed for one trajectory.
// Numeric metrics that were not computed hold EmptyMetric.
type PathStatistics struct {
	Planner                string         `json:"planner"`
	PlanningTime           float64        `json:"planning_time"`
	CollisionTime          float64        `json:"collision_time"`
	SteeringTime           float64        `json:"steering_time"`
	PathFound              bool           `json:"path_found"`
	PathCollides           bool           `json:"path_collides"`
	ExactGoalPath          bool           `json:"exact_goal_path"`
	PathLength             float64        `json:"path_length"`
	TotalCost              float64        `json:"total_cost"`
	MaxCurvature           float64        `json:"max_curvature"`
	NormalizedCurvature    float64        `json:"normalized_curvature"`
	AOL                    float64        `json:"aol"`
	Smoothness             float64        `json:"smoothness"`
	MeanClearingDistance   float64        `json:"mean_clearing_distance"`
	MedianClearingDistance float64        `json:"median_clearing_distance"`
	MinClearingDistance    float64        `json:"min_clearing_distance"`
	MaxClearingDistance    float64        `json:"max_clearing_distance"`
	Cusps                  []Pose         `json:"cusps"`
	Collisions             []Pose         `json:"collisions"`
	PlannerSettings        map[string]any `json:"planner_settings"`
}

// NewPathStatistics returns a fresh record with every metric set to EmptyMetric.
func NewPathStatistics(planner string) PathStatistics {
	return PathStatistics{
		Planner:                planner,
		PlanningTime:           EmptyMetric,
		CollisionTime:          EmptyMetric,
		SteeringTime:           EmptyMetric,
		PathLength:             EmptyMetric,
		TotalCost:              EmptyMetric,
		MaxCurvature:           EmptyMetric,
		NormalizedCurvature:    EmptyMetric,
		AOL:                    EmptyMetric,
		Smoothness:             EmptyMetric,
		MeanClearingDistance:   EmptyMetric,
		MedianClearingDistance: EmptyMetric,
		MinClearingDistance:    EmptyMetric,
		MaxClearingDistance:    EmptyMetric,
		Cusps:                  []Pose{},
		Collisions:             []Pose{},
		PlannerSettings:        map[string]any{},
	}
}

// CuspCount returns the number of detected cusps.
func (s PathStatistics) CuspCount() int {
	return len(s.Cusps)
}

// IntermediateSolution is a solution a planner reported while it was still searching.
type IntermediateSolution struct {
	Time       float64    // Seconds since the start of planning
	Cost       float64    // Cost reported by the planner
	Trajectory Trajectory // Solution at that time
}

// IntermediateRecord is one evaluated intermediary or anytime solution.
type IntermediateRecord struct {
	Time          float64        `json:"time"`
	CollisionTime float64        `json:"collision_time"`
	SteeringTime  float64        `json:"steering_time"`
	Budget        float64        `json:"max_time,omitempty"`
	Cost          float64        `json:"cost"`
	Outcome       Outcome        `json:"outcome"`
	Trajectory    Trajectory     `json:"trajectory"`
	Path          Trajectory     `json:"path"`
	Stats         PathStatistics `json:"stats"`
}

// SmoothingEntry is the evaluated output of one smoother.
type SmoothingEntry struct {
	Name          string         `json:"name"`
	Time          float64        `json:"time"`
	CollisionTime float64        `json:"collision_time"`
	SteeringTime  float64        `json:"steering_time"`
	Cost          float64        `json:"cost"`
	Path          Trajectory     `json:"path"`
	Trajectory    Trajectory     `json:"trajectory"`
	Stats         PathStatistics `json:"stats"`
	Extra         map[string]any `json:"extra,omitempty"`
}

// PlanEntry is the report entry for one planner.
// Failed planners still get an entry tagged with their name.
type PlanEntry struct {
	Planner      string                    `json:"planner"`
	Outcome      Outcome                   `json:"outcome"`
	Error        string                    `json:"error,omitempty"`
	Path         Trajectory                `json:"path"`
	Trajectory   Trajectory                `json:"trajectory"`
	Stats        PathStatistics            `json:"stats"`
	Intermediary []IntermediateRecord      `json:"intermediary_solutions"`
	Smoothing    map[string]SmoothingEntry `json:"smoothing,omitempty"`
	Params       map[string]any            `json:"params"`
}

// NewEmptyEntry returns the cleared entry recorded when a planner produced no usable result.
func NewEmptyEntry(planner string, outcome Outcome, err error) *PlanEntry {
	entry := &PlanEntry{
		Planner:      planner,
		Outcome:      outcome,
		Path:         Trajectory{},
		Trajectory:   Trajectory{},
		Stats:        NewPathStatistics(planner),
		Intermediary: []IntermediateRecord{},
		Params:       map[string]any{},
	}
	if err != nil {
		entry.Error = err.Error()
	}
	return entry
}

// Succeeded reports whether the entry holds a found path.
func (e *PlanEntry) Succeeded() bool {
	return e != nil && e.Stats.PathFound
}

// EvaluationReport aggregates every planner entry of one benchmark run.
type EvaluationReport struct {
	RunID     string                `json:"run_id"`
	Scenario  string                `json:"scenario"`
	Steering  SteeringMode          `json:"steering"`
	Iteration int                   `json:"iteration"`
	StartedAt time.Time             `json:"started_at"`
	EndedAt   time.Time             `json:"ended_at"`
	Settings  map[string]any        `json:"settings"`
	Plans     map[string]*PlanEntry `json:"plans"`
	Order     []string              `json:"-"`
}

// NewEvaluationReport creates an empty report.
func NewEvaluationReport(runID, scenario string, steering SteeringMode, settings map[string]any) *EvaluationReport {
	s := make(map[string]any, len(settings))
	maps.Copy(s, settings)
	return &EvaluationReport{
		RunID:     runID,
		Scenario:  scenario,
		Steering:  steering,
		StartedAt: time.Now(),
		Settings:  s,
		Plans:     map[string]*PlanEntry{},
	}
}

// Add stores an entry under its planner name, keeping insertion order.
func (r *EvaluationReport) Add(entry *PlanEntry) {
	if _, ok := r.Plans[entry.Planner]; !ok {
		r.Order = append(r.Order, entry.Planner)
	}
	r.Plans[entry.Planner] = entry
}

// Entries returns the entries in insertion order.
func (r *EvaluationReport) Entries() []*PlanEntry {
	out := make([]*PlanEntry, 0, len(r.Order))
	for _, name := range r.Order {
		out = append(out, r.Plans[name])
	}
	return out
}
