package schema

import (
	"fmt"
	"slices"
	"time"
)

// RunRecord represents a row from the planbench_runs table.
type RunRecord struct {
	RunID         int64
	RunUUID       string
	Scenario      string
	Steering      string
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	TotalPlans    int32
	ConfigParams  *string
}

// PlanStatsRecord represents a row from the planbench_plan_stats table.
type PlanStatsRecord struct {
	RunID               int64
	EntryName           string
	EntryKind           string
	Planner             string
	Budget              float64
	Outcome             string
	RecordTime          time.Time
	PathFound           bool
	PathCollides        bool
	ExactGoalPath       bool
	PlanningTime        float64
	CollisionTime       float64
	SteeringTime        float64
	PathLength          float64
	TotalCost           float64
	MaxCurvature        float64
	NormalizedCurvature float64
	AOL                 float64
	Smoothness          float64
	MeanClearing        float64
	CuspCount           int32
}

// StoreStatus represents the status of the run store.
type StoreStatus struct {
	Backend       string           `json:"backend"`
	Connected     bool             `json:"connected"`
	TotalRuns     int              `json:"total_runs"`
	LastRunID     int64            `json:"last_run_id"`
	LastRunTime   time.Time        `json:"last_run_time"`
	OldestRunTime time.Time        `json:"oldest_run_time"`
	TotalPlans    int              `json:"total_plans"`
	TableSizes    map[string]int64 `json:"table_sizes"`
}

// MetricDefinition describes one metric shown by the metrics command.
type MetricDefinition struct {
	Name    string `json:"name"`
	Unit    string `json:"unit"`
	Formula string `json:"formula"`
	Purpose string `json:"purpose"`
}

// StatsRecords flattens an entry into store rows: the plan itself, one row per anytime
// budget and one row per smoother. Smoothing rows are sorted by smoother name.
func (e *PlanEntry) StatsRecords(runID int64, at time.Time) []PlanStatsRecord {
	records := []PlanStatsRecord{
		statsRecord(runID, e.Planner, PlanEntryKind, e.Planner, 0, e.Outcome, e.Stats, at),
	}
	for i, rec := range e.Intermediary {
		if rec.Budget <= 0 {
			continue
		}
		name := fmt.Sprintf("%s@%d", e.Planner, i)
		records = append(records, statsRecord(runID, name, AnytimeEntryKind, e.Planner, rec.Budget, rec.Outcome, rec.Stats, at))
	}
	names := make([]string, 0, len(e.Smoothing))
	for name := range e.Smoothing {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		sm := e.Smoothing[name]
		outcome := OutcomeOK
		switch {
		case !sm.Stats.PathFound:
			outcome = OutcomePlanningFailure
		case sm.Stats.PathCollides:
			outcome = OutcomeValidationFault
		}
		records = append(records, statsRecord(runID, e.Planner+"+"+name, SmoothingEntryKind, e.Planner, 0, outcome, sm.Stats, at))
	}
	return records
}

// statsRecord builds one store row from path statistics.
func statsRecord(
	runID int64,
	name string,
	kind EntryKind,
	planner string,
	budget float64,
	outcome Outcome,
	stats PathStatistics,
	at time.Time,
) PlanStatsRecord {
	return PlanStatsRecord{
		RunID:               runID,
		EntryName:           name,
		EntryKind:           string(kind),
		Planner:             planner,
		Budget:              budget,
		Outcome:             string(outcome),
		RecordTime:          at,
		PathFound:           stats.PathFound,
		PathCollides:        stats.PathCollides,
		ExactGoalPath:       stats.ExactGoalPath,
		PlanningTime:        stats.PlanningTime,
		CollisionTime:       stats.CollisionTime,
		SteeringTime:        stats.SteeringTime,
		PathLength:          stats.PathLength,
		TotalCost:           stats.TotalCost,
		MaxCurvature:        stats.MaxCurvature,
		NormalizedCurvature: stats.NormalizedCurvature,
		AOL:                 stats.AOL,
		Smoothness:          stats.Smoothness,
		MeanClearing:        stats.MeanClearingDistance,
		CuspCount:           int32(stats.CuspCount()),
	}
}
