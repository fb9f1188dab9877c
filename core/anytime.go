package core

import (
	"context"
	"time"

	"github.com/huangsam/planbench/internal/contract"
	"github.com/huangsam/planbench/schema"
)

// EvaluateAnytime constructs one planner and re-runs it for every budget, in order.
// Each budget yields one record in the entry's intermediary list, failed runs included.
// The returned entry reflects the last run. Config.MaxPlanningTime is restored on return.
func (e *Evaluator) EvaluateAnytime(ctx context.Context, factory contract.PlannerFactory, budgets []time.Duration) (*schema.PlanEntry, error) {
	entry, _, err := e.evaluateAnytime(ctx, factory, budgets)
	return entry, err
}

// evaluateAnytime is EvaluateAnytime that also hands back the planner for smoothing.
func (e *Evaluator) evaluateAnytime(ctx context.Context, factory contract.PlannerFactory, budgets []time.Duration) (*schema.PlanEntry, contract.Planner, error) {
	ctx, span := startEvaluateSpan(ctx, "EvaluateAnytime", factory.Name, e.rc.Config.Steering)
	defer span.End()
	defer contract.Preserve(&e.rc.Config.MaxPlanningTime)()
	started := time.Now()

	planner, name, err := e.construct(factory)
	if err != nil {
		entry, evalErr := e.fail(name, schema.OutcomeConstructionFailure, err)
		setEvaluateSpanResult(span, entry)
		recordEvaluateMetrics(ctx, time.Since(started), entry.Outcome)
		return entry, nil, evalErr
	}
	if len(budgets) == 0 {
		entry, err := e.runOnce(ctx, planner, name)
		setEvaluateSpanResult(span, entry)
		recordEvaluateMetrics(ctx, time.Since(started), entry.Outcome)
		return entry, planner, err
	}

	var entry *schema.PlanEntry
	records := make([]schema.IntermediateRecord, 0, len(budgets))
	for _, budget := range budgets {
		e.rc.Config.MaxPlanningTime = budget
		entry, err = e.runOnce(ctx, planner, name)
		records = append(records, e.anytimeRecord(entry, budget))
		recordAnytimeBudget(ctx, entry.Succeeded())
		e.rc.Logger.Debug("anytime budget evaluated",
			"planner", name, "budget", budget, "outcome", entry.Outcome, "cost", entry.Stats.TotalCost)
	}
	entry.Intermediary = records

	setEvaluateSpanResult(span, entry)
	if err != nil {
		span.RecordError(err)
	}
	recordEvaluateMetrics(ctx, time.Since(started), entry.Outcome)
	return entry, planner, err
}

// anytimeRecord converts the entry of one budget run into a record.
// Failed runs keep the attempted budget and an empty trajectory.
func (e *Evaluator) anytimeRecord(entry *schema.PlanEntry, budget time.Duration) schema.IntermediateRecord {
	if !entry.Succeeded() {
		return schema.IntermediateRecord{
			Time:          schema.EmptyMetric,
			CollisionTime: e.rc.Recorder.CollisionSeconds(),
			SteeringTime:  e.rc.Recorder.SteeringSeconds(),
			Budget:        budget.Seconds(),
			Cost:          schema.EmptyMetric,
			Outcome:       entry.Outcome,
			Trajectory:    schema.Trajectory{},
			Path:          schema.Trajectory{},
			Stats:         entry.Stats,
		}
	}
	return schema.IntermediateRecord{
		Time:          entry.Stats.PlanningTime,
		CollisionTime: entry.Stats.CollisionTime,
		SteeringTime:  entry.Stats.SteeringTime,
		Budget:        budget.Seconds(),
		Cost:          entry.Stats.TotalCost,
		Outcome:       entry.Outcome,
		Trajectory:    entry.Trajectory,
		Path:          entry.Path,
		Stats:         entry.Stats,
	}
}
