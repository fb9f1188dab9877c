package core

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/huangsam/planbench/internal/contract"
	"github.com/huangsam/planbench/schema"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// SmoothAll runs every smoother against the same base trajectory and evaluates each output.
// The first smoother error or panic stops the pipeline; the entries completed so far are returned with it.
func (e *Evaluator) SmoothAll(ctx context.Context, planner contract.Planner, base schema.Trajectory, smoothers []contract.Smoother) (map[string]schema.SmoothingEntry, error) {
	results := make(map[string]schema.SmoothingEntry, len(smoothers))
	name := planner.Name()
	for _, smoother := range smoothers {
		var label string
		entry, err := guard(func() (schema.SmoothingEntry, error) {
			label = smoother.Name()
			return e.smooth(ctx, planner, name, base, smoother)
		})
		if err != nil {
			return results, fmt.Errorf("smoother %s: %w", label, err)
		}
		results[label] = entry
	}
	return results, nil
}

// smooth runs one smoother, overriding the node spacing for cc_dubins when the smoother needs it.
func (e *Evaluator) smooth(ctx context.Context, planner contract.Planner, name string, base schema.Trajectory, smoother contract.Smoother) (schema.SmoothingEntry, error) {
	ctx, span := tracer.Start(ctx, "Evaluator.Smooth",
		trace.WithAttributes(
			attribute.String("planbench.planner", name),
			attribute.String("planbench.smoother", smoother.Name()),
		),
	)
	defer span.End()

	if e.rc.Config.Steering == schema.CCDubinsSteering {
		if ss, ok := smoother.(contract.SpacingSensitive); ok && ss.RequiresNodeSpacing() {
			defer contract.Override(&e.rc.Config.MinNodeDistance, contract.CCDubinsMinNodeDistance)()
		}
	}

	e.rc.Recorder.Reset()
	started := time.Now()
	out, err := smoother.Run(ctx, e.rc, base.Clone())
	recordSmoothingMetrics(ctx, time.Since(started), smoother.Name(), err == nil)
	if err != nil {
		span.RecordError(err)
		return schema.SmoothingEntry{}, err
	}
	collisionTime := e.rc.Recorder.CollisionSeconds()
	steeringTime := e.rc.Recorder.SteeringSeconds()

	stats, traj, verr := e.computeStats(planner, name, out)
	if verr != nil {
		e.rc.Logger.Info("smoothed path collides", "planner", name, "smoother", smoother.Name(), "error", verr)
	}
	elapsed := smoother.Elapsed().Seconds()
	stats.PlanningTime = elapsed
	stats.CollisionTime = collisionTime
	stats.SteeringTime = steeringTime

	return schema.SmoothingEntry{
		Name:          smoother.Name(),
		Time:          elapsed,
		CollisionTime: collisionTime,
		SteeringTime:  steeringTime,
		Cost:          stats.TotalCost,
		Path:          orEmpty(out),
		Trajectory:    orEmpty(traj),
		Stats:         stats,
		Extra:         maps.Clone(smoother.ExtraStats()),
	}, nil
}
