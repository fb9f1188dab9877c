package core

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/huangsam/planbench/core/metric"
	"github.com/huangsam/planbench/internal/contract"
	"github.com/huangsam/planbench/schema"
)

// errShortSolution is reported when a planner claims success with fewer than 2 poses.
var errShortSolution = errors.New("solution has fewer than 2 poses")

// Evaluator runs planners inside one RunContext and turns their solutions into report entries.
// An Evaluator is sequential; use one per RunContext.
type Evaluator struct {
	rc *contract.RunContext
}

// NewEvaluator returns an evaluator bound to rc.
func NewEvaluator(rc *contract.RunContext) *Evaluator {
	return &Evaluator{rc: rc}
}

// RunContext returns the context the evaluator works in.
func (e *Evaluator) RunContext() *contract.RunContext {
	return e.rc
}

// Evaluate constructs the planner, runs it once and computes its metrics.
// The returned entry is never nil. A non-nil error is an *EvalError describing a failed entry.
func (e *Evaluator) Evaluate(ctx context.Context, factory contract.PlannerFactory) (*schema.PlanEntry, error) {
	entry, _, err := e.evaluate(ctx, factory)
	return entry, err
}

// evaluate is Evaluate that also hands back the planner for smoothing.
func (e *Evaluator) evaluate(ctx context.Context, factory contract.PlannerFactory) (*schema.PlanEntry, contract.Planner, error) {
	ctx, span := startEvaluateSpan(ctx, "Evaluate", factory.Name, e.rc.Config.Steering)
	defer span.End()
	started := time.Now()

	planner, name, err := e.construct(factory)
	var entry *schema.PlanEntry
	if err != nil {
		entry, err = e.fail(name, schema.OutcomeConstructionFailure, err)
	} else {
		entry, err = e.runOnce(ctx, planner, name)
	}

	setEvaluateSpanResult(span, entry)
	if err != nil {
		span.RecordError(err)
	}
	recordEvaluateMetrics(ctx, time.Since(started), entry.Outcome)
	return entry, planner, err
}

// construct builds and configures a planner. Panics are converted to errors.
func (e *Evaluator) construct(factory contract.PlannerFactory) (contract.Planner, string, error) {
	type built struct {
		planner contract.Planner
		name    string
	}
	b, err := guard(func() (built, error) {
		if factory.New == nil {
			return built{}, errors.New("planner factory has no constructor")
		}
		p, err := factory.New(e.rc)
		if err != nil {
			return built{}, err
		}
		if p == nil {
			return built{}, errors.New("planner factory returned nil")
		}
		if cerr := p.Configure(e.rc.Config.SettingsFor(factory.Name)); cerr != nil {
			return built{}, fmt.Errorf("invalid configuration: %w", cerr)
		}
		name := factory.Name
		if n := p.Name(); n != "" {
			name = n
		}
		return built{planner: p, name: name}, nil
	})
	if err != nil {
		return nil, factory.Name, err
	}
	return b.planner, b.name, nil
}

// runOnce resets the timers, runs the planner and evaluates its solution.
func (e *Evaluator) runOnce(ctx context.Context, planner contract.Planner, name string) (*schema.PlanEntry, error) {
	e.rc.Recorder.Reset()
	solved, err := guard(func() (bool, error) {
		return planner.Run(ctx, e.rc)
	})
	collisionTime := e.rc.Recorder.CollisionSeconds()
	steeringTime := e.rc.Recorder.SteeringSeconds()

	if err != nil {
		e.rc.Logger.Warn("planner raised an error", "planner", name, "error", err)
		return e.fail(name, schema.OutcomePlanningFault, err)
	}
	if !solved {
		e.rc.Logger.Info("planner found no solution", "planner", name)
		return e.fail(name, schema.OutcomePlanningFailure, nil)
	}

	entry, err := guard(func() (*schema.PlanEntry, error) {
		return e.collect(planner, name, collisionTime, steeringTime)
	})
	if entry == nil {
		e.rc.Logger.Warn("planner solution could not be read", "planner", name, "error", err)
		return e.fail(name, schema.OutcomePlanningFault, err)
	}
	return entry, err
}

// collect reads the solution of a successful run and builds its entry.
// Failed validation and short solutions still return the entry alongside an *EvalError.
func (e *Evaluator) collect(planner contract.Planner, name string, collisionTime, steeringTime float64) (*schema.PlanEntry, error) {
	raw := planner.Solution().Clone()
	stats, traj, verr := e.computeStats(planner, name, raw)
	stats.PlanningTime = planner.PlanningTime().Seconds()
	stats.CollisionTime = collisionTime
	stats.SteeringTime = steeringTime

	entry := schema.NewEmptyEntry(name, schema.OutcomeOK, nil)
	if raw != nil {
		entry.Path = raw
	}
	if traj != nil {
		entry.Trajectory = traj
	}
	entry.Stats = stats
	entry.Params = maps.Clone(stats.PlannerSettings)
	entry.Intermediary = e.evaluateIntermediary(planner, name)

	switch {
	case !stats.PathFound:
		entry.Outcome = schema.OutcomePlanningFailure
		entry.Error = errShortSolution.Error()
		return entry, newEvalError(schema.OutcomePlanningFailure, name, errShortSolution)
	case verr != nil:
		e.rc.Logger.Warn("planner solution failed validation", "planner", name, "error", verr)
		entry.Outcome = schema.OutcomeValidationFault
		entry.Error = verr.Error()
		return entry, newEvalError(schema.OutcomeValidationFault, name, verr)
	}
	return entry, nil
}

// fail returns the empty entry and error of a failed evaluation.
func (e *Evaluator) fail(name string, kind schema.Outcome, cause error) (*schema.PlanEntry, error) {
	evalErr := newEvalError(kind, name, cause)
	return schema.NewEmptyEntry(name, kind, cause), evalErr
}

// computeStats validates, interpolates and measures a trajectory.
// The returned error reports a validation fault; metrics are still filled in.
func (e *Evaluator) computeStats(planner contract.Planner, name string, raw schema.Trajectory) (schema.PathStatistics, schema.Trajectory, error) {
	cfg := e.rc.Config
	stats := schema.NewPathStatistics(name)
	if reporter, ok := planner.(contract.SettingsReporter); ok {
		if settings := reporter.Settings(); settings != nil {
			stats.PlannerSettings = maps.Clone(settings)
		}
	}
	if !raw.Valid() {
		return stats, raw, nil
	}
	stats.PathFound = true

	traj := raw
	var verr error
	if strings.HasPrefix(name, contract.SearchPlannerPrefix) {
		stats.PathCollides = false
		stats.ExactGoalPath = true
	} else {
		traj = raw.Interpolate(cfg.InterpolationLimits())
		verr = e.validate(planner, traj, &stats)
		last, _ := traj.Last()
		stats.ExactGoalPath = last.DistanceTo(e.rc.Goal) <= cfg.ExactGoalRadius
	}

	stats.PathLength = traj.Length()
	stats.TotalCost = metric.TotalCost(traj, e.objective())
	stats.MaxCurvature, stats.NormalizedCurvature = metric.Curvature(traj)
	stats.AOL = metric.AngleOverLength(traj)
	if !isControlBased(planner) {
		stats.Smoothness = metric.Smoothness(traj)
	}
	if cfg.EvaluateClearing {
		clearing := metric.ClearingDistances(traj, e.rc.Environment())
		stats.MeanClearingDistance = clearing.Mean
		stats.MedianClearingDistance = clearing.Median
		stats.MinClearingDistance = clearing.Min
		stats.MaxClearingDistance = clearing.Max
	}
	stats.Cusps = metric.Cusps(traj, cfg.CuspAngleThreshold)
	return stats, traj, verr
}

// validate re-checks the trajectory with the planner and records colliding poses.
func (e *Evaluator) validate(planner contract.Planner, traj schema.Trajectory, stats *schema.PathStatistics) error {
	type result struct {
		valid      bool
		collisions []schema.Pose
	}
	res, err := guard(func() (result, error) {
		valid, collisions := planner.IsValid(e.rc, traj)
		return result{valid: valid, collisions: collisions}, nil
	})
	if err != nil {
		stats.PathCollides = true
		return fmt.Errorf("validation raised: %w", err)
	}
	stats.PathCollides = !res.valid
	if res.collisions != nil {
		stats.Collisions = res.collisions
	}
	if !res.valid {
		return fmt.Errorf("reported solution collides at %d poses", len(res.collisions))
	}
	return nil
}

// evaluateIntermediary evaluates every solution the planner reported while searching.
// The timers of each record cover the re-validation of that solution.
func (e *Evaluator) evaluateIntermediary(planner contract.Planner, name string) []schema.IntermediateRecord {
	records := []schema.IntermediateRecord{}
	solutions, err := guard(func() ([]schema.IntermediateSolution, error) {
		return planner.IntermediarySolutions(), nil
	})
	if err != nil {
		e.rc.Logger.Warn("intermediary solutions unavailable", "planner", name, "error", err)
		return records
	}
	for _, sol := range solutions {
		raw := sol.Trajectory.Clone()
		e.rc.Recorder.Reset()
		stats, traj, verr := e.computeStats(planner, name, raw)
		stats.CollisionTime = e.rc.Recorder.CollisionSeconds()
		stats.SteeringTime = e.rc.Recorder.SteeringSeconds()
		outcome := schema.OutcomeOK
		switch {
		case !stats.PathFound:
			outcome = schema.OutcomePlanningFailure
		case verr != nil:
			outcome = schema.OutcomeValidationFault
		}
		records = append(records, schema.IntermediateRecord{
			Time:          sol.Time,
			CollisionTime: stats.CollisionTime,
			SteeringTime:  stats.SteeringTime,
			Cost:          sol.Cost,
			Outcome:       outcome,
			Trajectory:    orEmpty(traj),
			Path:          orEmpty(raw),
			Stats:         stats,
		})
	}
	return records
}

// objective returns the configured objective, defaulting to path length.
func (e *Evaluator) objective() contract.Objective {
	if e.rc.Objective == nil {
		return metric.PathLength{}
	}
	return e.rc.Objective
}

// isControlBased reports whether smoothness is undefined for the planner.
func isControlBased(planner contract.Planner) bool {
	cp, ok := planner.(contract.ControlPlanner)
	return ok && cp.ControlBased()
}

// orEmpty returns a non-nil trajectory so reports encode [] instead of null.
func orEmpty(t schema.Trajectory) schema.Trajectory {
	if t == nil {
		return schema.Trajectory{}
	}
	return t
}

// guard runs fn and converts a panic into an error.
func guard[T any](fn func() (T, error)) (out T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			out = zero
			err = panicError(r)
		}
	}()
	return fn()
}
