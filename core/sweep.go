package core

import (
	"context"
	"fmt"
	"time"

	"github.com/huangsam/planbench/internal/contract"
	"github.com/huangsam/planbench/schema"
	"golang.org/x/sync/errgroup"
)

// SweepOptions controls how a sweep evaluates its planners.
type SweepOptions struct {
	Workers   int                        // Planners evaluated in parallel
	Budgets   []time.Duration            // Anytime budgets; empty runs each planner once
	Smoothers []contract.SmootherFactory // Applied to every successful plan
}

// Sweep evaluates every planner factory in its own isolated RunContext and returns the
// entries in factory order. Planner failures become entries and never stop the sweep.
// An error is returned only when ctx is done before every planner could start.
func Sweep(ctx context.Context, rc *contract.RunContext, factories []contract.PlannerFactory, opts SweepOptions) ([]*schema.PlanEntry, error) {
	workers := max(opts.Workers, 1)
	entries := make([]*schema.PlanEntry, len(factories))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, factory := range factories {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			entries[i] = runTask(gctx, rc.Isolate(), factory, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return compact(entries), err
	}
	return entries, nil
}

// runTask evaluates one planner, smooths a successful plan and records it to the run store.
// A panic that escapes the evaluator becomes a planning fault entry.
func runTask(ctx context.Context, rc *contract.RunContext, factory contract.PlannerFactory, opts SweepOptions) (entry *schema.PlanEntry) {
	defer func() {
		if r := recover(); r != nil {
			err := panicError(r)
			rc.Logger.Warn("planner evaluation panicked", "planner", factory.Name, "error", err)
			entry = schema.NewEmptyEntry(factory.Name, schema.OutcomePlanningFault, err)
		}
	}()
	ev := NewEvaluator(rc)

	var (
		planner contract.Planner
		err     error
	)
	if len(opts.Budgets) > 0 {
		entry, planner, err = ev.evaluateAnytime(ctx, factory, opts.Budgets)
	} else {
		entry, planner, err = ev.evaluate(ctx, factory)
	}
	if err != nil {
		rc.Logger.Warn("planner evaluation failed", "planner", factory.Name, "outcome", entry.Outcome, "error", err)
	}

	if entry.Succeeded() && planner != nil && len(opts.Smoothers) > 0 {
		results, serr := ev.smoothGuarded(ctx, planner, entry.Path, opts.Smoothers)
		if len(results) > 0 {
			entry.Smoothing = results
		}
		if serr != nil {
			rc.Logger.Warn("smoothing stopped", "planner", entry.Planner, "error", serr)
		}
	}

	recordPlanEntry(ctx, entry)
	return entry
}

// smoothGuarded builds fresh smoothers and runs the pipeline. Construction panics become errors.
func (e *Evaluator) smoothGuarded(ctx context.Context, planner contract.Planner, base schema.Trajectory, factories []contract.SmootherFactory) (map[string]schema.SmoothingEntry, error) {
	smoothers := make([]contract.Smoother, 0, len(factories))
	for _, f := range factories {
		s, berr := guard(func() (contract.Smoother, error) { return f.New(e.rc) })
		if berr != nil {
			return nil, fmt.Errorf("smoother %s construction: %w", f.Name, berr)
		}
		smoothers = append(smoothers, s)
	}

	return e.SmoothAll(ctx, planner, base, smoothers)
}

// compact drops the entries of planners that never started.
func compact(entries []*schema.PlanEntry) []*schema.PlanEntry {
	out := make([]*schema.PlanEntry, 0, len(entries))
	for _, entry := range entries {
		if entry != nil {
			out = append(out, entry)
		}
	}
	return out
}
