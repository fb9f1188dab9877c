package core

import (
	"context"
	"sync"
	"time"

	"github.com/huangsam/planbench/schema"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for evaluation operations.
var (
	tracer = otel.Tracer("planbench.core")
	meter  = otel.Meter("planbench.core")
)

// Metrics for evaluation operations.
var (
	evaluateLatency  metric.Float64Histogram
	evaluateTotal    metric.Int64Counter
	smoothingLatency metric.Float64Histogram
	anytimeBudgets   metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		evaluateLatency, err = meter.Float64Histogram(
			"planbench_evaluate_duration_seconds",
			metric.WithDescription("Duration of planner evaluations"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		evaluateTotal, err = meter.Int64Counter(
			"planbench_evaluate_total",
			metric.WithDescription("Total number of planner evaluations by outcome"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		smoothingLatency, err = meter.Float64Histogram(
			"planbench_smoothing_duration_seconds",
			metric.WithDescription("Duration of smoother evaluations"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		anytimeBudgets, err = meter.Int64Counter(
			"planbench_anytime_budgets_total",
			metric.WithDescription("Total number of anytime budgets attempted"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// startEvaluateSpan creates a span for one planner evaluation.
func startEvaluateSpan(ctx context.Context, op, planner string, steering schema.SteeringMode) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Evaluator."+op,
		trace.WithAttributes(
			attribute.String("planbench.planner", planner),
			attribute.String("planbench.steering", string(steering)),
		),
	)
}

// setEvaluateSpanResult sets the result attributes on an evaluation span.
func setEvaluateSpanResult(span trace.Span, entry *schema.PlanEntry) {
	span.SetAttributes(
		attribute.String("planbench.outcome", string(entry.Outcome)),
		attribute.Bool("planbench.path_found", entry.Stats.PathFound),
	)
}

// recordEvaluateMetrics records metrics for a planner evaluation.
func recordEvaluateMetrics(ctx context.Context, duration time.Duration, outcome schema.Outcome) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("outcome", string(outcome)),
	)

	evaluateLatency.Record(ctx, duration.Seconds(), attrs)
	evaluateTotal.Add(ctx, 1, attrs)
}

// recordSmoothingMetrics records metrics for a smoother evaluation.
func recordSmoothingMetrics(ctx context.Context, duration time.Duration, smoother string, success bool) {
	if err := initMetrics(); err != nil {
		return
	}
	smoothingLatency.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("smoother", smoother),
		attribute.Bool("success", success),
	))
}

// recordAnytimeBudget records one attempted anytime budget.
func recordAnytimeBudget(ctx context.Context, success bool) {
	if err := initMetrics(); err != nil {
		return
	}
	anytimeBudgets.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool("success", success),
	))
}
