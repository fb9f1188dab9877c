package core

import (
	"errors"
	"fmt"

	"github.com/huangsam/planbench/schema"
)

// Sentinel errors for the evaluation outcomes. Use errors.Is against an EvalError.
var (
	ErrConstructionFailure = errors.New("planner construction failed")
	ErrPlanningFailure     = errors.New("planner found no solution")
	ErrPlanningFault       = errors.New("planner raised an error")
	ErrValidationFault     = errors.New("planner solution failed validation")
)

// EvalError describes why one planner or smoother evaluation did not produce a usable entry.
type EvalError struct {
	Kind    schema.Outcome
	Planner string
	Err     error
}

// Error implements the error interface.
func (e *EvalError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Planner, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Planner, e.Kind, e.Err)
}

// Unwrap exposes both the sentinel of the kind and the underlying cause.
func (e *EvalError) Unwrap() []error {
	errs := []error{}
	if sentinel := sentinelFor(e.Kind); sentinel != nil {
		errs = append(errs, sentinel)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// newEvalError builds an EvalError of the given kind.
func newEvalError(kind schema.Outcome, planner string, err error) *EvalError {
	return &EvalError{Kind: kind, Planner: planner, Err: err}
}

// sentinelFor maps an outcome to its sentinel error.
func sentinelFor(kind schema.Outcome) error {
	switch kind {
	case schema.OutcomeConstructionFailure:
		return ErrConstructionFailure
	case schema.OutcomePlanningFailure:
		return ErrPlanningFailure
	case schema.OutcomePlanningFault:
		return ErrPlanningFault
	case schema.OutcomeValidationFault:
		return ErrValidationFault
	default:
		return nil
	}
}

// panicError converts a recovered panic value into an error.
func panicError(recovered any) error {
	if err, ok := recovered.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", recovered)
}
