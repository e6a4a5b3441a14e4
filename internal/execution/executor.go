package execution

import (
	"context"
	"fmt"

	"combitest/internal/domain"
)

// Outcome is what a predicate reports for one combination.
type Outcome int

const (
	Pass Outcome = iota
	Fail
	Skip
)

func (o Outcome) String() string {
	switch o {
	case Pass:
		return "pass"
	case Fail:
		return "fail"
	case Skip:
		return "skip"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Reason explains a Fail or Skip outcome. Returned alongside either, it
// becomes the result's detail instead of turning the test into an ERROR.
type Reason string

func (r Reason) Error() string { return string(r) }

// Predicate decides whether a combination passes. Returning an error marks
// the test ERROR, except for a Reason accompanying Fail or Skip. It never
// aborts the run.
type Predicate interface {
	Evaluate(ctx context.Context, c domain.Combination) (Outcome, error)
}

// PredicateFunc adapts a function to Predicate.
type PredicateFunc func(ctx context.Context, c domain.Combination) (Outcome, error)

// Evaluate calls f.
func (f PredicateFunc) Evaluate(ctx context.Context, c domain.Combination) (Outcome, error) {
	return f(ctx, c)
}

// BoolPredicate adapts a plain pass/fail check.
func BoolPredicate(check func(domain.Combination) bool) Predicate {
	return PredicateFunc(func(_ context.Context, c domain.Combination) (Outcome, error) {
		if check(c) {
			return Pass, nil
		}
		return Fail, nil
	})
}

// AlwaysPass passes every combination.
var AlwaysPass Predicate = PredicateFunc(func(context.Context, domain.Combination) (Outcome, error) {
	return Pass, nil
})

type workerKey struct{}

// WorkerID returns the 1-based pool worker evaluating the current
// combination, or 0 in sequential mode.
func WorkerID(ctx context.Context) int {
	id, _ := ctx.Value(workerKey{}).(int)
	return id
}

func withWorker(ctx context.Context, id int) context.Context {
	return context.WithValue(ctx, workerKey{}, id)
}
