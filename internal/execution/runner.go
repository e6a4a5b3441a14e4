package execution

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"combitest/internal/domain"
)

// TimeoutDetail is the error detail recorded for a timed-out predicate.
const TimeoutDetail = "timeout"

// Runner evaluates a predicate on a single combination.
type Runner struct {
	timeout time.Duration
}

// NewRunner creates a Runner. A zero timeout waits indefinitely.
func NewRunner(timeout time.Duration) *Runner {
	return &Runner{timeout: timeout}
}

type evaluation struct {
	outcome Outcome
	err     error
}

// Run evaluates pred once and classifies the outcome. Errors, panics and
// timeouts all become ERROR results. A predicate still running at the
// deadline is abandoned and its late result discarded.
func (r *Runner) Run(ctx context.Context, pred Predicate, c domain.Combination, workerID int) domain.TestResult {
	ctx = withWorker(ctx, workerID)
	cancel := context.CancelFunc(func() {})
	if r.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
	}
	defer cancel()

	start := time.Now()
	done := make(chan evaluation, 1)
	go func() {
		returned := false
		defer func() {
			if p := recover(); p != nil {
				done <- evaluation{err: errors.Errorf("panic: %v", p)}
			} else if !returned {
				done <- evaluation{err: errors.New("predicate exited without returning")}
			}
		}()
		outcome, err := pred.Evaluate(ctx, c)
		returned = true
		done <- evaluation{outcome: outcome, err: err}
	}()

	var ev evaluation
	select {
	case ev = <-done:
	case <-ctx.Done():
		ev = evaluation{err: ctx.Err()}
	}
	timedOut := ev.err != nil && errors.Is(ev.err, context.DeadlineExceeded) && errors.Is(ctx.Err(), context.DeadlineExceeded)
	finish := time.Now()

	result := domain.TestResult{
		Combination: c,
		StartedAt:   start,
		FinishedAt:  finish,
		Duration:    finish.Sub(start),
		Worker:      workerID,
	}
	var reason Reason
	explained := errors.As(ev.err, &reason) && (ev.outcome == Fail || ev.outcome == Skip)
	switch {
	case timedOut:
		result.Status = domain.StatusError
		result.ErrorDetail = TimeoutDetail
	case explained && ev.outcome == Fail:
		result.Status = domain.StatusFailed
		result.ErrorDetail = string(reason)
	case explained:
		result.Status = domain.StatusSkipped
		result.ErrorDetail = string(reason)
	case ev.err != nil:
		result.Status = domain.StatusError
		result.ErrorDetail = ev.err.Error()
		if result.ErrorDetail == "" {
			result.ErrorDetail = fmt.Sprintf("%T", ev.err)
		}
	case ev.outcome == Pass:
		result.Status = domain.StatusPassed
	case ev.outcome == Fail:
		result.Status = domain.StatusFailed
	case ev.outcome == Skip:
		result.Status = domain.StatusSkipped
	default:
		result.Status = domain.StatusError
		result.ErrorDetail = fmt.Sprintf("invalid outcome %v", ev.outcome)
	}
	return result
}
