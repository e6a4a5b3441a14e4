package execution

import (
	"context"
	"iter"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"combitest/internal/domain"
)

// Config controls one execution run.
type Config struct {
	SuiteName string

	// Concurrency is the worker count. Values below 2 run sequentially
	// and preserve submission order.
	Concurrency int

	// Timeout bounds each predicate invocation. Zero disables it.
	Timeout time.Duration

	// FailFast stops starting new tests after the first FAILED or ERROR result.
	FailFast bool

	// OnResult, when set, receives every result as it is recorded.
	// Calls are made one at a time from a single goroutine.
	OnResult func(domain.TestResult)

	Logger *slog.Logger
}

// Executor runs a predicate over a sequence of combinations.
type Executor struct {
	config Config
	runner *Runner
	logger *slog.Logger
}

// New creates an Executor.
func New(cfg Config) *Executor {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.SuiteName == "" {
		cfg.SuiteName = "Combination Tests"
	}
	return &Executor{
		config: cfg,
		runner: NewRunner(cfg.Timeout),
		logger: logger,
	}
}

// Workers returns the effective worker count.
func (e *Executor) Workers() int {
	if e.config.Concurrency < 1 {
		return 1
	}
	return e.config.Concurrency
}

// ExecuteBatch runs pred over a pre-materialized batch.
func (e *Executor) ExecuteBatch(ctx context.Context, combos []domain.Combination, pred Predicate) *domain.TestSuite {
	return e.Execute(ctx, slices.Values(combos), pred)
}

// Execute evaluates pred once per combination of seq and returns the suite.
//
// Cancelling ctx stops new invocations. Invocations already running are
// not interrupted and their results are kept; the suite is then marked
// truncated. Per-test faults never surface as errors here.
func (e *Executor) Execute(ctx context.Context, seq iter.Seq[domain.Combination], pred Predicate) *domain.TestSuite {
	suite := domain.NewTestSuite(e.config.SuiteName)
	e.logger.Info("execution started",
		"suite", suite.Name,
		"suite_id", suite.ID,
		"workers", e.Workers(),
		"timeout", e.config.Timeout,
	)

	if e.Workers() == 1 {
		e.executeSequential(ctx, seq, pred, suite)
	} else {
		e.executePool(ctx, seq, pred, suite)
	}
	suite.FinishedAt = time.Now()

	e.logger.Info("execution finished",
		"suite_id", suite.ID,
		"results", len(suite.Results),
		"truncated", suite.Truncated,
		"duration", suite.Duration(),
	)
	return suite
}

func (e *Executor) executeSequential(ctx context.Context, seq iter.Seq[domain.Combination], pred Predicate, suite *domain.TestSuite) {
	work := context.WithoutCancel(ctx)
	stop := false
	for c := range seq {
		if stop || ctx.Err() != nil {
			suite.Truncated = true
			return
		}
		suite.Submitted++
		result := e.runner.Run(work, pred, c, 0)
		e.record(suite, result)
		if e.config.FailFast && result.Status.IsFailure() {
			stop = true
		}
	}
}

// executePool feeds combinations to a fixed set of workers over an
// unbuffered queue. Results flow back over a channel to this goroutine,
// the only writer of suite.
func (e *Executor) executePool(ctx context.Context, seq iter.Seq[domain.Combination], pred Predicate, suite *domain.TestSuite) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	work := context.WithoutCancel(ctx)

	workerCount := e.Workers()
	queue := make(chan domain.Combination)
	results := make(chan domain.TestResult, workerCount)
	var truncated atomic.Bool
	var submitted atomic.Int64

	go func() {
		defer close(queue)
		for c := range seq {
			if runCtx.Err() != nil {
				truncated.Store(true)
				return
			}
			select {
			case <-runCtx.Done():
				truncated.Store(true)
				return
			case queue <- c:
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 1; i <= workerCount; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for c := range queue {
				if runCtx.Err() != nil {
					truncated.Store(true)
					continue
				}
				submitted.Add(1)
				results <- e.runner.Run(work, pred, c, workerID)
			}
		}(i)
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	for result := range results {
		e.record(suite, result)
		if e.config.FailFast && result.Status.IsFailure() {
			cancel()
		}
	}
	suite.Submitted = int(submitted.Load())
	suite.Truncated = truncated.Load()
}

func (e *Executor) record(suite *domain.TestSuite, result domain.TestResult) {
	suite.Add(result)
	e.logger.Debug("test finished",
		"combination", result.Combination.Key(),
		"status", result.Status.String(),
		"duration", result.Duration,
		"worker", result.Worker,
	)
	if e.config.OnResult != nil {
		e.config.OnResult(result)
	}
}
