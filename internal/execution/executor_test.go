package execution

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"combitest/internal/domain"
)

func combos(n int) []domain.Combination {
	out := make([]domain.Combination, n)
	for i := range out {
		out[i] = domain.CombinationOf(
			domain.Pair{Dimension: "A", Value: domain.Value(fmt.Sprintf("a%d", i))},
			domain.Pair{Dimension: "B", Value: "b"},
		)
	}
	return out
}

func TestExecute_SequentialPreservesOrder(t *testing.T) {
	batch := combos(10)
	var seen []string
	pred := PredicateFunc(func(_ context.Context, c domain.Combination) (Outcome, error) {
		seen = append(seen, c.Key())
		return Pass, nil
	})

	suite := New(Config{SuiteName: "ordered"}).ExecuteBatch(context.Background(), batch, pred)

	require.Len(t, suite.Results, 10)
	assert.Equal(t, "ordered", suite.Name)
	assert.NotEmpty(t, suite.ID)
	assert.Equal(t, 10, suite.Submitted)
	assert.False(t, suite.Truncated)
	for i, r := range suite.Results {
		assert.Equal(t, batch[i].Key(), r.Combination.Key())
		assert.Equal(t, batch[i].Key(), seen[i])
		assert.Equal(t, domain.StatusPassed, r.Status)
		assert.Zero(t, r.Worker)
		assert.False(t, r.FinishedAt.Before(r.StartedAt))
	}
	assert.False(t, suite.FinishedAt.IsZero())
}

func TestExecute_Classification(t *testing.T) {
	pred := PredicateFunc(func(_ context.Context, c domain.Combination) (Outcome, error) {
		v, _ := c.Get("A")
		switch v {
		case "a0":
			return Pass, nil
		case "a1":
			return Fail, nil
		case "a2":
			return Skip, nil
		case "a3":
			return 0, errors.New("predicate exploded")
		case "a4":
			panic("unrecoverable")
		default:
			return Outcome(42), nil
		}
	})

	suite := New(Config{}).ExecuteBatch(context.Background(), combos(6), pred)

	require.Len(t, suite.Results, 6)
	want := []domain.Status{
		domain.StatusPassed, domain.StatusFailed, domain.StatusSkipped,
		domain.StatusError, domain.StatusError, domain.StatusError,
	}
	for i, r := range suite.Results {
		assert.Equal(t, want[i], r.Status, "result %d", i)
	}
	assert.Equal(t, "predicate exploded", suite.Results[3].ErrorDetail)
	assert.Contains(t, suite.Results[4].ErrorDetail, "unrecoverable")
	assert.Contains(t, suite.Results[5].ErrorDetail, "invalid outcome")
	assert.Empty(t, suite.Results[0].ErrorDetail)
}

func TestExecute_Reason(t *testing.T) {
	pred := PredicateFunc(func(_ context.Context, c domain.Combination) (Outcome, error) {
		v, _ := c.Get("A")
		switch v {
		case "a0":
			return Fail, Reason("xml unsupported")
		case "a1":
			return Skip, Reason("not applicable")
		default:
			return Pass, Reason("ignored")
		}
	})

	suite := New(Config{}).ExecuteBatch(context.Background(), combos(3), pred)

	require.Len(t, suite.Results, 3)
	assert.Equal(t, domain.StatusFailed, suite.Results[0].Status)
	assert.Equal(t, "xml unsupported", suite.Results[0].ErrorDetail)
	assert.Equal(t, domain.StatusSkipped, suite.Results[1].Status)
	assert.Equal(t, "not applicable", suite.Results[1].ErrorDetail)
	// A reason only explains Fail or Skip; with Pass it is an error.
	assert.Equal(t, domain.StatusError, suite.Results[2].Status)
}

type emptyError struct{}

func (emptyError) Error() string { return "" }

func TestExecute_AlwaysRaising(t *testing.T) {
	for _, workers := range []int{1, 4} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			var calls atomic.Int32
			pred := PredicateFunc(func(context.Context, domain.Combination) (Outcome, error) {
				if calls.Add(1)%2 == 0 {
					return 0, emptyError{}
				}
				return 0, errors.New("always broken")
			})

			suite := New(Config{Concurrency: workers}).ExecuteBatch(context.Background(), combos(25), pred)

			require.Len(t, suite.Results, 25)
			assert.Equal(t, 25, suite.Submitted)
			for _, r := range suite.Results {
				assert.Equal(t, domain.StatusError, r.Status)
				assert.NotEmpty(t, r.ErrorDetail)
			}
		})
	}
}

func TestExecute_PredicateGoexit(t *testing.T) {
	pred := PredicateFunc(func(context.Context, domain.Combination) (Outcome, error) {
		runtime.Goexit()
		return Pass, nil
	})

	suite := New(Config{}).ExecuteBatch(context.Background(), combos(2), pred)

	require.Len(t, suite.Results, 2)
	for _, r := range suite.Results {
		assert.Equal(t, domain.StatusError, r.Status)
		assert.Contains(t, r.ErrorDetail, "exited without returning")
	}
}

func TestExecute_Timeout(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	pred := PredicateFunc(func(_ context.Context, c domain.Combination) (Outcome, error) {
		if c.Has("A", "a1") {
			<-release // never honours ctx
		}
		return Pass, nil
	})

	suite := New(Config{Timeout: 20 * time.Millisecond}).ExecuteBatch(context.Background(), combos(3), pred)

	require.Len(t, suite.Results, 3)
	assert.Equal(t, domain.StatusPassed, suite.Results[0].Status)
	assert.Equal(t, domain.StatusError, suite.Results[1].Status)
	assert.Equal(t, TimeoutDetail, suite.Results[1].ErrorDetail)
	assert.Equal(t, domain.StatusPassed, suite.Results[2].Status)
}

func TestExecute_TimeoutHonouredByPredicate(t *testing.T) {
	pred := PredicateFunc(func(ctx context.Context, _ domain.Combination) (Outcome, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})

	suite := New(Config{Timeout: 10 * time.Millisecond, Concurrency: 2}).ExecuteBatch(context.Background(), combos(4), pred)

	require.Len(t, suite.Results, 4)
	for _, r := range suite.Results {
		assert.Equal(t, domain.StatusError, r.Status)
		assert.Equal(t, TimeoutDetail, r.ErrorDetail)
	}
}

func TestExecute_Pool(t *testing.T) {
	const n = 200
	batch := combos(n)

	var mu sync.Mutex
	var streamed []domain.TestResult
	var inFlight, peak atomic.Int32
	pred := PredicateFunc(func(ctx context.Context, c domain.Combination) (Outcome, error) {
		cur := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if cur <= p || peak.CompareAndSwap(p, cur) {
				break
			}
		}
		if WorkerID(ctx) < 1 || WorkerID(ctx) > 8 {
			return 0, errors.Errorf("bad worker id %d", WorkerID(ctx))
		}
		time.Sleep(time.Millisecond)
		return Pass, nil
	})

	suite := New(Config{
		Concurrency: 8,
		OnResult: func(r domain.TestResult) {
			mu.Lock()
			streamed = append(streamed, r)
			mu.Unlock()
		},
	}).ExecuteBatch(context.Background(), batch, pred)

	require.Len(t, suite.Results, n)
	assert.Len(t, streamed, n)
	assert.LessOrEqual(t, peak.Load(), int32(8))

	seen := make(map[string]int)
	for _, r := range suite.Results {
		assert.Equal(t, domain.StatusPassed, r.Status, r.ErrorDetail)
		seen[r.Combination.Key()]++
	}
	for _, c := range batch {
		assert.Equal(t, 1, seen[c.Key()], c.Key())
	}
}

func TestExecute_CancelSequential(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls int
	pred := PredicateFunc(func(ctx context.Context, _ domain.Combination) (Outcome, error) {
		calls++
		if calls == 3 {
			cancel()
			// In-flight work keeps running after the stop signal.
			if ctx.Err() != nil {
				return 0, errors.New("in-flight context was cancelled")
			}
		}
		return Pass, nil
	})

	suite := New(Config{}).ExecuteBatch(ctx, combos(10), pred)

	assert.Equal(t, 3, calls)
	require.Len(t, suite.Results, 3)
	assert.Equal(t, 3, suite.Submitted)
	assert.True(t, suite.Truncated)
	for _, r := range suite.Results {
		assert.Equal(t, domain.StatusPassed, r.Status, r.ErrorDetail)
	}
}

func TestExecute_CancelPool(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	pred := PredicateFunc(func(context.Context, domain.Combination) (Outcome, error) {
		if calls.Add(1) == 5 {
			cancel()
		}
		time.Sleep(5 * time.Millisecond)
		return Pass, nil
	})

	suite := New(Config{Concurrency: 3}).ExecuteBatch(ctx, combos(100), pred)

	assert.True(t, suite.Truncated)
	assert.Less(t, len(suite.Results), 100)
	assert.GreaterOrEqual(t, len(suite.Results), 5)
	assert.Equal(t, suite.Submitted, len(suite.Results))
	assert.Equal(t, int(calls.Load()), len(suite.Results))
}

func TestExecute_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, workers := range []int{1, 4} {
		suite := New(Config{Concurrency: workers}).ExecuteBatch(ctx, combos(5), AlwaysPass)
		assert.Empty(t, suite.Results)
		assert.True(t, suite.Truncated)
	}
}

func TestExecute_FailFast(t *testing.T) {
	pred := BoolPredicate(func(c domain.Combination) bool {
		return !c.Has("A", "a2")
	})

	suite := New(Config{FailFast: true}).ExecuteBatch(context.Background(), combos(10), pred)
	require.Len(t, suite.Results, 3)
	assert.Equal(t, domain.StatusFailed, suite.Results[2].Status)
	assert.True(t, suite.Truncated)

	suite = New(Config{FailFast: true, Concurrency: 2}).ExecuteBatch(context.Background(), combos(50), pred)
	assert.Less(t, len(suite.Results), 50)
	assert.Equal(t, suite.Submitted, len(suite.Results))
	assert.True(t, suite.Truncated)

	// A failure on the last combination leaves nothing to truncate.
	suite = New(Config{FailFast: true}).ExecuteBatch(context.Background(), combos(3), pred)
	assert.Len(t, suite.Results, 3)
	assert.False(t, suite.Truncated)
}

func TestExecute_Empty(t *testing.T) {
	suite := New(Config{Concurrency: 4}).ExecuteBatch(context.Background(), nil, AlwaysPass)
	assert.Empty(t, suite.Results)
	assert.Zero(t, suite.Submitted)
	assert.False(t, suite.Truncated)
}

func TestExecute_FormatJSONScenario(t *testing.T) {
	batch := []domain.Combination{
		domain.NewCombination(map[string]domain.Value{"Format": "json", "Verify": "on"}),
		domain.NewCombination(map[string]domain.Value{"Format": "json", "Verify": "off"}),
		domain.NewCombination(map[string]domain.Value{"Format": "xml", "Verify": "on"}),
		domain.NewCombination(map[string]domain.Value{"Format": "xml", "Verify": "off"}),
	}
	pred := BoolPredicate(func(c domain.Combination) bool { return c.Has("Format", "json") })

	suite := New(Config{Concurrency: 2}).ExecuteBatch(context.Background(), batch, pred)

	require.Len(t, suite.Results, 4)
	for _, r := range suite.Results {
		if r.Combination.Has("Format", "json") {
			assert.Equal(t, domain.StatusPassed, r.Status)
		} else {
			assert.Equal(t, domain.StatusFailed, r.Status)
		}
	}
}

func TestWorkerID_Default(t *testing.T) {
	assert.Zero(t, WorkerID(context.Background()))
	assert.Equal(t, 3, WorkerID(withWorker(context.Background(), 3)))
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "pass", Pass.String())
	assert.Equal(t, "skip", Skip.String())
	assert.Equal(t, "outcome(9)", Outcome(9).String())
}
