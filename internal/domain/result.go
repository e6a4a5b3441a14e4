package domain

import (
	"time"

	"github.com/google/uuid"
)

// TestResult is the outcome of evaluating the predicate on one combination.
type TestResult struct {
	Combination Combination   `json:"combination"`
	Status      Status        `json:"status"`
	StartedAt   time.Time     `json:"started_at"`
	FinishedAt  time.Time     `json:"finished_at"`
	Duration    time.Duration `json:"duration"`
	ErrorDetail string        `json:"error_detail,omitempty"`
	Worker      int           `json:"worker,omitempty"` // 0 in sequential mode
}

// TestSuite is the ordered collection of results from one execution run.
type TestSuite struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Results    []TestResult `json:"results"`
	CreatedAt  time.Time    `json:"created_at"`
	FinishedAt time.Time    `json:"finished_at"`
	// Submitted counts the combinations handed to a predicate.
	Submitted int `json:"submitted"`
	// Truncated is set when the run stopped before the sequence was exhausted.
	Truncated bool `json:"truncated,omitempty"`
}

// NewTestSuite creates an empty suite stamped with a fresh ID.
func NewTestSuite(name string) *TestSuite {
	return &TestSuite{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now(),
	}
}

// Add appends a result. Callers serialize access.
func (s *TestSuite) Add(r TestResult) {
	s.Results = append(s.Results, r)
}

// Duration is the wall-clock span of the run, zero until finished.
func (s *TestSuite) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.CreatedAt)
}

// ExecutionTime sums the per-test durations.
func (s *TestSuite) ExecutionTime() time.Duration {
	var total time.Duration
	for _, r := range s.Results {
		total += r.Duration
	}
	return total
}

// RunMeta contains metadata about a stored run.
type RunMeta struct {
	SuiteID         string  `json:"suite_id"`
	SuiteName       string  `json:"suite_name"`
	Catalog         string  `json:"catalog"`
	Workers         int     `json:"workers"`
	Duration        string  `json:"duration"`
	DurationSeconds float64 `json:"duration_seconds"`
	Truncated       bool    `json:"truncated,omitempty"`
	Timestamp       string  `json:"timestamp"`
}
