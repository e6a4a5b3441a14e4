package storage

import (
	"errors"

	"combitest/internal/config"
	"combitest/internal/domain"
	"combitest/internal/report"
)

// ErrNoResults is returned by Load when no run has been saved yet.
var ErrNoResults = errors.New("no saved results")

// Output is the run output file: metadata, the report export, every result
// and the failures (with their resolved flags).
type Output struct {
	Meta     domain.RunMeta      `json:"meta"`
	Report   report.Export       `json:"report"`
	Results  []domain.TestResult `json:"results"`
	Failures []domain.Failure    `json:"failures"`
}

// Suite rebuilds the suite the output was saved from.
func (o *Output) Suite() *domain.TestSuite {
	s := &domain.TestSuite{
		ID:        o.Meta.SuiteID,
		Name:      o.Meta.SuiteName,
		Results:   o.Results,
		Submitted: len(o.Results),
		Truncated: o.Meta.Truncated,
	}
	if len(o.Results) > 0 {
		s.CreatedAt = o.Results[0].StartedAt
		s.FinishedAt = s.CreatedAt.Add(durationOf(o.Meta))
	}
	return s
}

// Storage persists and loads run output (e.g. for the report and view commands).
type Storage interface {
	Save(suite *domain.TestSuite, catalog string, workers int) error
	Load() (*Output, error)
	// SaveOutput writes the full output (e.g. after toggling resolved failures).
	SaveOutput(output *Output) error
}

// JSONStorage stores results in a JSON file under the configured output path.
type JSONStorage struct {
	cfg *config.Config
}

// NewJSONStorage returns a Storage that reads/writes the config's output JSON path.
func NewJSONStorage(cfg *config.Config) *JSONStorage {
	return &JSONStorage{cfg: cfg}
}
