package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"combitest/internal/domain"
	"combitest/internal/report"
)

// NewOutput assembles the output of a finished suite.
func NewOutput(suite *domain.TestSuite, catalog string, workers int) *Output {
	d := suite.Duration()
	failures := domain.Failures(suite)
	if failures == nil {
		failures = []domain.Failure{}
	}
	results := suite.Results
	if results == nil {
		results = []domain.TestResult{}
	}
	return &Output{
		Meta: domain.RunMeta{
			SuiteID:         suite.ID,
			SuiteName:       suite.Name,
			Catalog:         catalog,
			Workers:         workers,
			Duration:        d.String(),
			DurationSeconds: d.Seconds(),
			Truncated:       suite.Truncated,
			Timestamp:       time.Now().Format(time.RFC3339),
		},
		Report:   report.Build(suite).Export(),
		Results:  results,
		Failures: failures,
	}
}

func durationOf(meta domain.RunMeta) time.Duration {
	if d, err := time.ParseDuration(meta.Duration); err == nil {
		return d
	}
	return time.Duration(meta.DurationSeconds * float64(time.Second))
}

// Save writes the suite to the configured JSON output file.
func (s *JSONStorage) Save(suite *domain.TestSuite, catalog string, workers int) error {
	return s.SaveOutput(NewOutput(suite, catalog, workers))
}

// Load reads the last run from the configured JSON output file.
func (s *JSONStorage) Load() (*Output, error) {
	path := s.cfg.GetOutputPath()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w at %s (run 'cit run' first)", ErrNoResults, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read results file: %w", err)
	}
	var output Output
	if err := json.Unmarshal(data, &output); err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}
	return &output, nil
}

// SaveOutput writes the full output to the configured JSON file.
func (s *JSONStorage) SaveOutput(output *Output) error {
	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	path := s.cfg.GetOutputPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}
