package config

import "time"

const (
	// DefaultProjectPath is the directory output paths are resolved against
	DefaultProjectPath = "."
	// DefaultOutputJSONFile is the default run output file name
	DefaultOutputJSONFile = "combination-results.json"
	// DefaultOutputJSONDir is the default output directory
	DefaultOutputJSONDir = "storage"
	// DefaultSuiteName names suites when none is given
	DefaultSuiteName = "Combination Tests"
	// DefaultConcurrency is the default number of workers
	DefaultConcurrency = 4
	// DefaultTimeout bounds a single predicate evaluation
	DefaultTimeout = 30 * time.Second
	// DefaultMinDimensions is the smallest combination size generated
	DefaultMinDimensions = 2
	// DefaultMaxDimensions is the largest combination size generated
	DefaultMaxDimensions = 3
	// DefaultSkipExitCode marks a command-backed test as skipped
	DefaultSkipExitCode = 77
	// DefaultDatabasePrefix prefixes per-worker database names
	DefaultDatabasePrefix = "testing"
	// DefaultEnvFile is loaded before environment overrides are read
	DefaultEnvFile = ".env"
)
