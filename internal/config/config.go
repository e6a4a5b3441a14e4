package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Project settings
	ProjectPath string
	CatalogPath string // empty selects the built-in catalog

	// Output settings
	OutputJSONFile string
	OutputJSONDir  string

	// Generation settings
	MinDimensions         int
	MaxDimensions         int
	MaxValuesPerDimension int
	Samples               int // 0 generates exhaustively
	Seed                  uint64

	// Execution settings
	SuiteName    string
	Concurrency  int
	Timeout      time.Duration
	SkipExitCode int

	// Database settings
	DatabasePrefix string

	// Command flags
	Flags Flags
}

// Flags holds command-line flags. Zero values leave the configured value alone.
type Flags struct {
	Catalog     string
	Output      string
	Min         int
	Max         int
	Cap         int
	Samples     int
	Seed        uint64
	SeedSet     bool
	Filter      string
	Shard       string
	Limit       int
	Suite       string
	Concurrency int
	Timeout     time.Duration
	FailFast    bool
	Command     string
	ProvisionDB bool
	Setup       string
	Drop        bool
	OpenView    bool
	Tree        bool
	Keys        bool
	JSON        bool
	Details     bool
	Verbose     bool
}

// New creates a new Config with defaults
func New() *Config {
	return &Config{
		ProjectPath:    DefaultProjectPath,
		OutputJSONFile: DefaultOutputJSONFile,
		OutputJSONDir:  DefaultOutputJSONDir,
		MinDimensions:  DefaultMinDimensions,
		MaxDimensions:  DefaultMaxDimensions,
		SuiteName:      DefaultSuiteName,
		Concurrency:    DefaultConcurrency,
		Timeout:        DefaultTimeout,
		SkipExitCode:   DefaultSkipExitCode,
		DatabasePrefix: DefaultDatabasePrefix,
	}
}

// Load creates a config from defaults, the .env file, CIT_* environment
// variables and flags, in increasing precedence.
func Load(flags Flags) (*Config, error) {
	cfg := New()
	if err := cfg.Apply(flags); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Apply layers the .env file, environment and flags over c.
func (c *Config) Apply(flags Flags) error {
	if err := godotenv.Load(DefaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", DefaultEnvFile, err)
	}
	if err := c.applyEnv(); err != nil {
		return err
	}
	c.applyFlags(flags)
	return nil
}

func (c *Config) applyEnv() error {
	var err error
	c.CatalogPath = envString(EnvCatalog, c.CatalogPath)
	c.OutputJSONDir = envString(EnvOutputDir, c.OutputJSONDir)
	c.OutputJSONFile = envString(EnvOutputFile, c.OutputJSONFile)
	c.DatabasePrefix = envString(EnvDatabasePrefix, c.DatabasePrefix)
	if c.Concurrency, err = envInt(EnvConcurrency, c.Concurrency); err != nil {
		return err
	}
	if c.Timeout, err = envDuration(EnvTimeout, c.Timeout); err != nil {
		return err
	}
	if c.Seed, err = envUint64(EnvSeed, c.Seed); err != nil {
		return err
	}
	return nil
}

func (c *Config) applyFlags(flags Flags) {
	c.Flags = flags

	if flags.Catalog != "" {
		c.CatalogPath = flags.Catalog
	}
	if flags.Output != "" {
		c.OutputJSONDir = filepath.Dir(flags.Output)
		c.OutputJSONFile = filepath.Base(flags.Output)
	}
	if flags.Min > 0 {
		c.MinDimensions = flags.Min
	}
	if flags.Max > 0 {
		c.MaxDimensions = flags.Max
	}
	if flags.Cap > 0 {
		c.MaxValuesPerDimension = flags.Cap
	}
	if flags.Samples > 0 {
		c.Samples = flags.Samples
	}
	if flags.SeedSet {
		c.Seed = flags.Seed
	}
	if flags.Suite != "" {
		c.SuiteName = flags.Suite
	}
	if flags.Concurrency > 0 {
		c.Concurrency = flags.Concurrency
	}
	if flags.Timeout > 0 {
		c.Timeout = flags.Timeout
	}
}

// GetOutputPath returns the absolute path of the run output file so that run,
// report and view agree regardless of cwd.
func (c *Config) GetOutputPath() string {
	p := filepath.Join(c.OutputJSONDir, c.OutputJSONFile)
	if !filepath.IsAbs(p) {
		p = filepath.Join(c.ProjectPath, p)
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// GetDatabaseName returns the database name for a worker
func (c *Config) GetDatabaseName(workerID int) string {
	return fmt.Sprintf("%s_%d", c.DatabasePrefix, workerID)
}
