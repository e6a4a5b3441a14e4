package cli

import (
	"time"

	"combitest/internal/config"
)

// Flags holds command-line flags
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

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		Catalog:     f.Catalog,
		Output:      f.Output,
		Min:         f.Min,
		Max:         f.Max,
		Cap:         f.Cap,
		Samples:     f.Samples,
		Seed:        f.Seed,
		SeedSet:     f.SeedSet,
		Filter:      f.Filter,
		Shard:       f.Shard,
		Limit:       f.Limit,
		Suite:       f.Suite,
		Concurrency: f.Concurrency,
		Timeout:     f.Timeout,
		FailFast:    f.FailFast,
		Command:     f.Command,
		ProvisionDB: f.ProvisionDB,
		Setup:       f.Setup,
		Drop:        f.Drop,
		OpenView:    f.OpenView,
		Tree:        f.Tree,
		Keys:        f.Keys,
		JSON:        f.JSON,
		Details:     f.Details,
		Verbose:     f.Verbose,
	}
}
