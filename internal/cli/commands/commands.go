package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"combitest/internal/cli"
	"combitest/internal/config"
	"combitest/internal/provision"
	"combitest/internal/storage"
	"combitest/internal/ui"
)

// Commands holds all CLI commands
type Commands struct {
	Generate  *GenerateCommand
	Run       *RunCommand
	Report    *ReportCommand
	View      *ViewCommand
	Provision *ProvisionCommand
}

// NewCommands creates all commands with dependencies
func NewCommands(cfg *config.Config) *Commands {
	jsonStorage := storage.NewJSONStorage(cfg)
	viewer := ui.NewFailureViewer(jsonStorage)
	dbManager := provision.NewDatabaseManager(cfg, provision.ServerConfigFromEnv(cfg.ProjectPath))
	provisioner := provision.NewSetupProvisioner(cfg, dbManager)

	return &Commands{
		Generate:  NewGenerateCommand(cfg),
		Run:       NewRunCommand(cfg, jsonStorage, provisioner, viewer),
		Report:    NewReportCommand(cfg, jsonStorage),
		View:      NewViewCommand(jsonStorage, viewer),
		Provision: NewProvisionCommand(cfg, dbManager, provisioner),
	}
}

// applyFlags updates config with flags after parsing
func applyFlags(cmd *cobra.Command, flags *cli.Flags, cfg *config.Config) error {
	flags.SeedSet = cmd.Flags().Changed("seed")
	return cfg.Apply(flags.ToConfigFlags())
}

func setupLogging(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func addSpaceFlags(cmd *cobra.Command, flags *cli.Flags) {
	cmd.Flags().StringVar(&flags.Catalog, "catalog", "", "Path to a YAML dimension catalog (default: built-in catalog)")
	cmd.Flags().IntVar(&flags.Min, "min", 0, "Smallest number of dimensions per combination (default 2)")
	cmd.Flags().IntVar(&flags.Max, "max", 0, "Largest number of dimensions per combination (default 3)")
	cmd.Flags().IntVar(&flags.Cap, "cap", 0, "Use only the first N values of every dimension")
	cmd.Flags().IntVar(&flags.Samples, "sample", 0, "Draw N random combinations per size instead of all of them")
	cmd.Flags().Uint64Var(&flags.Seed, "seed", 0, "Seed for --sample")
	cmd.Flags().StringVarP(&flags.Filter, "filter", "f", "", "Keep combinations with a dimension:value matching the pattern (supports wildcards, e.g. 'Format:*' or '*json*')")
	cmd.Flags().StringVar(&flags.Shard, "shard", "", "Run only shard i of n, e.g. '2/4'")
	cmd.Flags().IntVar(&flags.Limit, "limit", 0, "Stop after N combinations")
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags, cfg *config.Config) {
	rootCmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&flags.Output, "output", "o", "", "Path of the run output JSON file (default storage/combination-results.json)")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		setupLogging(flags.Verbose)
	}
	preRun := func(cmd *cobra.Command, args []string) error {
		return applyFlags(cmd, flags, cfg)
	}

	// Generate command
	generateCmd := &cobra.Command{
		Use:     "generate",
		Short:   "List the combinations of the dimension catalog",
		Long:    "Generate the combinations of dimension values selected by size, cap, sampling, filter and shard without executing them",
		RunE:    c.Generate.Execute,
		PreRunE: preRun,
	}
	addSpaceFlags(generateCmd, flags)
	generateCmd.Flags().BoolVar(&flags.Tree, "tree", false, "Group combinations by size and dimension group")
	generateCmd.Flags().BoolVar(&flags.Keys, "keys", false, "Print one canonical key per line")
	rootCmd.AddCommand(generateCmd)

	// Run command
	runCmd := &cobra.Command{
		Use:     "run",
		Short:   "Execute a predicate over the combinations",
		Long:    "Evaluate the catalog's interaction rules, or an external command, once per combination using parallel workers",
		RunE:    c.Run.Execute,
		PreRunE: preRun,
	}
	addSpaceFlags(runCmd, flags)
	runCmd.Flags().IntVarP(&flags.Concurrency, "concurrency", "p", 0, "Number of workers (default 4, 1 runs sequentially)")
	runCmd.Flags().DurationVar(&flags.Timeout, "timeout", 0, "Timeout per combination (default 30s)")
	runCmd.Flags().BoolVar(&flags.FailFast, "fail-fast", false, "Stop on first failure or error")
	runCmd.Flags().StringVarP(&flags.Command, "command", "c", "", "Command to run per combination; values are exported as CIT_<DIMENSION>")
	runCmd.Flags().BoolVar(&flags.ProvisionDB, "provision-db", false, "Create a MySQL database per worker and export it as DB_DATABASE")
	runCmd.Flags().StringVar(&flags.Setup, "setup", "", "Command run once per worker database after provisioning")
	runCmd.Flags().StringVar(&flags.Suite, "suite", "", "Suite name")
	runCmd.Flags().BoolVar(&flags.Details, "details", false, "Print every result, not only failures")
	runCmd.Flags().BoolVar(&flags.OpenView, "open-view", false, "Open the failure viewer when the run finishes with failures")
	rootCmd.AddCommand(runCmd)

	// Report command
	reportCmd := &cobra.Command{
		Use:     "report",
		Short:   "Print the report of the last run",
		Long:    "Re-render the report of the last saved run as text or as JSON",
		RunE:    c.Report.Execute,
		PreRunE: preRun,
	}
	reportCmd.Flags().BoolVar(&flags.JSON, "json", false, "Print the machine-readable export")
	reportCmd.Flags().BoolVar(&flags.Details, "details", false, "Print every result, not only failures")
	rootCmd.AddCommand(reportCmd)

	// View command
	viewCmd := &cobra.Command{
		Use:     "view",
		Short:   "View failing combinations interactively",
		Long:    "Display failing combinations from the last run in an interactive viewer",
		RunE:    c.View.Execute,
		PreRunE: preRun,
	}
	rootCmd.AddCommand(viewCmd)

	// Provision command
	provisionCmd := &cobra.Command{
		Use:     "provision",
		Short:   "Create the per-worker test databases",
		Long:    "Create one MySQL database per worker and run an optional setup command against each in parallel",
		RunE:    c.Provision.Execute,
		PreRunE: preRun,
	}
	provisionCmd.Flags().IntVarP(&flags.Concurrency, "concurrency", "p", 0, "Number of workers (default 4)")
	provisionCmd.Flags().StringVar(&flags.Setup, "setup", "", "Command run once per worker database, e.g. a migration tool")
	provisionCmd.Flags().BoolVar(&flags.Drop, "drop", false, "Drop the worker databases instead")
	rootCmd.AddCommand(provisionCmd)
}
