package commands

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"combitest/internal/config"
	"combitest/internal/domain"
	"combitest/internal/execution"
	"combitest/internal/provision"
	"combitest/internal/report"
	"combitest/internal/rules"
	"combitest/internal/storage"
	"combitest/internal/ui"
)

// RunCommand handles the run command
type RunCommand struct {
	config      *config.Config
	storage     storage.Storage
	provisioner provision.Provisioner
	viewer      ui.Viewer
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(
	cfg *config.Config,
	st storage.Storage,
	provisioner provision.Provisioner,
	viewer ui.Viewer,
) *RunCommand {
	return &RunCommand{
		config:      cfg,
		storage:     st,
		provisioner: provisioner,
		viewer:      viewer,
	}
}

// predicate selects the external command when one is configured and the
// catalog's interaction rules otherwise.
func (rc *RunCommand) predicate(s *space) (execution.Predicate, error) {
	if rc.config.Flags.Command != "" {
		command, err := execution.NewCommand(rc.config.Flags.Command)
		if err != nil {
			return nil, err
		}
		command.Dir = rc.config.ProjectPath
		command.SkipExitCode = rc.config.SkipExitCode
		if rc.config.Flags.ProvisionDB {
			command.DatabaseName = rc.config.GetDatabaseName
		}
		return command, nil
	}
	return rules.Decode(s.catalog, &s.file.Rules)
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := loadSpace(rc.config)
	if err != nil {
		return err
	}
	pred, err := rc.predicate(s)
	if err != nil {
		return err
	}

	if rc.config.Flags.ProvisionDB {
		if err := rc.provisioner.Run(ctx, rc.config.Concurrency); err != nil {
			return fmt.Errorf("provisioning failed: %w", err)
		}
		fmt.Println()
	}

	if s.size == 0 {
		color.Yellow("No combinations to execute")
		return nil
	}

	progressBar := ui.NewProgressBar(s.size)
	executor := execution.New(execution.Config{
		SuiteName:   rc.config.SuiteName,
		Concurrency: rc.config.Concurrency,
		Timeout:     rc.config.Timeout,
		FailFast:    rc.config.Flags.FailFast,
		OnResult:    progressBar.Record,
		Logger:      slog.Default(),
	})

	suite := executor.Execute(ctx, s.seq, pred)
	progressBar.Finish()

	if err := rc.storage.Save(suite, catalogName(rc.config), executor.Workers()); err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}

	fmt.Println()
	if err := report.WriteText(os.Stdout, suite, report.TextOptions{Details: rc.config.Flags.Details}); err != nil {
		return err
	}
	color.White("\nResults saved to %s", rc.config.GetOutputPath())

	if ctx.Err() != nil {
		return fmt.Errorf("run interrupted after %d combination(s)", len(suite.Results))
	}
	if rc.config.Flags.OpenView && hasFailures(suite) {
		output, err := rc.storage.Load()
		if err != nil {
			return err
		}
		return rc.viewer.View(output)
	}
	return nil
}

func hasFailures(suite *domain.TestSuite) bool {
	for _, r := range suite.Results {
		if r.Status.IsFailure() {
			return true
		}
	}
	return false
}
