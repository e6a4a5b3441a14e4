package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"combitest/internal/config"
	"combitest/internal/report"
	"combitest/internal/storage"
)

// ReportCommand handles the report command
type ReportCommand struct {
	config  *config.Config
	storage storage.Storage
}

// NewReportCommand creates a new ReportCommand
func NewReportCommand(cfg *config.Config, st storage.Storage) *ReportCommand {
	return &ReportCommand{config: cfg, storage: st}
}

// Execute runs the command
func (rc *ReportCommand) Execute(cmd *cobra.Command, args []string) error {
	output, err := rc.storage.Load()
	if err != nil {
		return err
	}

	if rc.config.Flags.JSON {
		data, err := json.MarshalIndent(output.Report, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal report: %w", err)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}
	return report.WriteText(cmd.OutOrStdout(), output.Suite(), report.TextOptions{Details: rc.config.Flags.Details})
}
