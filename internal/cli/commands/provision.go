package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"combitest/internal/config"
	"combitest/internal/provision"
)

// ProvisionCommand handles the provision command
type ProvisionCommand struct {
	config      *config.Config
	databases   *provision.DatabaseManager
	provisioner provision.Provisioner
}

// NewProvisionCommand creates a new ProvisionCommand
func NewProvisionCommand(cfg *config.Config, dbs *provision.DatabaseManager, provisioner provision.Provisioner) *ProvisionCommand {
	return &ProvisionCommand{config: cfg, databases: dbs, provisioner: provisioner}
}

// Execute runs the command
func (pc *ProvisionCommand) Execute(cmd *cobra.Command, args []string) error {
	if pc.config.Flags.Drop {
		if err := pc.databases.DropDatabases(cmd.Context(), pc.config.Concurrency); err != nil {
			return err
		}
		color.Green("✓ Dropped %d worker database(s)", pc.config.Concurrency)
		return nil
	}
	return pc.provisioner.Run(cmd.Context(), pc.config.Concurrency)
}
