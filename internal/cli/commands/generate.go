package commands

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"combitest/internal/config"
	"combitest/internal/ui"
)

// GenerateCommand handles the generate command
type GenerateCommand struct {
	config *config.Config
}

// NewGenerateCommand creates a new GenerateCommand
func NewGenerateCommand(cfg *config.Config) *GenerateCommand {
	return &GenerateCommand{config: cfg}
}

// Execute runs the command
func (gc *GenerateCommand) Execute(cmd *cobra.Command, args []string) error {
	s, err := loadSpace(gc.config)
	if err != nil {
		return err
	}

	formatter := ui.NewFormatter(cmd.OutOrStdout())
	if gc.config.Flags.Keys {
		formatter.PrintKeys(s.seq)
		return nil
	}

	var n int
	if gc.config.Flags.Tree {
		n = formatter.PrintCombinationTree(s.seq)
	} else {
		n = formatter.PrintCombinations(s.seq)
	}
	if n == 0 {
		color.New(color.FgYellow).Fprintln(os.Stderr, "No combinations match")
	}
	formatter.PrintSpaceStats(s.catalog, s.generator)
	return nil
}
