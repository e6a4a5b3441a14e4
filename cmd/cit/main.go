package main

import (
	"fmt"
	"os"

	"combitest/internal/cli"
	"combitest/internal/cli/commands"
	"combitest/internal/config"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:     "cit",
		Short:   "Combinatorial interaction tester",
		Long:    `Generate combinations of configuration dimension values, execute a predicate against each in parallel and report which dimension values correlate with failures.`,
		Version: version,
	}

	// Create initial config with defaults
	cfg := config.New()

	// Create flags struct (will be populated by command flags)
	var flags cli.Flags

	// Create commands with dependencies
	cmds := commands.NewCommands(cfg)

	// Register all commands
	cmds.Register(rootCmd, &flags, cfg)

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
