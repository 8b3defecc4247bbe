package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	verbose    bool
	jsonOutput bool
)

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mstack",
		Short: "µStack - Atomic Surface Workflow Pipeline",
		Long: `µStack runs an end-to-end materials-science pipeline from a natural
language query: parse the request, build an atomic surface slab, relax the
geometry, grade the result against curated experimental references, and
optionally branch into microscopy simulation.

Features:
  - Parametric and LLM script-synthesis structure providers with fallback
  - Morse-potential geometry relaxation
  - Layer-spacing comparison against literature LEED/DFT data
  - STM / AFM / IETS routing with interactive pause
  - Markdown run reports and XYZ artifacts`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	}

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")

	// Add subcommands
	rootCmd.AddCommand(newRunCommand(version))
	rootCmd.AddCommand(newReferencesCommand())
	rootCmd.AddCommand(newDevCommand(version))
	rootCmd.AddCommand(newVersionCommand(version, commit, buildDate))

	return rootCmd
}
