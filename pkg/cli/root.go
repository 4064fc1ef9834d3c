// Package cli provides the sudokud CLI commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// jsonOutput is a persistent flag for machine-readable output.
	jsonOutput bool

	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sudokud",
	Short: "sudokud serves a Sudoku solving engine over HTTP",
	Long: `sudokud exposes a Sudoku solving engine over HTTP. Clients send a grid
position and get back the legal next moves or a full solution, rendered as
HTML or XML.

Configuration is read from a YAML file (--config or SUDOKUD_CONFIG), then
SUDOKUD_* environment variables, then command-line flags.`,
	SilenceUsage:  true,
	SilenceErrors: true, // We handle errors in Execute()
}

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Root returns the root command.
func Root() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output command results in JSON format")
}
