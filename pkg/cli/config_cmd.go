package cli

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/cc-tools/sudokud/pkg/cli/internal/output"
	"github.com/cc-tools/sudokud/pkg/config"
)

const redacted = "********"

type configShowFlags struct {
	configFile string
	sources    bool
}

var configShowFlagVals configShowFlags

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect sudokud configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the resolved configuration",
	Long: `Display the configuration 'sudokud serve' would start with, after the
config file and SUDOKUD_* environment variables are applied.

The engine token is redacted. Validation problems are reported as warnings
on stderr; the configuration is still printed.`,
	Example: `  # Show defaults merged with the environment
  sudokud config show

  # Show a config file and where each value came from
  sudokud config show -c sudokud.yaml --sources

  # Output as JSON
  sudokud config show --json`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runConfigShow(cmd.OutOrStdout(), cmd.ErrOrStderr(), &configShowFlagVals, jsonOutput)
	},
}

func init() {
	f := &configShowFlagVals
	configShowCmd.Flags().StringVarP(&f.configFile, "config", "c", "", "Path to YAML config file (or set "+config.EnvConfig+")")
	configShowCmd.Flags().BoolVar(&f.sources, "sources", false, "Print the source of every value instead of the configuration")

	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(w, errw io.Writer, f *configShowFlags, asJSON bool) error {
	path := f.configFile
	if path == "" {
		path = config.ConfigFileFromEnv()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		output.Warn(errw, "%v", err)
	}

	if f.sources {
		return printSources(w, cfg, asJSON)
	}

	shown := *cfg
	if shown.Engine.Token != "" {
		shown.Engine.Token = redacted
	}
	if asJSON {
		return output.JSON(w, shown)
	}

	data, err := config.ToYAML(&shown)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if path != "" {
		fmt.Fprintf(w, "# Resolved configuration from %s\n", path)
	} else {
		fmt.Fprintln(w, "# Resolved configuration from defaults")
	}
	_, err = w.Write(data)
	return err
}

func printSources(w io.Writer, cfg *config.ServerConfiguration, asJSON bool) error {
	if asJSON {
		return output.JSON(w, cfg.Sources)
	}
	for _, field := range slices.Sorted(maps.Keys(cfg.Sources)) {
		fmt.Fprintf(w, "%-22s %s\n", field, cfg.Sources[field])
	}
	return nil
}
