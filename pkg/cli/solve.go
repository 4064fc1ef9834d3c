package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cc-tools/sudokud/pkg/config"
	"github.com/cc-tools/sudokud/pkg/engine"
	"github.com/cc-tools/sudokud/pkg/logging"
	"github.com/cc-tools/sudokud/pkg/params"
	"github.com/cc-tools/sudokud/pkg/render"
)

// ErrSolveFailed is returned when the engine answered with a failure status.
var ErrSolveFailed = errors.New("solve failed")

// solveFlags holds all flags for the solve command.
type solveFlags struct {
	solution      bool
	xml           bool
	pretty        bool
	engineURL     string
	engineToken   string
	engineTimeout time.Duration
	capacity      int
	solveTimeout  time.Duration
	logLevel      string
}

// solveFlagVals is the package-level instance bound to cobra flags.
var solveFlagVals solveFlags

var solveCmd = &cobra.Command{
	Use:   "solve POSITION...",
	Short: "Solve one position and print the rendered answer",
	Long: `Bind an engine, run one computation and print the response body exactly
as the HTTP adapter would render it. The position may be given as one
argument or as several space-separated arguments.

By default the legal next moves are computed; use --solution for a full
solution. The builtin engine is used unless --engine-url is set.`,
	Example: `  # Moves as HTML
  sudokud solve 530070000600195000098000060800060003400803001700020006060000280000419005000080079

  # Full solution as indented XML
  sudokud solve --solution --xml --pretty 5 3 0 0 7 0 0 0 0 ...

  # Ask a remote engine
  sudokud solve --engine-url http://solver:9090 530070000600195000...`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSolve(cmd.Context(), cmd.OutOrStdout(), strings.Join(args, " "), &solveFlagVals)
	},
}

func init() {
	f := &solveFlagVals
	d := config.Default()

	solveCmd.Flags().BoolVar(&f.solution, "solution", false, "Compute a full solution instead of the next moves")
	solveCmd.Flags().BoolVar(&f.xml, "xml", false, "Render XML instead of HTML")
	solveCmd.Flags().BoolVar(&f.pretty, "pretty", false, "Indent XML output")
	solveCmd.Flags().StringVar(&f.engineURL, "engine-url", "", "Use the remote engine at this URL")
	solveCmd.Flags().StringVar(&f.engineToken, "engine-token", "", "Bearer token for the remote engine")
	solveCmd.Flags().DurationVar(&f.engineTimeout, "engine-timeout", d.Engine.Timeout, "Remote engine request timeout")
	solveCmd.Flags().IntVar(&f.capacity, "capacity", d.Engine.Capacity, "Builtin engine output buffer capacity")
	solveCmd.Flags().DurationVar(&f.solveTimeout, "solve-timeout", d.Engine.SolveTimeout, "Builtin engine time limit (0 = none)")
	solveCmd.Flags().StringVar(&f.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(solveCmd)
}

// engineConfig maps the solve flags onto an engine configuration.
func (f *solveFlags) engineConfig() config.EngineConfig {
	cfg := config.Default().Engine
	cfg.Capacity = f.capacity
	cfg.SolveTimeout = f.solveTimeout
	cfg.MaxConcurrent = 0
	if f.engineURL != "" {
		cfg.Driver = config.DriverRemote
		cfg.URL = f.engineURL
		cfg.Token = f.engineToken
		cfg.Timeout = f.engineTimeout
	}
	return cfg
}

// runSolve writes the rendered answer for position to w. A failed engine
// status is still rendered and then reported as ErrSolveFailed.
func runSolve(ctx context.Context, w io.Writer, position string, f *solveFlags) error {
	if err := params.ValidatePosition(position); err != nil || strings.TrimSpace(position) == "" {
		return fmt.Errorf("%s: %q", params.MessagePositionInvalid, position)
	}

	log := logging.NewWithLevel(logging.ParseLevel(f.logLevel))

	e, stopEngine, err := newEngine(f.engineConfig(), log)
	if err != nil {
		return err
	}
	defer stopEngine()

	binding := engine.Bind(ctx, e)
	if !binding.Valid() {
		return fmt.Errorf("%w: %w", engine.ErrNotBound, binding.Err())
	}

	op := engine.OperationMoves
	if f.solution {
		op = engine.OperationSolution
	}

	client := engine.NewClient(binding, engine.WithLogger(log))
	out := client.Invoke(ctx, op, position)

	resp := render.New(render.WithLogger(log)).Render(out, render.Mode{XML: f.xml, Pretty: f.pretty})
	if _, err := fmt.Fprintln(w, resp.Body); err != nil {
		return err
	}

	switch {
	case out.Err != nil:
		return out.Err
	case out.Failed():
		return fmt.Errorf("%w: %s", ErrSolveFailed, out.Diagnostic)
	}
	return nil
}
