package cli

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cc-tools/sudokud/pkg/config"
	"github.com/cc-tools/sudokud/pkg/engine"
	"github.com/cc-tools/sudokud/pkg/engine/builtin"
	"github.com/cc-tools/sudokud/pkg/engine/remote"
	"github.com/cc-tools/sudokud/pkg/logging"
)

// engineFlags holds all flags for the engine command.
type engineFlags struct {
	port          int
	host          string
	token         string
	capacity      int
	solveTimeout  time.Duration
	maxConcurrent int
	logLevel      string
	logFormat     string
}

// engineFlagVals is the package-level instance bound to cobra flags.
var engineFlagVals engineFlags

var engineCmd = &cobra.Command{
	Use:   "engine",
	Short: "Serve the builtin solving engine over HTTP for remote adapters",
	Long: `Run the builtin solving engine behind the remote engine protocol:

  GET  /v1/capacity
  POST /v1/moves
  POST /v1/solution

An adapter started with 'sudokud serve --engine remote --engine-url URL'
forwards its computations here. The engine runs in the foreground until
SIGTERM/SIGINT.`,
	Example: `  # Serve on the default port
  sudokud engine

  # Require a bearer token and limit concurrent solves
  sudokud engine --port 9090 --token s3cret --max-concurrent 4`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		f := &engineFlagVals
		if f.token == "" {
			f.token = os.Getenv(config.EnvEngineToken)
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runEngine(ctx, f)
	},
}

func init() {
	f := &engineFlagVals
	d := config.Default()

	engineCmd.Flags().IntVarP(&f.port, "port", "p", 9090, "HTTP server port")
	engineCmd.Flags().StringVar(&f.host, "host", "", "Bind address (empty = all interfaces)")
	engineCmd.Flags().StringVar(&f.token, "token", "", "Bearer token required from adapters (or set "+config.EnvEngineToken+")")
	engineCmd.Flags().IntVar(&f.capacity, "capacity", d.Engine.Capacity, "Output buffer capacity reported to adapters")
	engineCmd.Flags().DurationVar(&f.solveTimeout, "solve-timeout", d.Engine.SolveTimeout, "Time limit per solve (0 = none)")
	engineCmd.Flags().IntVar(&f.maxConcurrent, "max-concurrent", d.Engine.MaxConcurrent, "Solves in flight before answering busy (0 = unlimited)")
	engineCmd.Flags().StringVar(&f.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	engineCmd.Flags().StringVar(&f.logFormat, "log-format", "text", "Log format (text, json)")

	rootCmd.AddCommand(engineCmd)
}

func runEngine(ctx context.Context, f *engineFlags) error {
	log := logging.New(logging.Config{
		Level:  logging.ParseLevel(f.logLevel),
		Format: logging.ParseFormat(f.logFormat),
	})

	e := builtin.New(
		builtin.WithCapacity(f.capacity),
		builtin.WithSolveTimeout(f.solveTimeout),
		builtin.WithMaxConcurrent(f.maxConcurrent),
		builtin.WithLogger(log.With("component", "builtin")),
	)
	defer e.Shutdown()

	binding := engine.Bind(ctx, e)
	if !binding.Valid() {
		return fmt.Errorf("failed to bind engine: %w", binding.Err())
	}

	h := remote.NewHandler(binding,
		remote.WithHandlerToken(f.token),
		remote.WithHandlerLogger(log.With("component", "engine-server")),
	)
	srv := remote.NewServer(net.JoinHostPort(f.host, strconv.Itoa(f.port)), h)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down engine")
	case err := <-errCh:
		if isAddrInUseError(err) {
			return fmt.Errorf("port %d is already in use", f.port)
		}
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
