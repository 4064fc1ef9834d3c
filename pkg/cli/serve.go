package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cc-tools/sudokud/pkg/config"
	"github.com/cc-tools/sudokud/pkg/engine"
	"github.com/cc-tools/sudokud/pkg/logging"
	"github.com/cc-tools/sudokud/pkg/metrics"
	"github.com/cc-tools/sudokud/pkg/server"
)

// shutdownTimeout is the maximum time to wait for graceful shutdown.
const shutdownTimeout = 30 * time.Second

// serveFlags holds the parsed command-line flags for the serve command.
type serveFlags struct {
	configFile     string
	port           int
	basePath       string
	readTimeout    time.Duration
	writeTimeout   time.Duration
	maxConnections int

	engineDriver  string
	engineURL     string
	engineToken   string
	engineTimeout time.Duration
	capacity      int
	solveTimeout  time.Duration
	maxConcurrent int

	logLevel  string
	logFormat string
	logFile   string

	metrics     bool
	metricsPath string
}

// serveFlagVals is the package-level instance bound to cobra flags.
var serveFlagVals serveFlags

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP adapter (foreground)",
	Long: `Start the sudokud HTTP adapter in the foreground.

The engine is bound once at startup. If binding fails the server still
starts, but every game request is answered with 500 "engine binding invalid."
and /healthz reports 503.`,
	Example: `  # Start with defaults (builtin engine on :8080)
  sudokud serve

  # Custom port and base path
  sudokud serve --port 9000 --base-path /games/sudoku

  # Forward to a remote engine started with 'sudokud engine'
  sudokud serve --engine remote --engine-url http://solver:9090

  # Config file with JSON logs
  sudokud serve --config sudokud.yaml --log-format json`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := resolveServeConfig(&serveFlagVals, cmd.Flags().Changed)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runServe(ctx, cfg)
	},
}

func init() {
	f := &serveFlagVals
	d := config.Default()

	serveCmd.Flags().StringVarP(&f.configFile, "config", "c", "", "Path to YAML config file (or set "+config.EnvConfig+")")
	serveCmd.Flags().IntVarP(&f.port, "port", "p", d.Port, "HTTP server port (0 = OS auto-assign)")
	serveCmd.Flags().StringVar(&f.basePath, "base-path", d.BasePath, "Path prefix of the moves and solution endpoints")
	serveCmd.Flags().DurationVar(&f.readTimeout, "read-timeout", d.ReadTimeout, "HTTP read timeout")
	serveCmd.Flags().DurationVar(&f.writeTimeout, "write-timeout", d.WriteTimeout, "HTTP write timeout")
	serveCmd.Flags().IntVar(&f.maxConnections, "max-connections", 0, "Maximum concurrent HTTP connections (0 = unlimited)")

	serveCmd.Flags().StringVar(&f.engineDriver, "engine", d.Engine.Driver, "Engine driver (builtin, remote)")
	serveCmd.Flags().StringVar(&f.engineURL, "engine-url", "", "Remote engine base URL")
	serveCmd.Flags().StringVar(&f.engineToken, "engine-token", "", "Bearer token for the remote engine")
	serveCmd.Flags().DurationVar(&f.engineTimeout, "engine-timeout", d.Engine.Timeout, "Remote engine request timeout")
	serveCmd.Flags().IntVar(&f.capacity, "capacity", d.Engine.Capacity, "Builtin engine output buffer capacity")
	serveCmd.Flags().DurationVar(&f.solveTimeout, "solve-timeout", d.Engine.SolveTimeout, "Builtin engine time limit per solve (0 = none)")
	serveCmd.Flags().IntVar(&f.maxConcurrent, "max-concurrent", d.Engine.MaxConcurrent, "Builtin engine solves in flight before answering busy (0 = unlimited)")

	serveCmd.Flags().StringVar(&f.logLevel, "log-level", d.Log.Level, "Log level (debug, info, warn, error)")
	serveCmd.Flags().StringVar(&f.logFormat, "log-format", d.Log.Format, "Log format (text, json)")
	serveCmd.Flags().StringVar(&f.logFile, "log-file", "", "Also write JSON logs to this rotated file")

	serveCmd.Flags().BoolVar(&f.metrics, "metrics", d.Metrics.Enabled, "Expose Prometheus metrics")
	serveCmd.Flags().StringVar(&f.metricsPath, "metrics-path", d.Metrics.Path, "Prometheus metrics path")

	rootCmd.AddCommand(serveCmd)
}

// resolveServeConfig loads defaults, the config file and the environment,
// then applies the flags the user set explicitly.
func resolveServeConfig(f *serveFlags, changed func(name string) bool) (*config.ServerConfiguration, error) {
	path := f.configFile
	if path == "" {
		path = config.ConfigFileFromEnv()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	apply := func(flag, field string, set func()) {
		if changed(flag) {
			set()
			cfg.SetSource(field, config.SourceFlag)
		}
	}
	apply("port", "port", func() { cfg.Port = f.port })
	apply("base-path", "basePath", func() { cfg.BasePath = f.basePath })
	apply("read-timeout", "readTimeout", func() { cfg.ReadTimeout = f.readTimeout })
	apply("write-timeout", "writeTimeout", func() { cfg.WriteTimeout = f.writeTimeout })
	apply("max-connections", "maxConnections", func() { cfg.MaxConnections = f.maxConnections })
	apply("engine", "engine.driver", func() { cfg.Engine.Driver = f.engineDriver })
	apply("engine-url", "engine.url", func() { cfg.Engine.URL = f.engineURL })
	apply("engine-token", "engine.token", func() { cfg.Engine.Token = f.engineToken })
	apply("engine-timeout", "engine.timeout", func() { cfg.Engine.Timeout = f.engineTimeout })
	apply("capacity", "engine.capacity", func() { cfg.Engine.Capacity = f.capacity })
	apply("solve-timeout", "engine.solveTimeout", func() { cfg.Engine.SolveTimeout = f.solveTimeout })
	apply("max-concurrent", "engine.maxConcurrent", func() { cfg.Engine.MaxConcurrent = f.maxConcurrent })
	apply("log-level", "log.level", func() { cfg.Log.Level = f.logLevel })
	apply("log-format", "log.format", func() { cfg.Log.Format = f.logFormat })
	apply("log-file", "log.file", func() { cfg.Log.File = f.logFile })
	apply("metrics", "metrics.enabled", func() { cfg.Metrics.Enabled = f.metrics })
	apply("metrics-path", "metrics.path", func() { cfg.Metrics.Path = f.metricsPath })

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// runServe binds the engine, serves until ctx is done or the listener
// fails, then shuts down gracefully.
func runServe(ctx context.Context, cfg *config.ServerConfiguration) error {
	log, closer := logging.Open(cfg.LoggingConfig())
	defer closer.Close()

	if cfg.Metrics.Enabled {
		metrics.Init()
	}

	e, stopEngine, err := newEngine(cfg.Engine, log)
	if err != nil {
		return err
	}
	defer stopEngine()

	binding := engine.Bind(ctx, e)
	metrics.SetBindingValid(binding.Valid())
	if !binding.Valid() {
		log.Error("engine binding failed; game requests will be rejected",
			"engine", binding.EngineName(),
			"error", binding.Err(),
		)
	} else {
		log.Info("engine bound", "engine", binding.EngineName(), "capacity", binding.Capacity())
	}

	srv := server.New(cfg, binding, server.WithLogger(log))
	if err := srv.Start(); err != nil {
		if isAddrInUseError(err) {
			return fmt.Errorf("port %d is already in use, try --port 0 for auto-assign", cfg.Port)
		}
		return fmt.Errorf("failed to start server: %w", err)
	}

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case serveErr = <-srv.Errors():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.Error("shutdown failed", "error", err)
		if serveErr == nil {
			serveErr = err
		}
	}
	return serveErr
}
