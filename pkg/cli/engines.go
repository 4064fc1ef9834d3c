package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"syscall"

	"github.com/cc-tools/sudokud/pkg/config"
	"github.com/cc-tools/sudokud/pkg/engine"
	"github.com/cc-tools/sudokud/pkg/engine/builtin"
	"github.com/cc-tools/sudokud/pkg/engine/remote"
)

// newEngine builds the engine selected by cfg. The returned stop function
// must be called once no more requests will reach the engine.
func newEngine(cfg config.EngineConfig, log *slog.Logger) (engine.Engine, func(), error) {
	switch cfg.Driver {
	case config.DriverBuiltin, "":
		e := builtin.New(
			builtin.WithCapacity(cfg.Capacity),
			builtin.WithSolveTimeout(cfg.SolveTimeout),
			builtin.WithMaxConcurrent(cfg.MaxConcurrent),
			builtin.WithLogger(log.With("component", "builtin")),
		)
		return e, e.Shutdown, nil
	case config.DriverRemote:
		opts := []remote.Option{
			remote.WithToken(cfg.Token),
			remote.WithLogger(log.With("component", "remote")),
		}
		if cfg.Timeout > 0 {
			opts = append(opts, remote.WithTimeout(cfg.Timeout))
		}
		return remote.New(cfg.URL, opts...), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown engine driver %q", cfg.Driver)
	}
}

// isAddrInUseError reports whether err is an "address already in use" error.
func isAddrInUseError(err error) bool {
	return errors.Is(err, syscall.EADDRINUSE)
}
