package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/net/netutil"

	"github.com/cc-tools/sudokud/pkg/config"
	"github.com/cc-tools/sudokud/pkg/engine"
	"github.com/cc-tools/sudokud/pkg/logging"
	"github.com/cc-tools/sudokud/pkg/metrics"
	"github.com/cc-tools/sudokud/pkg/render"
)

// HealthPath is the liveness probe endpoint.
const HealthPath = "/healthz"

// ErrAlreadyRunning is returned by Start on a running server.
var ErrAlreadyRunning = errors.New("server is already running")

// Server is the sudokud HTTP adapter.
type Server struct {
	cfg      *config.ServerConfiguration
	binding  *engine.Binding
	client   *engine.Client
	renderer *render.Renderer
	router   *Router
	handler  http.Handler
	log      *slog.Logger

	mu         sync.Mutex
	httpServer *http.Server
	listener   net.Listener
	errCh      chan error
	running    bool
	startTime  time.Time
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithLogger sets the operational logger for the server and the components
// it builds.
func WithLogger(log *slog.Logger) ServerOption {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// WithRenderer replaces the default renderer.
func WithRenderer(r *render.Renderer) ServerOption {
	return func(s *Server) {
		if r != nil {
			s.renderer = r
		}
	}
}

// New creates a server for cfg that answers with the engine held by
// binding. A nil cfg means config.Default(). The binding is fixed for the
// server's lifetime.
func New(cfg *config.ServerConfiguration, binding *engine.Binding, opts ...ServerOption) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	s := &Server{
		cfg:     cfg,
		binding: binding,
		log:     logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.renderer == nil {
		s.renderer = render.New(render.WithLogger(s.log.With("component", "render")))
	}
	s.client = engine.NewClient(binding, engine.WithLogger(s.log.With("component", "engine")))
	s.router = NewRouter(cfg.BasePath, s.handleMoves, s.handleSolution, WithRouterLogger(s.log))
	s.handler = s.buildHandler()
	return s
}

func (s *Server) buildHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+HealthPath, s.handleHealth)
	if s.cfg.Metrics.Enabled {
		mux.Handle("GET "+s.metricsPath(), metrics.Handler())
	}
	mux.Handle("/", BindingGate(s.binding, s.log, s.router))

	mc := NewMiddlewareChain(WithChainLogger(s.log), WithRouteFunc(s.routeLabel))
	return mc.Wrap(mux)
}

func (s *Server) metricsPath() string {
	if s.cfg.Metrics.Path == "" {
		return config.DefaultMetricsPath
	}
	return s.cfg.Metrics.Path
}

// routeLabel names the route of r for metrics.
func (s *Server) routeLabel(r *http.Request) string {
	if op, ok := s.router.Route(r.URL.Path); ok {
		return string(op)
	}
	switch {
	case r.URL.Path == HealthPath:
		return "health"
	case s.cfg.Metrics.Enabled && r.URL.Path == s.metricsPath():
		return "metrics"
	default:
		return "unknown"
	}
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Router returns the game endpoint router.
func (s *Server) Router() *Router {
	return s.router
}

// Binding returns the engine binding the server was built with.
func (s *Server) Binding() *engine.Binding {
	return s.binding
}

// Start listens on the configured port and serves in the background.
// Port 0 picks a free port; see Addr.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrAlreadyRunning
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return fmt.Errorf("listen on port %d: %w", s.cfg.Port, err)
	}
	if s.cfg.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, s.cfg.MaxConnections)
	}

	s.httpServer = &http.Server{
		Handler:           s.handler,
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		ErrorLog:          slog.NewLogLogger(s.log.Handler(), slog.LevelWarn),
	}
	s.listener = ln
	s.errCh = make(chan error, 1)

	srv, errCh := s.httpServer, s.errCh
	go func() {
		defer close(errCh)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("HTTP server error", "error", err)
			errCh <- err
		}
	}()

	s.running = true
	s.startTime = time.Now()
	s.log.Info("server started",
		"addr", ln.Addr().String(),
		"moves", s.router.MovesPath(),
		"solution", s.router.SolutionPath(),
		"binding_valid", s.binding.Valid(),
		"engine", s.binding.EngineName(),
	)
	return nil
}

// Stop gracefully shuts the server down, waiting for in-flight requests
// until ctx is done.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	srv := s.httpServer
	s.mu.Unlock()

	// Handlers may take s.mu, so shut down without holding it.
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("HTTP shutdown: %w", err)
	}
	s.log.Info("server stopped")
	return nil
}

// Errors returns a channel that receives a fatal serve error, if any, and is
// closed when the server stops. It is nil before Start.
func (s *Server) Errors() <-chan error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errCh
}

// Addr returns the listen address, or "" when not running.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// URL returns the base URL of the running server, with the wildcard host
// replaced by localhost.
func (s *Server) URL() string {
	addr := s.Addr()
	if addr == "" {
		return ""
	}
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	return "http://" + net.JoinHostPort("localhost", port)
}

// IsRunning reports whether the server is serving.
func (s *Server) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Uptime returns seconds since Start, or 0 when not running.
func (s *Server) Uptime() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return 0
	}
	return int(time.Since(s.startTime).Seconds())
}
