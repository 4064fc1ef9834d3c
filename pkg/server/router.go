package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cc-tools/sudokud/pkg/engine"
	"github.com/cc-tools/sudokud/pkg/httputil"
	"github.com/cc-tools/sudokud/pkg/logging"
)

// MessageMethodNotAllowed is the body for non-GET requests to a game endpoint.
const MessageMethodNotAllowed = "method not allowed. use GET."

// DispatchFunc serves one game endpoint. It returns true when the engine
// produced an answer; the result is used for logging only.
type DispatchFunc func(w http.ResponseWriter, r *http.Request) bool

// Router dispatches the moves and solution endpoints. Paths match exactly,
// ignoring case.
type Router struct {
	movesPath    string
	solutionPath string
	moves        DispatchFunc
	solution     DispatchFunc
	log          *slog.Logger
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithRouterLogger sets the logger for dispatch outcomes.
func WithRouterLogger(log *slog.Logger) RouterOption {
	return func(rt *Router) {
		if log != nil {
			rt.log = log
		}
	}
}

// NewRouter creates a router serving basePath+"/moves" and
// basePath+"/solution".
func NewRouter(basePath string, moves, solution DispatchFunc, opts ...RouterOption) *Router {
	base := strings.TrimSuffix(basePath, "/")
	rt := &Router{
		movesPath:    base + "/" + string(engine.OperationMoves),
		solutionPath: base + "/" + string(engine.OperationSolution),
		moves:        moves,
		solution:     solution,
		log:          logging.Nop(),
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// MovesPath returns the moves endpoint path.
func (rt *Router) MovesPath() string { return rt.movesPath }

// SolutionPath returns the solution endpoint path.
func (rt *Router) SolutionPath() string { return rt.solutionPath }

// Route returns the operation served at path.
func (rt *Router) Route(path string) (engine.Operation, bool) {
	switch {
	case strings.EqualFold(path, rt.movesPath):
		return engine.OperationMoves, true
	case strings.EqualFold(path, rt.solutionPath):
		return engine.OperationSolution, true
	default:
		return "", false
	}
}

// UnknownEndpointMessage lists the valid endpoints.
func (rt *Router) UnknownEndpointMessage() string {
	return fmt.Sprintf("bad endpoint not in { %s,%s }", rt.movesPath, rt.solutionPath)
}

// ServeHTTP implements http.Handler.
func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	clientIP := ClientIP(r)

	op, ok := rt.Route(r.URL.Path)
	if !ok {
		msg := rt.UnknownEndpointMessage()
		rt.log.Error(msg, "path", r.URL.Path, "client", clientIP)
		httputil.WriteText(w, http.StatusNotFound, msg)
		return
	}

	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		httputil.WriteText(w, http.StatusMethodNotAllowed, MessageMethodNotAllowed)
		return
	}

	dispatch := rt.moves
	if op == engine.OperationSolution {
		dispatch = rt.solution
	}

	if dispatch(w, r) {
		rt.log.Info(string(op)+" OK", "client", clientIP)
	} else {
		rt.log.Warn(string(op)+" NOT ok", "client", clientIP)
	}
}
