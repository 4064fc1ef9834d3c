package remote

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cc-tools/sudokud/pkg/engine"
	"github.com/cc-tools/sudokud/pkg/httputil"
	"github.com/cc-tools/sudokud/pkg/logging"
)

const maxRequestBodySize = 64 << 10

// Handler serves a bound engine over the wire protocol.
type Handler struct {
	client *engine.Client
	token  string
	log    *slog.Logger
	mux    *http.ServeMux
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithHandlerToken requires a matching bearer token on every request.
func WithHandlerToken(token string) HandlerOption {
	return func(h *Handler) {
		h.token = token
	}
}

// WithHandlerLogger sets the logger.
func WithHandlerLogger(log *slog.Logger) HandlerOption {
	return func(h *Handler) {
		if log != nil {
			h.log = log
		}
	}
}

// NewHandler creates a handler that invokes the engine held by binding.
func NewHandler(binding *engine.Binding, opts ...HandlerOption) *Handler {
	h := &Handler{log: logging.Nop()}
	for _, opt := range opts {
		opt(h)
	}
	h.client = engine.NewClient(binding, engine.WithLogger(h.log))

	h.mux = http.NewServeMux()
	h.mux.HandleFunc("GET "+PathCapacity, h.handleCapacity)
	h.mux.HandleFunc("POST "+PathMoves, h.handleCompute(engine.OperationMoves))
	h.mux.HandleFunc("POST "+PathSolution, h.handleCompute(engine.OperationSolution))
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.token != "" && !h.authorized(r) {
		httputil.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing or invalid token")
		return
	}
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) authorized(r *http.Request) bool {
	got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	return ok && subtle.ConstantTimeCompare([]byte(got), []byte(h.token)) == 1
}

func (h *Handler) handleCapacity(w http.ResponseWriter, r *http.Request) {
	b := h.client.Binding()
	if !b.Valid() {
		httputil.WriteError(w, http.StatusServiceUnavailable, "not_bound", b.Err().Error())
		return
	}
	httputil.WriteOK(w, CapacityResponse{Capacity: b.Capacity()})
}

func (h *Handler) handleCompute(op engine.Operation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

		var req ComputeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeDecodeError(w, err)
			return
		}

		out := h.client.Invoke(r.Context(), op, req.Position)
		if out.Err != nil {
			status := http.StatusInternalServerError
			if errors.Is(out.Err, engine.ErrNotBound) {
				status = http.StatusServiceUnavailable
			}
			httputil.WriteError(w, status, "engine_call_failed", out.Err.Error())
			return
		}

		httputil.WriteOK(w, ComputeResponse{
			Status:    out.Status,
			Payload:   out.Payload,
			ElapsedMS: out.ElapsedMS,
		})
	}
}

func writeDecodeError(w http.ResponseWriter, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		httputil.WriteError(w, http.StatusRequestEntityTooLarge, "body_too_large", "request body too large")
		return
	}
	if errors.Is(err, io.EOF) {
		httputil.WriteError(w, http.StatusBadRequest, "invalid_json", "empty request body")
		return
	}
	httputil.WriteError(w, http.StatusBadRequest, "invalid_json", "invalid JSON in request body")
}

// Server runs a Handler on its own listener.
type Server struct {
	httpServer *http.Server
	log        *slog.Logger
}

// NewServer creates a server for h listening on addr.
func NewServer(addr string, h *Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           h,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      60 * time.Second,
		},
		log: h.log,
	}
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// ListenAndServe blocks serving requests until Shutdown is called.
func (s *Server) ListenAndServe() error {
	s.log.Info("starting engine server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("engine server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
