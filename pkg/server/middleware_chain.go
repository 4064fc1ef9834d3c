package server

import (
	"context"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/cc-tools/sudokud/pkg/httputil"
	"github.com/cc-tools/sudokud/pkg/logging"
)

// HeaderRequestID carries the request id on requests and responses.
const HeaderRequestID = "X-Request-Id"

// MessageInternalError is written when a handler panics before responding.
const MessageInternalError = "internal error. something went wrong."

type requestIDKey struct{}

// RequestID returns the id assigned to the request by the middleware chain,
// or "" outside of it.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// MiddlewareChain manages the HTTP middleware stack of the adapter.
type MiddlewareChain struct {
	log   *slog.Logger
	route RouteFunc
}

// MiddlewareChainOption configures a MiddlewareChain.
type MiddlewareChainOption func(*MiddlewareChain)

// WithChainLogger sets the logger for request lines and recovered panics.
func WithChainLogger(log *slog.Logger) MiddlewareChainOption {
	return func(mc *MiddlewareChain) {
		if log != nil {
			mc.log = log
		}
	}
}

// WithRouteFunc sets the route labeller used for metrics and request lines.
func WithRouteFunc(route RouteFunc) MiddlewareChainOption {
	return func(mc *MiddlewareChain) {
		if route != nil {
			mc.route = route
		}
	}
}

// NewMiddlewareChain creates a middleware chain.
func NewMiddlewareChain(opts ...MiddlewareChainOption) *MiddlewareChain {
	mc := &MiddlewareChain{
		log:   logging.Nop(),
		route: func(r *http.Request) string { return "unknown" },
	}
	for _, opt := range opts {
		opt(mc)
	}
	return mc
}

// Wrap wraps handler with all middleware.
// The order is: recovery -> request log -> metrics -> handler
func (mc *MiddlewareChain) Wrap(handler http.Handler) http.Handler {
	h := MetricsMiddleware(handler, mc.route)
	h = mc.requestLog(h)
	return mc.recovery(h)
}

// requestLog assigns a request id, echoes it in the response and logs one
// line per request.
func (mc *MiddlewareChain) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(HeaderRequestID)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id))

		sw := newStatusResponseWriter(w)
		next.ServeHTTP(sw, r)

		mc.log.Debug("request",
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"route", mc.route(r),
			"status", sw.statusCode,
			"duration", time.Since(start),
			"client", ClientIP(r),
		)
	})
}

// recovery turns a handler panic into a 500 response when nothing has been
// written yet.
func (mc *MiddlewareChain) recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := newStatusResponseWriter(w)
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			mc.log.Error("handler panic",
				"panic", rec,
				"path", r.URL.Path,
				"stack", string(debug.Stack()),
			)
			if !sw.written {
				httputil.WriteText(sw, http.StatusInternalServerError, MessageInternalError)
			}
		}()
		next.ServeHTTP(sw, r)
	})
}
