package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/cc-tools/sudokud/pkg/metrics"
)

// statusResponseWriter wraps http.ResponseWriter to capture the status code.
type statusResponseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newStatusResponseWriter(w http.ResponseWriter) *statusResponseWriter {
	if sw, ok := w.(*statusResponseWriter); ok {
		return sw
	}
	return &statusResponseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

// WriteHeader captures the first status code written.
func (w *statusResponseWriter) WriteHeader(code int) {
	if !w.written {
		w.statusCode = code
		w.written = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusResponseWriter) Write(b []byte) (int, error) {
	w.written = true
	return w.ResponseWriter.Write(b)
}

// Flush implements http.Flusher if the underlying ResponseWriter supports it.
func (w *statusResponseWriter) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// RouteFunc maps a request to a low-cardinality route label.
type RouteFunc func(r *http.Request) string

// MetricsMiddleware records request counts and durations labelled by route.
func MetricsMiddleware(next http.Handler, route RouteFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := newStatusResponseWriter(w)

		next.ServeHTTP(sw, r)

		label := route(r)
		if metrics.RequestsTotal != nil {
			metrics.RequestsTotal.WithLabelValues(r.Method, label, strconv.Itoa(sw.statusCode)).Inc()
		}
		if metrics.RequestDuration != nil {
			metrics.RequestDuration.WithLabelValues(r.Method, label).Observe(time.Since(start).Seconds())
		}
	})
}
