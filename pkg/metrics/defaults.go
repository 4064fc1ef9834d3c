package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Namespace prefixes every sudokud metric name.
const Namespace = "sudokud"

// DefaultBuckets are latency buckets in seconds for request and engine
// durations. Engine calls can run into the engine's own timeout, hence the
// long tail.
var DefaultBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

// Default metrics. These are nil until Init is called; call sites check for
// nil so packages work without metrics enabled.
//
// # Label Conventions
//
//   - method: uppercase HTTP method
//   - route: "moves", "solution", "health", "metrics" or "unknown"
//   - status: numeric HTTP status code
//   - operation: "moves" or "solution"
//   - result: "ok", "error" or a lowercase engine status label
//     (bad_parameter, no_solution, timeout, busy, ...)
var (
	// RequestsTotal counts HTTP requests.
	// Labels: method, route, status
	RequestsTotal *prometheus.CounterVec

	// RequestDuration tracks HTTP request duration in seconds.
	// Labels: method, route
	RequestDuration *prometheus.HistogramVec

	// EngineCallsTotal counts engine invocations.
	// Labels: operation, result
	EngineCallsTotal *prometheus.CounterVec

	// EngineCallDuration tracks wall-clock engine invocation time in seconds,
	// including buffer allocation and release.
	// Labels: operation
	EngineCallDuration *prometheus.HistogramVec

	// ValidationFailuresTotal counts requests rejected before the engine was
	// called.
	// Labels: operation
	ValidationFailuresTotal *prometheus.CounterVec

	// BindingValid is 1 when the startup engine binding succeeded, 0 otherwise.
	BindingValid prometheus.Gauge

	defaultRegistry *prometheus.Registry
	initOnce        sync.Once
)

// Init initializes the default metrics and returns the registry.
// This function is idempotent and safe to call multiple times.
func Init() *prometheus.Registry {
	initOnce.Do(func() {
		reg := prometheus.NewRegistry()

		RequestsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		)

		RequestDuration = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   DefaultBuckets,
			},
			[]string{"method", "route"},
		)

		EngineCallsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "engine",
				Name:      "calls_total",
				Help:      "Total number of engine invocations by result",
			},
			[]string{"operation", "result"},
		)

		EngineCallDuration = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Subsystem: "engine",
				Name:      "call_duration_seconds",
				Help:      "Duration of engine invocations in seconds",
				Buckets:   DefaultBuckets,
			},
			[]string{"operation"},
		)

		ValidationFailuresTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "http",
				Name:      "validation_failures_total",
				Help:      "Requests rejected before the engine was called",
			},
			[]string{"operation"},
		)

		BindingValid = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "engine",
			Name:      "binding_valid",
			Help:      "Whether the startup engine binding succeeded (1) or failed (0)",
		})

		reg.MustRegister(
			RequestsTotal,
			RequestDuration,
			EngineCallsTotal,
			EngineCallDuration,
			ValidationFailuresTotal,
			BindingValid,
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		defaultRegistry = reg
	})

	return defaultRegistry
}

// DefaultRegistry returns the default metrics registry.
// Returns nil if Init() has not been called.
func DefaultRegistry() *prometheus.Registry {
	return defaultRegistry
}

// Reset resets all default metrics. Useful for testing.
// This also resets the initOnce, allowing Init() to be called again.
func Reset() {
	initOnce = sync.Once{}
	defaultRegistry = nil
	RequestsTotal = nil
	RequestDuration = nil
	EngineCallsTotal = nil
	EngineCallDuration = nil
	ValidationFailuresTotal = nil
	BindingValid = nil
}
