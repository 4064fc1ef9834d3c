// Package metrics provides Prometheus metrics for the sudokud adapter.
//
// Collectors are package-level variables created by Init and registered on a
// dedicated registry (not the global prometheus.DefaultRegisterer), so tests
// can call Reset and start over.
//
// # Default Metrics
//
//   - sudokud_http_requests_total: Counter (labels: method, route, status)
//   - sudokud_http_request_duration_seconds: Histogram (labels: method, route)
//   - sudokud_http_validation_failures_total: Counter (labels: operation)
//   - sudokud_engine_calls_total: Counter (labels: operation, result)
//   - sudokud_engine_call_duration_seconds: Histogram (labels: operation)
//   - sudokud_engine_binding_valid: Gauge
//
// Go runtime and process collectors are registered alongside.
//
// # Usage
//
//	metrics.Init()
//	metrics.RequestsTotal.WithLabelValues("GET", "moves", "200").Inc()
//
//	mux.Handle("/metrics", metrics.Handler())
package metrics
