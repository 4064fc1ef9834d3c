package config

import "time"

// Engine drivers.
const (
	DriverBuiltin = "builtin"
	DriverRemote  = "remote"
)

// Config sources, lowest precedence first.
const (
	SourceDefault = "default"
	SourceFile    = "file"
	SourceEnv     = "env"
	SourceFlag    = "flag"
)

// ServerConfiguration holds the settings of the sudokud HTTP adapter.
type ServerConfiguration struct {
	// Port is the HTTP listen port.
	Port int `json:"port" yaml:"port"`
	// BasePath prefixes the moves and solution endpoints.
	BasePath string `json:"basePath" yaml:"basePath"`
	// ReadTimeout is the HTTP read timeout.
	ReadTimeout time.Duration `json:"readTimeout" yaml:"readTimeout"`
	// WriteTimeout is the HTTP write timeout. It must exceed the engine
	// solve timeout or slow solves are cut off mid-response.
	WriteTimeout time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
	// MaxConnections caps concurrent connections (0 = unlimited).
	MaxConnections int `json:"maxConnections,omitempty" yaml:"maxConnections,omitempty"`

	Engine  EngineConfig  `json:"engine" yaml:"engine"`
	Log     LogConfig     `json:"log" yaml:"log"`
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`

	// Sources records where each non-default value came from, keyed by
	// dotted field name.
	Sources map[string]string `json:"-" yaml:"-"`
}

// EngineConfig selects and tunes the solving engine.
type EngineConfig struct {
	// Driver is "builtin" or "remote".
	Driver string `json:"driver" yaml:"driver"`
	// URL is the remote engine base URL.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
	// Token is sent as a bearer token to the remote engine.
	Token string `json:"token,omitempty" yaml:"token,omitempty"`
	// Timeout bounds one HTTP exchange with the remote engine.
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	// Capacity is the builtin engine's output buffer size in items.
	Capacity int `json:"capacity" yaml:"capacity"`
	// SolveTimeout bounds one builtin solve (0 = none).
	SolveTimeout time.Duration `json:"solveTimeout" yaml:"solveTimeout"`
	// MaxConcurrent limits builtin solves in flight (0 = unlimited).
	MaxConcurrent int `json:"maxConcurrent" yaml:"maxConcurrent"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
	// File enables a rotated JSON log file in addition to stderr.
	File       string `json:"file,omitempty" yaml:"file,omitempty"`
	MaxSizeMB  int    `json:"maxSizeMB,omitempty" yaml:"maxSizeMB,omitempty"`
	MaxBackups int    `json:"maxBackups,omitempty" yaml:"maxBackups,omitempty"`
	MaxAgeDays int    `json:"maxAgeDays,omitempty" yaml:"maxAgeDays,omitempty"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Path    string `json:"path" yaml:"path"`
}

// Defaults.
const (
	DefaultPort           = 8080
	DefaultBasePath       = "/sudoku/server/game"
	DefaultReadTimeout    = 30 * time.Second
	DefaultWriteTimeout   = 60 * time.Second
	DefaultEngineTimeout  = 30 * time.Second
	DefaultEngineCapacity = 65536
	DefaultSolveTimeout   = 10 * time.Second
	DefaultMaxConcurrent  = 16
	DefaultMetricsPath    = "/metrics"
)

// Default returns a configuration with every field set to its default.
func Default() *ServerConfiguration {
	return &ServerConfiguration{
		Port:         DefaultPort,
		BasePath:     DefaultBasePath,
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
		Engine: EngineConfig{
			Driver:        DriverBuiltin,
			Timeout:       DefaultEngineTimeout,
			Capacity:      DefaultEngineCapacity,
			SolveTimeout:  DefaultSolveTimeout,
			MaxConcurrent: DefaultMaxConcurrent,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    DefaultMetricsPath,
		},
		Sources: make(map[string]string),
	}
}

// Source returns where the named field's value came from.
func (c *ServerConfiguration) Source(field string) string {
	if s, ok := c.Sources[field]; ok {
		return s
	}
	return SourceDefault
}

// SetSource records the origin of a field's value.
func (c *ServerConfiguration) SetSource(field, source string) {
	if c.Sources == nil {
		c.Sources = make(map[string]string)
	}
	c.Sources[field] = source
}
