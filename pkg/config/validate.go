package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/cc-tools/sudokud/pkg/engine"
	"github.com/cc-tools/sudokud/pkg/logging"
)

// ValidationError describes one invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on %s: %s", e.Field, e.Message)
}

// Validate checks every field and returns all problems joined.
func (c *ServerConfiguration) Validate() error {
	var errs []error
	add := func(field, format string, args ...any) {
		errs = append(errs, &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if c.Port < 0 || c.Port > 65535 {
		add("port", "must be between 0 and 65535, got %d", c.Port)
	}
	if !strings.HasPrefix(c.BasePath, "/") {
		add("basePath", "must start with /, got %q", c.BasePath)
	}
	if c.ReadTimeout < 0 {
		add("readTimeout", "must not be negative")
	}
	if c.WriteTimeout < 0 {
		add("writeTimeout", "must not be negative")
	}
	if c.MaxConnections < 0 {
		add("maxConnections", "must not be negative")
	}

	switch c.Engine.Driver {
	case DriverBuiltin:
		if c.Engine.Capacity <= 0 || c.Engine.Capacity > engine.MaxCapacity {
			add("engine.capacity", "must be between 1 and %d, got %d", engine.MaxCapacity, c.Engine.Capacity)
		}
		if c.Engine.SolveTimeout < 0 {
			add("engine.solveTimeout", "must not be negative")
		}
		if c.Engine.MaxConcurrent < 0 {
			add("engine.maxConcurrent", "must not be negative")
		}
	case DriverRemote:
		u, err := url.Parse(c.Engine.URL)
		if c.Engine.URL == "" || err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			add("engine.url", "must be an http(s) URL for the remote driver, got %q", c.Engine.URL)
		}
		if c.Engine.Timeout < 0 {
			add("engine.timeout", "must not be negative")
		}
	default:
		add("engine.driver", "must be %q or %q, got %q", DriverBuiltin, DriverRemote, c.Engine.Driver)
	}

	if !logging.ValidLevel(c.Log.Level) {
		add("log.level", "must be debug, info, warn or error, got %q", c.Log.Level)
	}
	if !logging.ValidFormat(c.Log.Format) {
		add("log.format", "must be text or json, got %q", c.Log.Format)
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAgeDays < 0 {
		add("log", "rotation limits must not be negative")
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		add("metrics.path", "must start with /, got %q", c.Metrics.Path)
	}

	return errors.Join(errs...)
}

// LoggingConfig converts the log section for pkg/logging.
func (c *ServerConfiguration) LoggingConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.ParseLevel(c.Log.Level)
	cfg.Format = logging.ParseFormat(c.Log.Format)
	cfg.File = c.Log.File
	cfg.MaxSizeMB = c.Log.MaxSizeMB
	cfg.MaxBackups = c.Log.MaxBackups
	cfg.MaxAgeDays = c.Log.MaxAgeDays
	return cfg
}
