package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/cc-tools/sudokud/pkg/params"
)

// Environment variable names.
const (
	EnvConfig         = "SUDOKUD_CONFIG"
	EnvPort           = "SUDOKUD_PORT"
	EnvBasePath       = "SUDOKUD_BASE_PATH"
	EnvReadTimeout    = "SUDOKUD_READ_TIMEOUT"
	EnvWriteTimeout   = "SUDOKUD_WRITE_TIMEOUT"
	EnvMaxConnections = "SUDOKUD_MAX_CONNECTIONS"
	EnvEngineDriver   = "SUDOKUD_ENGINE_DRIVER"
	EnvEngineURL      = "SUDOKUD_ENGINE_URL"
	EnvEngineToken    = "SUDOKUD_ENGINE_TOKEN"
	EnvEngineTimeout  = "SUDOKUD_ENGINE_TIMEOUT"
	EnvEngineCapacity = "SUDOKUD_ENGINE_CAPACITY"
	EnvSolveTimeout   = "SUDOKUD_SOLVE_TIMEOUT"
	EnvMaxConcurrent  = "SUDOKUD_MAX_CONCURRENT"
	EnvLogLevel       = "SUDOKUD_LOG_LEVEL"
	EnvLogFormat      = "SUDOKUD_LOG_FORMAT"
	EnvLogFile        = "SUDOKUD_LOG_FILE"
	EnvMetricsEnabled = "SUDOKUD_METRICS_ENABLED"
)

// ErrInvalidEnv is returned when an environment variable cannot be parsed.
var ErrInvalidEnv = errors.New("invalid environment variable")

// LoadEnv overlays SUDOKUD_* environment variables onto cfg. Only variables
// that are set are applied.
func LoadEnv(cfg *ServerConfiguration) error {
	var errs []error

	setInt := func(name, field string, dst *int) {
		v := os.Getenv(name)
		if v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %s=%q", ErrInvalidEnv, name, v))
			return
		}
		*dst = n
		cfg.SetSource(field, SourceEnv)
	}
	setDuration := func(name, field string, dst *time.Duration) {
		v := os.Getenv(name)
		if v == "" {
			return
		}
		d, err := ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %s=%q", ErrInvalidEnv, name, v))
			return
		}
		*dst = d
		cfg.SetSource(field, SourceEnv)
	}
	setString := func(name, field string, dst *string) {
		if v := os.Getenv(name); v != "" {
			*dst = v
			cfg.SetSource(field, SourceEnv)
		}
	}
	setBool := func(name, field string, dst *bool) {
		v := os.Getenv(name)
		if v == "" {
			return
		}
		b, err := params.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %s=%q", ErrInvalidEnv, name, v))
			return
		}
		*dst = b
		cfg.SetSource(field, SourceEnv)
	}

	setInt(EnvPort, "port", &cfg.Port)
	setString(EnvBasePath, "basePath", &cfg.BasePath)
	setDuration(EnvReadTimeout, "readTimeout", &cfg.ReadTimeout)
	setDuration(EnvWriteTimeout, "writeTimeout", &cfg.WriteTimeout)
	setInt(EnvMaxConnections, "maxConnections", &cfg.MaxConnections)

	setString(EnvEngineDriver, "engine.driver", &cfg.Engine.Driver)
	setString(EnvEngineURL, "engine.url", &cfg.Engine.URL)
	setString(EnvEngineToken, "engine.token", &cfg.Engine.Token)
	setDuration(EnvEngineTimeout, "engine.timeout", &cfg.Engine.Timeout)
	setInt(EnvEngineCapacity, "engine.capacity", &cfg.Engine.Capacity)
	setDuration(EnvSolveTimeout, "engine.solveTimeout", &cfg.Engine.SolveTimeout)
	setInt(EnvMaxConcurrent, "engine.maxConcurrent", &cfg.Engine.MaxConcurrent)

	setString(EnvLogLevel, "log.level", &cfg.Log.Level)
	setString(EnvLogFormat, "log.format", &cfg.Log.Format)
	setString(EnvLogFile, "log.file", &cfg.Log.File)

	setBool(EnvMetricsEnabled, "metrics.enabled", &cfg.Metrics.Enabled)

	return errors.Join(errs...)
}

// ConfigFileFromEnv returns the config file path named by SUDOKUD_CONFIG.
func ConfigFileFromEnv() string {
	return os.Getenv(EnvConfig)
}

// ParseDuration accepts Go duration syntax ("1m30s") or a bare number of
// seconds.
func ParseDuration(s string) (time.Duration, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(s)
}
