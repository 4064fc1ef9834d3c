// Package logging provides structured logging configuration for sudokud.
//
// This package wraps log/slog to provide consistent logging across all sudokud
// components. It supports configurable log levels, output formats and an
// optional size-rotated log file.
//
// # Usage
//
// Create a logger with desired configuration:
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.LevelInfo,
//	    Format: logging.FormatText,
//	})
//
//	logger.Info("server started", "port", 8080)
//	logger.Error("engine binding failed", "error", err)
//
// # Log Files
//
// When Config.File is set, records are also written as JSON to that file,
// rotated by gopkg.in/natefinch/lumberjack.v2. Use Open to get a closer for
// the file:
//
//	logger, closer := logging.Open(cfg)
//	defer closer.Close()
//
// # Integration
//
// Components should accept a *slog.Logger in their constructor or via an
// option. If no logger is provided, use logging.Nop() for a no-op logger.
package logging
