// Package logging configures the process-wide slog logger: JSON output to
// console and, optionally, a size-rotated log file for long mirror runs.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Config represents the logging configuration
type Config struct {
	Level      slog.Level
	FilePath   string
	MaxSize    int64 // MB
	MaxBackups int
}

// DefaultConfig returns the default logging configuration
func DefaultConfig() *Config {
	return &Config{
		Level:      slog.LevelInfo,
		MaxSize:    50, // 50MB
		MaxBackups: 3,
	}
}

// ParseLevel converts a string log level to slog.Level
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a logger with the given configuration. Console output
// always goes to stderr so it never mixes with the final report on stdout.
func NewLogger(config Config) (*slog.Logger, error) {
	writer := io.Writer(os.Stderr)

	if config.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(config.FilePath), 0750); err != nil {
			return nil, err
		}

		fileWriter, err := NewRotatingFileWriter(
			config.FilePath,
			config.MaxSize*1024*1024, // MB to bytes
			config.MaxBackups,
		)
		if err != nil {
			return nil, err
		}
		writer = io.MultiWriter(writer, fileWriter)
	}

	handler := slog.NewJSONHandler(writer, &slog.HandlerOptions{
		Level: config.Level,
	})

	return slog.New(handler), nil
}

// SetDefault creates and sets a default logger with the given configuration
func SetDefault(config Config) error {
	logger, err := NewLogger(config)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	return nil
}
