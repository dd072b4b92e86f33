// Package logging provides the program-wide leveled logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logger setup options.
type Config struct {
	Console     io.Writer // Defaults to os.Stdout
	LogFilePath string    // Optional JSON-lines log file
	DebugLevel  int       // 0 - 5
	NoColor     bool
}

var (
	mu      sync.RWMutex
	logger  = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.DateTime}).With().Timestamp().Logger()
	level   = 0
	logFile *os.File
)

// SetupLogging configures the console and file writers.
func SetupLogging(cfg Config) error {
	console := cfg.Console
	if console == nil {
		console = os.Stdout
	}

	writers := []io.Writer{
		zerolog.ConsoleWriter{Out: console, TimeFormat: time.DateTime, NoColor: cfg.NoColor},
	}

	var f *os.File
	if cfg.LogFilePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFilePath), 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		var err error
		f, err = os.OpenFile(cfg.LogFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file %q: %w", cfg.LogFilePath, err)
		}
		writers = append(writers, f)
	}

	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		_ = logFile.Close()
	}
	logFile = f
	logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Logger()
	level = clampLevel(cfg.DebugLevel)
	return nil
}

// SetLevel sets the debug verbosity (0 - 5).
func SetLevel(l int) {
	mu.Lock()
	level = clampLevel(l)
	mu.Unlock()
}

// Level returns the current debug verbosity.
func Level() int {
	mu.RLock()
	defer mu.RUnlock()
	return level
}

// Close closes the log file, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

// Logger returns the underlying zerolog logger for structured use.
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// I logs an info message.
func I(format string, args ...any) {
	l := Logger()
	l.Info().Msgf(format, args...)
}

// S logs a success message.
func S(format string, args ...any) {
	l := Logger()
	l.Info().Bool("success", true).Msgf(format, args...)
}

// W logs a warning.
func W(format string, args ...any) {
	l := Logger()
	l.Warn().Msgf(format, args...)
}

// E logs an error.
func E(format string, args ...any) {
	l := Logger()
	l.Error().Msgf(format, args...)
}

// D logs a debug message if the verbosity is at least l.
func D(l int, format string, args ...any) {
	if l > Level() {
		return
	}
	lg := Logger()
	lg.Debug().Int("verbosity", l).Msgf(format, args...)
}

func clampLevel(l int) int {
	switch {
	case l < 0:
		return 0
	case l > 5:
		return 5
	}
	return l
}
