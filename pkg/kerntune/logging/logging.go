// Package logging provides the shared logging system for kerntune.
// All packages obtain component loggers through Get; before Init is
// called every logger writes to io.Discard so library use stays silent,
// and Init rebinds them to the configured output.
//
// Basic usage:
//
//	cfg := logging.Config{
//	    Level: "info",
//	    Path:  logging.DefaultLogPath(),
//	}
//	if err := logging.Init(cfg); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Close()
//
//	logger := logging.Get("ledger")
//	logger.Info("transaction appended", "id", tx.ID)
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
)

// Level represents a logging level.
type Level int

// Log levels from least to most severe.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// toCharmLevel converts our Level to charmbracelet/log level.
func (l Level) toCharmLevel() log.Level {
	switch l {
	case LevelDebug:
		return log.DebugLevel
	case LevelInfo:
		return log.InfoLevel
	case LevelWarn:
		return log.WarnLevel
	case LevelError:
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// ErrInvalidLevel is returned when an invalid log level string is provided.
var ErrInvalidLevel = errors.New("invalid log level")

// ParseLevel parses a string into a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("%w: %s", ErrInvalidLevel, s)
	}
}

// Config configures the logging system.
type Config struct {
	// Level is the default log level (debug, info, warn, error).
	Level string

	// Path is the log file path. Empty uses DefaultLogPath().
	Path string

	// Components maps component names to their log levels, overriding
	// the default level per component.
	Components map[string]string

	// ConsoleLevel enables console output at the specified level.
	// Empty string disables console output (default). When set, logs at
	// this level and above go to stderr.
	ConsoleLevel string
}

// state holds the global logging state.
type state struct {
	mu          sync.RWMutex
	initialized bool
	file        *os.File
	level       Level
	components  map[string]Level
	loggers     map[string]*log.Logger

	consoleEnabled bool
	consoleLevel   Level
}

var globalState = &state{
	loggers:    make(map[string]*log.Logger),
	components: make(map[string]Level),
}

// DefaultLogPath returns $XDG_STATE_HOME/kerntune/kerntune.log.
func DefaultLogPath() string {
	return filepath.Join(xdg.StateHome, "kerntune", "kerntune.log")
}

// Init initializes the logging system with the given configuration.
// It must be called before any logging output is wanted; loggers obtained
// earlier stay valid but keep writing to io.Discard.
func Init(cfg Config) error {
	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	if globalState.initialized && globalState.file != nil {
		if err := globalState.file.Close(); err != nil {
			return fmt.Errorf("closing existing log file: %w", err)
		}
		globalState.file = nil
	}
	globalState.components = make(map[string]Level)

	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}
	globalState.level = level

	for comp, lvl := range cfg.Components {
		parsed, err := ParseLevel(lvl)
		if err != nil {
			return fmt.Errorf("parsing level for component %q: %w", comp, err)
		}
		globalState.components[comp] = parsed
	}

	path := cfg.Path
	if path == "" {
		path = DefaultLogPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	globalState.file = file

	globalState.consoleEnabled = cfg.ConsoleLevel != ""
	if globalState.consoleEnabled {
		consoleLevel, err := ParseLevel(cfg.ConsoleLevel)
		if err != nil {
			return fmt.Errorf("parsing console log level: %w", err)
		}
		globalState.consoleLevel = consoleLevel
	}

	globalState.initialized = true

	// Rebind loggers handed out before Init. Package-level loggers are
	// created at import time, long before configuration is loaded; without
	// this they would keep writing to io.Discard.
	for component, logger := range globalState.loggers {
		out, level := globalState.sinkFor(component)
		logger.SetOutput(out)
		logger.SetLevel(level.toCharmLevel())
	}
	return nil
}

// Close flushes and closes the log file. Safe to call when Init never ran.
func Close() error {
	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	if globalState.file != nil {
		err := globalState.file.Close()
		globalState.file = nil
		globalState.initialized = false
		return err
	}
	return nil
}

// sinkFor computes the writer and level for a component under the
// current state. Callers hold the mutex.
func (s *state) sinkFor(component string) (io.Writer, Level) {
	var out io.Writer = io.Discard
	level := s.level
	if s.initialized {
		out = s.file
		if override, ok := s.components[component]; ok {
			level = override
		}
		if s.consoleEnabled {
			out = io.MultiWriter(s.file, os.Stderr)
			if s.consoleLevel < level {
				level = s.consoleLevel
			}
		}
	}
	return out, level
}

// Get returns the logger for a component, creating it on first use.
// Component-specific level overrides from the config apply; otherwise the
// default level is used. Loggers obtained before Init are rebound to the
// configured output when Init runs.
func Get(component string) *log.Logger {
	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	if logger, ok := globalState.loggers[component]; ok {
		return logger
	}

	out, level := globalState.sinkFor(component)
	logger := log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		Prefix:          component,
	})
	logger.SetLevel(level.toCharmLevel())
	globalState.loggers[component] = logger
	return logger
}
