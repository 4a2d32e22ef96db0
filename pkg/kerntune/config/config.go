// Package config loads kerntune configuration from file and environment.
// Configuration lives at ~/.config/kerntune/config.yaml (or under
// $XDG_CONFIG_HOME), with KERNTUNE_-prefixed environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level        string            `mapstructure:"level"`
	Path         string            `mapstructure:"path"`
	ConsoleLevel string            `mapstructure:"console_level"`
	Components   map[string]string `mapstructure:"components"`
}

// LedgerConfig configures the transaction ledger.
type LedgerConfig struct {
	Path string `mapstructure:"path"`
}

// Config represents the application configuration.
type Config struct {
	Persona   string        `mapstructure:"persona"`
	Format    string        `mapstructure:"format"`
	SysctlDir string        `mapstructure:"sysctl_dir"`
	Ledger    LedgerConfig  `mapstructure:"ledger"`
	Logging   LoggingConfig `mapstructure:"logging"`
}

// Load loads configuration from file and environment variables.
// Config file locations (in order of precedence):
//   - $XDG_CONFIG_HOME/kerntune/config.yaml
//   - $HOME/.config/kerntune/config.yaml
//
// Environment variables are prefixed with KERNTUNE_ (e.g.,
// KERNTUNE_PERSONA).
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file path. An empty path falls
// back to the standard search locations.
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
			v.AddConfigPath(filepath.Join(xdgConfigHome, "kerntune"))
		}
		v.AddConfigPath(filepath.Join(homeDir, ".config", "kerntune"))
	}

	v.SetEnvPrefix("KERNTUNE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("persona", DefaultPersona)
	v.SetDefault("format", DefaultFormat)
	v.SetDefault("sysctl_dir", DefaultSysctlDir)
	v.SetDefault("ledger.path", DefaultLedgerPath)
	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.path", "") // Empty means use the default state path
	v.SetDefault("logging.components", map[string]string{
		"engine":   "info",
		"ledger":   "info",
		"rules":    "info",
		"pipeline": "info",
	})

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is acceptable; we use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if strings.HasPrefix(cfg.Ledger.Path, "~") {
		cfg.Ledger.Path = filepath.Join(homeDir, cfg.Ledger.Path[1:])
	}

	return &cfg, nil
}

// ConfigDir returns the configuration directory path.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, "kerntune"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "kerntune"), nil
}

// EnsureConfigDir creates the config directory if it doesn't exist.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return nil
}

// StateDir returns $XDG_STATE_HOME/kerntune/ for log files.
func StateDir() string {
	return filepath.Join(xdg.StateHome, "kerntune")
}

// DefaultLogPath returns the default log file path.
func DefaultLogPath() string {
	return filepath.Join(StateDir(), "kerntune.log")
}

// WriteDefault writes a default config file if none exists.
// Returns nil if a config file already exists.
func WriteDefault() error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}
	configDir, err := ConfigDir()
	if err != nil {
		return err
	}
	configPath := filepath.Join(configDir, "config.yaml")

	if _, err := os.Stat(configPath); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to check config file: %w", err)
	}

	defaultConfig := fmt.Sprintf(`# kerntune configuration

# Workload persona biasing rule selection: gamer, developer, server, general
persona: %s

# Output format: pretty, plain, json, yaml
format: %s

# Root directory for persisted kernel parameter files
sysctl_dir: %s

# Transaction ledger settings
ledger:
  path: %s

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: %s
  # Log file path (empty means use default: $XDG_STATE_HOME/kerntune/kerntune.log)
  path: ""
  # Console output level (empty disables console logging)
  console_level: ""
  # Per-component log levels
  components:
    engine: info
    ledger: info
    rules: info
    pipeline: info
`, DefaultPersona, DefaultFormat, DefaultSysctlDir, DefaultLedgerPath, DefaultLogLevel)

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write default config: %w", err)
	}
	return nil
}
