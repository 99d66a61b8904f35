// Package config loads, validates and applies the go-rados client
// configuration.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (RADOS_*)
//  2. Configuration file (YAML or TOML)
//  3. Default values
//
// Backend Configuration Pattern:
// each backend driver defines its own option set. The Config struct carries
// one type-specific section per driver (backend.memory, backend.s3,
// backend.badgerdb) and only the section matching the selected type is used;
// the factory in factory.go decodes it and constructs the driver.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the complete client configuration.
type Config struct {
	// Logging controls log output behaviour
	Logging LoggingConfig `mapstructure:"logging"`

	// Client contains session-level settings
	Client ClientConfig `mapstructure:"client"`

	// Backend specifies the backend driver and driver-specific options
	Backend BackendConfig `mapstructure:"backend"`

	// Metrics controls the optional Prometheus endpoint
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// LoggingConfig controls logging behaviour.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`
}

// ClientConfig contains session-level settings.
type ClientConfig struct {
	// UserID is the identity the session authenticates as (driver-defined;
	// empty uses the driver default)
	UserID string `mapstructure:"user_id"`

	// ConfFile is a driver configuration file handed to the session before
	// connecting (empty applies driver defaults)
	ConfFile string `mapstructure:"conf_file"`
}

// BackendConfig specifies backend driver configuration.
//
// The Type field determines which driver is used. Only the corresponding
// type-specific section is decoded.
type BackendConfig struct {
	// Type specifies which backend driver to use
	// Valid values: memory, s3, badgerdb
	Type string `mapstructure:"type" validate:"required,oneof=memory s3 badgerdb"`

	// Memory contains memory-driver options
	// Only used when Type = "memory"
	Memory map[string]any `mapstructure:"memory"`

	// S3 contains S3-driver options
	// Only used when Type = "s3"
	S3 map[string]any `mapstructure:"s3"`

	// Badger contains BadgerDB-driver options
	// Only used when Type = "badgerdb"
	Badger map[string]any `mapstructure:"badgerdb"`
}

// MetricsConfig controls the optional Prometheus endpoint.
type MetricsConfig struct {
	// Enabled starts the /metrics HTTP server when true
	Enabled bool `mapstructure:"enabled"`

	// ListenAddress is the address the metrics server binds to
	ListenAddress string `mapstructure:"listen_address"`
}

// Load loads configuration from file, environment, and defaults.
//
// Parameters:
//   - configPath: path to the config file (empty string uses the default
//     location, and a missing file there is not an error)
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setupViper(v, configPath)

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// setupViper configures environment variable support and the config file
// location.
func setupViper(v *viper.Viper, configPath string) {
	// Environment variables use the RADOS_ prefix and underscores.
	// Example: RADOS_BACKEND_TYPE=s3
	v.SetEnvPrefix("RADOS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists.
func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// No config file is acceptable, defaults apply.
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	return nil
}

// getConfigDir returns the configuration directory path.
//
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config, or falls back to the
// current directory if the home directory cannot be determined.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "go-rados")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "go-rados")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}
