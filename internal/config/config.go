// Package config provides configuration management for Workdeck using
// Viper for flexible loading from files, environment variables, and
// command-line flags.
//
// Configuration is read from .workdeck.yml with WORKDECK_ environment
// variable overrides. It covers the debug console (capacity, level,
// redaction), workspace limits, settings and recent-files persistence,
// import capabilities, and the optional console stream server.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/workdeck/workdeck/internal/console"
)

type Config struct {
	Console    ConsoleConfig    `yaml:"console" mapstructure:"console"`
	Workspaces WorkspacesConfig `yaml:"workspaces" mapstructure:"workspaces"`
	Settings   SettingsConfig   `yaml:"settings" mapstructure:"settings"`
	Recent     RecentConfig     `yaml:"recent" mapstructure:"recent"`
	Import     ImportConfig     `yaml:"import" mapstructure:"import"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
}

type ConsoleConfig struct {
	MaxEntries   int    `yaml:"max_entries" mapstructure:"max_entries"`
	MinLevel     string `yaml:"min_level" mapstructure:"min_level"`
	Redact       bool   `yaml:"redact" mapstructure:"redact"`
	CaptureStdio bool   `yaml:"capture_stdio" mapstructure:"capture_stdio"`
}

type WorkspacesConfig struct {
	MaxOpen int `yaml:"max_open" mapstructure:"max_open"`
}

type SettingsConfig struct {
	Path  string `yaml:"path" mapstructure:"path"`
	Watch bool   `yaml:"watch" mapstructure:"watch"`
}

type RecentConfig struct {
	DBPath   string `yaml:"db_path" mapstructure:"db_path"`
	MaxItems int    `yaml:"max_items" mapstructure:"max_items"`
}

type ImportConfig struct {
	// Excel is a configuration-time capability flag: the Excel importer
	// is registered only when it is set. There is no runtime probing
	// for an import plugin.
	Excel     bool   `yaml:"excel" mapstructure:"excel"`
	Delimiter string `yaml:"delimiter" mapstructure:"delimiter"`
	Encoding  string `yaml:"encoding" mapstructure:"encoding"`
	HasHeader bool   `yaml:"has_header" mapstructure:"has_header"`
}

type ServerConfig struct {
	Enabled        bool     `yaml:"enabled" mapstructure:"enabled"`
	Host           string   `yaml:"host" mapstructure:"host"`
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// Load builds the configuration from viper's current state applying
// defaults and validation.
func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	applyDefaults(&config)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *Config {
	config := &Config{}
	applyDefaults(config)

	return config
}

func applyDefaults(config *Config) {
	if config.Console.MaxEntries == 0 {
		config.Console.MaxEntries = 2000
	}
	if config.Console.MinLevel == "" {
		config.Console.MinLevel = "debug"
	}
	if !viper.IsSet("console.redact") {
		config.Console.Redact = true
	}

	if config.Workspaces.MaxOpen == 0 {
		config.Workspaces.MaxOpen = 32
	}

	if config.Settings.Path == "" {
		config.Settings.Path = filepath.Join(".workdeck", "settings.json")
	}
	if config.Recent.DBPath == "" {
		config.Recent.DBPath = filepath.Join(".workdeck", "recent.db")
	}
	if config.Recent.MaxItems == 0 {
		config.Recent.MaxItems = 10
	}

	if config.Import.Delimiter == "" {
		config.Import.Delimiter = ","
	}
	if config.Import.Encoding == "" {
		config.Import.Encoding = "utf-8"
	}
	if !viper.IsSet("import.has_header") {
		config.Import.HasHeader = true
	}

	if config.Server.Host == "" {
		config.Server.Host = "localhost"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 8791
	}
}

// ParseMinLevel parses the configured console level.
func (c *ConsoleConfig) ParseMinLevel() (console.Level, error) {
	return console.ParseLevel(c.MinLevel)
}

// validateConfig validates configuration values for security and
// correctness.
func validateConfig(config *Config) error {
	if config.Console.MaxEntries < 0 {
		return fmt.Errorf("console.max_entries must not be negative")
	}
	if _, err := config.Console.ParseMinLevel(); err != nil {
		return fmt.Errorf("console.min_level: %w", err)
	}

	if config.Workspaces.MaxOpen < 1 {
		return fmt.Errorf("workspaces.max_open must be at least 1")
	}

	if err := validatePath(config.Settings.Path); err != nil {
		return fmt.Errorf("settings.path: %w", err)
	}
	if err := validatePath(config.Recent.DBPath); err != nil {
		return fmt.Errorf("recent.db_path: %w", err)
	}

	if len([]rune(config.Import.Delimiter)) != 1 {
		return fmt.Errorf("import.delimiter must be a single character")
	}

	if config.Server.Port < 0 || config.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is not in valid range 0-65535", config.Server.Port)
	}
	if err := validateHost(config.Server.Host); err != nil {
		return fmt.Errorf("server.host: %w", err)
	}

	return nil
}

// validatePath validates a file path for security.
func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}

	cleanPath := filepath.Clean(path)

	// Reject path traversal attempts
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path contains traversal: %s", path)
	}

	return nil
}

func validateHost(host string) error {
	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'", "\\"}
	for _, char := range dangerousChars {
		if strings.Contains(host, char) {
			return fmt.Errorf("host contains dangerous character: %s", char)
		}
	}

	return nil
}

// DelimiterRune returns the import delimiter as a rune.
func (c *ImportConfig) DelimiterRune() rune {
	runes := []rune(c.Delimiter)
	if len(runes) != 1 {
		return ','
	}

	return runes[0]
}
