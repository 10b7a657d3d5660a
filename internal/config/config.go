// Package config loads optional file-based defaults for the server. Command
// line flags and environment variables take precedence over anything here.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DirName is the per-user state directory under $HOME.
	DirName = ".mcp-sheets"
	// FileName is the config file inside DirName.
	FileName = "config.yaml"
)

// ErrMissingCredentials is returned by Validate when no credentials file is set.
var ErrMissingCredentials = errors.New("google sheets credentials file path is required")

// Config holds settings that may come from the config file.
type Config struct {
	CredentialsFile   string        `yaml:"credentials_file"`
	DisabledTools     []string      `yaml:"disabled_tools"`
	RequestsPerMinute int           `yaml:"requests_per_minute"`
	RequestTimeout    time.Duration `yaml:"request_timeout"`
	LogToolErrors     bool          `yaml:"log_tool_errors"`
}

// Dir returns ~/.mcp-sheets.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, DirName), nil
}

// LogDir returns ~/.mcp-sheets/logs.
func LogDir() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "logs"), nil
}

// DefaultPath returns ~/.mcp-sheets/config.yaml.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Load reads the YAML file at path. A missing file yields an empty Config
// unless required is set, in which case it is an error.
func Load(path string, required bool) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(ExpandPath(path))
	if err != nil {
		if os.IsNotExist(err) && !required {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	cfg.CredentialsFile = ExpandPath(cfg.CredentialsFile)
	return cfg, nil
}

// Validate checks that a usable credentials file is configured.
func (c *Config) Validate() error {
	if c.CredentialsFile == "" {
		return ErrMissingCredentials
	}
	info, err := os.Stat(c.CredentialsFile)
	if err != nil {
		return fmt.Errorf("credentials file %s: %w", c.CredentialsFile, err)
	}
	if info.IsDir() {
		return fmt.Errorf("credentials file %s is a directory", c.CredentialsFile)
	}
	if c.RequestsPerMinute < 0 {
		return fmt.Errorf("requests_per_minute must not be negative")
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must not be negative")
	}
	return nil
}

// ExpandPath replaces a leading ~/ with the user's home directory.
func ExpandPath(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
