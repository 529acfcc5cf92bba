// Package config loads the tool configuration file and applies
// defaults. Flags and RESTFLOW_* environment variables override it at
// the CLI layer.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the restflow configuration
type Config struct {
	WorkspaceDir      string `json:"workspaceDir,omitempty"`
	Timeout           int    `json:"timeout,omitempty"` // milliseconds
	FollowRedirects   *bool  `json:"followRedirects,omitempty"`
	MaxRedirects      int    `json:"maxRedirects,omitempty"`
	ValidateSSL       *bool  `json:"validateSSL,omitempty"`
	Proxy             string `json:"proxy,omitempty"`
	DefaultCollection string `json:"defaultCollection,omitempty"`
	HistoryLimit      int    `json:"historyLimit,omitempty"`
	NoColor           *bool  `json:"noColor,omitempty"`
}

// ConfigFilenames contains the possible config file names
var ConfigFilenames = []string{
	".restflow.config.json",
	"restflow.config.json",
	".restflowrc",
	".restflowrc.json",
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Timeout:      30000,
		MaxRedirects: 10,
		HistoryLimit: 50,
	}
}

func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetFollowRedirects returns the follow redirects setting, defaulting to true
func (c *Config) GetFollowRedirects() bool {
	return getBool(c.FollowRedirects, true)
}

// GetValidateSSL returns the validate SSL setting, defaulting to true
func (c *Config) GetValidateSSL() bool {
	return getBool(c.ValidateSSL, true)
}

// GetNoColor returns the no color setting, defaulting to false
func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

// GetWorkspaceDir returns the workspace directory, defaulting to
// ~/.restflow.
func (c *Config) GetWorkspaceDir() string {
	if c.WorkspaceDir != "" {
		return c.WorkspaceDir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".restflow"
	}
	return filepath.Join(home, ".restflow")
}

// LoadConfig loads configuration from the specified path or searches
// for config files in the current directory.
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}
	return FindAndLoadConfig(".")
}

// FindAndLoadConfig searches for a config file in the given directory
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}
	return DefaultConfig(), nil
}

func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return config, nil
}

// SaveConfig saves the configuration to a file
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
