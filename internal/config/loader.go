/*
Copyright © 2025 SubstantialCattle5, nilaysharan.com
*/

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"

	"github.com/substantialcattle5/ghanima/internal/constants"
)

// DefaultPath returns the stock configuration file location in the user's
// home directory.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, constants.DefaultConfigFileName), nil
}

// Load reads and parses the configuration file at configPath.
func Load(configPath string) (*Config, error) {
	_, err := os.Stat(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration not found at %s, run 'ghanima init' first", configPath)
		}
		return nil, fmt.Errorf("error accessing configuration: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading configuration: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing configuration: %w", err)
	}

	return &cfg, nil
}

// Save writes cfg back to configPath, creating parent directories as needed.
func Save(configPath string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error serializing configuration: %w", err)
	}

	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, constants.StandardDirPerms); err != nil {
			return fmt.Errorf("error creating configuration directory: %w", err)
		}
	}

	if err := os.WriteFile(configPath, data, constants.StandardFilePerms); err != nil {
		return fmt.Errorf("error writing configuration: %w", err)
	}

	return nil
}
