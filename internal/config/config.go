package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/substantialcattle5/ghanima/internal/constants"
)

// Config represents the structure of the ghanima configuration file. It is
// built once by Load and passed by pointer; nothing reads configuration
// ambiently.
type Config struct {
	Paths    PathsConfig    `yaml:"paths"`
	Settings SettingsConfig `yaml:"settings"`
	State    StateConfig    `yaml:"state,omitempty"`
}

// PathsConfig names the two directory trees the tool touches.
type PathsConfig struct {
	// Source is the root holding one subdirectory per messaging-app user.
	Source string `yaml:"source"`
	// Storage is the root of the consolidated content-addressed tree.
	Storage string `yaml:"storage"`
}

// SettingsConfig holds the scan policy knobs.
type SettingsConfig struct {
	// MinFileSize is the eligibility threshold in whole megabytes.
	MinFileSize int `yaml:"min_file_size"`
	// SkipPatterns are substrings; files whose names contain one are skipped.
	SkipPatterns []string `yaml:"skip_patterns"`
	// PreserveOriginals copies into storage instead of moving and linking.
	PreserveOriginals bool `yaml:"preserve_originals"`
	// TargetFolders are the per-user cache subdirectories to scan.
	TargetFolders []string `yaml:"target_folders"`
}

// StateConfig is the persisted run state.
type StateConfig struct {
	// LastRun is the RFC 3339 timestamp of the last fully completed run.
	LastRun string `yaml:"last_run,omitempty"`
}

// Default returns a configuration pre-filled with the stock cache layout.
func Default(sourceRoot, storageRoot string) *Config {
	return &Config{
		Paths: PathsConfig{
			Source:  sourceRoot,
			Storage: storageRoot,
		},
		Settings: SettingsConfig{
			MinFileSize:   constants.DefaultMinFileSizeMB,
			SkipPatterns:  []string{},
			TargetFolders: append([]string(nil), constants.DefaultTargetFolders...),
		},
	}
}

// Validate checks the invariants a run depends on. A validation failure is
// fatal before any scanning starts.
func (c *Config) Validate() error {
	if c.Paths.Source == "" {
		return fmt.Errorf("configuration missing paths.source")
	}
	if c.Paths.Storage == "" {
		return fmt.Errorf("configuration missing paths.storage")
	}
	if c.Settings.MinFileSize < 0 {
		return fmt.Errorf("settings.min_file_size must not be negative, got %d", c.Settings.MinFileSize)
	}
	if len(c.Settings.TargetFolders) == 0 {
		return fmt.Errorf("settings.target_folders must name at least one category")
	}
	return nil
}

// SourceRoot returns paths.source with a leading ~ expanded.
func (c *Config) SourceRoot() string {
	return expandHome(c.Paths.Source)
}

// StorageRoot returns paths.storage with a leading ~ expanded.
func (c *Config) StorageRoot() string {
	return expandHome(c.Paths.Storage)
}

// IndexPath returns the location of the hash index database.
func (c *Config) IndexPath() string {
	return filepath.Join(c.StorageRoot(), constants.IndexFileName)
}

// MinFileSizeBytes converts the configured megabyte threshold to bytes.
func (c *Config) MinFileSizeBytes() int64 {
	return int64(c.Settings.MinFileSize) * 1024 * 1024
}

// LastRunTime parses state.last_run. It returns nil when no run has
// completed yet, and also when the stored timestamp cannot be parsed: an
// unreadable timestamp fails open into a full rescan, and the next
// successful run overwrites it with a fresh one.
func (c *Config) LastRunTime() *time.Time {
	if c.State.LastRun == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, c.State.LastRun)
	if err != nil {
		return nil
	}
	return &t
}

// SetLastRun records t as the completed-run timestamp.
func (c *Config) SetLastRun(t time.Time) {
	c.State.LastRun = t.Format(time.RFC3339)
}

// expandHome replaces a leading ~ with the current user's home directory.
// The path is returned unchanged when the home directory cannot be resolved.
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
