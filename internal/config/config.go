// Package config provides configuration types and defaults for cueboard.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config holds all configuration options for cueboard.
type Config struct {
	// LibraryDir is the root directory scanned for audio files.
	// Relative paths resolve against the working directory.
	LibraryDir string `mapstructure:"library_dir"`

	// StateFile is the JSON snapshot holding volume, narrative text and
	// cue order.
	StateFile string `mapstructure:"state_file"`

	AutoRefresh         bool          `mapstructure:"auto_refresh"`
	AutoRefreshDebounce time.Duration `mapstructure:"auto_refresh_debounce"`
	UI                  UIConfig      `mapstructure:"ui"`
}

// UIConfig holds user interface configuration options.
type UIConfig struct {
	Columns       int  `mapstructure:"columns"`
	ShowStatusBar bool `mapstructure:"show_status_bar"`
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		LibraryDir:          "sounds",
		StateFile:           "cueboard.json",
		AutoRefresh:         true,
		AutoRefreshDebounce: 500 * time.Millisecond,
		UI: UIConfig{
			Columns:       4,
			ShowStatusBar: true,
		},
	}
}

// Validate checks configuration values for errors.
func (c Config) Validate() error {
	if c.LibraryDir == "" {
		return fmt.Errorf("library_dir is required")
	}
	if c.StateFile == "" {
		return fmt.Errorf("state_file is required")
	}
	if c.UI.Columns < 1 {
		return fmt.Errorf("ui.columns must be at least 1, got %d", c.UI.Columns)
	}
	return nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# Cueboard Configuration

# Root directory scanned (recursively) for .mp3/.wav/.ogg files.
# Created on first run if missing.
library_dir: sounds

# JSON snapshot holding master volume, narrative text and cue order.
state_file: cueboard.json

# Rescan the library automatically when files change
auto_refresh: true
auto_refresh_debounce: 500ms

# UI settings
ui:
  columns: 4             # Cue buttons per grid row
  show_status_bar: true  # Show status bar at bottom
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
