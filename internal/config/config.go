// Package config provides configuration types and defaults for pagebuilder.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
)

// Config holds all configuration options for pagebuilder.
type Config struct {
	DataDir   string          `mapstructure:"data_dir"`
	DBPath    string          `mapstructure:"db_path"`
	History   HistoryConfig   `mapstructure:"history"`
	Revisions RevisionsConfig `mapstructure:"revisions"`
	Import    ImportConfig    `mapstructure:"import"`
	Debug     bool            `mapstructure:"debug"`
}

// HistoryConfig bounds the per-page undo history.
type HistoryConfig struct {
	MaxSize    int           `mapstructure:"max_size"`
	SessionTTL time.Duration `mapstructure:"session_ttl"` // idle editing sessions are dropped after this
}

// RevisionsConfig controls saved snapshots of page canvases.
type RevisionsConfig struct {
	MaxPerPage         int    `mapstructure:"max_per_page"`
	CheckpointSchedule string `mapstructure:"checkpoint_schedule"` // cron expression, empty disables
}

// ImportConfig configures the watched page-content directory.
type ImportConfig struct {
	Dir      string        `mapstructure:"dir"` // empty disables the watcher
	Debounce time.Duration `mapstructure:"debounce"`
}

// Defaults returns the default configuration.
func Defaults() Config {
	return Config{
		History: HistoryConfig{
			MaxSize:    50,
			SessionTTL: 30 * time.Minute,
		},
		Revisions: RevisionsConfig{
			MaxPerPage:         40,
			CheckpointSchedule: "@every 5m",
		},
		Import: ImportConfig{
			Debounce: 300 * time.Millisecond,
		},
	}
}

// DefaultDataDir is where the database lives when data_dir is unset.
func DefaultDataDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "pagebuilder")
}

// ResolvePaths fills DataDir and DBPath when they are unset.
func (c *Config) ResolvePaths() {
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir()
	}
	if c.DBPath == "" {
		c.DBPath = filepath.Join(c.DataDir, "pagebuilder.db")
	}
}

// Validate checks the configuration for values the services cannot run with.
func (c Config) Validate() error {
	if c.History.MaxSize < 0 {
		return fmt.Errorf("history.max_size: must not be negative, got %d", c.History.MaxSize)
	}
	if c.History.SessionTTL < 0 {
		return fmt.Errorf("history.session_ttl: must not be negative, got %s", c.History.SessionTTL)
	}
	if c.Revisions.MaxPerPage < 1 {
		return fmt.Errorf("revisions.max_per_page: must be at least 1, got %d", c.Revisions.MaxPerPage)
	}
	if c.Revisions.CheckpointSchedule != "" {
		if _, err := cron.ParseStandard(c.Revisions.CheckpointSchedule); err != nil {
			return fmt.Errorf("revisions.checkpoint_schedule: %w", err)
		}
	}
	if c.Import.Debounce < 0 {
		return fmt.Errorf("import.debounce: must not be negative, got %s", c.Import.Debounce)
	}
	return nil
}

// DefaultConfigTemplate returns the commented YAML written by WriteDefaultConfig.
func DefaultConfigTemplate() string {
	return `# Pagebuilder Configuration

# Where the database lives (default: ~/.local/share/pagebuilder)
# data_dir: /path/to/data
# db_path: /path/to/pagebuilder.db

history:
  max_size: 50        # undo steps kept per page
  session_ttl: 30m    # drop idle editing sessions (and their undo history)

revisions:
  max_per_page: 40                 # oldest revisions are pruned beyond this
  checkpoint_schedule: "@every 5m" # cron expression, "" disables autosave

# Directory of <pageId>.json / <pageId>.yaml files imported into pages on change
import:
  # dir: ./content
  debounce: 300ms

debug: false
`
}

// WriteDefaultConfig writes DefaultConfigTemplate to configPath, creating
// parent directories as needed.
func WriteDefaultConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
