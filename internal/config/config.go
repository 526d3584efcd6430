// Package config handles configuration loading from files, defaults, and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the application configuration.
type Config struct {
	Calendar CalendarConfig `toml:"calendar"`
	Storage  StorageConfig  `toml:"storage"`
	History  HistoryConfig  `toml:"history"`
	Persist  PersistConfig  `toml:"persist"`
	UI       UIConfig       `toml:"ui"`
	LLM      LLMConfig      `toml:"llm"`
}

// LLMConfig holds settings for the natural-language `plan` command.
type LLMConfig struct {
	Provider string `toml:"provider"` // "copilot" (default), "ollama", or "lmstudio"
	Model    string `toml:"model"`    // provider-specific model name, empty uses the provider's default
	BaseURL  string `toml:"base_url"` // overrides the provider's default endpoint (ollama, lmstudio)
}

// UIConfig holds dashboard/CLI display settings.
type UIConfig struct {
	Theme string `toml:"theme"` // "mocha", "macchiato", "frappe", "latte"
}

// CalendarConfig holds the default project calendar's weekly working pattern.
type CalendarConfig struct {
	Workdays []string `toml:"workdays"` // e.g. ["monday", ..., "friday"]
}

// StorageConfig holds database settings.
type StorageConfig struct {
	DBPath string `toml:"db_path"`
}

// HistoryConfig holds undo/redo ring buffer settings.
type HistoryConfig struct {
	Size int `toml:"size"` // number of undoable checkpoints retained, default 50
}

// PersistConfig holds event-log flush and snapshot cadence settings.
type PersistConfig struct {
	FlushIntervalMS        int `toml:"flush_interval_ms"`         // target ≤250ms, see spec §4.7
	FlushMaxBatch          int `toml:"flush_max_batch"`           // force a flush once the queue crosses this size
	SnapshotIntervalS      int `toml:"snapshot_interval_s"`       // default 60s
	SnapshotMaxUnflushed   int `toml:"snapshot_max_unflushed"`
	ShutdownFlushTimeoutMS int `toml:"shutdown_flush_timeout_ms"` // default 3000ms
}

// FlushInterval returns the configured flush interval as a duration.
func (p PersistConfig) FlushInterval() time.Duration {
	return time.Duration(p.FlushIntervalMS) * time.Millisecond
}

// SnapshotInterval returns the configured snapshot interval as a duration.
func (p PersistConfig) SnapshotInterval() time.Duration {
	return time.Duration(p.SnapshotIntervalS) * time.Second
}

// ShutdownFlushTimeout returns the configured shutdown flush deadline.
func (p PersistConfig) ShutdownFlushTimeout() time.Duration {
	return time.Duration(p.ShutdownFlushTimeoutMS) * time.Millisecond
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Calendar: CalendarConfig{
			Workdays: []string{"monday", "tuesday", "wednesday", "thursday", "friday"},
		},
		Storage: StorageConfig{
			DBPath: defaultDBPath(),
		},
		History: HistoryConfig{
			Size: 50,
		},
		Persist: PersistConfig{
			FlushIntervalMS:        250,
			FlushMaxBatch:          100,
			SnapshotIntervalS:      60,
			SnapshotMaxUnflushed:   500,
			ShutdownFlushTimeoutMS: 3000,
		},
		UI: UIConfig{
			Theme: "frappe",
		},
		LLM: LLMConfig{
			Provider: "copilot",
		},
	}
}

// defaultDBPath returns the default database path.
func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "sancho-schedule.db"
	}
	return filepath.Join(home, ".local", "share", "sancho-schedule", "project.db")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "sancho-schedule", "config.toml")
}

// Load loads configuration from the default path, merging with defaults and env vars.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from the specified path.
// It starts with defaults, overlays file config if it exists, then applies env overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	cfg.Storage.DBPath = expandPath(cfg.Storage.DBPath)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads config from a file if it exists.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Environment variables take precedence over file config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SANCHO_WORKDAYS"); v != "" {
		cfg.Calendar.Workdays = strings.Split(v, ",")
	}
	if v := os.Getenv("SANCHO_DB_PATH"); v != "" {
		cfg.Storage.DBPath = v
	}
	if v := os.Getenv("SANCHO_HISTORY_SIZE"); v != "" {
		if n, err := parsePositiveInt(v); err == nil {
			cfg.History.Size = n
		}
	}
	if v := os.Getenv("SANCHO_UI_THEME"); v != "" {
		cfg.UI.Theme = v
	}
	if v := os.Getenv("SANCHO_LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("SANCHO_LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("SANCHO_LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
}

func parsePositiveInt(s string) (int, error) {
	n := 0
	if s == "" {
		return 0, errors.New("empty integer")
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("invalid integer %q", s)
		}
		n = n*10 + int(c-'0')
	}
	return n, nil
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if len(c.Calendar.Workdays) == 0 {
		return errors.New("at least one workday must be configured")
	}
	for _, day := range c.Calendar.Workdays {
		if !isValidWeekday(day) {
			return fmt.Errorf("invalid workday: %s", day)
		}
	}
	if c.Storage.DBPath == "" {
		return errors.New("db_path must be set")
	}
	if c.History.Size <= 0 {
		return errors.New("history size must be positive")
	}
	if c.Persist.FlushIntervalMS <= 0 {
		return errors.New("flush_interval_ms must be positive")
	}
	if c.Persist.SnapshotIntervalS <= 0 {
		return errors.New("snapshot_interval_s must be positive")
	}
	return nil
}

var validWeekdays = map[string]bool{
	"sunday":    true,
	"monday":    true,
	"tuesday":   true,
	"wednesday": true,
	"thursday":  true,
	"friday":    true,
	"saturday":  true,
}

func isValidWeekday(day string) bool {
	return validWeekdays[strings.ToLower(day)]
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigPath())
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
