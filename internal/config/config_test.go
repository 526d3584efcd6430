package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if len(cfg.Calendar.Workdays) != 5 {
		t.Errorf("expected 5 workdays, got %d", len(cfg.Calendar.Workdays))
	}
	if cfg.History.Size != 50 {
		t.Errorf("expected history size 50, got %d", cfg.History.Size)
	}
	if cfg.Persist.FlushIntervalMS != 250 {
		t.Errorf("expected flush interval 250ms, got %d", cfg.Persist.FlushIntervalMS)
	}
	if cfg.Persist.SnapshotIntervalS != 60 {
		t.Errorf("expected snapshot interval 60s, got %d", cfg.Persist.SnapshotIntervalS)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestLoadFrom_MissingFile(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Calendar.Workdays) != 5 {
		t.Errorf("expected default workdays, got %v", cfg.Calendar.Workdays)
	}
}

func TestLoadFrom_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[calendar]
workdays = ["monday", "tuesday", "wednesday"]

[history]
size = 100

[storage]
db_path = "/tmp/project.db"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing test config: %v", err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Calendar.Workdays) != 3 {
		t.Errorf("expected 3 workdays, got %d", len(cfg.Calendar.Workdays))
	}
	if cfg.History.Size != 100 {
		t.Errorf("expected history size 100, got %d", cfg.History.Size)
	}
	if cfg.Storage.DBPath != "/tmp/project.db" {
		t.Errorf("expected overridden db_path, got %s", cfg.Storage.DBPath)
	}
}

func TestLoadFrom_EnvOverrides(t *testing.T) {
	t.Setenv("SANCHO_WORKDAYS", "monday,tuesday")
	t.Setenv("SANCHO_HISTORY_SIZE", "10")
	t.Setenv("SANCHO_DB_PATH", "/tmp/env.db")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Calendar.Workdays) != 2 {
		t.Errorf("expected 2 workdays from env, got %d", len(cfg.Calendar.Workdays))
	}
	if cfg.History.Size != 10 {
		t.Errorf("expected history size 10 from env, got %d", cfg.History.Size)
	}
	if cfg.Storage.DBPath != "/tmp/env.db" {
		t.Errorf("expected db_path from env, got %s", cfg.Storage.DBPath)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"no workdays", func(c *Config) { c.Calendar.Workdays = nil }, true},
		{"invalid workday", func(c *Config) { c.Calendar.Workdays = []string{"funday"} }, true},
		{"empty db path", func(c *Config) { c.Storage.DBPath = "" }, true},
		{"zero history size", func(c *Config) { c.History.Size = 0 }, true},
		{"zero flush interval", func(c *Config) { c.Persist.FlushIntervalMS = 0 }, true},
		{"zero snapshot interval", func(c *Config) { c.Persist.SnapshotIntervalS = 0 }, true},
		{"valid", func(c *Config) {}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := Default()
	cfg.Calendar.Workdays = []string{"monday", "wednesday", "friday"}

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("saving config: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("loading saved config: %v", err)
	}
	if len(loaded.Calendar.Workdays) != 3 {
		t.Errorf("expected 3 workdays after round-trip, got %d", len(loaded.Calendar.Workdays))
	}
}
