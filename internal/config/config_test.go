// ABOUTME: Tests for configuration loading, env overrides, and paths.
// ABOUTME: Uses t.Setenv to isolate XDG directories.

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harper/mdpad/internal/store"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv(EnvBackend, "")
	t.Setenv(EnvDB, "")
	t.Setenv(EnvLogLevel, "")
	return dir
}

func TestLoadDefaultsWhenMissing(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := Default()
	if *cfg != *want {
		t.Errorf("expected defaults %+v, got %+v", want, cfg)
	}
	if Exists() {
		t.Error("Load should not create a config file")
	}
}

func TestSaveAndLoad(t *testing.T) {
	isolate(t)

	cfg := Default()
	cfg.Backend = store.BackendSQLite
	cfg.Autosave = 5 * time.Second
	cfg.Debounce = 100 * time.Millisecond
	cfg.SeedWelcome = false
	cfg.WrapWidth = 100
	if err := Save(cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !Exists() {
		t.Fatal("expected config file after Save")
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("expected %+v, got %+v", cfg, loaded)
	}
}

func TestLoadReadsDurationStrings(t *testing.T) {
	isolate(t)
	if err := os.MkdirAll(Dir(), 0750); err != nil {
		t.Fatal(err)
	}
	data := "backend: bolt\nautosave: 3s\ndebounce: 250ms\n"
	if err := os.WriteFile(Path(), []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Backend != store.BackendBolt || cfg.Autosave != 3*time.Second || cfg.Debounce != 250*time.Millisecond {
		t.Errorf("unexpected config %+v", cfg)
	}
	// Unset fields keep their defaults.
	if !cfg.SeedWelcome || cfg.WrapWidth != 80 {
		t.Errorf("expected defaults for unset fields, got %+v", cfg)
	}
}

func TestEnvOverrides(t *testing.T) {
	dir := isolate(t)
	t.Setenv(EnvBackend, "SQLite")
	t.Setenv(EnvDB, filepath.Join(dir, "custom.db"))
	t.Setenv(EnvLogLevel, "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if cfg.Backend != store.BackendSQLite {
		t.Errorf("expected sqlite backend, got %q", cfg.Backend)
	}
	if cfg.StorePath() != filepath.Join(dir, "custom.db") {
		t.Errorf("unexpected store path %q", cfg.StorePath())
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected debug, got %q", cfg.LogLevel)
	}
}

func TestLaterOverrideFixesBadEnv(t *testing.T) {
	isolate(t)
	t.Setenv(EnvBackend, "foo")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load should defer validation, got %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected unknown backend to fail validation")
	}

	cfg.Backend = store.BackendSQLite
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected flag override to validate, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errSub string
	}{
		{"unknown backend", func(c *Config) { c.Backend = "mongo" }, "unknown backend"},
		{"zero autosave", func(c *Config) { c.Autosave = 0 }, "autosave"},
		{"negative debounce", func(c *Config) { c.Debounce = -time.Second }, "debounce"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "log level"},
		{"negative width", func(c *Config) { c.WrapWidth = -1 }, "wrap_width"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.errSub) {
				t.Errorf("expected error containing %q, got %v", tt.errSub, err)
			}
		})
	}

	cfg := Default()
	cfg.Backend = ""
	if err := cfg.Validate(); err != nil || cfg.Backend != store.BackendBadger {
		t.Errorf("blank backend should default to badger, got %q err=%v", cfg.Backend, err)
	}
}

func TestPaths(t *testing.T) {
	dir := isolate(t)

	if Path() != filepath.Join(dir, "config", "mdpad", "config.yaml") {
		t.Errorf("unexpected config path %q", Path())
	}
	cfg := Default()
	if cfg.StorePath() != filepath.Join(dir, "data", "mdpad", "badger") {
		t.Errorf("unexpected badger path %q", cfg.StorePath())
	}
	cfg.Backend = store.BackendBolt
	if cfg.StorePath() != filepath.Join(dir, "data", "mdpad", "mdpad.bolt") {
		t.Errorf("unexpected bolt path %q", cfg.StorePath())
	}
}

func TestLoadFromRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("backend: [unterminated"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Error("expected parse error")
	}
}
