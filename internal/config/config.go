// ABOUTME: Configuration for mdpad loaded from YAML with env overrides.
// ABOUTME: Handles XDG config and data paths and backend selection.

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/harper/mdpad/internal/logging"
	"github.com/harper/mdpad/internal/store"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the config file.
const (
	EnvBackend  = "MDPAD_BACKEND"
	EnvDB       = "MDPAD_DB"
	EnvLogLevel = "MDPAD_LOG_LEVEL"
)

const appName = "mdpad"

// Config holds user settings.
type Config struct {
	// Backend is the storage engine: badger, sqlite, or bolt.
	Backend string `yaml:"backend"`

	// DataPath overrides where the store lives. Empty means the XDG data dir.
	DataPath string `yaml:"data_path,omitempty"`

	// Autosave is how long input must be quiet before the editor saves.
	Autosave time.Duration `yaml:"autosave"`

	// Debounce is how long input must be quiet before the preview refreshes.
	Debounce time.Duration `yaml:"debounce"`

	LogLevel string `yaml:"log_level"`

	// SeedWelcome adds a welcome file to an empty store on first run.
	SeedWelcome bool `yaml:"seed_welcome"`

	// GlamourStyle is the terminal preview style (auto, dark, light, notty).
	GlamourStyle string `yaml:"glamour_style"`

	WrapWidth int `yaml:"wrap_width"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Backend:      store.BackendBadger,
		Autosave:     2 * time.Second,
		Debounce:     300 * time.Millisecond,
		LogLevel:     logging.DefaultLevel,
		SeedWelcome:  true,
		GlamourStyle: "auto",
		WrapWidth:    80,
	}
}

// Dir returns the configuration directory path.
func Dir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, appName)
}

// Path returns the path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.yaml")
}

// DataDir returns the directory holding the store.
func DataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, appName)
}

// Load reads the config file, falling back to defaults when it does not
// exist, then applies environment overrides. The result is not validated
// so callers can layer flags on top first; call Validate last.
func Load() (*Config, error) {
	cfg, err := LoadFrom(Path())
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// LoadFrom reads the config file at path without env overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from MDPAD_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvBackend); v != "" {
		c.Backend = v
	}
	if v := os.Getenv(EnvDB); v != "" {
		c.DataPath = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
}

// Validate reports settings the app cannot run with.
func (c *Config) Validate() error {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	if c.Backend == "" {
		c.Backend = store.BackendBadger
	}
	if !slices.Contains(store.Backends, c.Backend) {
		return fmt.Errorf("unknown backend %q (want one of %s)", c.Backend, strings.Join(store.Backends, ", "))
	}
	if c.Autosave <= 0 {
		return fmt.Errorf("autosave must be positive, got %s", c.Autosave)
	}
	if c.Debounce <= 0 {
		return fmt.Errorf("debounce must be positive, got %s", c.Debounce)
	}
	if c.WrapWidth < 0 {
		return fmt.Errorf("wrap_width must not be negative, got %d", c.WrapWidth)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// StorePath returns where the configured backend keeps its data.
func (c *Config) StorePath() string {
	if c.DataPath != "" {
		return c.DataPath
	}
	return store.DefaultPath(DataDir(), c.Backend)
}

// Save writes the config to the default path.
func Save(cfg *Config) error {
	return SaveTo(cfg, Path())
}

// SaveTo writes the config to path, creating its directory.
func SaveTo(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// Exists returns true if a config file exists.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

// String renders the config as YAML.
func (c *Config) String() string {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Sprintf("%+v", *c)
	}
	return string(data)
}
