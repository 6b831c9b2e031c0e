// Package config handles tool configuration: store and journal locations,
// the engine image, record defaults and poll tuning.
//
// Config is stored at $XDG_CONFIG_HOME/acecast/config.yaml (defaults to
// ~/.config/acecast/config.yaml). A missing file yields the defaults, and
// any field left at its zero value falls back to its default, so a config
// file only needs the overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"acecast/internal/event"
	"acecast/internal/launch"
	"acecast/internal/monitor"

	"gopkg.in/yaml.v3"
)

// Poll tunes the status poller.
type Poll struct {
	Attempts    int `yaml:"attempts,omitempty"`
	WarmupSec   int `yaml:"warmup-seconds,omitempty"`
	IntervalSec int `yaml:"interval-seconds,omitempty"`
	TimeoutSec  int `yaml:"timeout-seconds,omitempty"`
}

// Config is the tool configuration.
type Config struct {
	StorePath      string `yaml:"store,omitempty"`
	JournalPath    string `yaml:"journal,omitempty"`
	Image          string `yaml:"image,omitempty"`
	DefaultTracker string `yaml:"default-tracker,omitempty"`
	DefaultToken   string `yaml:"default-token,omitempty"`
	DefaultPort    int    `yaml:"default-port,omitempty"`
	DefaultBitrate int    `yaml:"default-bitrate,omitempty"`
	Poll           Poll   `yaml:"poll,omitempty"`
}

// Path returns the config file location. It respects XDG_CONFIG_HOME,
// falling back to ~/.config/acecast/config.yaml.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".config", "acecast", "config.yaml")
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "acecast", "config.yaml")
}

func dataDir() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".local", "share", "acecast")
		}
		dir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dir, "acecast")
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		StorePath:      filepath.Join(dataDir(), "events.csv"),
		JournalPath:    filepath.Join(dataDir(), "journal.db"),
		Image:          launch.DefaultImage,
		DefaultTracker: event.DefaultTracker,
		DefaultToken:   event.DefaultToken,
		DefaultPort:    event.DefaultPort,
		DefaultBitrate: event.DefaultBitrate,
	}
}

// Load reads the config file at Path. A missing file returns the
// defaults, not an error.
func Load() (*Config, error) {
	return LoadFile(Path())
}

// LoadFile reads a config file, filling unset fields from Default.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %q: %w", path, err)
	}
	cfg.fillDefaults()
	return cfg, nil
}

func (c *Config) fillDefaults() {
	def := Default()
	if c.StorePath == "" {
		c.StorePath = def.StorePath
	}
	if c.JournalPath == "" {
		c.JournalPath = def.JournalPath
	}
	if c.Image == "" {
		c.Image = def.Image
	}
	if c.DefaultTracker == "" {
		c.DefaultTracker = def.DefaultTracker
	}
	if c.DefaultToken == "" {
		c.DefaultToken = def.DefaultToken
	}
	if c.DefaultPort == 0 {
		c.DefaultPort = def.DefaultPort
	}
	if c.DefaultBitrate == 0 {
		c.DefaultBitrate = def.DefaultBitrate
	}
}

// Save writes the config to Path, creating directories as needed. The
// write goes through a temp file and rename so a crash never truncates
// an existing config.
func (c *Config) Save() error {
	p := Path()
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp config file %q: %w", tmp, err)
	}
	if err := os.Rename(tmp, p); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace config file %q: %w", p, err)
	}
	return nil
}

// PollPolicy converts the poll tuning to a monitor policy, with defaults
// for unset fields.
func (c *Config) PollPolicy() monitor.Policy {
	policy := monitor.DefaultPolicy()
	if c.Poll.Attempts > 0 {
		policy.Attempts = c.Poll.Attempts
	}
	if c.Poll.WarmupSec > 0 {
		policy.Warmup = time.Duration(c.Poll.WarmupSec) * time.Second
	}
	if c.Poll.IntervalSec > 0 {
		policy.Interval = time.Duration(c.Poll.IntervalSec) * time.Second
	}
	if c.Poll.TimeoutSec > 0 {
		policy.Timeout = time.Duration(c.Poll.TimeoutSec) * time.Second
	}
	return policy
}
