// Package config loads and saves billwatch settings from a TOML file
// under the XDG config directory.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all billwatch configuration.
type Config struct {
	Budget        BudgetConfig        `toml:"budget"`
	Notifications NotificationsConfig `toml:"notifications"`
	Watch         WatchConfig         `toml:"watch"`
}

// BudgetConfig holds the spend-window and buffer knobs consumed by the
// spendable calculator.
type BudgetConfig struct {
	SpendWindowDays int     `toml:"spend_window_days"`
	BufferMode      string  `toml:"buffer_mode"` // fixed, percent, or none
	BufferValue     float64 `toml:"buffer_value,omitempty"`
	BufferPercent   float64 `toml:"buffer_percent,omitempty"`
}

// NotificationsConfig holds reminder scheduling preferences.
type NotificationsConfig struct {
	Enabled         bool   `toml:"enabled"`
	ReminderTime    string `toml:"reminder_time"`              // HH:MM canonical local fire time
	QuietHoursStart string `toml:"quiet_hours_start,omitempty"` // HH:MM, empty = unset
	QuietHoursEnd   string `toml:"quiet_hours_end,omitempty"`
}

// WatchConfig holds background watcher settings.
type WatchConfig struct {
	IntervalSec int    `toml:"interval_sec"`
	Addr        string `toml:"addr,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Budget: BudgetConfig{
			SpendWindowDays: 14,
			BufferMode:      "none",
		},
		Notifications: NotificationsConfig{
			Enabled:      true,
			ReminderTime: "09:00",
		},
		Watch: WatchConfig{
			IntervalSec: 300,
			Addr:        "127.0.0.1:8791",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "billwatch")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "billwatch")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}
