// Package config provides configuration management for go-fluxgui.
package config

import (
	"time"

	"github.com/randomizedcoder/go-fluxgui/internal/settings"
)

// Config holds all configuration options for the orchestrator.
type Config struct {
	// Daemon
	Daemon      string        `json:"daemon"`      // redshift, xflux
	DaemonPath  string        `json:"daemon_path"` // "" = daemon name on PATH
	UsePTY      bool          `json:"use_pty"`
	KillTimeout time.Duration `json:"kill_timeout"`

	// Location and colors. Empty values fall back to the settings file.
	Latitude   string `json:"latitude"`
	Longitude  string `json:"longitude"`
	Zipcode    string `json:"zipcode"`
	Color      string `json:"color"`
	PauseColor string `json:"pause_color"`

	// Timing
	PreviewHold time.Duration `json:"preview_hold"`
	SettleDelay time.Duration `json:"settle_delay"`

	// Settings
	SettingsPath  string `json:"settings_path"` // "" = user config dir
	WatchSettings bool   `json:"watch_settings"`

	// Front-end
	UI string `json:"ui"` // tui, tray, none

	// Observability
	MetricsAddr string `json:"metrics_addr"` // "" = disabled
	Verbose     bool   `json:"verbose"`
	LogFormat   string `json:"log_format"` // json, text

	// Diagnostic modes
	PrintCmd      bool `json:"print_cmd"`
	SkipPreflight bool `json:"skip_preflight"`

	// explicit records flags given on the command line.
	explicit map[string]bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		// Daemon
		Daemon:      "redshift",
		UsePTY:      true,
		KillTimeout: 3 * time.Second,

		// Timing
		PreviewHold: 5 * time.Second,
		SettleDelay: 1 * time.Second,

		// Settings
		WatchSettings: true,

		// Front-end
		UI: "tui",

		// Observability
		MetricsAddr: "127.0.0.1:17092",
		LogFormat:   "text",
	}
}

// IsSet reports whether flag name was given explicitly.
func (c *Config) IsSet(name string) bool {
	return c.explicit[name]
}

// Overlay returns the stored settings with every explicitly configured value
// from c applied on top. Command-line values win over the settings file.
func (c *Config) Overlay(s settings.Settings) settings.Settings {
	if c.IsSet("daemon") || s.Daemon == "" {
		s.Daemon = c.Daemon
	}
	overlays := []struct {
		flag  string
		value string
		dst   *string
	}{
		{"lat", c.Latitude, &s.Latitude},
		{"lon", c.Longitude, &s.Longitude},
		{"zip", c.Zipcode, &s.Zipcode},
		{"color", c.Color, &s.Color},
		{"pause-color", c.PauseColor, &s.PauseColor},
	}
	for _, o := range overlays {
		if c.IsSet(o.flag) || (*o.dst == "" && o.value != "") {
			*o.dst = o.value
		}
	}
	return s
}
