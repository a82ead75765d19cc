package config

import (
	"bytes"
	"flag"
	"strings"
	"testing"
	"time"

	"github.com/randomizedcoder/go-fluxgui/internal/settings"
)

func TestFlagType(t *testing.T) {
	testCases := []struct {
		name     string
		defValue string
		expected string
	}{
		{"bool true", "true", ""},
		{"bool false", "false", ""},
		{"string", "hello", "string"},
		{"duration seconds", "5s", "duration"},
		{"duration minutes", "5m", "duration"},
		{"duration hours", "1h", "duration"},
		{"empty", "", "string"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := &flag.Flag{
				Name:     "test",
				DefValue: tc.defValue,
			}
			result := flagType(f)
			if result != tc.expected {
				t.Errorf("flagType(%q) = %q, want %q", tc.defValue, result, tc.expected)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Daemon != "redshift" {
		t.Errorf("Daemon = %q, want redshift", cfg.Daemon)
	}
	if cfg.PreviewHold != 5*time.Second {
		t.Errorf("PreviewHold = %v, want 5s", cfg.PreviewHold)
	}
	if cfg.SettleDelay != time.Second {
		t.Errorf("SettleDelay = %v, want 1s", cfg.SettleDelay)
	}
	if !cfg.UsePTY {
		t.Error("UsePTY should be true by default")
	}
	if cfg.UI != "tui" {
		t.Errorf("UI = %q, want tui", cfg.UI)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

// =============================================================================
// ParseArgs
// =============================================================================

func TestParseArgs(t *testing.T) {
	var out bytes.Buffer
	cfg, err := ParseArgs([]string{
		"-daemon", "xflux",
		"-zip", "10001",
		"-color", "2700",
		"-preview-hold", "2s",
		"-ui", "none",
		"-pty=false",
		"--print-cmd",
	}, &out)
	if err != nil {
		t.Fatalf("ParseArgs() error = %v", err)
	}

	if cfg.Daemon != "xflux" || cfg.Zipcode != "10001" || cfg.Color != "2700" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.PreviewHold != 2*time.Second {
		t.Errorf("PreviewHold = %v, want 2s", cfg.PreviewHold)
	}
	if cfg.UsePTY {
		t.Error("UsePTY = true, want false")
	}
	if !cfg.PrintCmd {
		t.Error("PrintCmd = false, want true")
	}

	for _, name := range []string{"daemon", "zip", "color", "pty"} {
		if !cfg.IsSet(name) {
			t.Errorf("IsSet(%q) = false", name)
		}
	}
	if cfg.IsSet("lat") {
		t.Error("IsSet(lat) = true for a flag that was not given")
	}
}

func TestParseArgs_Errors(t *testing.T) {
	testCases := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"-bogus"}},
		{"bad duration", []string{"-settle", "soon"}},
		{"positional", []string{"extra"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			if _, err := ParseArgs(tc.args, &out); err == nil {
				t.Errorf("ParseArgs(%q) should fail", tc.args)
			}
		})
	}
}

func TestParseArgs_Usage(t *testing.T) {
	var out bytes.Buffer
	_, err := ParseArgs([]string{"-h"}, &out)
	if err != flag.ErrHelp {
		t.Fatalf("ParseArgs(-h) error = %v, want flag.ErrHelp", err)
	}

	usage := out.String()
	for _, want := range []string{"Daemon:", "Location & Color:", "-preview-hold", "--print-cmd", "Examples:"} {
		if !strings.Contains(usage, want) {
			t.Errorf("usage missing %q", want)
		}
	}
}

// =============================================================================
// Overlay
// =============================================================================

func TestOverlay(t *testing.T) {
	stored := settings.Settings{
		Daemon:     "xflux",
		Latitude:   "10",
		Longitude:  "20",
		Color:      "2700",
		PauseColor: "6500",
	}

	t.Run("no flags keeps stored values", func(t *testing.T) {
		cfg, err := ParseArgs(nil, &bytes.Buffer{})
		if err != nil {
			t.Fatal(err)
		}
		if got := cfg.Overlay(stored); got != stored {
			t.Errorf("Overlay() = %+v, want %+v", got, stored)
		}
	})

	t.Run("explicit flags win", func(t *testing.T) {
		cfg, err := ParseArgs([]string{"-lat", "51.5", "-color", "4200", "-daemon", "redshift"}, &bytes.Buffer{})
		if err != nil {
			t.Fatal(err)
		}
		got := cfg.Overlay(stored)
		if got.Latitude != "51.5" || got.Color != "4200" || got.Daemon != "redshift" {
			t.Errorf("Overlay() = %+v", got)
		}
		if got.Longitude != "20" {
			t.Errorf("Longitude = %q, want stored 20", got.Longitude)
		}
	})

	t.Run("empty stored daemon takes default", func(t *testing.T) {
		cfg := DefaultConfig()
		got := cfg.Overlay(settings.Settings{})
		if got.Daemon != "redshift" {
			t.Errorf("Daemon = %q, want redshift", got.Daemon)
		}
	})
}

// =============================================================================
// Validate
// =============================================================================

func TestValidate_Invalid(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"unknown daemon", func(c *Config) { c.Daemon = "f.lux" }, "daemon"},
		{"latitude not a number", func(c *Config) { c.Latitude = "north" }, "lat"},
		{"latitude out of range", func(c *Config) { c.Latitude = "91" }, "lat"},
		{"longitude out of range", func(c *Config) { c.Longitude = "-181" }, "lon"},
		{"color not kelvin", func(c *Config) { c.Color = "warm" }, "color"},
		{"color too low", func(c *Config) { c.Color = "500" }, "color"},
		{"pause color", func(c *Config) { c.PauseColor = "x" }, "pause_color"},
		{"zip with redshift", func(c *Config) { c.Zipcode = "10001" }, "zip"},
		{"zero preview hold", func(c *Config) { c.PreviewHold = 0 }, "preview_hold"},
		{"negative settle", func(c *Config) { c.SettleDelay = -time.Second }, "settle_delay"},
		{"zero kill timeout", func(c *Config) { c.KillTimeout = 0 }, "kill_timeout"},
		{"unknown ui", func(c *Config) { c.UI = "gtk" }, "ui"},
		{"bad metrics address", func(c *Config) { c.MetricsAddr = "17092" }, "metrics"},
		{"bad log format", func(c *Config) { c.LogFormat = "yaml" }, "log_format"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.field+":") {
				t.Errorf("error should mention %s: %v", tc.field, err)
			}
		})
	}
}

func TestValidate_Valid(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"coordinates", func(c *Config) { c.Latitude = "40.7"; c.Longitude = "-74.0" }},
		{"kelvin suffix", func(c *Config) { c.Color = "2700K" }},
		{"xflux zipcode", func(c *Config) { c.Daemon = "xflux"; c.Zipcode = "10001" }},
		{"metrics disabled", func(c *Config) { c.MetricsAddr = "" }},
		{"zero settle", func(c *Config) { c.SettleDelay = 0 }},
		{"tray", func(c *Config) { c.UI = "tray" }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			if err := Validate(cfg); err != nil {
				t.Errorf("should be valid: %v", err)
			}
		})
	}
}

func TestValidate_CombinesErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UI = "gtk"
	cfg.LogFormat = "xml"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "ui:") || !strings.Contains(err.Error(), "log_format:") {
		t.Errorf("both problems should be reported: %v", err)
	}
}

func TestValidationError(t *testing.T) {
	err := ValidationError{Field: "ui", Message: "bad"}
	if err.Error() != "ui: bad" {
		t.Errorf("Error() = %q", err.Error())
	}
}
