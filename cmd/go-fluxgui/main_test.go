package main

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/randomizedcoder/go-fluxgui/internal/config"
	"github.com/randomizedcoder/go-fluxgui/internal/settings"
)

func TestPrintDaemonCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), settings.SettingsFileName)
	stored := settings.Default()
	stored.Latitude, stored.Longitude = "40.7", "-74.0"
	if err := settings.Save(path, stored); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.ParseArgs([]string{"-settings", path, "-color", "2700"}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := printDaemonCommand(&buf, cfg); err != nil {
		t.Fatalf("printDaemonCommand() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "redshift -l 40.7:-74.0 -t 6500K:2700") {
		t.Errorf("output = %q", out)
	}
}

func TestPrintDaemonCommand_UnknownDaemon(t *testing.T) {
	path := filepath.Join(t.TempDir(), settings.SettingsFileName)
	cfg, err := config.ParseArgs([]string{"-settings", path, "-daemon", "bogus"}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if err := printDaemonCommand(io.Discard, cfg); err == nil {
		t.Error("printDaemonCommand() should fail for an unknown daemon")
	}
}
