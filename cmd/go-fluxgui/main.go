// Package main provides the go-fluxgui CLI entry point.
//
// go-fluxgui supervises a screen color-temperature daemon (redshift or xflux)
// and offers a terminal or tray front-end to pause, preview and adjust it.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/randomizedcoder/go-fluxgui/internal/config"
	"github.com/randomizedcoder/go-fluxgui/internal/logging"
	"github.com/randomizedcoder/go-fluxgui/internal/orchestrator"
	"github.com/randomizedcoder/go-fluxgui/internal/process"
	"github.com/randomizedcoder/go-fluxgui/internal/settings"
	"github.com/randomizedcoder/go-fluxgui/internal/supervisor"
)

// version is set at build time via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0" ./cmd/go-fluxgui
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// Handle version flag early (before flag parsing)
	if len(os.Args) > 1 {
		arg := os.Args[1]
		if arg == "-version" || arg == "--version" || arg == "version" {
			fmt.Printf("go-fluxgui %s\n", version)
			return 0
		}
	}

	// Parse command-line flags
	cfg, err := config.ParseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		return 1
	}

	// The TUI owns the terminal, so logs go to a file instead
	logger, closer, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log: %v\n", err)
		return 1
	}
	defer closer.Close()
	logging.SetDefault(logger)

	// Validate configuration
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return 1
	}

	// Handle --print-cmd mode
	if cfg.PrintCmd {
		if err := printDaemonCommand(os.Stdout, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	logger.Info("starting",
		"version", version,
		"daemon", cfg.Daemon,
		"ui", cfg.UI,
		"metrics_addr", cfg.MetricsAddr,
	)

	orchestrator.Version = version
	orch, err := orchestrator.New(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if cfg.UI == "none" {
		printBanner(cfg)
	}

	if err := orch.Run(context.Background()); err != nil {
		logger.Error("orchestrator_failed", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var nf *supervisor.DaemonNotFoundError
		if errors.As(err, &nf) {
			return 127
		}
		return 1
	}

	return 0
}

// newLogger returns the session logger and a closer for its sink.
func newLogger(cfg *config.Config) (*slog.Logger, io.Closer, error) {
	if cfg.UI != "tui" || cfg.PrintCmd {
		return logging.NewLogger(cfg.LogFormat, "info", cfg.Verbose), io.NopCloser(nil), nil
	}
	path, err := logging.DefaultLogPath()
	if err != nil {
		return nil, nil, err
	}
	return logging.NewFileLogger(path, cfg.LogFormat, cfg.Verbose)
}

// printBanner prints the startup banner for headless runs.
func printBanner(cfg *config.Config) {
	fmt.Println()
	fmt.Println("╔═══════════════════════════════════════════════════════════════════╗")
	fmt.Println("║                           go-fluxgui                              ║")
	fmt.Println("║        Screen Color Temperature Daemon Supervisor                 ║")
	fmt.Println("╚═══════════════════════════════════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("  Daemon:      %s\n", cfg.Daemon)
	if cfg.MetricsAddr != "" {
		fmt.Printf("  Metrics:     http://%s/metrics\n", cfg.MetricsAddr)
	}
	fmt.Println()
	fmt.Println("Press Ctrl+C to restore the display and exit.")
	fmt.Println()
}

// printDaemonCommand prints the daemon command line for the merged settings.
func printDaemonCommand(w io.Writer, cfg *config.Config) error {
	path := cfg.SettingsPath
	if path == "" {
		p, err := settings.DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	stored, err := settings.Load(path)
	if err != nil {
		return err
	}
	s := cfg.Overlay(*stored)

	driver, err := process.NewDriver(s.Daemon, cfg.DaemonPath)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "# %s command that would be run:\n\n", driver.Name())
	fmt.Fprintln(w, process.CommandString(driver, s.Color, s.Location()))
	return nil
}
