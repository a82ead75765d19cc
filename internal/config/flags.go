package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
)

// ParseFlags parses the process command line and returns a Config.
func ParseFlags() (*Config, error) {
	return ParseArgs(os.Args[1:], os.Stderr)
}

// ParseArgs parses args into a Config. Usage output goes to out.
func ParseArgs(args []string, out io.Writer) (*Config, error) {
	cfg := DefaultConfig()
	fs := flag.NewFlagSet("go-fluxgui", flag.ContinueOnError)
	fs.SetOutput(out)

	// Custom usage message
	fs.Usage = func() {
		fmt.Fprintf(out, `go-fluxgui - supervisor for redshift and xflux screen color daemons

Usage:
  go-fluxgui [flags]

Daemon:
`)
		// Print flags by category
		printFlagCategory(fs, out, []string{"daemon", "daemon-path", "pty", "kill-timeout"})

		fmt.Fprintf(out, "\nLocation & Color:\n")
		printFlagCategory(fs, out, []string{"lat", "lon", "zip", "color", "pause-color"})

		fmt.Fprintf(out, "\nTiming:\n")
		printFlagCategory(fs, out, []string{"preview-hold", "settle"})

		fmt.Fprintf(out, "\nSettings:\n")
		printFlagCategory(fs, out, []string{"settings", "watch-settings"})

		fmt.Fprintf(out, "\nInterface:\n")
		printFlagCategory(fs, out, []string{"ui"})

		fmt.Fprintf(out, "\nObservability:\n")
		printFlagCategory(fs, out, []string{"metrics", "v", "log-format"})

		fmt.Fprintf(out, "\nDiagnostics:\n")
		printFlagCategory(fs, out, []string{"print-cmd", "skip-preflight"})

		fmt.Fprintf(out, `
Flag Convention:
  Single-dash flags (-lat, -color) are normal options.
  Double-dash flags (--print-cmd) are diagnostic modes.
  Location and color flags override the settings file.

Examples:
  # Run redshift for New York with a warm night color
  go-fluxgui -lat 40.7 -lon -74.0 -color 2700

  # Use xflux with a zipcode and the tray indicator
  go-fluxgui -daemon xflux -zip 10001 -ui tray

  # Show the daemon command line and exit
  go-fluxgui --print-cmd

`)
	}

	// Daemon
	fs.StringVar(&cfg.Daemon, "daemon", cfg.Daemon, `Daemon backend: "redshift" or "xflux"`)
	fs.StringVar(&cfg.DaemonPath, "daemon-path", cfg.DaemonPath, "Path to the daemon binary (default: backend name on PATH)")
	fs.BoolVar(&cfg.UsePTY, "pty", cfg.UsePTY, "Run the daemon on a pseudo-terminal (enables live xflux color changes)")
	fs.DurationVar(&cfg.KillTimeout, "kill-timeout", cfg.KillTimeout, "How long to wait for a killed daemon to exit")

	// Location & color
	fs.StringVar(&cfg.Latitude, "lat", cfg.Latitude, "Latitude")
	fs.StringVar(&cfg.Longitude, "lon", cfg.Longitude, "Longitude")
	fs.StringVar(&cfg.Zipcode, "zip", cfg.Zipcode, "Zipcode (xflux only)")
	fs.StringVar(&cfg.Color, "color", cfg.Color, "Night color temperature in Kelvin")
	fs.StringVar(&cfg.PauseColor, "pause-color", cfg.PauseColor, "Color shown while paused in Kelvin")

	// Timing
	fs.DurationVar(&cfg.PreviewHold, "preview-hold", cfg.PreviewHold, "How long a previewed color stays on screen")
	fs.DurationVar(&cfg.SettleDelay, "settle", cfg.SettleDelay, "Wait after setting neutral before killing the daemon")

	// Settings
	fs.StringVar(&cfg.SettingsPath, "settings", cfg.SettingsPath, "Settings file (default: user config dir)")
	fs.BoolVar(&cfg.WatchSettings, "watch-settings", cfg.WatchSettings, "Apply external edits of the settings file")

	// Interface
	fs.StringVar(&cfg.UI, "ui", cfg.UI, `Front-end: "tui", "tray" or "none"`)

	// Observability
	fs.StringVar(&cfg.MetricsAddr, "metrics", cfg.MetricsAddr, `Prometheus metrics and health address ("" disables)`)
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Verbose logging")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, `Log format: "json" or "text"`)

	// Diagnostics (double-dash convention)
	fs.BoolVar(&cfg.PrintCmd, "print-cmd", cfg.PrintCmd, "Print the daemon command and exit")
	fs.BoolVar(&cfg.SkipPreflight, "skip-preflight", cfg.SkipPreflight, "Skip preflight checks")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	cfg.explicit = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		cfg.explicit[f.Name] = true
	})

	return cfg, nil
}

// printFlagCategory prints flags matching the given names (helper for usage).
func printFlagCategory(fs *flag.FlagSet, out io.Writer, names []string) {
	fs.VisitAll(func(f *flag.Flag) {
		for _, name := range names {
			if f.Name == name {
				fmt.Fprintf(out, "  -%s %s\n    \t%s", f.Name, flagType(f), f.Usage)
				if f.DefValue != "" && f.DefValue != "false" && f.DefValue != "0" && f.DefValue != "0s" {
					fmt.Fprintf(out, " (default %s)", f.DefValue)
				}
				fmt.Fprintln(out)
				return
			}
		}
	})
}

// flagType returns a type hint for the flag value.
func flagType(f *flag.Flag) string {
	switch f.DefValue {
	case "true", "false":
		return ""
	}

	if _, ok := f.Value.(interface{ IsBoolFlag() bool }); ok {
		return ""
	}

	// Check if it looks like a duration
	if strings.HasSuffix(f.DefValue, "s") || strings.HasSuffix(f.DefValue, "m") || strings.HasSuffix(f.DefValue, "h") {
		return "duration"
	}

	return "string"
}
