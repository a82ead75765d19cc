package process

import (
	"fmt"
	"strings"
)

// XfluxConfig holds configuration for the xflux daemon.
type XfluxConfig struct {
	// BinaryPath is the path to the xflux binary.
	BinaryPath string

	// NoFork keeps xflux in the foreground so it can be supervised.
	NoFork bool
}

// DefaultXfluxConfig returns an XfluxConfig with sensible defaults.
func DefaultXfluxConfig() *XfluxConfig {
	return &XfluxConfig{
		BinaryPath: "xflux",
		NoFork:     true,
	}
}

// XfluxDriver implements Driver for xflux.
//
// xflux reads "k=<color>" lines on its terminal, so color changes do not need a
// restart as long as it was launched on a pty.
type XfluxDriver struct {
	config *XfluxConfig
}

// NewXfluxDriver creates an xflux driver with the given configuration.
func NewXfluxDriver(cfg *XfluxConfig) *XfluxDriver {
	return &XfluxDriver{config: cfg}
}

// Name returns "xflux".
func (d *XfluxDriver) Name() string {
	return "xflux"
}

// BinaryPath returns the configured executable.
func (d *XfluxDriver) BinaryPath() string {
	return d.config.BinaryPath
}

// BuildArgs constructs the xflux command-line arguments.
func (d *XfluxDriver) BuildArgs(color string, loc Location) []string {
	var args []string

	if zip := strings.TrimSpace(loc.Zipcode); zip != "" {
		args = append(args, "-z", zip)
	}

	if loc.HasCoordinates() {
		args = append(args, "-l", strings.TrimSpace(loc.Latitude))
		if lon := strings.TrimSpace(loc.Longitude); lon != "" {
			args = append(args, "-g", lon)
		}
	}

	if color = strings.TrimSpace(color); color != "" {
		args = append(args, "-k", color)
	}

	if d.config.NoFork {
		args = append(args, "-nofork")
	}

	return args
}

// Validate requires either a zipcode or a latitude.
func (d *XfluxDriver) Validate(loc Location) error {
	if strings.TrimSpace(loc.Zipcode) == "" && !loc.HasCoordinates() {
		return fmt.Errorf("%w: xflux needs a zipcode or latitude", ErrLocationRequired)
	}
	return nil
}

// LiveColor returns true.
func (d *XfluxDriver) LiveColor() bool {
	return true
}

// ColorCommand returns the xflux color command.
func (d *XfluxDriver) ColorCommand(color string) string {
	return "k=" + strings.TrimSpace(color)
}

// Config returns the xflux configuration.
func (d *XfluxDriver) Config() *XfluxConfig {
	return d.config
}
