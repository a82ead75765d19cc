// Package process provides the daemon drivers and the OS-level launcher used to
// run a color-temperature daemon.
package process

import (
	"errors"
	"fmt"
	"strings"
)

// Color values are Kelvin temperatures written as plain numbers ("3400").
const (
	// NeutralColor is the temperature that disables adjustment.
	NeutralColor = "6500"

	// DefaultColor is the night color used when none is configured.
	DefaultColor = "3400"
)

// ErrLocationRequired is returned by Driver.Validate when the daemon cannot be
// started without more location information.
var ErrLocationRequired = errors.New("location required")

// Location holds the startup parameters that describe where the user is.
// Empty fields are treated as unset.
type Location struct {
	Latitude  string `json:"latitude" yaml:"latitude"`
	Longitude string `json:"longitude" yaml:"longitude"`
	Zipcode   string `json:"zipcode" yaml:"zipcode"`
}

// HasCoordinates reports whether a latitude is configured.
func (l Location) HasCoordinates() bool {
	return strings.TrimSpace(l.Latitude) != ""
}

// Driver knows how to talk to one daemon implementation.
// This interface allows the supervisor to stay daemon-agnostic.
type Driver interface {
	// Name returns a human-readable name for this daemon.
	Name() string

	// BinaryPath returns the executable to launch.
	BinaryPath() string

	// BuildArgs returns the command-line arguments for the given color and
	// location. It must be pure: identical inputs yield identical output.
	BuildArgs(color string, loc Location) []string

	// Validate reports whether loc carries enough information to start.
	Validate(loc Location) error

	// LiveColor reports whether a running daemon accepts color changes on its
	// input. Drivers that return false are restarted for every color change.
	LiveColor() bool

	// ColorCommand returns the line written to a live daemon to change color.
	ColorCommand(color string) string
}

// CommandString returns the command that would be executed (for debugging).
func CommandString(d Driver, color string, loc Location) string {
	args := d.BuildArgs(color, loc)
	if len(args) == 0 {
		return d.BinaryPath()
	}
	return d.BinaryPath() + " " + strings.Join(args, " ")
}

// NewDriver returns the driver registered under name ("redshift" or "xflux").
// An empty binaryPath keeps the driver's default executable name.
func NewDriver(name, binaryPath string) (Driver, error) {
	switch strings.ToLower(name) {
	case "redshift", "":
		cfg := DefaultRedshiftConfig()
		if binaryPath != "" {
			cfg.BinaryPath = binaryPath
		}
		return NewRedshiftDriver(cfg), nil
	case "xflux":
		cfg := DefaultXfluxConfig()
		if binaryPath != "" {
			cfg.BinaryPath = binaryPath
		}
		return NewXfluxDriver(cfg), nil
	default:
		return nil, fmt.Errorf("unknown daemon %q", name)
	}
}
