package process

import (
	"fmt"
	"strings"
)

// RedshiftConfig holds configuration for the redshift daemon.
type RedshiftConfig struct {
	// BinaryPath is the path to the redshift binary.
	BinaryPath string

	// DayTemperature is the daytime half of the -t flag.
	// redshift only changes night color through this core, so it stays fixed.
	DayTemperature string
}

// DefaultRedshiftConfig returns a RedshiftConfig with sensible defaults.
func DefaultRedshiftConfig() *RedshiftConfig {
	return &RedshiftConfig{
		BinaryPath:     "redshift",
		DayTemperature: "6500K",
	}
}

// RedshiftDriver implements Driver for redshift.
//
// redshift has no input channel, so every color change is a restart.
type RedshiftDriver struct {
	config *RedshiftConfig
}

// NewRedshiftDriver creates a redshift driver with the given configuration.
func NewRedshiftDriver(cfg *RedshiftConfig) *RedshiftDriver {
	return &RedshiftDriver{config: cfg}
}

// Name returns "redshift".
func (d *RedshiftDriver) Name() string {
	return "redshift"
}

// BinaryPath returns the configured executable.
func (d *RedshiftDriver) BinaryPath() string {
	return d.config.BinaryPath
}

// BuildArgs constructs the redshift command-line arguments.
func (d *RedshiftDriver) BuildArgs(color string, loc Location) []string {
	var args []string

	// Location: only when configured
	if loc.HasCoordinates() {
		args = append(args, "-l", fmt.Sprintf("%s:%s",
			strings.TrimSpace(loc.Latitude), strings.TrimSpace(loc.Longitude)))
	}

	// Temperature: day:night
	if color = strings.TrimSpace(color); color != "" {
		args = append(args, "-t", fmt.Sprintf("%s:%s", d.config.DayTemperature, color))
	}

	return args
}

// Validate requires both latitude and longitude.
func (d *RedshiftDriver) Validate(loc Location) error {
	if strings.TrimSpace(loc.Latitude) == "" || strings.TrimSpace(loc.Longitude) == "" {
		return fmt.Errorf("%w: redshift needs latitude and longitude", ErrLocationRequired)
	}
	return nil
}

// LiveColor returns false.
func (d *RedshiftDriver) LiveColor() bool {
	return false
}

// ColorCommand returns "" since redshift accepts no live commands.
func (d *RedshiftDriver) ColorCommand(string) string {
	return ""
}

// Config returns the redshift configuration.
func (d *RedshiftDriver) Config() *RedshiftConfig {
	return d.config
}
