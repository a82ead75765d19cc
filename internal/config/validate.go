package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/randomizedcoder/go-fluxgui/internal/process"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the configuration for errors and inconsistencies.
// Returns nil if valid, or an error describing the problem.
func Validate(cfg *Config) error {
	var errs []error

	// Daemon must be known
	validDaemons := map[string]bool{"redshift": true, "xflux": true}
	if !validDaemons[strings.ToLower(cfg.Daemon)] {
		errs = append(errs, ValidationError{
			Field:   "daemon",
			Message: fmt.Sprintf("must be 'redshift' or 'xflux' (got %q)", cfg.Daemon),
		})
	}

	// Coordinates must be numeric and in range when given
	if err := validateCoordinate(cfg.Latitude, 90); err != nil {
		errs = append(errs, ValidationError{Field: "lat", Message: err.Error()})
	}
	if err := validateCoordinate(cfg.Longitude, 180); err != nil {
		errs = append(errs, ValidationError{Field: "lon", Message: err.Error()})
	}

	// Colors must be Kelvin values when given
	if cfg.Color != "" {
		if _, ok := process.ParseColor(cfg.Color); !ok {
			errs = append(errs, ValidationError{
				Field:   "color",
				Message: fmt.Sprintf("must be a temperature between %dK and %dK (got %q)", process.MinColor, process.MaxColor, cfg.Color),
			})
		}
	}
	if cfg.PauseColor != "" {
		if _, ok := process.ParseColor(cfg.PauseColor); !ok {
			errs = append(errs, ValidationError{
				Field:   "pause_color",
				Message: fmt.Sprintf("must be a temperature between %dK and %dK (got %q)", process.MinColor, process.MaxColor, cfg.PauseColor),
			})
		}
	}

	// Zipcode is only understood by xflux
	if cfg.Zipcode != "" && strings.ToLower(cfg.Daemon) == "redshift" {
		errs = append(errs, ValidationError{
			Field:   "zip",
			Message: "redshift does not support zipcodes, use -lat and -lon",
		})
	}

	// Durations
	if cfg.PreviewHold <= 0 {
		errs = append(errs, ValidationError{Field: "preview_hold", Message: "must be positive"})
	}
	if cfg.SettleDelay < 0 {
		errs = append(errs, ValidationError{Field: "settle_delay", Message: "must not be negative"})
	}
	if cfg.KillTimeout <= 0 {
		errs = append(errs, ValidationError{Field: "kill_timeout", Message: "must be positive"})
	}

	// Front-end must be valid
	validUIs := map[string]bool{"tui": true, "tray": true, "none": true}
	if !validUIs[cfg.UI] {
		errs = append(errs, ValidationError{
			Field:   "ui",
			Message: fmt.Sprintf("must be one of: tui, tray, none (got %q)", cfg.UI),
		})
	}

	// Metrics address must be host:port when set
	if cfg.MetricsAddr != "" {
		if _, _, err := net.SplitHostPort(cfg.MetricsAddr); err != nil {
			errs = append(errs, ValidationError{
				Field:   "metrics",
				Message: fmt.Sprintf("must be host:port (got %q)", cfg.MetricsAddr),
			})
		}
	}

	// Log format must be valid
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[cfg.LogFormat] {
		errs = append(errs, ValidationError{
			Field:   "log_format",
			Message: fmt.Sprintf("must be 'json' or 'text' (got %q)", cfg.LogFormat),
		})
	}

	// Return combined errors
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// validateCoordinate checks that v is empty or a number within ±limit.
func validateCoordinate(v string, limit float64) error {
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return fmt.Errorf("must be a number (got %q)", v)
	}
	if f < -limit || f > limit {
		return fmt.Errorf("must be between %g and %g (got %g)", -limit, limit, f)
	}
	return nil
}
