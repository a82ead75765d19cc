// Package controller couples the daemon supervisor with the settings store,
// so that every change made through a front-end is remembered.
package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/randomizedcoder/go-fluxgui/internal/settings"
	"github.com/randomizedcoder/go-fluxgui/internal/supervisor"
)

// Controller forwards operations to a Supervisor and mirrors setting changes
// into a settings.Store. Settings are written only after the supervisor
// accepted the change.
type Controller struct {
	sup       *supervisor.Supervisor
	store     *settings.Store
	autostart *settings.Autostart
	logger    *slog.Logger
}

// Config holds the collaborators of a Controller.
type Config struct {
	Supervisor *supervisor.Supervisor
	Store      *settings.Store
	Autostart  *settings.Autostart // nil disables autostart management
	Logger     *slog.Logger
}

// New creates a Controller.
func New(cfg Config) *Controller {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Controller{
		sup:       cfg.Supervisor,
		store:     cfg.Store,
		autostart: cfg.Autostart,
		logger:    logger,
	}
}

// Start starts the daemon with the stored settings.
func (c *Controller) Start(ctx context.Context) error {
	return c.sup.Start(ctx)
}

// Stop returns the display to neutral and terminates the daemon.
func (c *Controller) Stop(ctx context.Context) (bool, error) {
	return c.sup.Stop(ctx)
}

// PreviewColor shows color briefly. Previews are never persisted.
func (c *Controller) PreviewColor(ctx context.Context, color string) error {
	return c.sup.PreviewColor(ctx, color)
}

// TogglePause pauses or resumes the daemon.
func (c *Controller) TogglePause(ctx context.Context) error {
	return c.sup.TogglePause(ctx)
}

// SetLatitude changes and stores the latitude.
func (c *Controller) SetLatitude(ctx context.Context, lat string) error {
	return c.set(ctx, supervisor.SettingLatitude, lat, func(s *settings.Settings) { s.Latitude = lat })
}

// SetLongitude changes and stores the longitude.
func (c *Controller) SetLongitude(ctx context.Context, lon string) error {
	return c.set(ctx, supervisor.SettingLongitude, lon, func(s *settings.Settings) { s.Longitude = lon })
}

// SetZipcode changes and stores the zipcode.
func (c *Controller) SetZipcode(ctx context.Context, zip string) error {
	return c.set(ctx, supervisor.SettingZipcode, zip, func(s *settings.Settings) { s.Zipcode = zip })
}

// SetColor changes and stores the night color.
func (c *Controller) SetColor(ctx context.Context, color string) error {
	return c.set(ctx, supervisor.SettingColor, color, func(s *settings.Settings) { s.Color = color })
}

// SetPauseColor changes and stores the color shown while paused.
func (c *Controller) SetPauseColor(ctx context.Context, color string) error {
	return c.set(ctx, supervisor.SettingPauseColor, color, func(s *settings.Settings) { s.PauseColor = color })
}

// SetAutostart enables or disables launching at login. It does not touch the
// daemon.
func (c *Controller) SetAutostart(enabled bool) error {
	if c.autostart != nil {
		if err := c.autostart.Set(enabled); err != nil {
			return err
		}
	}
	if err := c.store.Update(func(s *settings.Settings) { s.Autostart = enabled }); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	c.logger.Info("autostart_changed", "enabled", enabled)
	return nil
}

func (c *Controller) set(ctx context.Context, key supervisor.Setting, value string, mirror func(*settings.Settings)) error {
	if err := c.sup.SetSetting(ctx, key, value); err != nil {
		return err
	}
	if err := c.store.Update(mirror); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// BusyRetryTimeout bounds how long Apply waits out an operation in flight,
// such as a preview hold, before giving up on a setting.
const BusyRetryTimeout = 15 * time.Second

// Apply brings the supervisor in line with settings read from disk, changing
// only the values that differ. Values the supervisor rejects keep their
// previous stored value. The store is updated without being rewritten.
func (c *Controller) Apply(ctx context.Context, next settings.Settings) error {
	var errs []error
	accepted := next
	current := c.store.Get()

	if c.sup.State() != supervisor.StateTerminated {
		loc := c.sup.Location()
		changes := []struct {
			key       supervisor.Setting
			have, got string
			field     *string
			prev      string
		}{
			{supervisor.SettingLatitude, loc.Latitude, next.Latitude, &accepted.Latitude, current.Latitude},
			{supervisor.SettingLongitude, loc.Longitude, next.Longitude, &accepted.Longitude, current.Longitude},
			{supervisor.SettingZipcode, loc.Zipcode, next.Zipcode, &accepted.Zipcode, current.Zipcode},
			{supervisor.SettingColor, c.sup.Color(), next.Color, &accepted.Color, current.Color},
			{supervisor.SettingPauseColor, c.sup.PauseColor(), next.PauseColor, &accepted.PauseColor, current.PauseColor},
		}
		for _, ch := range changes {
			if ch.have == ch.got {
				continue
			}
			if err := c.setWhenIdle(ctx, ch.key, ch.got); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", ch.key, err))
				*ch.field = ch.prev
				continue
			}
			c.logger.Info("setting_reloaded", "key", string(ch.key), "value", ch.got)
		}
	}

	if c.autostart != nil && c.autostart.Enabled() != next.Autostart {
		if err := c.autostart.Set(next.Autostart); err != nil {
			errs = append(errs, err)
			accepted.Autostart = current.Autostart
		}
	}

	c.store.Replace(accepted)
	return errors.Join(errs...)
}

// setWhenIdle calls SetSetting, retrying while another operation holds the
// supervisor.
func (c *Controller) setWhenIdle(ctx context.Context, key supervisor.Setting, value string) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = time.Second
	b.MaxElapsedTime = BusyRetryTimeout

	return backoff.Retry(func() error {
		err := c.sup.SetSetting(ctx, key, value)
		switch {
		case errors.Is(err, supervisor.ErrBusy):
			c.logger.Debug("setting_reload_busy", "key", string(key))
			return err
		case err != nil:
			return backoff.Permanent(err)
		}
		return nil
	}, backoff.WithContext(b, ctx))
}

// Color returns the current night color.
func (c *Controller) Color() string {
	return c.sup.Color()
}

// State returns the supervisor state.
func (c *Controller) State() supervisor.State {
	return c.sup.State()
}

// Settings returns the stored settings.
func (c *Controller) Settings() settings.Settings {
	return c.store.Get()
}

// Supervisor returns the wrapped supervisor for read-only inspection.
func (c *Controller) Supervisor() *supervisor.Supervisor {
	return c.sup
}
