package supervisor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/randomizedcoder/go-fluxgui/internal/process"
)

// Default timing for the color pipelines.
const (
	// DefaultSettleDelay lets the neutral color apply before the daemon dies.
	DefaultSettleDelay = 1 * time.Second

	// DefaultPreviewHold is how long a previewed color stays on screen.
	DefaultPreviewHold = 5 * time.Second
)

// Launcher performs the OS-level process work for the supervisor.
// *process.Launcher implements it.
type Launcher interface {
	// KillStrays force-kills other instances of binary owned by the current user.
	KillStrays(ctx context.Context, binary string) (int, error)

	// Launch starts binary and returns an opaque handle identifier.
	Launch(ctx context.Context, binary string, args []string) (string, error)

	// Send writes a command line to a live daemon.
	Send(id, line string) error

	// Kill force-terminates the daemon and waits for it to exit.
	Kill(ctx context.Context, id string) error
}

// Callbacks contains optional callback functions for supervisor events.
type Callbacks struct {
	// OnStateChange is called after a state transition is committed.
	OnStateChange func(oldState, newState State)

	// OnSpawn is called after a daemon process starts.
	OnSpawn func(handle string, args []string, took time.Duration)

	// OnStraysKilled is called when prior instances were killed before a spawn.
	OnStraysKilled func(count int)

	// OnColorChange is called when the daemon is commanded to a new color.
	OnColorChange func(color string)

	// OnPreview is called when a preview sequence starts.
	OnPreview func(color string)

	// OnShutdown is called with the outcome of every shutdown attempt.
	OnShutdown func(ok bool)
}

// Config holds configuration for creating a new Supervisor.
type Config struct {
	Driver    process.Driver
	Launcher  Launcher
	Logger    *slog.Logger
	Callbacks Callbacks

	// Initial startup parameters
	Location   process.Location
	Color      string
	PauseColor string

	SettleDelay time.Duration
	PreviewHold time.Duration
}

// Supervisor owns one daemon instance and the state machine that gates the
// operations on it.
//
// Operations are single-flight: an operation issued while another is running
// fails with ErrBusy. Accessors are safe to call concurrently.
type Supervisor struct {
	driver    process.Driver
	launcher  Launcher
	logger    *slog.Logger
	callbacks Callbacks

	settleDelay time.Duration
	previewHold time.Duration

	mu           sync.RWMutex
	state        State
	location     process.Location
	currentColor string
	pauseColor   string
	displayColor string
	handle       string

	busy atomic.Bool
}

// New creates a new Supervisor in StateUninitialized.
func New(cfg Config) *Supervisor {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	color := cfg.Color
	if color == "" {
		color = process.DefaultColor
	}
	pauseColor := cfg.PauseColor
	if pauseColor == "" {
		pauseColor = process.NeutralColor
	}
	settle := cfg.SettleDelay
	if settle <= 0 {
		settle = DefaultSettleDelay
	}
	hold := cfg.PreviewHold
	if hold <= 0 {
		hold = DefaultPreviewHold
	}

	return &Supervisor{
		driver:       cfg.Driver,
		launcher:     cfg.Launcher,
		logger:       logger.With("daemon", cfg.Driver.Name()),
		callbacks:    cfg.Callbacks,
		settleDelay:  settle,
		previewHold:  hold,
		state:        StateUninitialized,
		location:     cfg.Location,
		currentColor: color,
		pauseColor:   pauseColor,
	}
}

// =============================================================================
// Lifecycle operations
// =============================================================================

// Start spawns the daemon. Valid only from StateUninitialized.
// When args are given they are passed verbatim instead of the derived
// arguments, and the stored location is not validated since it is unused.
func (s *Supervisor) Start(ctx context.Context, args ...string) error {
	_, err := s.run(ctx, OpStart, request{args: args})
	return err
}

// Stop returns the display to neutral and terminates the daemon.
// It reports false, with a nil error, when the daemon could not be killed;
// the state is then left unchanged so the caller can retry.
func (s *Supervisor) Stop(ctx context.Context) (bool, error) {
	return s.run(ctx, OpStop, request{})
}

// PreviewColor shows color for the preview hold interval and then restores the
// color of the current state. It blocks for the whole sequence.
func (s *Supervisor) PreviewColor(ctx context.Context, color string) error {
	_, err := s.run(ctx, OpPreview, request{color: color})
	return err
}

// TogglePause flips between StateRunning and StatePaused.
func (s *Supervisor) TogglePause(ctx context.Context) error {
	_, err := s.run(ctx, OpTogglePause, request{})
	return err
}

// SetSetting changes one startup parameter. Before start it is only recorded;
// while alive it restarts the daemon with the new arguments.
func (s *Supervisor) SetSetting(ctx context.Context, key Setting, value string) error {
	_, err := s.run(ctx, OpSetSetting, request{setting: key, value: value})
	return err
}

// SetLatitude is shorthand for SetSetting(ctx, SettingLatitude, lat).
func (s *Supervisor) SetLatitude(ctx context.Context, lat string) error {
	return s.SetSetting(ctx, SettingLatitude, lat)
}

// SetLongitude is shorthand for SetSetting(ctx, SettingLongitude, lon).
func (s *Supervisor) SetLongitude(ctx context.Context, lon string) error {
	return s.SetSetting(ctx, SettingLongitude, lon)
}

// SetZipcode is shorthand for SetSetting(ctx, SettingZipcode, zip).
func (s *Supervisor) SetZipcode(ctx context.Context, zip string) error {
	return s.SetSetting(ctx, SettingZipcode, zip)
}

// SetColor is shorthand for SetSetting(ctx, SettingColor, color).
func (s *Supervisor) SetColor(ctx context.Context, color string) error {
	return s.SetSetting(ctx, SettingColor, color)
}

// =============================================================================
// Accessors
// =============================================================================

// State returns the current lifecycle state.
func (s *Supervisor) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Color returns the current (user-chosen) color.
func (s *Supervisor) Color() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentColor
}

// PauseColor returns the color shown while paused.
func (s *Supervisor) PauseColor() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pauseColor
}

// DisplayColor returns the color the daemon was last commanded to show,
// or "" when no daemon is running.
func (s *Supervisor) DisplayColor() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.displayColor
}

// Location returns the current startup location.
func (s *Supervisor) Location() process.Location {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.location
}

// Handle returns the launcher handle of the running daemon, or "".
func (s *Supervisor) Handle() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.handle
}

// Busy reports whether an operation is currently in flight.
func (s *Supervisor) Busy() bool {
	return s.busy.Load()
}

// DriverName returns the name of the supervised daemon.
func (s *Supervisor) DriverName() string {
	return s.driver.Name()
}

// =============================================================================
// Process primitives
// =============================================================================

// spawn kills prior instances of the daemon and launches a new one.
func (s *Supervisor) spawn(ctx context.Context, args []string) (string, error) {
	binary := s.driver.BinaryPath()

	killed, err := s.launcher.KillStrays(ctx, binary)
	if err != nil {
		s.logger.Warn("stray_cleanup_failed", "binary", binary, "error", err)
	}
	if killed > 0 {
		s.logger.Info("strays_killed", "binary", binary, "count", killed)
		if s.callbacks.OnStraysKilled != nil {
			s.callbacks.OnStraysKilled(killed)
		}
	}

	began := time.Now()
	id, err := s.launcher.Launch(ctx, binary, args)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", &DaemonNotFoundError{Binary: binary, Err: err}
		}
		return "", fmt.Errorf("spawn %s: %w", s.driver.Name(), err)
	}
	took := time.Since(began)

	s.logger.Info("daemon_spawned", "handle", id, "args", args, "took", took.String())
	if s.callbacks.OnSpawn != nil {
		s.callbacks.OnSpawn(id, args, took)
	}
	return id, nil
}

// restart replaces the running daemon with one showing color.
// If the new daemon cannot be spawned the old one is already gone, so the
// supervisor moves to StateTerminated.
func (s *Supervisor) restart(ctx context.Context, color string) error {
	s.mu.RLock()
	old, loc := s.handle, s.location
	s.mu.RUnlock()

	if old != "" {
		if err := s.launcher.Kill(ctx, old); err != nil {
			return fmt.Errorf("stop previous %s: %w", s.driver.Name(), err)
		}
		s.mu.Lock()
		s.handle = ""
		s.displayColor = ""
		s.mu.Unlock()
	}

	id, err := s.spawn(ctx, s.driver.BuildArgs(color, loc))
	if err != nil {
		s.logger.Error("restart_failed", "color", color, "error", err)
		s.commit(StateTerminated)
		return err
	}

	s.mu.Lock()
	s.handle = id
	s.displayColor = color
	s.mu.Unlock()
	return nil
}

// changeColorImmediately commands the daemon to color, live when the driver
// supports it and by restarting otherwise.
func (s *Supervisor) changeColorImmediately(ctx context.Context, color string) error {
	if s.driver.LiveColor() {
		err := s.launcher.Send(s.Handle(), s.driver.ColorCommand(color))
		switch {
		case err == nil:
			s.mu.Lock()
			s.displayColor = color
			s.mu.Unlock()
			s.colorChanged(color)
			return nil
		case !errors.Is(err, process.ErrNoInput):
			return err
		}
		// No input channel: fall back to a restart.
	}

	if err := s.restart(ctx, color); err != nil {
		return err
	}
	s.colorChanged(color)
	return nil
}

func (s *Supervisor) colorChanged(color string) {
	s.logger.Debug("color_changed", "color", color)
	if s.callbacks.OnColorChange != nil {
		s.callbacks.OnColorChange(color)
	}
}

// shutdown sets neutral, waits the settle delay and kills the daemon.
// Failure to set neutral is logged and does not prevent the kill. None of
// the steps observe cancellation of ctx.
func (s *Supervisor) shutdown(ctx context.Context) bool {
	// The display must end neutral even when the caller has given up.
	ctx = context.WithoutCancel(ctx)

	if err := s.changeColorImmediately(ctx, process.NeutralColor); err != nil {
		s.logger.Warn("neutral_color_failed", "error", err)
	}
	time.Sleep(s.settleDelay)

	ok := true
	if handle := s.Handle(); handle != "" {
		if err := s.launcher.Kill(ctx, handle); err != nil {
			s.logger.Error("shutdown_failed", "handle", handle, "error", err)
			ok = false
		}
	}

	if s.callbacks.OnShutdown != nil {
		s.callbacks.OnShutdown(ok)
	}
	return ok
}

// commit updates the state and calls the callback if registered.
func (s *Supervisor) commit(newState State) {
	s.mu.Lock()
	oldState := s.state
	s.state = newState
	if !newState.IsAlive() {
		s.handle = ""
		s.displayColor = ""
	}
	s.mu.Unlock()

	if oldState == newState {
		return
	}
	s.logger.Info("state_changed", "from", oldState.String(), "to", newState.String())
	if s.callbacks.OnStateChange != nil {
		s.callbacks.OnStateChange(oldState, newState)
	}
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
