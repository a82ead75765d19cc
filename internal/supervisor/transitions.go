package supervisor

import (
	"context"
	"fmt"

	"github.com/randomizedcoder/go-fluxgui/internal/process"
)

// request carries the inputs of one lifecycle operation.
type request struct {
	args    []string
	color   string
	setting Setting
	value   string
}

// handler performs an operation that is valid in the current state and
// commits the resulting state. The bool result is only used by stop.
type handler func(s *Supervisor, ctx context.Context, req request) (bool, error)

// dispatch is the (state, operation) table. A missing entry means the
// operation is invalid in that state.
var dispatch = map[State]map[Op]handler{
	StateUninitialized: {
		OpStart:      (*Supervisor).startFresh,
		OpStop:       stopNoop,
		OpSetSetting: (*Supervisor).bufferSetting,
	},
	StateRunning: {
		OpStop:        (*Supervisor).stopAlive,
		OpPreview:     (*Supervisor).previewAlive,
		OpTogglePause: (*Supervisor).togglePause,
		OpSetSetting:  (*Supervisor).applySetting,
	},
	StatePaused: {
		OpStop:        (*Supervisor).stopAlive,
		OpPreview:     (*Supervisor).previewAlive,
		OpTogglePause: (*Supervisor).togglePause,
		OpSetSetting:  (*Supervisor).applySetting,
	},
	StateTerminated: {
		OpStop: stopNoop,
	},
}

// Allowed reports whether op is valid in state.
func Allowed(state State, op Op) bool {
	_, ok := dispatch[state][op]
	return ok
}

// run serializes operations and dispatches op for the current state.
func (s *Supervisor) run(ctx context.Context, op Op, req request) (bool, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return false, ErrBusy
	}
	defer s.busy.Store(false)

	state := s.State()
	h, ok := dispatch[state][op]
	if !ok {
		s.logger.Debug("operation_rejected", "op", op.String(), "state", state.String())
		return false, &StateError{Op: op, State: state}
	}
	return h(s, ctx, req)
}

func stopNoop(*Supervisor, context.Context, request) (bool, error) {
	return true, nil
}

// startFresh validates the startup parameters and spawns the first daemon.
func (s *Supervisor) startFresh(ctx context.Context, req request) (bool, error) {
	s.mu.RLock()
	loc, color := s.location, s.currentColor
	s.mu.RUnlock()

	// Explicit args carry their own location.
	args := req.args
	if len(args) == 0 {
		if err := s.driver.Validate(loc); err != nil {
			return false, &ConfigurationError{Err: err}
		}
		args = s.driver.BuildArgs(color, loc)
	}

	id, err := s.spawn(ctx, args)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	s.handle = id
	s.displayColor = color
	s.mu.Unlock()

	s.commit(StateRunning)
	return true, nil
}

// stopAlive runs the shutdown sequence; the state only changes on success.
func (s *Supervisor) stopAlive(ctx context.Context, _ request) (bool, error) {
	if !s.shutdown(ctx) {
		return false, nil
	}
	s.commit(StateTerminated)
	return true, nil
}

// previewAlive previews req.color and returns to the color of the current state.
func (s *Supervisor) previewAlive(ctx context.Context, req request) (bool, error) {
	returnColor := s.stateColor()
	if s.callbacks.OnPreview != nil {
		s.callbacks.OnPreview(req.color)
	}
	s.logger.Info("preview_started", "color", req.color, "return_color", returnColor, "hold", s.previewHold.String())
	return true, s.previewSequence(ctx, req.color, returnColor)
}

// togglePause switches the displayed color to the other state's color.
func (s *Supervisor) togglePause(ctx context.Context, _ request) (bool, error) {
	s.mu.RLock()
	state, current, pause := s.state, s.currentColor, s.pauseColor
	s.mu.RUnlock()

	target, color := StatePaused, pause
	if state == StatePaused {
		target, color = StateRunning, current
	}

	if err := s.changeColorImmediately(ctx, color); err != nil {
		return false, err
	}
	s.commit(target)
	return true, nil
}

// bufferSetting records a setting before the daemon exists.
func (s *Supervisor) bufferSetting(_ context.Context, req request) (bool, error) {
	if err := s.storeSetting(req.setting, req.value); err != nil {
		return false, err
	}
	s.logger.Debug("setting_buffered", "key", string(req.setting), "value", req.value)
	return true, nil
}

// applySetting records a setting and restarts the daemon with the full new
// argument set, keeping the current state.
func (s *Supervisor) applySetting(ctx context.Context, req request) (bool, error) {
	if err := s.storeSetting(req.setting, req.value); err != nil {
		return false, err
	}
	s.logger.Info("setting_applied", "key", string(req.setting), "value", req.value)

	color := s.stateColor()
	if err := s.restart(ctx, color); err != nil {
		return false, err
	}
	s.colorChanged(color)
	return true, nil
}

// storeSetting updates the in-memory startup parameters.
func (s *Supervisor) storeSetting(key Setting, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch key {
	case SettingLatitude:
		s.location.Latitude = value
	case SettingLongitude:
		s.location.Longitude = value
	case SettingZipcode:
		s.location.Zipcode = value
	case SettingColor:
		s.currentColor = value
	case SettingPauseColor:
		s.pauseColor = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSetting, string(key))
	}
	return nil
}

// stateColor returns the color the current state should display.
func (s *Supervisor) stateColor() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == StatePaused {
		return s.pauseColor
	}
	return s.currentColor
}

// previewSequence shows neutral, then preview for the hold interval, then
// returnColor. The neutral step makes the preview visible even when preview
// equals returnColor. The return step runs even if the hold is cut short.
func (s *Supervisor) previewSequence(ctx context.Context, preview, returnColor string) error {
	if err := s.changeColorImmediately(ctx, process.NeutralColor); err != nil {
		return err
	}
	if err := s.changeColorImmediately(ctx, preview); err != nil {
		return err
	}

	holdErr := sleep(ctx, s.previewHold)

	if err := s.changeColorImmediately(context.WithoutCancel(ctx), returnColor); err != nil {
		return err
	}
	if holdErr != nil {
		s.logger.Info("preview_interrupted", "color", preview, "error", holdErr)
	}
	return holdErr
}
