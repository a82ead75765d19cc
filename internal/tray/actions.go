package tray

import (
	"context"
	"errors"
	"fmt"

	"github.com/randomizedcoder/go-fluxgui/internal/controller"
	"github.com/randomizedcoder/go-fluxgui/internal/supervisor"
)

type actionKind int

const (
	actionPause actionKind = iota
	actionColor
	actionPreview
	actionAutostart
	actionQuit
)

func (k actionKind) String() string {
	switch k {
	case actionPause:
		return "pause"
	case actionColor:
		return "color"
	case actionPreview:
		return "preview"
	case actionAutostart:
		return "autostart"
	case actionQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// action is a menu click resolved to a controller call.
type action struct {
	kind   actionKind
	color  string
	enable bool
}

// dispatch performs a. Busy rejections are expected while a preview holds
// and are logged at debug.
func (t *Tray) dispatch(ctx context.Context, a action) error {
	var err error
	switch a.kind {
	case actionPause:
		err = t.ctrl.TogglePause(ctx)
	case actionColor:
		err = t.ctrl.SetColor(ctx, a.color)
	case actionPreview:
		err = t.ctrl.PreviewColor(ctx, a.color)
	case actionAutostart:
		err = t.ctrl.SetAutostart(a.enable)
	default:
		return fmt.Errorf("unsupported action %s", a.kind)
	}

	switch {
	case err == nil:
		t.logger.Debug("tray_action", "action", a.kind.String(), "color", a.color)
	case errors.Is(err, supervisor.ErrBusy):
		t.logger.Debug("tray_action_busy", "action", a.kind.String())
	default:
		t.logger.Warn("tray_action_failed", "action", a.kind.String(), "error", err)
	}
	return err
}

// view is what the tray shows, read once per refresh.
type view struct {
	state     supervisor.State
	color     string
	pause     string
	autostart bool
}

func snapshot(c Controller) view {
	s := c.Settings()
	return view{
		state:     c.State(),
		color:     c.Color(),
		pause:     s.PauseColor,
		autostart: s.Autostart,
	}
}

func formatStatus(v view) string {
	switch v.state {
	case supervisor.StateRunning:
		return fmt.Sprintf("Running: %s", controller.PresetName(v.color))
	case supervisor.StatePaused:
		return fmt.Sprintf("Paused: %s", controller.PresetName(v.pause))
	case supervisor.StateTerminated:
		return "Stopped"
	default:
		return "Starting..."
	}
}

func formatTooltip(v view) string {
	return fmt.Sprintf("go-fluxgui: %s, %sK", v.state, v.color)
}
