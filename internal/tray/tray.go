// Package tray implements the system tray icon and menu.
package tray

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/getlantern/systray"

	"github.com/randomizedcoder/go-fluxgui/internal/controller"
	"github.com/randomizedcoder/go-fluxgui/internal/settings"
	"github.com/randomizedcoder/go-fluxgui/internal/supervisor"
)

// refreshInterval is how often the menu and icon follow the daemon state.
const refreshInterval = time.Second

// Controller is the subset of controller.Controller the tray drives.
type Controller interface {
	TogglePause(ctx context.Context) error
	PreviewColor(ctx context.Context, color string) error
	SetColor(ctx context.Context, color string) error
	SetAutostart(enabled bool) error
	State() supervisor.State
	Color() string
	Settings() settings.Settings
}

// Config holds tray configuration.
type Config struct {
	Controller Controller
	Logger     *slog.Logger
	Daemon     string

	// OnReady is called once the tray is shown.
	OnReady func()

	// OnQuit is called when Quit is chosen from the menu.
	OnQuit func()
}

// Tray is the tray front-end.
type Tray struct {
	ctrl   Controller
	logger *slog.Logger
	daemon string
	cfg    Config

	status    *systray.MenuItem
	pause     *systray.MenuItem
	colors    []*systray.MenuItem
	previews  []*systray.MenuItem
	autostart *systray.MenuItem
	quit      *systray.MenuItem
}

// New creates a Tray.
func New(cfg Config) *Tray {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Tray{
		ctrl:   cfg.Controller,
		logger: logger,
		daemon: cfg.Daemon,
		cfg:    cfg,
	}
}

// Run shows the tray and blocks until ctx is done or Quit is chosen.
// It must be called from the main goroutine.
func (t *Tray) Run(ctx context.Context) {
	systray.Run(func() { t.onReady(ctx) }, func() {})
}

func (t *Tray) onReady(ctx context.Context) {
	header := systray.AddMenuItem("go-fluxgui ("+t.daemon+")", "")
	header.Disable()

	t.status = systray.AddMenuItem("Starting...", "")
	t.status.Disable()

	systray.AddSeparator()

	t.pause = systray.AddMenuItemCheckbox("Pause", "Show the pause color", false)

	colorMenu := systray.AddMenuItem("Night color", "Set the night color")
	previewMenu := systray.AddMenuItem("Preview", "Show a color briefly")
	for _, p := range controller.Presets {
		label := fmt.Sprintf("%s (%sK)", p.Name, p.Color)
		t.colors = append(t.colors, colorMenu.AddSubMenuItemCheckbox(label, "", false))
		t.previews = append(t.previews, previewMenu.AddSubMenuItem(label, ""))
	}

	t.autostart = systray.AddMenuItemCheckbox("Start at login", "", t.ctrl.Settings().Autostart)

	systray.AddSeparator()
	t.quit = systray.AddMenuItem("Quit", "Restore the display and exit")

	t.refresh()

	if t.cfg.OnReady != nil {
		t.cfg.OnReady()
	}

	go t.handleClicks(ctx)
}

// handleClicks translates menu clicks into actions until ctx is done.
func (t *Tray) handleClicks(ctx context.Context) {
	clicks := make(chan action, 8)
	forward := func(ch <-chan struct{}, a action) {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ch:
				select {
				case clicks <- a:
				case <-ctx.Done():
					return
				}
			}
		}
	}

	go forward(t.pause.ClickedCh, action{kind: actionPause})
	go forward(t.autostart.ClickedCh, action{kind: actionAutostart})
	go forward(t.quit.ClickedCh, action{kind: actionQuit})
	for i, p := range controller.Presets {
		go forward(t.colors[i].ClickedCh, action{kind: actionColor, color: p.Color})
		go forward(t.previews[i].ClickedCh, action{kind: actionPreview, color: p.Color})
	}

	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			systray.Quit()
			return
		case <-ticker.C:
			t.refresh()
		case a := <-clicks:
			if a.kind == actionQuit {
				t.logger.Info("tray_quit")
				if t.cfg.OnQuit != nil {
					t.cfg.OnQuit()
				}
				systray.Quit()
				return
			}
			if a.kind == actionAutostart {
				a.enable = !t.autostart.Checked()
			}
			go func() {
				t.dispatch(ctx, a)
				t.refresh()
			}()
		}
	}
}

// refresh brings the icon, tooltip and checkmarks in line with the daemon.
func (t *Tray) refresh() {
	v := snapshot(t.ctrl)

	systray.SetIcon(Icon(v.state, v.color))
	systray.SetTooltip(formatTooltip(v))
	t.status.SetTitle(formatStatus(v))

	setChecked(t.pause, v.state == supervisor.StatePaused)
	setChecked(t.autostart, v.autostart)
	for i, p := range controller.Presets {
		setChecked(t.colors[i], p.Color == v.color)
	}

	if v.state.IsAlive() {
		t.pause.Enable()
	} else {
		t.pause.Disable()
	}
}

func setChecked(item *systray.MenuItem, checked bool) {
	if checked {
		item.Check()
	} else {
		item.Uncheck()
	}
}
