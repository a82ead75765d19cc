package tray

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"strings"
	"testing"

	"github.com/randomizedcoder/go-fluxgui/internal/settings"
	"github.com/randomizedcoder/go-fluxgui/internal/supervisor"
)

// =============================================================================
// Fake Controller
// =============================================================================

type fakeController struct {
	state     supervisor.State
	color     string
	settings  settings.Settings
	calls     []string
	err       error
	autostart []bool
}

func newFakeController() *fakeController {
	return &fakeController{
		state:    supervisor.StateRunning,
		color:    "3400",
		settings: *settings.Default(),
	}
}

func (f *fakeController) TogglePause(context.Context) error {
	f.calls = append(f.calls, "pause")
	return f.err
}

func (f *fakeController) PreviewColor(_ context.Context, c string) error {
	f.calls = append(f.calls, "preview "+c)
	return f.err
}

func (f *fakeController) SetColor(_ context.Context, c string) error {
	f.calls = append(f.calls, "color "+c)
	return f.err
}

func (f *fakeController) SetAutostart(enabled bool) error {
	f.autostart = append(f.autostart, enabled)
	return f.err
}

func (f *fakeController) State() supervisor.State { return f.state }

func (f *fakeController) Color() string { return f.color }

func (f *fakeController) Settings() settings.Settings { return f.settings }

// =============================================================================
// Tests: dispatch
// =============================================================================

func TestDispatch(t *testing.T) {
	ctrl := newFakeController()
	tr := New(Config{Controller: ctrl})
	ctx := context.Background()

	actions := []action{
		{kind: actionPause},
		{kind: actionColor, color: "2700"},
		{kind: actionPreview, color: "5000"},
	}
	for _, a := range actions {
		if err := tr.dispatch(ctx, a); err != nil {
			t.Fatalf("dispatch(%s) error = %v", a.kind, err)
		}
	}

	want := "pause,color 2700,preview 5000"
	if got := strings.Join(ctrl.calls, ","); got != want {
		t.Errorf("calls = %s, want %s", got, want)
	}
}

func TestDispatch_Autostart(t *testing.T) {
	ctrl := newFakeController()
	tr := New(Config{Controller: ctrl})

	_ = tr.dispatch(context.Background(), action{kind: actionAutostart, enable: true})
	_ = tr.dispatch(context.Background(), action{kind: actionAutostart, enable: false})

	if len(ctrl.autostart) != 2 || !ctrl.autostart[0] || ctrl.autostart[1] {
		t.Errorf("autostart calls = %v, want [true false]", ctrl.autostart)
	}
}

func TestDispatch_Errors(t *testing.T) {
	ctrl := newFakeController()
	ctrl.err = supervisor.ErrBusy
	tr := New(Config{Controller: ctrl})

	if err := tr.dispatch(context.Background(), action{kind: actionPause}); !errors.Is(err, supervisor.ErrBusy) {
		t.Errorf("dispatch() error = %v, want ErrBusy", err)
	}

	if err := tr.dispatch(context.Background(), action{kind: actionQuit}); err == nil {
		t.Error("quit is handled by the click loop, dispatch should reject it")
	}
}

// =============================================================================
// Tests: formatting
// =============================================================================

func TestFormatStatus(t *testing.T) {
	tests := []struct {
		name string
		v    view
		want string
	}{
		{"running preset", view{state: supervisor.StateRunning, color: "3400"}, "Running: Tungsten"},
		{"running custom", view{state: supervisor.StateRunning, color: "3900"}, "Running: 3900K"},
		{"paused", view{state: supervisor.StatePaused, pause: "6500"}, "Paused: Daylight"},
		{"terminated", view{state: supervisor.StateTerminated}, "Stopped"},
		{"uninitialized", view{state: supervisor.StateUninitialized}, "Starting..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatStatus(tt.v); got != tt.want {
				t.Errorf("formatStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSnapshot(t *testing.T) {
	ctrl := newFakeController()
	ctrl.settings.Autostart = true
	v := snapshot(ctrl)

	if v.state != supervisor.StateRunning || v.color != "3400" || v.pause != "6500" || !v.autostart {
		t.Errorf("snapshot() = %+v", v)
	}
	if got := formatTooltip(v); got != "go-fluxgui: running, 3400K" {
		t.Errorf("formatTooltip() = %q", got)
	}
}

func TestActionKind_String(t *testing.T) {
	for k := actionPause; k <= actionQuit; k++ {
		if k.String() == "unknown" {
			t.Errorf("actionKind(%d) has no name", k)
		}
	}
	if actionKind(99).String() != "unknown" {
		t.Error("out of range kind should be unknown")
	}
}

// =============================================================================
// Tests: icon
// =============================================================================

func TestIcon_DecodesAsPNG(t *testing.T) {
	data := Icon(supervisor.StateRunning, "3400")
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != IconSize || b.Dy() != IconSize {
		t.Errorf("bounds = %v, want %dx%d", b, IconSize, IconSize)
	}

	// Corners are transparent, center is filled
	if _, _, _, a := img.At(0, 0).RGBA(); a != 0 {
		t.Error("corner should be transparent")
	}
	if _, _, _, a := img.At(IconSize/2, IconSize/2).RGBA(); a == 0 {
		t.Error("center should be filled")
	}
}

func TestIconColor(t *testing.T) {
	if got := IconColor(supervisor.StatePaused, "3400"); got != paused {
		t.Errorf("paused color = %v", got)
	}
	if got := IconColor(supervisor.StateTerminated, "3400"); got != stopped {
		t.Errorf("terminated color = %v", got)
	}
	if got := IconColor(supervisor.StateRunning, "1000"); got != warm {
		t.Errorf("1000K color = %v, want warm", got)
	}
	if got := IconColor(supervisor.StateRunning, "6500"); got != neutral {
		t.Errorf("6500K color = %v, want neutral", got)
	}
	if got := IconColor(supervisor.StateRunning, "bogus"); got != warm {
		t.Errorf("unparsable color = %v, want warm", got)
	}

	mid := IconColor(supervisor.StateRunning, "3750")
	if mid.G <= warm.G || mid.G >= neutral.G {
		t.Errorf("midpoint green = %d, want between %d and %d", mid.G, warm.G, neutral.G)
	}
}
