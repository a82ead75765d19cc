package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/randomizedcoder/go-fluxgui/internal/controller"
	"github.com/randomizedcoder/go-fluxgui/internal/process"
	"github.com/randomizedcoder/go-fluxgui/internal/settings"
	"github.com/randomizedcoder/go-fluxgui/internal/supervisor"
)

// ColorStep is the Kelvin change per +/- key press.
const ColorStep = 100

// =============================================================================
// Messages
// =============================================================================

// TickMsg is sent periodically to update the display.
type TickMsg time.Time

// OpDoneMsg reports the completion of an operation started from a key press.
type OpDoneMsg struct {
	Op  string
	Err error
}

// QuitMsg signals the TUI should exit.
type QuitMsg struct{}

// =============================================================================
// Model
// =============================================================================

// Controller is the subset of controller.Controller the TUI drives.
type Controller interface {
	TogglePause(ctx context.Context) error
	PreviewColor(ctx context.Context, color string) error
	SetColor(ctx context.Context, color string) error
	Stop(ctx context.Context) (bool, error)
	State() supervisor.State
	Color() string
	Settings() settings.Settings
}

// LineSource provides recent daemon output.
type LineSource interface {
	RecentLines(n int) []string
}

// Model represents the TUI state.
type Model struct {
	// Configuration
	ctx         context.Context
	ctrl        Controller
	lines       LineSource
	daemon      string
	metricsAddr string

	// Current state
	state     supervisor.State
	color     string
	selected  string
	current   settings.Settings
	pending   string // operation in flight, empty when idle
	status    string
	statusErr bool
	startTime time.Time

	// Display options
	width  int
	height int

	quitting bool
}

// Config holds TUI configuration.
type Config struct {
	Context     context.Context
	Controller  Controller
	Lines       LineSource
	Daemon      string
	MetricsAddr string
}

// New creates a new TUI model.
func New(cfg Config) Model {
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}
	m := Model{
		ctx:         ctx,
		ctrl:        cfg.Controller,
		lines:       cfg.Lines,
		daemon:      cfg.Daemon,
		metricsAddr: cfg.MetricsAddr,
		startTime:   time.Now(),
		width:       80,
		height:      24,
	}
	m.refresh()
	m.selected = m.color
	return m
}

// =============================================================================
// Bubble Tea Interface
// =============================================================================

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case TickMsg:
		m.refresh()
		return m, tickCmd()

	case OpDoneMsg:
		m.pending = ""
		m.refresh()
		switch {
		case msg.Err == nil:
			m.setStatus(msg.Op+" done", false)
		case errors.Is(msg.Err, supervisor.ErrBusy):
			m.setStatus(msg.Op+": busy, try again", true)
		default:
			m.setStatus(fmt.Sprintf("%s: %v", msg.Op, msg.Err), true)
		}
		return m, nil

	case QuitMsg:
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit

	case "+", "=", "right", "l":
		m.selected = process.StepColor(m.selected, ColorStep)
		return m, nil

	case "-", "_", "left", "h":
		m.selected = process.StepColor(m.selected, -ColorStep)
		return m, nil

	case "1", "2", "3", "4", "5":
		idx := int(key[0] - '1')
		if idx < len(controller.Presets) {
			m.selected = controller.Presets[idx].Color
		}
		return m, nil

	case "enter":
		color := m.selected
		return m.run("set color", func(ctx context.Context) error {
			return m.ctrl.SetColor(ctx, color)
		})

	case "v":
		color := m.selected
		return m.run("preview", func(ctx context.Context) error {
			return m.ctrl.PreviewColor(ctx, color)
		})

	case "p", " ", "space":
		return m.run("pause", m.ctrl.TogglePause)

	case "s":
		return m.run("stop", func(ctx context.Context) error {
			ok, err := m.ctrl.Stop(ctx)
			if err == nil && !ok {
				err = errors.New("daemon did not exit")
			}
			return err
		})

	case "r":
		m.refresh()
		return m, nil
	}

	return m, nil
}

// run starts op off the UI goroutine. Only one operation is in flight.
func (m Model) run(name string, op func(ctx context.Context) error) (tea.Model, tea.Cmd) {
	if m.pending != "" {
		m.setStatus(m.pending+" in progress", true)
		return m, nil
	}
	m.pending = name
	m.setStatus(name+"...", false)
	ctx := m.ctx
	return m, func() tea.Msg {
		return OpDoneMsg{Op: name, Err: op(ctx)}
	}
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.renderView()
}

// =============================================================================
// Commands
// =============================================================================

// tickCmd returns a command that sends a tick after 500ms.
func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// =============================================================================
// Helpers
// =============================================================================

func (m *Model) refresh() {
	if m.ctrl == nil {
		return
	}
	m.state = m.ctrl.State()
	m.color = m.ctrl.Color()
	m.current = m.ctrl.Settings()
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

// =============================================================================
// Accessors
// =============================================================================

// Elapsed returns the time since the TUI started.
func (m Model) Elapsed() time.Duration {
	return time.Since(m.startTime)
}

// Selected returns the color chosen with the +/- and preset keys.
func (m Model) Selected() string {
	return m.selected
}

// Pending returns the name of the operation in flight, if any.
func (m Model) Pending() string {
	return m.pending
}

// Status returns the last status line and whether it reports an error.
func (m Model) Status() (string, bool) {
	return m.status, m.statusErr
}
