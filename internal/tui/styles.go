// Package tui provides an interactive terminal front-end for the daemon.
//
// The TUI uses Bubble Tea for the application framework and Lipgloss for styling.
// It shows:
// - Daemon state and the configured colors
// - A kelvin scale with the selected color
// - Color presets
// - Recent daemon output
package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/randomizedcoder/go-fluxgui/internal/process"
	"github.com/randomizedcoder/go-fluxgui/internal/supervisor"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	// Primary colors
	colorPrimary   = lipgloss.Color("#D97706") // Dark amber
	colorSecondary = lipgloss.Color("#06B6D4") // Cyan

	// Status colors
	colorSuccess = lipgloss.Color("#10B981") // Green
	colorWarning = lipgloss.Color("#F59E0B") // Amber
	colorError   = lipgloss.Color("#EF4444") // Red
	colorInfo    = lipgloss.Color("#3B82F6") // Blue

	// Neutral colors
	colorText      = lipgloss.Color("#E5E7EB") // Light gray
	colorTextMuted = lipgloss.Color("#9CA3AF") // Medium gray
	colorTextDim   = lipgloss.Color("#6B7280") // Dark gray
	colorBorder    = lipgloss.Color("#374151") // Border gray

	// Kelvin scale endpoints
	colorWarm = lipgloss.Color("#FF8A2B")
	colorCool = lipgloss.Color("#CFE3FF")
)

// =============================================================================
// Base Styles
// =============================================================================

var (
	mutedStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorTextDim)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Background(colorPrimary).
			Bold(true).
			Padding(0, 1).
			MarginBottom(1)

	sectionHeaderStyle = lipgloss.NewStyle().
				Foreground(colorSecondary).
				Bold(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true).
				BorderForeground(colorBorder)

	footerStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted).
			MarginTop(1)

	valueStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted).
			Width(16)

	presetStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted).
			PaddingRight(2)

	presetActiveStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true).
				PaddingRight(2)

	scaleWarmStyle = lipgloss.NewStyle().
			Foreground(colorWarm)

	scaleCoolStyle = lipgloss.NewStyle().
			Foreground(colorCool)

	scaleMarkerStyle = lipgloss.NewStyle().
				Foreground(colorText).
				Bold(true)
)

// =============================================================================
// Status Indicator Styles
// =============================================================================

var (
	statusOK = lipgloss.NewStyle().
			Foreground(colorSuccess).
			Bold(true)

	statusWarning = lipgloss.NewStyle().
			Foreground(colorWarning).
			Bold(true)

	statusError = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	statusInfo = lipgloss.NewStyle().
			Foreground(colorInfo).
			Bold(true)
)

// =============================================================================
// State Indicator
// =============================================================================

// GetStateStyle returns the style for a supervisor state.
func GetStateStyle(state supervisor.State) lipgloss.Style {
	switch state {
	case supervisor.StateRunning:
		return statusOK
	case supervisor.StatePaused:
		return statusWarning
	case supervisor.StateTerminated:
		return statusError
	default:
		return statusInfo
	}
}

// GetStateLabel returns a styled label for a supervisor state.
func GetStateLabel(state supervisor.State) string {
	return GetStateStyle(state).Render("● " + state.String())
}

// =============================================================================
// Helper Functions
// =============================================================================

// RenderKeyValue renders a label-value pair.
func RenderKeyValue(label string, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Left,
		labelStyle.Render(label+":"),
		valueStyle.Render(value),
	)
}

// scaleMax is the coolest color shown on the scale.
const scaleMax = 6500

// scalePosition maps a color onto [0,1] between MinColor and scaleMax.
func scalePosition(color string) float64 {
	k, err := strconv.Atoi(color)
	if err != nil {
		return 0
	}
	const lo, hi = process.MinColor, scaleMax
	switch {
	case k <= lo:
		return 0
	case k >= hi:
		return 1
	}
	return float64(k-lo) / float64(hi-lo)
}

// RenderScale renders a warm-to-cool bar with a marker at color.
func RenderScale(color string, width int) string {
	if width < 10 {
		width = 10
	}

	pos := int(scalePosition(color) * float64(width-1))

	var b strings.Builder
	for i := 0; i < width; i++ {
		switch {
		case i == pos:
			b.WriteString(scaleMarkerStyle.Render("▲"))
		case i < width/2:
			b.WriteString(scaleWarmStyle.Render("━"))
		default:
			b.WriteString(scaleCoolStyle.Render("━"))
		}
	}
	b.WriteString(mutedStyle.Render(fmt.Sprintf(" %sK", color)))
	return b.String()
}
