package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/randomizedcoder/go-fluxgui/internal/controller"
)

// outputLines is the number of daemon output lines shown.
const outputLines = 6

// =============================================================================
// Main View Rendering
// =============================================================================

func (m Model) renderView() string {
	sections := []string{
		m.renderHeader(),
		m.renderColors(),
		m.renderPresets(),
	}
	if m.lines != nil {
		sections = append(sections, m.renderOutput())
	}
	sections = append(sections, m.renderFooter())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// =============================================================================
// Header
// =============================================================================

func (m Model) renderHeader() string {
	header := fmt.Sprintf(
		" go-fluxgui │ %s │ %s │ Elapsed: %s ",
		m.daemon,
		GetStateLabel(m.state),
		formatDuration(m.Elapsed()),
	)
	return headerStyle.Width(m.width).Render(header)
}

// =============================================================================
// Colors
// =============================================================================

func (m Model) renderColors() string {
	rows := []string{
		sectionHeaderStyle.Render("Color"),
		RenderKeyValue("Night color", formatColor(m.color)),
		RenderKeyValue("Pause color", formatColor(m.current.PauseColor)),
		RenderKeyValue("Location", formatLocation(m.current.Latitude, m.current.Longitude, m.current.Zipcode)),
		RenderKeyValue("Selected", formatColor(m.selected)),
		RenderScale(m.selected, m.scaleWidth()),
	}
	return boxStyle.Width(m.width - 2).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m Model) scaleWidth() int {
	w := m.width - 16
	if w > 60 {
		w = 60
	}
	return w
}

// =============================================================================
// Presets
// =============================================================================

func (m Model) renderPresets() string {
	items := make([]string, 0, len(controller.Presets))
	for i, p := range controller.Presets {
		label := fmt.Sprintf("%d %s", i+1, p.Name)
		if p.Color == m.selected {
			items = append(items, presetActiveStyle.Render(label))
		} else {
			items = append(items, presetStyle.Render(label))
		}
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		sectionHeaderStyle.Render("Presets"),
		lipgloss.JoinHorizontal(lipgloss.Left, items...),
	)
	return boxStyle.Width(m.width - 2).Render(content)
}

// =============================================================================
// Daemon Output
// =============================================================================

func (m Model) renderOutput() string {
	lines := m.lines.RecentLines(outputLines)
	rows := []string{sectionHeaderStyle.Render("Daemon output")}
	if len(lines) == 0 {
		rows = append(rows, dimStyle.Render("(no output)"))
	}
	for _, l := range lines {
		rows = append(rows, dimStyle.Render(truncate(l, m.width-6)))
	}
	return boxStyle.Width(m.width - 2).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// =============================================================================
// Footer
// =============================================================================

func (m Model) renderFooter() string {
	keys := "+/- adjust │ 1-5 preset │ enter apply │ v preview │ p pause │ s stop │ q quit"
	if m.metricsAddr != "" {
		keys += " │ metrics " + m.metricsAddr
	}

	lines := []string{keys}
	if m.status != "" {
		if m.statusErr {
			lines = append(lines, statusError.Render(m.status))
		} else {
			lines = append(lines, statusInfo.Render(m.status))
		}
	}
	return footerStyle.Render(strings.Join(lines, "\n"))
}

// =============================================================================
// Formatting Helpers
// =============================================================================

func formatColor(color string) string {
	if color == "" {
		return "-"
	}
	name := controller.PresetName(color)
	if name == color+"K" {
		return name
	}
	return fmt.Sprintf("%sK (%s)", color, name)
}

func formatLocation(lat, lon, zip string) string {
	switch {
	case lat != "" && lon != "":
		return lat + ", " + lon
	case lat != "":
		return lat
	case zip != "":
		return "zip " + zip
	default:
		return "-"
	}
}

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func truncate(s string, n int) string {
	if n < 4 || len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
