package metrics

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// FormatSummary formats the session summary printed at exit.
func FormatSummary(s Summary, daemon string) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString("═══════════════════════════════════════════════════════════════\n")
	b.WriteString("                   go-fluxgui Session Summary\n")
	b.WriteString("═══════════════════════════════════════════════════════════════\n\n")

	fmt.Fprintf(&b, "Daemon:                 %s\n", daemon)
	fmt.Fprintf(&b, "Session Duration:       %s\n", FormatDuration(s.Duration))
	fmt.Fprintf(&b, "Final State:            %s\n\n", s.State)

	fmt.Fprintf(&b, "Daemon Launches:        %d\n", s.Spawns)
	fmt.Fprintf(&b, "Color Changes:          %d\n", s.ColorChanges)
	fmt.Fprintf(&b, "Previews:               %d\n", s.Previews)
	if s.StraysKilled > 0 {
		fmt.Fprintf(&b, "Stray Instances Killed: %d\n", s.StraysKilled)
	}
	if s.Spawns > 0 {
		fmt.Fprintf(&b, "Launch Latency:         p50 %s, p99 %s\n", roundDuration(s.SpawnP50), roundDuration(s.SpawnP99))
	}

	if len(s.ExitCodes) > 0 {
		b.WriteString("\nExit Codes:\n")
		codes := make([]int, 0, len(s.ExitCodes))
		for code := range s.ExitCodes {
			codes = append(codes, code)
		}
		sort.Ints(codes)
		for _, code := range codes {
			fmt.Fprintf(&b, "  %-4d %-8s %d\n", code, exitCategory(code), s.ExitCodes[code])
		}
	}

	if s.ShutdownFailures > 0 {
		fmt.Fprintf(&b, "\n⚠️  %d shutdown attempt(s) failed; the display may not be neutral.\n", s.ShutdownFailures)
	}

	b.WriteString("\n═══════════════════════════════════════════════════════════════\n")
	return b.String()
}

// FormatDuration formats a duration as HH:MM:SS.
func FormatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func roundDuration(d time.Duration) time.Duration {
	switch {
	case d >= time.Second:
		return d.Round(10 * time.Millisecond)
	case d >= time.Millisecond:
		return d.Round(10 * time.Microsecond)
	default:
		return d.Round(time.Microsecond)
	}
}
