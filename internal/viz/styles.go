package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	canvas      lipgloss.Style
	stats       lipgloss.Style
	header      lipgloss.Style
	label       lipgloss.Style
	value       lipgloss.Style
	activeParam lipgloss.Style
	graph       lipgloss.Style
	help        lipgloss.Style
	running     lipgloss.Style
	paused      lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		canvas:      lipgloss.NewStyle().Padding(1, 2),
		stats:       lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(t.Border).Padding(1, 2).Width(panelWidth),
		header:      lipgloss.NewStyle().Foreground(t.Primary).Bold(true).MarginBottom(1),
		label:       lipgloss.NewStyle().Foreground(t.Muted).Width(12),
		value:       lipgloss.NewStyle().Foreground(t.Text),
		activeParam: lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		graph:       lipgloss.NewStyle().Foreground(t.Primary).Padding(1, 0),
		help:        lipgloss.NewStyle().Foreground(t.Border).MarginTop(1),
		running:     lipgloss.NewStyle().Bold(true).Foreground(t.Success),
		paused:      lipgloss.NewStyle().Bold(true).Foreground(t.Warning),
	}
}

// AnimatedSpinner returns frame of animated spinner
func AnimatedSpinner(frame int) string {
	spinners := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	return spinners[frame%len(spinners)]
}

// ParamBar renders where v sits in [lo, hi] as a width-cell bar.
func ParamBar(v, lo, hi float64, width int) string {
	ratio := 0.0
	if hi > lo {
		ratio = (v - lo) / (hi - lo)
	}
	ratio = max(0, min(1, ratio))
	filled := int(ratio * float64(width))
	return "[" + strings.Repeat("=", filled) + strings.Repeat("-", width-filled) + "]"
}
