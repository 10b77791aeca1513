package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type styleSet struct {
	canvas    lipgloss.Style
	panel     lipgloss.Style
	header    lipgloss.Style
	label     lipgloss.Style
	value     lipgloss.Style
	running   lipgloss.Style
	paused    lipgloss.Style
	recording lipgloss.Style
	errText   lipgloss.Style
	graph     lipgloss.Style
	help      lipgloss.Style
}

func (t Theme) styles() styleSet {
	return styleSet{
		canvas: lipgloss.NewStyle().Foreground(t.Orbit).Padding(1, 2),
		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(1, 2).
			Width(46),
		header: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Text).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(t.Border),
		label:     lipgloss.NewStyle().Foreground(t.Muted).Width(12),
		value:     lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		running:   lipgloss.NewStyle().Bold(true).Foreground(t.Running),
		paused:    lipgloss.NewStyle().Bold(true).Foreground(t.Paused),
		recording: lipgloss.NewStyle().Bold(true).Foreground(t.Error).Blink(true),
		errText:   lipgloss.NewStyle().Foreground(t.Error),
		graph:     lipgloss.NewStyle().Foreground(t.Body).Padding(1, 0),
		help:      lipgloss.NewStyle().Foreground(t.Muted).Italic(true).MarginTop(1),
	}
}

// SparklineChart renders values as a one-line bar chart of the given width.
func SparklineChart(values []float64, width int) string {
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	step := len(values) / width
	if step < 1 {
		step = 1
	}
	var b strings.Builder
	for i := 0; i < width && i*step < len(values); i++ {
		idx := int((values[i*step] - lo) / rng * float64(len(chars)-1))
		b.WriteRune(chars[max(0, min(idx, len(chars)-1))])
	}
	return b.String()
}
