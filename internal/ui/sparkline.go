package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// sparklineBlocks are the eight block characters used as vertical levels,
// lowest to highest.
var sparklineBlocks = []rune("▁▂▃▄▅▆▇█")

// Warning and critical cutoffs for sparkline coloring. The dashboard cards
// color their metrics at the same values.
const (
	sparklineWarn = 70
	sparklineCrit = 90
)

// RenderSparkline renders a percentage series as a single row of block
// characters on a fixed 0-100 scale, so a calm series reads as calm rather
// than being stretched to its own min/max. The most recent width points are
// shown; a series still shorter than width grows in from the right. The
// whole line takes the color of the newest value.
func RenderSparkline(data []float64, width int) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}

	if len(data) > width {
		data = data[len(data)-width:]
	}

	var sb strings.Builder
	sb.Grow(width * 3) // block characters are 3 bytes in UTF-8

	// Left padding keeps the newest point pinned to the right edge.
	sb.WriteString(strings.Repeat(" ", width-len(data)))

	top := len(sparklineBlocks) - 1
	for _, v := range data {
		level := int(v / 100 * float64(top))
		if level < 0 {
			level = 0
		}
		if level > top {
			level = top
		}
		sb.WriteRune(sparklineBlocks[level])
	}

	color := levelColor(data[len(data)-1])
	return lipgloss.NewStyle().Foreground(color).Render(sb.String())
}

// levelColor maps a percentage to the semantic palette.
func levelColor(percent float64) lipgloss.Color {
	switch {
	case percent >= sparklineCrit:
		return ColorError
	case percent >= sparklineWarn:
		return ColorWarning
	default:
		return ColorSuccess
	}
}
