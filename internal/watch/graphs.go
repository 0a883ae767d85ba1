package watch

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Braille character rendering for high-resolution terminal graphs.
//
// Braille patterns use a 2x4 dot matrix per character:
//
//	  Col 0  Col 1
//	Row 0:   ⠁      ⠈     (dots 1, 4)
//	Row 1:   ⠂      ⠐     (dots 2, 5)
//	Row 2:   ⠄      ⠠     (dots 3, 6)
//	Row 3:   ⡀      ⢀     (dots 7, 8)
//
// Unicode braille starts at U+2800 (empty) and uses bit patterns:
// bit 0 = dot 1, bit 1 = dot 2, bit 2 = dot 3, bit 3 = dot 4,
// bit 4 = dot 5, bit 5 = dot 6, bit 6 = dot 7, bit 7 = dot 8

const brailleBase = '⠀'

// brailleDots maps row/column to the bit offset for the braille pattern.
// [row][col] where row is 0-3 (top to bottom) and col is 0-1.
var brailleDots = [4][2]uint8{
	{0, 3}, // Row 0: dots 1 and 4
	{1, 4}, // Row 1: dots 2 and 5
	{2, 5}, // Row 2: dots 3 and 6
	{6, 7}, // Row 3: dots 7 and 8
}

// seriesRange picks the plot bounds for a series. Percentage series use a
// fixed 0-100 scale so a calm chart stays visually calm; unit series
// (MB/s, MHz, watts) autoscale to their own min/max.
func seriesRange(data []float64, percentage bool) (minVal, maxVal float64) {
	if percentage || len(data) == 0 {
		return 0, 100
	}

	minVal, maxVal = data[0], data[0]
	for _, v := range data {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	return minVal, maxVal
}

// normalize converts a value to the 0-1 range given min/max bounds.
func normalize(val, minVal, maxVal float64) float64 {
	if maxVal > minVal {
		return (val - minVal) / (maxVal - minVal)
	}
	return 0.5
}

// clampInt clamps an integer to the range [0, maxVal].
func clampInt(val, maxVal int) int {
	if val < 0 {
		return 0
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// BrailleSparkline renders a series as a braille graph. Each character
// holds 2 horizontal data points at 4 vertical levels, so the resolution
// beats block characters considerably.
//
// Percentage series color each column by its peak value through the
// warning/critical thresholds; unit series render in baseColor on an
// autoscaled range. Series shorter than the display width right-align, so
// a window that is still filling grows in from the right.
func BrailleSparkline(data []float64, width, height int, percentage bool, baseColor lipgloss.Color) string {
	if len(data) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	minVal, maxVal := seriesRange(data, percentage)
	totalDots := height * 4
	targetPoints := width * 2

	// Only downsample if we have more data than display width.
	resampled := data
	if len(data) > targetPoints {
		resampled = downsample(data, targetPoints)
	}

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = make([]rune, width)
		for j := range grid[i] {
			grid[i][j] = brailleBase
		}
	}

	// Track the max value per character column for coloring.
	colMax := make([]float64, width)

	horizOffset := targetPoints - len(resampled)
	if horizOffset < 0 {
		horizOffset = 0
	}

	for i, val := range resampled {
		normalized := normalize(val, minVal, maxVal)
		dotHeight := clampInt(int(normalized*float64(totalDots)), totalDots)

		charCol := (i + horizOffset) / 2
		if charCol >= width {
			continue
		}

		if val > colMax[charCol] {
			colMax[charCol] = val
		}

		// Which sub-column within the braille char (0 or 1)
		subCol := (i + horizOffset) % 2

		// Fill dots from bottom up
		for dot := 0; dot < dotHeight; dot++ {
			row := height - 1 - (dot / 4)
			if row < 0 {
				continue
			}
			subRow := 3 - (dot % 4)
			bitOffset := brailleDots[subRow][subCol]
			grid[row][charCol] |= rune(1 << bitOffset)
		}
	}

	var lines []string
	for _, row := range grid {
		var b strings.Builder
		for colIdx, char := range row {
			color := baseColor
			if percentage {
				color = MetricColor(colMax[colIdx])
			}
			style := lipgloss.NewStyle().Foreground(color).Background(ColorSurfaceBg)
			b.WriteString(style.Render(string(char)))
		}
		lines = append(lines, b.String())
	}

	return strings.Join(lines, "\n")
}

// GradientBar renders a horizontal bar whose fill colors shift green to
// amber to red along its length. Shown while a series is still too short
// to graph.
func GradientBar(width int, percent float64) string {
	if width < 1 {
		width = 1
	}

	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	filled := int(percent / 100.0 * float64(width))
	if filled > width {
		filled = width
	}

	var b strings.Builder
	for i := 0; i < width; i++ {
		if i < filled {
			// Color by position in the bar for the gradient effect.
			posPercent := float64(i+1) / float64(width) * 100
			style := lipgloss.NewStyle().Foreground(MetricColor(posPercent)).Background(ColorSurfaceBg)
			b.WriteString(style.Render("█"))
		} else {
			style := lipgloss.NewStyle().Foreground(ColorTextMuted).Background(ColorSurfaceBg)
			b.WriteString(style.Render("░"))
		}
	}

	return b.String()
}

// downsample compresses a series to targetSize points using max-based
// bucketing, so short spikes survive the compression.
func downsample(data []float64, targetSize int) []float64 {
	if len(data) == 0 || targetSize <= 0 {
		return nil
	}
	if len(data) <= targetSize {
		return data
	}

	result := make([]float64, targetSize)
	bucketSize := float64(len(data)) / float64(targetSize)

	for i := 0; i < targetSize; i++ {
		start := int(float64(i) * bucketSize)
		end := int(float64(i+1) * bucketSize)
		if end > len(data) {
			end = len(data)
		}
		if start >= end {
			start = end - 1
		}
		if start < 0 {
			start = 0
		}

		maxVal := data[start]
		for j := start + 1; j < end; j++ {
			if data[j] > maxVal {
				maxVal = data[j]
			}
		}
		result[i] = maxVal
	}

	return result
}
