// Package stats contains statistics calculations and plot/report
// rendering for metering data.
package stats

import (
	"fmt"
	"math"
	"strings"
)

const (
	defaultPlotHeight = 8
	minPlotWidth      = 10
	axisSeparator     = "┤"
)

// braille cells pack 2x4 dots; one plot column is two dot columns.
const (
	dotsPerCellX = 2
	dotsPerCellY = 4
)

// Plot renders a single series as a braille line chart with a value axis.
// The vertical range is [0, max(values)] so magnitudes stay comparable
// across frames; an all-zero series renders as a flat floor line.
type Plot struct {
	Width  int // columns of plot area, excluding the axis
	Height int // rows
}

// Render draws values as a string of Height lines. Values are resampled
// to the plot width; consecutive points are connected.
func (p Plot) Render(values []float64) string {
	width := p.Width
	if width < minPlotWidth {
		width = minPlotWidth
	}
	height := p.Height
	if height <= 0 {
		height = defaultPlotHeight
	}

	maxVal := 0.0
	for _, v := range values {
		if v > maxVal {
			maxVal = v
		}
	}

	cells := make([][]uint8, height)
	for y := range cells {
		cells[y] = make([]uint8, width)
	}

	resampled := resample(values, width)
	dotRows := height * dotsPerCellY
	prevX, prevY := -1, -1
	for x, v := range resampled {
		row := dotRows - 1
		if maxVal > 0 {
			pos := v / maxVal
			row = int(math.Round((1 - pos) * float64(dotRows-1)))
		}
		if row < 0 {
			row = 0
		}
		if row >= dotRows {
			row = dotRows - 1
		}
		px := x * dotsPerCellX
		if prevX >= 0 {
			connect(prevX, prevY, px, row, func(dx, dy int) {
				setDot(cells, dx, dy)
			})
		} else {
			setDot(cells, px, row)
		}
		prevX, prevY = px, row
	}

	labels := axisLabels(maxVal, height)
	labelWidth := 0
	for _, l := range labels {
		if len(l) > labelWidth {
			labelWidth = len(l)
		}
	}

	var b strings.Builder
	for y := 0; y < height; y++ {
		fmt.Fprintf(&b, "%*s%s", labelWidth, labels[y], axisSeparator)
		for x := 0; x < width; x++ {
			b.WriteRune(rune(0x2800 + int(cells[y][x])))
		}
		if y < height-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// axisLabels places the range maximum on the top row, its midpoint in the
// middle, and zero at the bottom.
func axisLabels(maxVal float64, height int) []string {
	labels := make([]string, height)
	if height == 0 {
		return labels
	}
	labels[0] = formatAxisValue(maxVal)
	labels[height-1] = formatAxisValue(0)
	if height > 2 {
		labels[height/2] = formatAxisValue(maxVal / 2)
	}
	return labels
}

func formatAxisValue(v float64) string {
	switch {
	case v == 0:
		return "0"
	case v >= 100:
		return fmt.Sprintf("%.0f", v)
	case v >= 1:
		return fmt.Sprintf("%.1f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

// resample stretches or shrinks values to exactly width samples, using
// bucket means when shrinking and linear interpolation when stretching.
func resample(values []float64, width int) []float64 {
	if len(values) == 0 || width <= 0 {
		return nil
	}
	out := make([]float64, width)
	switch {
	case len(values) == width:
		copy(out, values)
	case len(values) > width:
		for i := 0; i < width; i++ {
			start := i * len(values) / width
			end := (i + 1) * len(values) / width
			if end <= start {
				end = start + 1
			}
			var sum float64
			for _, v := range values[start:end] {
				sum += v
			}
			out[i] = sum / float64(end-start)
		}
	case len(values) == 1:
		for i := range out {
			out[i] = values[0]
		}
	default:
		for i := 0; i < width; i++ {
			pos := float64(i) * float64(len(values)-1) / float64(width-1)
			idx := int(pos)
			if idx >= len(values)-1 {
				out[i] = values[len(values)-1]
				continue
			}
			frac := pos - float64(idx)
			out[i] = values[idx]*(1-frac) + values[idx+1]*frac
		}
	}
	return out
}

// connect draws a dot line between two points (Bresenham).
func connect(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := x1 - x0
	if dx < 0 {
		dx = -dx
	}
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := y1 - y0
	if dy > 0 {
		dy = -dy
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			if x0 == x1 {
				return
			}
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			if y0 == y1 {
				return
			}
			err += dx
			y0 += sy
		}
	}
}

func setDot(cells [][]uint8, x, y int) {
	if x < 0 || y < 0 {
		return
	}
	cellY := y / dotsPerCellY
	cellX := x / dotsPerCellX
	if cellY >= len(cells) || cellX >= len(cells[cellY]) {
		return
	}
	cells[cellY][cellX] |= dotMask(x%dotsPerCellX, y%dotsPerCellY)
}

func dotMask(x, y int) uint8 {
	masks := [dotsPerCellX][dotsPerCellY]uint8{
		{0x01, 0x02, 0x04, 0x40},
		{0x08, 0x10, 0x20, 0x80},
	}
	return masks[x][y]
}
