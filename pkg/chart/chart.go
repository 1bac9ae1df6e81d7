package chart

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/sherine-k/skyline/pkg/plot"
	"github.com/sherine-k/skyline/pkg/render"
	"github.com/sherine-k/skyline/pkg/simulation"
)

const (
	chartWidth  = 80
	chartHeight = 20
)

// Generator generates ASCII charts
type Generator struct {
	width  int
	height int
}

// NewGenerator creates a new chart generator
func NewGenerator() *Generator {
	return &Generator{
		width:  chartWidth,
		height: chartHeight,
	}
}

// shade picks the block character of a layer from its transparency
func shade(alpha float64) string {
	switch {
	case alpha < 0.45:
		return "░"
	case alpha < 0.75:
		return "▒"
	default:
		return "█"
	}
}

// GenerateSkylineChart generates an ASCII chart of every layer over time.
// Later layers are drawn over earlier ones.
func (g *Generator) GenerateSkylineChart(timePoints []simulation.TimePoint, alphas []float64) string {
	if len(timePoints) == 0 || len(timePoints[0].Values) == 0 {
		return "No data to display"
	}

	var sb strings.Builder

	// Header
	sb.WriteString("\n")
	sb.WriteString("Skyline\n")
	sb.WriteString(strings.Repeat("=", g.width))
	sb.WriteString("\n\n")

	maxValue := 0
	for _, tp := range timePoints {
		for _, v := range tp.Values {
			if v > maxValue {
				maxValue = v
			}
		}
	}

	// One row per unit when it fits, otherwise scale down
	rows := maxValue
	if rows > g.height {
		rows = g.height
	}
	if rows == 0 {
		rows = 1
	}
	perRow := float64(maxValue) / float64(rows)
	if perRow == 0 {
		perRow = 1
	}

	columns := g.width - 6

	for row := rows; row >= 1; row-- {
		// Y-axis label
		level := float64(row) * perRow
		sb.WriteString(fmt.Sprintf("%3d |", int(math.Round(level))))

		// Plot data points across time
		for x := 0; x < columns; x++ {
			pointIndex := int(float64(x) / float64(columns-1) * float64(len(timePoints)-1))
			if pointIndex >= len(timePoints) {
				pointIndex = len(timePoints) - 1
			}

			cell := " "
			for layer, v := range timePoints[pointIndex].Values {
				if float64(v) >= level-perRow/2 {
					cell = shade(alphaAt(alphas, layer))
				}
			}
			sb.WriteString(cell)
		}
		sb.WriteString("\n")
	}

	// X-axis
	sb.WriteString("    +")
	sb.WriteString(strings.Repeat("-", columns))
	sb.WriteString("\n")

	// X-axis labels at the start, middle and end of the time range
	labelLine := make([]rune, columns)
	for i := range labelLine {
		labelLine[i] = ' '
	}
	end := timePoints[len(timePoints)-1].Time
	for _, f := range []float64{0, 0.5, 1} {
		marker := []rune(fmt.Sprintf("%.1f", end*f))
		position := int(f * float64(columns))
		if position+len(marker) > columns {
			position = columns - len(marker)
		}
		for i, ch := range marker {
			if position+i >= 0 && position+i < columns {
				labelLine[position+i] = ch
			}
		}
	}
	sb.WriteString("     ")
	sb.WriteString(string(labelLine))
	sb.WriteString("\n")

	// Legend
	sb.WriteString("\n")
	sb.WriteString("Legend:\n")
	for layer := range timePoints[0].Values {
		alpha := alphaAt(alphas, layer)
		sb.WriteString(fmt.Sprintf("    %s - Layer %d (alpha %.2f)\n", shade(alpha), layer, alpha))
	}
	sb.WriteString("\n")

	return sb.String()
}

func alphaAt(alphas []float64, layer int) float64 {
	if layer < len(alphas) {
		return alphas[layer]
	}
	return 1
}

// GenerateSummary generates a summary of every layer
func (g *Generator) GenerateSummary(stats []simulation.LayerStats, seed uint64) string {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString("Layer Summary\n")
	sb.WriteString(strings.Repeat("=", g.width))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Seed: %d\n", seed))
	sb.WriteString(fmt.Sprintf("Layers: %d\n", len(stats)))
	for _, s := range stats {
		sb.WriteString(fmt.Sprintf("  - Layer %d: %d jumps, mean holding %.3f, mean state %.3f, max state %d, ends at %.3f\n",
			s.Layer, s.Jumps, s.MeanHolding, s.MeanState, s.MaxState, s.EndTime))
	}
	sb.WriteString("\n")

	return sb.String()
}

// GenerateDetailedTimeline generates a detailed timeline of jumps
func (g *Generator) GenerateDetailedTimeline(jumps []simulation.Jump, limit int) string {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString("Detailed Timeline")
	if limit > 0 && limit < len(jumps) {
		sb.WriteString(fmt.Sprintf(" (showing first %d jumps)", limit))
	}
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", g.width))
	sb.WriteString("\n\n")

	displayCount := len(jumps)
	if limit > 0 && limit < displayCount {
		displayCount = limit
	}

	for i := 0; i < displayCount; i++ {
		jump := jumps[i]
		sb.WriteString(fmt.Sprintf("[%9.4f] L%d #%-4d +%-8.4f -> %d\n",
			jump.Time,
			jump.Layer,
			jump.Index,
			jump.Holding,
			jump.State))
	}

	if limit > 0 && limit < len(jumps) {
		sb.WriteString(fmt.Sprintf("\n... and %d more jumps\n", len(jumps)-limit))
	}

	sb.WriteString("\n")

	return sb.String()
}

// Render writes the frame as an ASCII chart, so the terminal can be used
// like any other output format.
func (g *Generator) Render(frame render.Frame, w io.Writer) error {
	alphas := make([]float64, len(frame.Layers))
	for i, l := range frame.Layers {
		alphas[i] = l.Alpha
	}

	timePoints := SampleFrame(frame, g.width-6)
	if _, err := io.WriteString(w, g.GenerateSkylineChart(timePoints, alphas)); err != nil {
		return fmt.Errorf("failed to write chart: %w", err)
	}
	return nil
}

// SampleFrame samples the drawn paths of a frame at evenly spaced times.
func SampleFrame(frame render.Frame, samples int) []simulation.TimePoint {
	if len(frame.Layers) == 0 {
		return []simulation.TimePoint{}
	}
	if samples < 2 {
		samples = 2
	}

	points := make([]simulation.TimePoint, samples)
	for i := range points {
		t := frame.Viewport.TMax * float64(i) / float64(samples-1)
		values := make([]int, len(frame.Layers))
		for j, l := range frame.Layers {
			values[j] = valueOnPath(l.Points, t)
		}
		points[i] = simulation.TimePoint{Time: t, Values: values}
	}
	return points
}

// valueOnPath returns the height of the last path point at or before t.
func valueOnPath(points []plot.Point, t float64) int {
	value := 0.0
	for _, p := range points {
		if p.T > t {
			break
		}
		value = p.Y
	}
	return int(math.Round(value))
}
