// Package plot turns simulated realizations into drawable step paths in a
// shared coordinate system.
package plot

import (
	"math"

	"github.com/sherine-k/skyline/pkg/simulation"
)

// Headroom is the factor applied to the largest state to get the top of
// the value axis.
const Headroom = 1.1

// Point is a position in data coordinates.
type Point struct {
	T, Y float64
}

// StepMode selects where the step happens relative to each jump time.
type StepMode int

const (
	// StepPre holds States[i] on (JumpTimes[i-1], JumpTimes[i]]: the path
	// rises first, then runs to the next jump time.
	StepPre StepMode = iota
	// StepPost holds States[i] on [JumpTimes[i], JumpTimes[i+1]): the path
	// runs to the next jump time first, then rises.
	StepPost
)

// StepPath returns the polyline of a realization drawn as a step function.
func StepPath(r simulation.Realization, mode StepMode) []Point {
	n := r.Len()
	if n == 0 {
		return []Point{}
	}

	points := make([]Point, 0, 2*n-1)
	points = append(points, Point{T: r.JumpTimes[0], Y: float64(r.States[0])})
	for i := 1; i < n; i++ {
		switch mode {
		case StepPost:
			points = append(points,
				Point{T: r.JumpTimes[i], Y: float64(r.States[i-1])},
				Point{T: r.JumpTimes[i], Y: float64(r.States[i])})
		default:
			points = append(points,
				Point{T: r.JumpTimes[i-1], Y: float64(r.States[i])},
				Point{T: r.JumpTimes[i], Y: float64(r.States[i])})
		}
	}

	return points
}

// Viewport is the visible data range. The lower bounds are always zero.
type Viewport struct {
	TMax float64
	YMax float64
}

// Fit returns the viewport shared by all realizations: the time axis ends
// at the smallest last jump time, the value axis leaves Headroom above the
// largest state. Degenerate ranges fall back to 1.
func Fit(realizations []simulation.Realization) Viewport {
	tmax := simulation.CommonEndTime(realizations)
	if !(tmax > 0) || math.IsInf(tmax, 0) {
		tmax = 1
	}

	ymax := 0
	for _, r := range realizations {
		if m := r.MaxState(); m > ymax {
			ymax = m
		}
	}
	y := float64(ymax) * Headroom
	if y <= 0 {
		y = 1
	}

	return Viewport{TMax: tmax, YMax: y}
}

// Clip cuts a path at time tmax. A segment crossing tmax is shortened to
// end exactly on it; everything after is dropped.
func Clip(points []Point, tmax float64) []Point {
	out := make([]Point, 0, len(points))
	for i, p := range points {
		if p.T <= tmax {
			out = append(out, p)
			continue
		}
		if i > 0 {
			prev := points[i-1]
			if prev.T < tmax {
				f := (tmax - prev.T) / (p.T - prev.T)
				out = append(out, Point{T: tmax, Y: prev.Y + f*(p.Y-prev.Y)})
			}
		}
		break
	}
	return out
}

// Rect is a pixel rectangle.
type Rect struct {
	X, Y, W, H float64
}

// Mapper converts data coordinates to pixel coordinates inside a Rect,
// with the value axis pointing up.
type Mapper struct {
	View Viewport
	Area Rect
}

// Map returns the pixel position of p.
func (m Mapper) Map(p Point) (x, y float64) {
	x = m.Area.X + p.T/m.View.TMax*m.Area.W
	y = m.Area.Y + m.Area.H - p.Y/m.View.YMax*m.Area.H
	return x, y
}

// Inset shrinks a canvas of the given size by padding on every side.
func Inset(width, height int, padding int) Rect {
	p := float64(padding)
	return Rect{X: p, Y: p, W: float64(width) - 2*p, H: float64(height) - 2*p}
}

// Ticks returns evenly spaced grid positions in (0, limit], roughly n of
// them, on a 1/2/5 progression.
func Ticks(limit float64, n int) []float64 {
	if !(limit > 0) || n <= 0 {
		return []float64{}
	}
	raw := limit / float64(n)
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	step := mag
	for _, f := range []float64{1, 2, 5, 10} {
		step = f * mag
		if step >= raw {
			break
		}
	}

	ticks := []float64{}
	for k := 1; float64(k)*step <= limit*(1+1e-9); k++ {
		ticks = append(ticks, float64(k)*step)
	}
	return ticks
}
