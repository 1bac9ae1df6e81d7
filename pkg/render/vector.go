package render

import (
	"fmt"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"

	"github.com/sherine-k/skyline/pkg/plot"
)

// Vector writes frames as SVG documents.
type Vector struct {
	Title string
}

// NewVector creates an SVG renderer
func NewVector() *Vector {
	return &Vector{Title: "skyline"}
}

// Render writes the frame as SVG
func (v *Vector) Render(frame Frame, w io.Writer) error {
	if frame.Style.Width <= 0 || frame.Style.Height <= 0 {
		return fmt.Errorf("invalid canvas size %dx%d", frame.Style.Width, frame.Style.Height)
	}

	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	canvas.Start(frame.Style.Width, frame.Style.Height)
	canvas.Title(v.Title)
	if frame.RunID != "" {
		canvas.Desc("run " + frame.RunID)
	}
	canvas.Rect(0, 0, frame.Style.Width, frame.Style.Height, "fill:"+frame.Style.Background)

	area := frame.Area()
	m := frame.Mapper()

	if frame.Style.Grid {
		canvas.Gstyle("stroke:white;stroke-width:1")
		for _, t := range plot.Ticks(m.View.TMax, gridTicks) {
			x, _ := m.Map(plot.Point{T: t})
			canvas.Line(round(x), round(area.Y), round(x), round(area.Y+area.H))
		}
		for _, val := range plot.Ticks(m.View.YMax, gridTicks/2) {
			_, y := m.Map(plot.Point{Y: val})
			canvas.Line(round(area.X), round(y), round(area.X+area.W), round(y))
		}
		canvas.Gend()
	}

	canvas.Gstyle("fill:none;stroke-linejoin:miter;stroke-linecap:butt")
	for _, layer := range frame.Layers {
		if len(layer.Points) < 2 {
			continue
		}
		xs := make([]int, len(layer.Points))
		ys := make([]int, len(layer.Points))
		for i, p := range layer.Points {
			x, y := m.Map(p)
			xs[i], ys[i] = round(x), round(y)
		}
		canvas.Polyline(xs, ys, fmt.Sprintf("stroke:%s;stroke-opacity:%.3g;stroke-width:%.3g",
			layer.Color, layer.Alpha, layer.LineWidth))
	}
	canvas.Gend()

	if frame.Caption != "" {
		canvas.Text(round(area.X+area.W), round(area.Y+area.H+float64(frame.Style.Padding)/2),
			frame.Caption,
			fmt.Sprintf("text-anchor:end;dominant-baseline:middle;font-family:sans-serif;font-size:%dpx;fill:#4d4d4d", captionSize))
	}

	canvas.End()
	return ew.err
}

func round(f float64) int {
	return int(math.Round(f))
}

// errWriter remembers the first write error; svgo does not report them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	if err != nil {
		e.err = fmt.Errorf("failed to write svg: %w", err)
	}
	return n, err
}
