// Package render draws skyline frames. Each output format is a Renderer;
// callers pick one and hand it a Frame.
package render

import (
	"io"

	"github.com/sherine-k/skyline/pkg/config"
	"github.com/sherine-k/skyline/pkg/plot"
	"github.com/sherine-k/skyline/pkg/simulation"
)

// Renderer writes one frame in some output format.
type Renderer interface {
	Render(frame Frame, w io.Writer) error
}

// Style holds canvas settings shared by every frame of a scene.
type Style struct {
	Width      int
	Height     int
	Background string
	Grid       bool
	Padding    int
}

// Layer is one styled path ready to draw.
type Layer struct {
	Points    []plot.Point
	Color     string
	Alpha     float64
	LineWidth float64
}

// Frame is everything a renderer needs for one picture.
type Frame struct {
	Style    Style
	Viewport plot.Viewport
	Layers   []Layer
	Caption  string
	RunID    string
}

// Area returns the pixel rectangle the layers are drawn in.
func (f Frame) Area() plot.Rect {
	return plot.Inset(f.Style.Width, f.Style.Height, f.Style.Padding)
}

// Mapper returns the data to pixel mapping of the frame.
func (f Frame) Mapper() plot.Mapper {
	return plot.Mapper{View: f.Viewport, Area: f.Area()}
}

// StyleFor extracts the canvas style of a scene.
func StyleFor(scene *config.Scene) Style {
	return Style{
		Width:      scene.Canvas.Width,
		Height:     scene.Canvas.Height,
		Background: scene.Canvas.Background,
		Grid:       scene.Canvas.Grid,
		Padding:    scene.Canvas.Padding,
	}
}

// NewStillFrame builds the frame of a still picture: every layer drawn as
// a complete step path, clipped to the common time range.
func NewStillFrame(scene *config.Scene, layers []simulation.Layer) Frame {
	view := plot.Fit(simulation.Realizations(layers))

	frame := Frame{
		Style:    StyleFor(scene),
		Viewport: view,
		Layers:   make([]Layer, 0, len(layers)),
		Caption:  scene.Caption,
	}
	for _, l := range layers {
		frame.Layers = append(frame.Layers, Layer{
			Points:    plot.Clip(plot.StepPath(l.Realization, plot.StepPre), view.TMax),
			Color:     l.Spec.ColorFor(l.Index),
			Alpha:     l.Spec.Alpha,
			LineWidth: l.Spec.LineWidth,
		})
	}

	return frame
}
