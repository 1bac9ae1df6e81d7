package render

import (
	"fmt"
	"image"
	"io"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/sherine-k/skyline/pkg/plot"
)

const (
	gridTicks   = 8
	captionSize = 18
)

// Image formats supported by Raster.
const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
)

var (
	fontOnce   sync.Once
	fontSource *text.FontSource
	fontErr    error
)

// captionFont loads the Go Regular font once per process.
func captionFont() (*text.FontSource, error) {
	fontOnce.Do(func() {
		fontSource, fontErr = text.NewFontSource(goregular.TTF)
	})
	return fontSource, fontErr
}

// Raster draws frames with the gg software rasterizer.
type Raster struct {
	Format  string
	Quality int
}

// NewRaster creates a PNG raster renderer
func NewRaster() *Raster {
	return &Raster{Format: FormatPNG, Quality: 90}
}

// Render encodes the frame as PNG or JPEG
func (r *Raster) Render(frame Frame, w io.Writer) error {
	dc, err := r.draw(frame)
	if err != nil {
		return err
	}
	defer dc.Close()

	switch r.Format {
	case FormatJPEG:
		err = dc.EncodeJPEG(w, r.Quality)
	default:
		err = dc.EncodePNG(w)
	}
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", r.Format, err)
	}
	return nil
}

// Rasterize returns the frame as an in-memory image
func (r *Raster) Rasterize(frame Frame) (image.Image, error) {
	dc, err := r.draw(frame)
	if err != nil {
		return nil, err
	}
	defer dc.Close()

	if err := dc.FlushGPU(); err != nil {
		return nil, fmt.Errorf("failed to flush frame: %w", err)
	}
	return dc.Image(), nil
}

func (r *Raster) draw(frame Frame) (*gg.Context, error) {
	if frame.Style.Width <= 0 || frame.Style.Height <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", frame.Style.Width, frame.Style.Height)
	}

	dc := gg.NewContext(frame.Style.Width, frame.Style.Height)
	dc.ClearWithColor(gg.Hex(frame.Style.Background))

	area := frame.Area()
	m := frame.Mapper()

	if frame.Style.Grid {
		if err := drawGrid(dc, m, area); err != nil {
			dc.Close()
			return nil, err
		}
	}

	// Layer paths are clipped to the viewport before they get here.
	for i, layer := range frame.Layers {
		if len(layer.Points) < 2 {
			continue
		}
		c := gg.Hex(layer.Color)
		dc.SetRGBA(c.R, c.G, c.B, layer.Alpha)
		dc.SetLineWidth(layer.LineWidth)
		dc.SetLineJoin(gg.LineJoinMiter)
		dc.SetLineCap(gg.LineCapButt)

		x, y := m.Map(layer.Points[0])
		dc.MoveTo(x, y)
		for _, p := range layer.Points[1:] {
			x, y = m.Map(p)
			dc.LineTo(x, y)
		}
		if err := dc.Stroke(); err != nil {
			dc.Close()
			return nil, fmt.Errorf("failed to stroke layer %d: %w", i, err)
		}
	}

	if frame.Caption != "" {
		source, err := captionFont()
		if err != nil {
			dc.Close()
			return nil, fmt.Errorf("failed to load caption font: %w", err)
		}
		dc.SetFont(source.Face(captionSize))
		dc.SetRGB(0.3, 0.3, 0.3)
		dc.DrawStringAnchored(frame.Caption, area.X+area.W, area.Y+area.H+float64(frame.Style.Padding)/2, 1, 0.5)
	}

	return dc, nil
}

// drawGrid draws white ggplot-style grid lines behind the layers.
func drawGrid(dc *gg.Context, m plot.Mapper, area plot.Rect) error {
	dc.SetRGB(1, 1, 1)
	dc.SetLineWidth(1)
	for _, t := range plot.Ticks(m.View.TMax, gridTicks) {
		x, _ := m.Map(plot.Point{T: t})
		dc.DrawLine(x, area.Y, x, area.Y+area.H)
	}
	for _, v := range plot.Ticks(m.View.YMax, gridTicks/2) {
		_, y := m.Map(plot.Point{Y: v})
		dc.DrawLine(area.X, y, area.X+area.W, y)
	}
	if err := dc.Stroke(); err != nil {
		return fmt.Errorf("failed to stroke grid: %w", err)
	}
	return nil
}
