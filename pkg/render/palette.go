package render

import (
	"image/color"
	"image/color/palette"
	"math"

	"github.com/gogpu/gg"

	"github.com/sherine-k/skyline/pkg/config"
)

// coverageSteps is the number of anti-aliasing levels kept per layer colour.
const coverageSteps = 4

// Palette returns the colours frames of this style can contain: the
// background, the grid and caption greys, and each layer colour blended at
// a few coverage levels over the background and the grid. Palettes that
// would not fit a GIF fall back to the Plan 9 palette.
func Palette(style Style, layers []Layer) color.Palette {
	bg := opaque(gg.Hex(style.Background))
	grid := gg.RGBA{R: 1, G: 1, B: 1, A: 1}
	caption := gg.RGBA{R: 0.3, G: 0.3, B: 0.3, A: 1}

	seen := map[color.RGBA]bool{}
	var p color.Palette
	add := func(c gg.RGBA) {
		rgba := toRGBA(c)
		if !seen[rgba] {
			seen[rgba] = true
			p = append(p, rgba)
		}
	}

	add(bg)
	add(grid)
	add(caption)
	for _, l := range layers {
		c := opaque(gg.Hex(l.Color))
		for k := 1; k <= coverageSteps; k++ {
			a := l.Alpha * float64(k) / coverageSteps
			add(bg.Lerp(c, a))
			add(grid.Lerp(c, a))
		}
	}

	if len(p) > 256 {
		return palette.Plan9
	}
	return p
}

// PaletteFor returns the palette of a scene's frames.
func PaletteFor(scene *config.Scene) color.Palette {
	layers := make([]Layer, len(scene.Layers))
	for i, l := range scene.Layers {
		layers[i] = Layer{Color: l.ColorFor(i), Alpha: l.Alpha}
	}
	return Palette(StyleFor(scene), layers)
}

func opaque(c gg.RGBA) gg.RGBA {
	c.A = 1
	return c
}

func toRGBA(c gg.RGBA) color.RGBA {
	u8 := func(v float64) uint8 {
		return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
	}
	return color.RGBA{R: u8(c.R), G: u8(c.G), B: u8(c.B), A: 255}
}
