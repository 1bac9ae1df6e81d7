package export

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"io"
	"os"
)

// GIF collects frames into an animated GIF written on Close.
//
// Frames are mapped to the nearest palette colour without dithering, and
// only the rectangle that changed since the previous frame is kept.
type GIF struct {
	w       io.Writer
	path    string
	delay   int
	palette color.Palette
	index   map[color.RGBA]uint8
	prev    *image.Paletted
	cur     *image.Paletted
	anim    gif.GIF
}

// NewGIF creates a GIF encoder over pal, or the Plan 9 palette when pal is
// empty. If w is an io.Closer it is closed with the encoder.
func NewGIF(w io.Writer, fps int, pal color.Palette) *GIF {
	delay := 100 / max(fps, 1)
	if delay < 2 {
		// Most viewers clamp anything faster.
		delay = 2
	}
	if len(pal) == 0 || len(pal) > 256 {
		pal = palette.Plan9
	}
	return &GIF{w: w, delay: delay, palette: pal, index: map[color.RGBA]uint8{}}
}

// AddFrame quantizes the frame and stores the part that changed
func (g *GIF) AddFrame(img image.Image) error {
	size := img.Bounds().Size()
	if g.prev != nil && g.prev.Rect.Size() != size {
		return fmt.Errorf("frame size %v differs from %v", size, g.prev.Rect.Size())
	}

	if g.cur == nil {
		g.cur = image.NewPaletted(image.Rectangle{Max: size}, g.palette)
	}
	g.quantize(g.cur, img)

	changed := g.cur.Rect
	if g.prev != nil {
		changed = changedBounds(g.prev, g.cur)
		if changed.Empty() {
			changed = image.Rect(0, 0, 1, 1)
		}
	}

	g.anim.Image = append(g.anim.Image, crop(g.cur, changed))
	g.anim.Delay = append(g.anim.Delay, g.delay)
	g.anim.Disposal = append(g.anim.Disposal, gif.DisposalNone)

	g.prev, g.cur = g.cur, g.prev
	return nil
}

// quantize maps every pixel of img to its nearest palette entry.
func (g *GIF) quantize(dst *image.Paletted, img image.Image) {
	b := img.Bounds()
	rgba, fast := img.(*image.RGBA)
	for y := 0; y < b.Dy(); y++ {
		row := dst.Pix[y*dst.Stride : y*dst.Stride+b.Dx()]
		for x := range row {
			var c color.RGBA
			if fast {
				i := rgba.PixOffset(b.Min.X+x, b.Min.Y+y)
				s := rgba.Pix[i : i+4 : i+4]
				c = color.RGBA{R: s[0], G: s[1], B: s[2], A: s[3]}
			} else {
				c = color.RGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.RGBA)
			}
			idx, ok := g.index[c]
			if !ok {
				idx = uint8(g.palette.Index(c))
				g.index[c] = idx
			}
			row[x] = idx
		}
	}
}

// changedBounds returns the smallest rectangle holding every pixel that
// differs between a and b.
func changedBounds(a, b *image.Paletted) image.Rectangle {
	var r image.Rectangle
	w := a.Rect.Dx()
	for y := 0; y < a.Rect.Dy(); y++ {
		ra := a.Pix[y*a.Stride : y*a.Stride+w]
		rb := b.Pix[y*b.Stride : y*b.Stride+w]
		if bytes.Equal(ra, rb) {
			continue
		}
		x0, x1 := 0, w-1
		for ra[x0] == rb[x0] {
			x0++
		}
		for ra[x1] == rb[x1] {
			x1--
		}
		r = r.Union(image.Rect(x0, y, x1+1, y+1))
	}
	return r
}

// crop copies r out of src so the stored frame owns its pixels.
func crop(src *image.Paletted, r image.Rectangle) *image.Paletted {
	dst := image.NewPaletted(r, src.Palette)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		copy(dst.Pix[dst.PixOffset(r.Min.X, y):dst.PixOffset(r.Max.X, y)],
			src.Pix[src.PixOffset(r.Min.X, y):src.PixOffset(r.Max.X, y)])
	}
	return dst
}

// Close writes the animation
func (g *GIF) Close() error {
	err := gif.EncodeAll(g.w, &g.anim)
	if cerr := g.closeWriter(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to write gif: %w", err)
	}
	return nil
}

// Abort drops the collected frames and removes the output file, if the
// encoder created one.
func (g *GIF) Abort() error {
	g.anim = gif.GIF{}
	g.prev, g.cur = nil, nil
	err := g.closeWriter()
	if g.path != "" {
		if rerr := os.Remove(g.path); rerr != nil && !os.IsNotExist(rerr) && err == nil {
			err = rerr
		}
	}
	return err
}

func (g *GIF) closeWriter() error {
	if c, ok := g.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
