package export

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/sherine-k/skyline/pkg/animation"
	"github.com/sherine-k/skyline/pkg/config"
	"github.com/sherine-k/skyline/pkg/render"
	"github.com/sherine-k/skyline/pkg/simulation"
)

func solid(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestGIF(t *testing.T) {
	var buf bytes.Buffer
	enc := NewGIF(&buf, 25, nil)
	for i := 0; i < 3; i++ {
		if err := enc.AddFrame(solid(8, 4, color.RGBA{R: uint8(80 * i), A: 255})); err != nil {
			t.Fatalf("AddFrame: %v", err)
		}
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	anim, err := gif.DecodeAll(&buf)
	if err != nil {
		t.Fatalf("output is not a GIF: %v", err)
	}
	if len(anim.Image) != 3 {
		t.Errorf("expected 3 frames, got %d", len(anim.Image))
	}
	for i, d := range anim.Delay {
		if d != 4 {
			t.Errorf("frame %d delay %d, want 4", i, d)
		}
	}
}

func TestGIFDelayClamp(t *testing.T) {
	if g := NewGIF(&bytes.Buffer{}, 100, nil); g.delay != 2 {
		t.Errorf("delay = %d, want 2", g.delay)
	}
	if g := NewGIF(&bytes.Buffer{}, 0, nil); g.delay != 100 {
		t.Errorf("delay = %d, want 100", g.delay)
	}
}

var (
	background = color.RGBA{R: 0xF2, G: 0xF2, B: 0xF2, A: 255}
	ink        = color.RGBA{R: 0x34, G: 0x8A, B: 0xBD, A: 255}
)

// canvas returns a full size background frame with an ink square of side
// n at (x, y).
func canvas(x, y, n int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 1800, 800))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(x, y, x+n, y+n), image.NewUniform(ink), image.Point{}, draw.Src)
	return img
}

func TestGIFStoresChangedRegion(t *testing.T) {
	g := NewGIF(&bytes.Buffer{}, 25, color.Palette{background, ink, color.White})

	if err := g.AddFrame(canvas(0, 0, 0)); err != nil {
		t.Fatal(err)
	}
	if err := g.AddFrame(canvas(100, 200, 10)); err != nil {
		t.Fatal(err)
	}
	if err := g.AddFrame(canvas(100, 200, 10)); err != nil {
		t.Fatal(err)
	}

	if got := len(g.anim.Image[0].Pix); got != 1800*800 {
		t.Errorf("first frame holds %d pixels, want the whole canvas", got)
	}
	if got := g.anim.Image[1].Rect; got != image.Rect(100, 200, 110, 210) {
		t.Errorf("second frame covers %v, want the changed square", got)
	}
	if got := len(g.anim.Image[2].Pix); got != 1 {
		t.Errorf("unchanged frame holds %d pixels, want 1", got)
	}

	// Solid areas map to one palette entry: no dithering noise.
	for i, idx := range g.anim.Image[0].Pix {
		if idx != 0 {
			t.Fatalf("pixel %d has index %d, want the background", i, idx)
		}
	}
	for i, idx := range g.anim.Image[1].Pix {
		if idx != 1 {
			t.Fatalf("square pixel %d has index %d, want the ink colour", i, idx)
		}
	}
}

func TestGIFFrameSizeMismatch(t *testing.T) {
	g := NewGIF(&bytes.Buffer{}, 25, nil)
	if err := g.AddFrame(solid(8, 4, color.White)); err != nil {
		t.Fatal(err)
	}
	if err := g.AddFrame(solid(4, 4, color.White)); err == nil {
		t.Error("expected error for a different frame size")
	}
}

func TestGIFDecodesToFullFrames(t *testing.T) {
	var buf bytes.Buffer
	g := NewGIF(&buf, 25, color.Palette{background, ink})
	for _, n := range []int{0, 10, 20} {
		if err := g.AddFrame(canvas(50, 50, n)); err != nil {
			t.Fatal(err)
		}
	}
	if err := g.Close(); err != nil {
		t.Fatal(err)
	}

	anim, err := gif.DecodeAll(&buf)
	if err != nil {
		t.Fatalf("output is not a GIF: %v", err)
	}
	if anim.Config.Width != 1800 || anim.Config.Height != 800 {
		t.Errorf("logical screen %dx%d, want 1800x800", anim.Config.Width, anim.Config.Height)
	}
	if got := anim.Image[2].Bounds(); got != image.Rect(50, 50, 70, 70) {
		t.Errorf("third frame covers %v", got)
	}
}

func BenchmarkGIFAddFrame(b *testing.B) {
	g := NewGIF(io.Discard, 25, color.Palette{background, ink, color.White})
	frames := []image.Image{canvas(100, 100, 10), canvas(100, 100, 20)}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := g.AddFrame(frames[i%2]); err != nil {
			b.Fatal(err)
		}
	}
}

func TestPNGSequence(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "frames")
	seq, err := NewPNGSequence(dir)
	if err != nil {
		t.Fatalf("NewPNGSequence: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := seq.AddFrame(solid(4, 4, color.White)); err != nil {
			t.Fatalf("AddFrame: %v", err)
		}
	}
	if err := seq.Close(); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"frame_00000.png", "frame_00001.png"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
	if seq.Count() != 2 {
		t.Errorf("Count = %d, want 2", seq.Count())
	}
}

func TestForPath(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	enc, err := ForPath(ctx, filepath.Join(dir, "out.gif"), Options{FPS: 25})
	if err != nil {
		t.Fatalf("ForPath(gif): %v", err)
	}
	if _, ok := enc.(*GIF); !ok {
		t.Errorf("expected *GIF, got %T", enc)
	}
	enc.Close()

	enc, err = ForPath(ctx, filepath.Join(dir, "frames"), Options{})
	if err != nil {
		t.Fatalf("ForPath(dir): %v", err)
	}
	if _, ok := enc.(*PNGSequence); !ok {
		t.Errorf("expected *PNGSequence, got %T", enc)
	}

	_, err = ForPath(ctx, filepath.Join(dir, "out.mp4"), Options{Binary: "skyline-no-such-encoder"})
	if !errors.Is(err, ErrEncoderUnavailable) {
		t.Errorf("expected ErrEncoderUnavailable, got %v", err)
	}
}

func TestFFmpegArgs(t *testing.T) {
	f := &FFmpeg{path: "out.mp4", opts: Options{FPS: 25, Bitrate: 1800, Artist: "skyline"}}
	got := f.Args(image.Pt(640, 320))
	want := []string{
		"-y", "-loglevel", "error",
		"-f", "rawvideo", "-pix_fmt", "rgba", "-s", "640x320", "-r", "25", "-i", "-",
		"-an", "-b:v", "1800k", "-metadata", "artist=skyline", "-pix_fmt", "yuv420p",
		"out.mp4",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Args = %v\nwant %v", got, want)
	}
}

func TestFFmpegCloseWithoutFrames(t *testing.T) {
	f := &FFmpeg{}
	if err := f.Close(); err != nil {
		t.Errorf("Close without frames: %v", err)
	}
}

func testAnimator() *animation.Animator {
	scene := config.DefaultScene()
	scene.Canvas.Width = 64
	scene.Canvas.Height = 32
	scene.Canvas.Padding = 4
	scene.Layers = []config.Layer{
		{Beta: 1, Steps: 2, Alpha: 0.5, LineWidth: 2},
	}
	scene.Animation.FramesPerSegment = 1
	scene.Animation.Loops = 2
	return animation.New(scene, simulation.NewSimulator(scene, 1))
}

type countingEncoder struct {
	frames int
	closed bool
}

func (c *countingEncoder) AddFrame(image.Image) error { c.frames++; return nil }
func (c *countingEncoder) Close() error               { c.closed = true; return nil }

func TestRun(t *testing.T) {
	enc := &countingEncoder{}
	if err := Run(context.Background(), testAnimator(), render.NewRaster(), enc); err != nil {
		t.Fatalf("Run: %v", err)
	}
	// Two loops of 2*1*2+1 frames.
	if enc.frames != 10 {
		t.Errorf("encoded %d frames, want 10", enc.frames)
	}
	if !enc.closed {
		t.Error("encoder not closed")
	}
}

type failingRasterizer struct{}

func (failingRasterizer) Rasterize(render.Frame) (image.Image, error) {
	return nil, errors.New("no canvas")
}

func TestRunPropagatesRenderErrors(t *testing.T) {
	enc := &countingEncoder{}
	err := Run(context.Background(), testAnimator(), failingRasterizer{}, enc)
	if err == nil {
		t.Fatal("expected error")
	}
	if enc.frames != 0 || !enc.closed {
		t.Errorf("unexpected encoder state %+v", enc)
	}
}

func TestRunCancelledRemovesGIF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.gif")
	enc, err := ForPath(context.Background(), path, Options{FPS: 25})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Run(ctx, testAnimator(), render.NewRaster(), enc); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("partial GIF left behind: %v", err)
	}
}

func TestRunRenderErrorRemovesGIF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.gif")
	enc, err := ForPath(context.Background(), path, Options{FPS: 25})
	if err != nil {
		t.Fatal(err)
	}
	if err := Run(context.Background(), testAnimator(), failingRasterizer{}, enc); err == nil {
		t.Fatal("expected error")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("partial GIF left behind: %v", err)
	}
}

func TestRunWritesGIF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.gif")
	scene := config.DefaultScene()
	enc, err := ForPath(context.Background(), path, Options{FPS: 25, Palette: render.PaletteFor(scene)})
	if err != nil {
		t.Fatal(err)
	}
	if err := Run(context.Background(), testAnimator(), render.NewRaster(), enc); err != nil {
		t.Fatalf("Run: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	anim, err := gif.DecodeAll(f)
	if err != nil {
		t.Fatalf("output is not a GIF: %v", err)
	}
	if len(anim.Image) != 10 {
		t.Errorf("expected 10 frames, got %d", len(anim.Image))
	}
}

func TestRunToPNGSequence(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "frames")
	seq, err := NewPNGSequence(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := Run(context.Background(), testAnimator(), render.NewRaster(), seq); err != nil {
		t.Fatalf("Run: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 10 {
		t.Errorf("expected 10 frame files, got %d", len(entries))
	}
}
