// Package export writes animation frames to files.
package export

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/sherine-k/skyline/pkg/animation"
	"github.com/sherine-k/skyline/pkg/logging"
	"github.com/sherine-k/skyline/pkg/render"
)

// ErrEncoderUnavailable is returned when the external video encoder
// cannot be found.
var ErrEncoderUnavailable = errors.New("video encoder unavailable")

// Encoder consumes rendered frames in order.
type Encoder interface {
	AddFrame(img image.Image) error
	Close() error
}

// Rasterizer turns a frame into an image.
type Rasterizer interface {
	Rasterize(frame render.Frame) (image.Image, error)
}

// Options configures the encoders.
type Options struct {
	FPS     int
	Bitrate int
	Artist  string
	// Binary is the ffmpeg executable used for video containers.
	Binary string
	// Palette limits GIF frames to these colours, see render.PaletteFor.
	Palette color.Palette
}

// aborter is implemented by encoders that can discard a partial output.
type aborter interface {
	Abort() error
}

var videoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".mkv":  true,
	".webm": true,
	".avi":  true,
}

// ForPath picks an encoder from the output path: .gif for GIF, video
// extensions for ffmpeg, anything else is a directory of PNG frames.
func ForPath(ctx context.Context, path string, opts Options) (Encoder, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case ext == ".gif":
		f, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", path, err)
		}
		g := NewGIF(f, opts.FPS, opts.Palette)
		g.path = path
		return g, nil
	case videoExtensions[ext]:
		return NewFFmpeg(ctx, path, opts)
	default:
		return NewPNGSequence(path)
	}
}

// Run renders every frame of every loop and feeds it to the encoder. The
// encoder is closed before returning; its Close error is reported when
// encoding itself succeeded. When rendering fails or ctx is cancelled,
// encoders that support it discard their partial output instead.
func Run(ctx context.Context, a *animation.Animator, r Rasterizer, enc Encoder) (err error) {
	defer func() {
		if ab, ok := enc.(aborter); ok && err != nil {
			if aerr := ab.Abort(); aerr != nil {
				logging.Logger().Warn("failed to discard partial output", "error", aerr)
			}
			return
		}
		if cerr := enc.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to finish encoding: %w", cerr)
		}
	}()

	frames := 0
	err = animation.Play(ctx, a, 0, func(s animation.State) error {
		img, err := r.Rasterize(a.Frame(s))
		if err != nil {
			return fmt.Errorf("failed to render frame %d of loop %d: %w", s.Frame, s.Loop, err)
		}
		if err := enc.AddFrame(img); err != nil {
			return fmt.Errorf("failed to encode frame %d of loop %d: %w", s.Frame, s.Loop, err)
		}
		frames++
		return nil
	})

	logging.Logger().Info("exported animation", "frames", frames)
	return err
}
