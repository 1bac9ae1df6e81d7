package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/sherine-k/skyline/pkg/logging"
)

// FFmpeg pipes raw RGBA frames into an ffmpeg child process.
type FFmpeg struct {
	ctx    context.Context
	path   string
	opts   Options
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr bytes.Buffer
	size   image.Point
	buf    *image.RGBA
}

// NewFFmpeg checks that the encoder binary exists. The process is started
// with the first frame, once the frame size is known.
func NewFFmpeg(ctx context.Context, path string, opts Options) (*FFmpeg, error) {
	if opts.Binary == "" {
		opts.Binary = "ffmpeg"
	}
	bin, err := exec.LookPath(opts.Binary)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrEncoderUnavailable, opts.Binary, err)
	}
	opts.Binary = bin
	return &FFmpeg{ctx: ctx, path: path, opts: opts}, nil
}

// Args returns the ffmpeg command line for frames of the given size.
func (f *FFmpeg) Args(size image.Point) []string {
	return []string{
		"-y",
		"-loglevel", "error",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", size.X, size.Y),
		"-r", strconv.Itoa(f.opts.FPS),
		"-i", "-",
		"-an",
		"-b:v", fmt.Sprintf("%dk", f.opts.Bitrate),
		"-metadata", "artist=" + f.opts.Artist,
		"-pix_fmt", "yuv420p",
		f.path,
	}
}

func (f *FFmpeg) start(size image.Point) error {
	cmd := exec.CommandContext(f.ctx, f.opts.Binary, f.Args(size)...)
	cmd.Stderr = &f.stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to open encoder input: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start encoder: %w", err)
	}

	logging.Logger().Debug("started encoder", "binary", f.opts.Binary, "output", f.path)

	f.cmd = cmd
	f.stdin = stdin
	f.size = size
	f.buf = image.NewRGBA(image.Rectangle{Max: size})
	return nil
}

// AddFrame writes one frame to the encoder
func (f *FFmpeg) AddFrame(img image.Image) error {
	b := img.Bounds()
	if f.cmd == nil {
		if err := f.start(b.Size()); err != nil {
			return err
		}
	}
	if b.Size() != f.size {
		return fmt.Errorf("frame size %v differs from %v", b.Size(), f.size)
	}

	draw.Draw(f.buf, f.buf.Bounds(), img, b.Min, draw.Src)
	if _, err := f.stdin.Write(f.buf.Pix); err != nil {
		return f.failure(fmt.Errorf("failed to write frame: %w", err))
	}
	return nil
}

// Close flushes the input and waits for the encoder to exit
func (f *FFmpeg) Close() error {
	if f.cmd == nil {
		return nil
	}
	if err := f.stdin.Close(); err != nil && !errors.Is(err, io.ErrClosedPipe) {
		return f.failure(err)
	}
	if err := f.cmd.Wait(); err != nil {
		return f.failure(err)
	}
	return nil
}

// Abort stops the encoder and removes the partial output file
func (f *FFmpeg) Abort() error {
	if f.cmd == nil {
		return nil
	}
	f.stdin.Close()
	if f.cmd.Process != nil {
		f.cmd.Process.Kill()
	}
	// The exit status of a killed encoder says nothing useful.
	_ = f.cmd.Wait()
	f.cmd = nil
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// failure attaches the encoder's own error output.
func (f *FFmpeg) failure(err error) error {
	if msg := strings.TrimSpace(f.stderr.String()); msg != "" {
		return fmt.Errorf("%w: %s", err, msg)
	}
	return err
}
