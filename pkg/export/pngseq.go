package export

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
)

// PNGSequence writes every frame as a numbered PNG file in a directory.
type PNGSequence struct {
	dir   string
	count int
}

// NewPNGSequence creates the output directory if needed
func NewPNGSequence(dir string) (*PNGSequence, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create frame directory: %w", err)
	}
	return &PNGSequence{dir: dir}, nil
}

// FramePath returns the file name of frame i.
func (p *PNGSequence) FramePath(i int) string {
	return filepath.Join(p.dir, fmt.Sprintf("frame_%05d.png", i))
}

// AddFrame writes the next frame
func (p *PNGSequence) AddFrame(img image.Image) error {
	path := p.FramePath(p.count)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	p.count++
	return nil
}

// Count returns the number of frames written.
func (p *PNGSequence) Count() int {
	return p.count
}

// Close is a no-op; every frame is complete once written.
func (p *PNGSequence) Close() error {
	return nil
}
