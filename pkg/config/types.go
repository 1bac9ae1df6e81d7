package config

import (
	"time"
)

// Scene represents the entire configuration for one skyline picture
type Scene struct {
	Seed      *uint64   `yaml:"seed,omitempty"`
	Caption   string    `yaml:"caption,omitempty"`
	Canvas    Canvas    `yaml:"canvas"`
	Layers    []Layer   `yaml:"layers"`
	Animation Animation `yaml:"animation"`
	Schedule  Schedule  `yaml:"schedule,omitempty"`
}

// Canvas describes the output surface
type Canvas struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Background string `yaml:"background"`
	Grid       bool   `yaml:"grid"`
	Padding    int    `yaml:"padding"`
}

// Layer represents a single skyline layer: one simulated process and its style
type Layer struct {
	// Beta is the mean holding time between jumps.
	Beta float64 `yaml:"beta"`
	// Steps is the number of jumps simulated after t = 0.
	Steps     int     `yaml:"steps"`
	Alpha     float64 `yaml:"alpha"`
	LineWidth float64 `yaml:"lineWidth"`
	Color     string  `yaml:"color,omitempty"`

	// Used instead of LineWidth when animating, if set
	AnimationLineWidth float64 `yaml:"animationLineWidth,omitempty"`
}

// Animation holds frame stepping and export settings
type Animation struct {
	FramesPerSegment int           `yaml:"framesPerSegment"`
	Interval         time.Duration `yaml:"interval"`
	Loops            int           `yaml:"loops"`
	FPS              int           `yaml:"fps"`
	Bitrate          int           `yaml:"bitrate"`
	Artist           string        `yaml:"artist"`
	Encoder          string        `yaml:"encoder"`
}

// Schedule configures periodic re-rendering
type Schedule struct {
	Cron string `yaml:"cron,omitempty"`
}

// Palette is the colour cycle used for layers without an explicit colour.
var Palette = []string{
	"#E24A33",
	"#348ABD",
	"#988ED5",
	"#777777",
	"#FBC15E",
	"#8EBA42",
	"#FFB5B8",
}

const (
	DefaultWidth            = 1800
	DefaultHeight           = 800
	DefaultBackground       = "#F2F2F2"
	DefaultPadding          = 24
	DefaultFramesPerSegment = 5
	DefaultInterval         = 10 * time.Millisecond
	DefaultFPS              = 25
	DefaultBitrate          = 1800
	DefaultArtist           = "skyline"
	DefaultEncoder          = "ffmpeg"
)

// ColorFor returns the layer's colour, falling back to the palette.
func (l Layer) ColorFor(index int) string {
	if l.Color != "" {
		return l.Color
	}
	return Palette[index%len(Palette)]
}

// WidthForAnimation returns the stroke width used in animation frames.
func (l Layer) WidthForAnimation() float64 {
	if l.AnimationLineWidth > 0 {
		return l.AnimationLineWidth
	}
	return l.LineWidth
}
