package config

import (
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads and parses the scene file
func LoadConfig(filename string) (*Scene, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML scene over the defaults and validates it. Keys the
// file leaves out keep their default; keys it sets, zero included, win.
func Parse(data []byte) (*Scene, error) {
	scene := baseScene()
	if err := yaml.Unmarshal(data, scene); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := validateConfig(scene); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return scene, nil
}

// DefaultScene returns the classic three-layer skyline
func DefaultScene() *Scene {
	scene := baseScene()
	scene.Layers = []Layer{
		{Beta: 1, Steps: 50, Alpha: 0.3, LineWidth: 2, AnimationLineWidth: 2},
		{Beta: 1, Steps: 50, Alpha: 0.6, LineWidth: 3, AnimationLineWidth: 3},
		{Beta: 1, Steps: 50, Alpha: 0.9, LineWidth: 8, AnimationLineWidth: 5},
	}
	return scene
}

// Marshal encodes the scene back to YAML
func Marshal(scene *Scene) ([]byte, error) {
	return yaml.Marshal(scene)
}

// baseScene holds every default except the layers.
func baseScene() *Scene {
	return &Scene{
		Canvas: Canvas{
			Width:      DefaultWidth,
			Height:     DefaultHeight,
			Background: DefaultBackground,
			Grid:       true,
			Padding:    DefaultPadding,
		},
		Animation: Animation{
			FramesPerSegment: DefaultFramesPerSegment,
			Interval:         DefaultInterval,
			Loops:            1,
			FPS:              DefaultFPS,
			Bitrate:          DefaultBitrate,
			Artist:           DefaultArtist,
			Encoder:          DefaultEncoder,
		},
	}
}

// Validate checks a scene built or modified in code
func Validate(scene *Scene) error {
	return validateConfig(scene)
}

// validateConfig validates the scene
func validateConfig(scene *Scene) error {
	if scene.Canvas.Width <= 0 || scene.Canvas.Height <= 0 {
		return fmt.Errorf("canvas width and height must be greater than 0")
	}

	if scene.Canvas.Padding < 0 || 2*scene.Canvas.Padding >= scene.Canvas.Width || 2*scene.Canvas.Padding >= scene.Canvas.Height {
		return fmt.Errorf("canvas padding must leave a drawable area")
	}

	if err := ValidateColor(scene.Canvas.Background); err != nil {
		return fmt.Errorf("canvas background: %w", err)
	}

	if len(scene.Layers) == 0 {
		return fmt.Errorf("at least one layer must be defined")
	}

	for i, layer := range scene.Layers {
		if !(layer.Beta > 0) || math.IsInf(layer.Beta, 0) {
			return fmt.Errorf("layer %d: beta must be greater than 0", i)
		}

		if layer.Steps < 0 {
			return fmt.Errorf("layer %d: steps must not be negative", i)
		}

		if layer.Alpha < 0 || layer.Alpha > 1 {
			return fmt.Errorf("layer %d: alpha must be between 0 and 1", i)
		}

		if layer.LineWidth <= 0 {
			return fmt.Errorf("layer %d: lineWidth must be greater than 0", i)
		}

		if layer.AnimationLineWidth < 0 {
			return fmt.Errorf("layer %d: animationLineWidth must not be negative", i)
		}

		if layer.Color != "" {
			if err := ValidateColor(layer.Color); err != nil {
				return fmt.Errorf("layer %d: %w", i, err)
			}
		}
	}

	a := scene.Animation
	if a.FramesPerSegment <= 0 {
		return fmt.Errorf("animation framesPerSegment must be greater than 0")
	}

	if a.Interval < 0 {
		return fmt.Errorf("animation interval must not be negative")
	}

	if a.Loops <= 0 {
		return fmt.Errorf("animation loops must be greater than 0")
	}

	if a.FPS <= 0 {
		return fmt.Errorf("animation fps must be greater than 0")
	}

	if a.Bitrate <= 0 {
		return fmt.Errorf("animation bitrate must be greater than 0")
	}

	return nil
}

// ValidateColor accepts #RGB, #RGBA, #RRGGBB and #RRGGBBAA hex colours
func ValidateColor(c string) error {
	hex := strings.TrimPrefix(c, "#")
	switch len(hex) {
	case 3, 4, 6, 8:
	default:
		return fmt.Errorf("color %q must be a hex value like #RRGGBB", c)
	}
	for _, ch := range hex {
		if !strings.ContainsRune("0123456789abcdefABCDEF", ch) {
			return fmt.Errorf("color %q must be a hex value like #RRGGBB", c)
		}
	}
	return nil
}
