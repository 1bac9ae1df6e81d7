package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sherine-k/skyline/pkg/chart"
	"github.com/sherine-k/skyline/pkg/logging"
	"github.com/sherine-k/skyline/pkg/render"
	"github.com/sherine-k/skyline/pkg/simulation"
	"github.com/spf13/cobra"
)

var (
	outputFile   string
	outputFormat string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a still skyline",
	Long: `Simulate every layer once and draw the skyline as a still picture.

The output format follows the file extension (.png, .jpg, .svg, .txt) unless
--format is given. Use "-" to write to standard output.`,
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&outputFile, "output", "o", "skyline.png", "Output file")
	renderCmd.Flags().StringVarP(&outputFormat, "format", "f", "", "Output format: png, jpeg, svg or txt")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	scene, s, err := loadScene(cmd)
	if err != nil {
		return err
	}

	renderer, err := rendererFor(outputFile, outputFormat)
	if err != nil {
		return err
	}

	path, err := renderStill(simulation.NewSimulator(scene, s), renderer, outputFile, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if path != "-" {
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (seed %d)\n", path, s)
	}
	return nil
}

// rendererFor picks a renderer from an explicit format or the file extension
func rendererFor(path, format string) (render.Renderer, error) {
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}

	switch strings.ToLower(format) {
	case "", "png":
		return render.NewRaster(), nil
	case "jpg", "jpeg":
		return &render.Raster{Format: render.FormatJPEG, Quality: 90}, nil
	case "svg":
		return render.NewVector(), nil
	case "txt", "text":
		return chart.NewGenerator(), nil
	}
	return nil, fmt.Errorf("unsupported output format %q", format)
}

// renderStill runs the next generation of sim and writes it with renderer.
// A "{run}" placeholder in path is replaced by a fresh run ID. It returns
// the path written.
func renderStill(sim *simulation.Simulator, renderer render.Renderer, path string, stdout io.Writer) (string, error) {
	if err := sim.Run(); err != nil {
		return "", fmt.Errorf("simulation failed: %w", err)
	}

	runID := uuid.New().String()
	frame := render.NewStillFrame(sim.Scene(), sim.GetLayers())
	frame.RunID = runID
	path = strings.ReplaceAll(path, "{run}", runID)

	if path == "-" {
		if err := renderer.Render(frame, stdout); err != nil {
			return "", fmt.Errorf("failed to render: %w", err)
		}
		return path, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	if err := renderer.Render(frame, f); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to render %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	logging.Logger().Info("rendered skyline",
		"output", path,
		"run", runID,
		"seed", sim.Seed(),
		"generation", sim.Generation()-1)

	return path, nil
}
