package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sherine-k/skyline/pkg/animation"
	"github.com/sherine-k/skyline/pkg/chart"
	"github.com/sherine-k/skyline/pkg/export"
	"github.com/sherine-k/skyline/pkg/render"
	"github.com/sherine-k/skyline/pkg/simulation"
	"github.com/spf13/cobra"
)

var (
	animationOutput  string
	loops            int
	fps              int
	framesPerSegment int
	preview          bool
)

var animateCmd = &cobra.Command{
	Use:   "animate",
	Short: "Render an animated skyline",
	Long: `Draw the skyline step by step and export the frames.

Each jump is drawn in two phases, first along the time axis and then up or
down to the new state. Every loop simulates fresh layers.

The encoder follows the output extension: .gif writes an animated GIF,
.mp4/.mov/.mkv/.webm/.avi pipe the frames through ffmpeg, anything else is
treated as a directory of numbered PNG frames. --preview plays the
animation in the terminal instead.`,
	RunE: runAnimate,
}

func init() {
	animateCmd.Flags().StringVarP(&animationOutput, "output", "o", "skyline.gif", "Output file or frame directory")
	animateCmd.Flags().IntVar(&loops, "loops", 0, "Override the number of loops")
	animateCmd.Flags().IntVar(&fps, "fps", 0, "Override the export frame rate")
	animateCmd.Flags().IntVar(&framesPerSegment, "frames-per-segment", 0, "Override frames spent on each half of a step")
	animateCmd.Flags().BoolVar(&preview, "preview", false, "Play the animation in the terminal")
	rootCmd.AddCommand(animateCmd)
}

func runAnimate(cmd *cobra.Command, args []string) error {
	scene, s, err := loadScene(cmd)
	if err != nil {
		return err
	}

	a := &scene.Animation
	if loops > 0 {
		a.Loops = loops
	}
	if fps > 0 {
		a.FPS = fps
	}
	if framesPerSegment > 0 {
		a.FramesPerSegment = framesPerSegment
	}

	animator := animation.New(scene, simulation.NewSimulator(scene, s))

	if preview {
		return playInTerminal(cmd.Context(), animator, a.Interval, cmd.OutOrStdout())
	}

	enc, err := export.ForPath(cmd.Context(), animationOutput, export.Options{
		FPS:     a.FPS,
		Bitrate: a.Bitrate,
		Artist:  a.Artist,
		Binary:  a.Encoder,
		Palette: render.PaletteFor(scene),
	})
	if err != nil {
		return err
	}

	if err := export.Run(cmd.Context(), animator, render.NewRaster(), enc); err != nil {
		return fmt.Errorf("failed to export animation: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (seed %d, %d loops at %d fps)\n", animationOutput, s, a.Loops, a.FPS)
	return nil
}

func playInTerminal(ctx context.Context, animator *animation.Animator, interval time.Duration, out io.Writer) error {
	chartGen := chart.NewGenerator()

	return animation.Play(ctx, animator, interval, func(state animation.State) error {
		// Clear the screen and move home.
		if _, err := io.WriteString(out, "\033[H\033[2J"); err != nil {
			return err
		}
		return chartGen.Render(animator.Frame(state), out)
	})
}
