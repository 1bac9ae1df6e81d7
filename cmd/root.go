package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gogpu/gg"
	"github.com/sherine-k/skyline/pkg/chart"
	"github.com/sherine-k/skyline/pkg/config"
	"github.com/sherine-k/skyline/pkg/logging"
	"github.com/sherine-k/skyline/pkg/simulation"
	"github.com/spf13/cobra"
)

var (
	configFile       string
	seed             uint64
	logLevel         string
	width            int
	height           int
	showTimeline     bool
	timelineLimit    int
	showLayerSummary bool
)

var rootCmd = &cobra.Command{
	Use:   "skyline",
	Short: "Skyline art from a modified Poisson process",
	Long: `A CLI tool that draws city skylines from random step functions.

Every layer of the skyline is one realization of a modified Poisson process:
exponential holding times between jumps, and after each jump a Poisson count
whose mean is the holding time that preceded it. Layers are drawn on top of
each other with their own transparency and line width.

Without a subcommand the skyline is simulated and printed to the terminal.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
	RunE:              runPreview,
}

// Execute runs the root command
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to scene file (default: built-in three layer scene)")
	rootCmd.PersistentFlags().Uint64Var(&seed, "seed", 0, "Random seed (default: from the scene file, else time based)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().IntVar(&width, "width", 0, "Override canvas width in pixels")
	rootCmd.PersistentFlags().IntVar(&height, "height", 0, "Override canvas height in pixels")

	rootCmd.Flags().BoolVarP(&showTimeline, "timeline", "t", false, "Show detailed timeline of jumps")
	rootCmd.Flags().IntVarP(&timelineLimit, "timeline-limit", "l", 50, "Limit number of timeline jumps to display")
	rootCmd.Flags().BoolVarP(&showLayerSummary, "summary", "s", true, "Show layer summary")
}

func setupLogging(cmd *cobra.Command, args []string) error {
	l, err := logging.New(os.Stderr, logLevel)
	if err != nil {
		return err
	}
	logging.SetLogger(l)
	gg.SetLogger(l)
	return nil
}

// loadScene reads the scene file (or the built-in scene), applies flag
// overrides and resolves the seed.
func loadScene(cmd *cobra.Command) (*config.Scene, uint64, error) {
	var (
		scene *config.Scene
		err   error
	)
	if configFile != "" {
		scene, err = config.LoadConfig(configFile)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to load configuration: %w", err)
		}
	} else {
		scene = config.DefaultScene()
	}

	if width > 0 {
		scene.Canvas.Width = width
	}
	if height > 0 {
		scene.Canvas.Height = height
	}
	if err := config.Validate(scene); err != nil {
		return nil, 0, fmt.Errorf("invalid configuration: %w", err)
	}

	s := simulation.NewSeed()
	switch {
	case cmd.Flags().Changed("seed"):
		s = seed
	case scene.Seed != nil:
		s = *scene.Seed
	}
	logging.Logger().Info("loaded scene", "config", configFile, "layers", len(scene.Layers), "seed", s)

	return scene, s, nil
}

func runPreview(cmd *cobra.Command, args []string) error {
	scene, s, err := loadScene(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Scene: %s\n", sceneName())
	fmt.Fprintf(out, "  - Layers: %d\n", len(scene.Layers))
	fmt.Fprintf(out, "  - Seed: %d\n", s)
	fmt.Fprintf(out, "  - Canvas: %dx%d\n\n", scene.Canvas.Width, scene.Canvas.Height)

	// Create and run simulator
	sim := simulation.NewSimulator(scene, s)
	if err := sim.Run(); err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	chartGen := chart.NewGenerator()

	alphas := make([]float64, len(scene.Layers))
	for i, l := range scene.Layers {
		alphas[i] = l.Alpha
	}
	fmt.Fprintln(out, chartGen.GenerateSkylineChart(sim.GetTimePoints(), alphas))

	if showLayerSummary {
		fmt.Fprintln(out, chartGen.GenerateSummary(sim.GetStats(), sim.Seed()))
	}

	if showTimeline {
		fmt.Fprintln(out, chartGen.GenerateDetailedTimeline(sim.GetJumps(), timelineLimit))
	}

	return nil
}

func sceneName() string {
	if configFile == "" {
		return "built-in"
	}
	return configFile
}
