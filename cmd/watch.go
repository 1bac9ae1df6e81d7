package cmd

import (
	"fmt"

	"github.com/sherine-k/skyline/pkg/logging"
	"github.com/sherine-k/skyline/pkg/simulation"
	"github.com/sherine-k/skyline/pkg/watch"
	"github.com/spf13/cobra"
)

var watchOutput string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-render the skyline whenever the scene file changes",
	Long: `Render the scene once, then again every time the scene file is saved.

Useful while tuning layer parameters: keep the output open in an image viewer
that reloads on change. The seed stays fixed, so only the edited parameters
change the picture.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchOutput, "output", "o", "skyline.png", "Output file")
	watchCmd.Flags().StringVarP(&outputFormat, "format", "f", "", "Output format: png, jpeg, svg or txt")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if configFile == "" {
		return fmt.Errorf("watch needs a scene file: use --config")
	}

	renderer, err := rendererFor(watchOutput, outputFormat)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	rerender := func() error {
		scene, s, err := loadScene(cmd)
		if err != nil {
			return err
		}
		path, err := renderStill(simulation.NewSimulator(scene, s), renderer, watchOutput, out)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %s (seed %d)\n", path, s)
		return nil
	}

	if err := rerender(); err != nil {
		return err
	}

	w := watch.New(configFile, watch.DefaultDebounce, func(string) {
		if err := rerender(); err != nil {
			// Keep watching: the next save may fix the scene.
			logging.Logger().Error("re-render failed", "config", configFile, "error", err)
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
	})

	fmt.Fprintf(out, "Watching %s, press Ctrl+C to stop\n", configFile)
	return w.Run(cmd.Context())
}
