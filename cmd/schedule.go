package cmd

import (
	"context"
	"fmt"

	"github.com/sherine-k/skyline/pkg/logging"
	"github.com/sherine-k/skyline/pkg/schedule"
	"github.com/sherine-k/skyline/pkg/simulation"
	"github.com/spf13/cobra"
)

var (
	cronSpec       string
	scheduleOutput string
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Re-render the skyline on a cron schedule",
	Long: `Render a new skyline every time the cron schedule fires, for example
to rotate a desktop wallpaper.

The schedule is a five-field cron expression or a descriptor such as
"@hourly" or "@every 10m". It defaults to the scene's schedule.cron. Put
"{run}" in the output path to keep every picture under its own run ID;
otherwise the file is overwritten.`,
	RunE: runSchedule,
}

func init() {
	scheduleCmd.Flags().StringVar(&cronSpec, "cron", "", "Cron schedule (default: schedule.cron from the scene)")
	scheduleCmd.Flags().StringVarP(&scheduleOutput, "output", "o", "skyline.png", "Output file, may contain {run}")
	scheduleCmd.Flags().StringVarP(&outputFormat, "format", "f", "", "Output format: png, jpeg, svg or txt")
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	scene, s, err := loadScene(cmd)
	if err != nil {
		return err
	}

	spec := cronSpec
	if spec == "" {
		spec = scene.Schedule.Cron
	}
	if spec == "" {
		return fmt.Errorf("no schedule given: use --cron or set schedule.cron in the scene")
	}

	renderer, err := rendererFor(scheduleOutput, outputFormat)
	if err != nil {
		return err
	}

	// One simulator for the whole run: every tick draws the next generation.
	sim := simulation.NewSimulator(scene, s)
	out := cmd.OutOrStdout()

	runner, err := schedule.New(spec, func(ctx context.Context) error {
		path, err := renderStill(sim, renderer, scheduleOutput, out)
		if err != nil {
			return err
		}
		logging.Logger().Info("scheduled render finished", "output", path)
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Rendering %s on schedule %q (seed %d), press Ctrl+C to stop\n", scheduleOutput, spec, s)
	return runner.Run(cmd.Context())
}
