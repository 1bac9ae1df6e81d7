package cmd

import (
	"fmt"
	"os"

	"github.com/sherine-k/skyline/pkg/config"
	"github.com/spf13/cobra"
)

var force bool

var initCmd = &cobra.Command{
	Use:   "init [file]",
	Short: "Write the built-in scene as a YAML file to start from",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	path := "scene.yaml"
	if len(args) == 1 {
		path = args[0]
	}

	data, err := config.Marshal(config.DefaultScene())
	if err != nil {
		return fmt.Errorf("failed to encode scene: %w", err)
	}

	if path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
