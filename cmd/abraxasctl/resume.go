package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wllclngn/ABRAXAS/internal/config"
)

func resumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Clear a manual override and resume solar control",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResume()
		},
	}
}

// runResume writes an inactive override record rather than deleting
// the file outright: the daemon only reconciles override state on an
// IN_CLOSE_WRITE event, which a file removal never produces.
func runResume() error {
	paths, err := config.InitPaths()
	if err != nil {
		return err
	}

	ovr := config.OverrideState{Active: false}
	if err := config.SaveOverride(paths, ovr); err != nil {
		return fmt.Errorf("failed to write override: %w", err)
	}

	fmt.Println("Resume sent. Daemon will return to solar control.")
	return nil
}
