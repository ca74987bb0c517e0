package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wllclngn/ABRAXAS/internal/config"
	"github.com/wllclngn/ABRAXAS/internal/gamma"
)

func resetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear any override and restore the display's native gamma ramp",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReset()
		},
	}
}

func runReset() error {
	paths, err := config.InitPaths()
	if err != nil {
		return err
	}
	config.ClearOverride(paths)

	st, err := gamma.Init(0)
	if err == nil {
		st.Restore()
		st.Close()
	}

	fmt.Println("Screen temperature reset.")
	return nil
}
