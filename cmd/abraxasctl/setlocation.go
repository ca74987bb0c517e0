package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wllclngn/ABRAXAS/internal/config"
)

func setLocationCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-location LAT,LON",
		Short: "Set the daemon's location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetLocation(args[0])
		},
	}
}

// runSetLocation accepts only the "LAT,LON" form. No ZIP-code database
// ships with this build, so a ZIP argument is rejected with a pointer
// to the form that is supported.
func runSetLocation(locStr string) error {
	parts := strings.Split(locStr, ",")
	if len(parts) != 2 {
		return fmt.Errorf("invalid format, use: LAT,LON (e.g. 41.88,-87.63)")
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return fmt.Errorf("invalid format, use: LAT,LON (e.g. 41.88,-87.63)")
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return fmt.Errorf("invalid format, use: LAT,LON (e.g. 41.88,-87.63)")
	}

	paths, err := config.InitPaths()
	if err != nil {
		return err
	}
	if err := config.SaveLocation(paths, lat, lon); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("Location set to: %.4f, %.4f\n", lat, lon)
	return nil
}
