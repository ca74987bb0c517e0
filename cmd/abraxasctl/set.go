package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	abraxas "github.com/wllclngn/ABRAXAS"
	"github.com/wllclngn/ABRAXAS/internal/config"
)

func setCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set TEMP [MINUTES]",
		Short: "Manually override color temperature for a duration",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			temp, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid temperature: %s", args[0])
			}

			duration := 3
			if len(args) == 2 {
				duration, err = strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("invalid duration: %s", args[1])
				}
			}

			return runSet(temp, duration)
		},
	}
}

// runSet validates temp against the daemon's bounds and writes an
// override file with StartTemp left at zero — when the daemon adopts
// the override it back-patches it with the temperature it last applied
// (or the target, if it has applied none yet).
func runSet(targetTemp, durationMin int) error {
	if targetTemp < abraxas.TempMin || targetTemp > abraxas.TempMax {
		return fmt.Errorf("temperature must be between %dK and %dK", abraxas.TempMin, abraxas.TempMax)
	}

	paths, err := config.InitPaths()
	if err != nil {
		return err
	}

	ovr := config.OverrideState{
		Active:          true,
		TargetTemp:      targetTemp,
		DurationMinutes: durationMin,
		IssuedAt:        time.Now(),
		StartTemp:       0,
	}
	if err := config.SaveOverride(paths, ovr); err != nil {
		return fmt.Errorf("failed to write override: %w", err)
	}

	if durationMin > 0 {
		fmt.Printf("Override: -> %dK over %d min (sigmoid)\n", targetTemp, durationMin)
	} else {
		fmt.Printf("Override: -> %dK (instant)\n", targetTemp)
	}
	fmt.Println("Daemon will process on next tick (up to 60s).")
	return nil
}
