package main

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/spf13/cobra"

	abraxas "github.com/wllclngn/ABRAXAS"
	"github.com/wllclngn/ABRAXAS/internal/config"
	"github.com/wllclngn/ABRAXAS/internal/weather"
)

func refreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Force an immediate weather refresh",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRefresh()
		},
	}
}

// runRefresh drives the reactor's own non-blocking fetch state machine
// to completion synchronously, by blocking on poll between pumps
// instead of interleaving it with other descriptors. This is the one
// place that state machine runs outside the reactor's event loop.
func runRefresh() error {
	paths, err := config.InitPaths()
	if err != nil {
		return err
	}
	loc, ok := config.LoadLocation(paths)
	if !ok {
		return fmt.Errorf("no location configured, run: abraxasctl set-location LAT,LON")
	}

	fmt.Println("Fetching weather...")

	fetch := weather.New()
	fd, err := fetch.Start(loc.Lat, loc.Lon)
	if err != nil {
		return fmt.Errorf("weather fetch failed to start: %w", err)
	}

	deadlineMs := int(abraxas.WeatherFetchDeadline.Milliseconds()) * 3

	for {
		pfd := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		if _, err := unix.Poll(pfd, deadlineMs); err != nil {
			fetch.Abort()
			return fmt.Errorf("weather fetch poll: %w", err)
		}

		newFD, snapshot, done, err := fetch.Pump()
		if err != nil {
			return fmt.Errorf("weather fetch failed: %w", err)
		}
		if !done {
			fd = newFD
			continue
		}

		if snapshot.HasError {
			return fmt.Errorf("weather fetch failed")
		}

		if err := config.SaveWeatherCache(paths, snapshot); err != nil {
			return fmt.Errorf("failed to save weather cache: %w", err)
		}

		fmt.Printf("Weather: %s\n", snapshot.Forecast)
		fmt.Printf("Cloud cover: %d%%\n", snapshot.CloudCover)
		return nil
	}
}
