package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	abraxas "github.com/wllclngn/ABRAXAS"
	"github.com/wllclngn/ABRAXAS/internal/config"
	"github.com/wllclngn/ABRAXAS/internal/sigmoid"
	"github.com/wllclngn/ABRAXAS/internal/solar"
)

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show current location, weather, and color-temperature mode",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus()
		},
	}
}

func runStatus() error {
	paths, err := config.InitPaths()
	if err != nil {
		return err
	}

	loc, ok := config.LoadLocation(paths)
	if !ok {
		return fmt.Errorf("no location configured, run: abraxasctl set-location LAT,LON")
	}

	bold := color.New(color.Bold).SprintFunc()
	fmt.Printf("Location: %.4f, %.4f\n\n", loc.Lat, loc.Lon)

	now := time.Now()
	times, hasTimes := solar.SunriseSunset(now, loc.Lat, loc.Lon)
	sp := solar.Position(now, loc.Lat, loc.Lon)

	fmt.Printf("Date: %s\n", now.Format("2006-01-02 15:04:05"))
	if hasTimes {
		fmt.Printf("Sunrise: %s\n", times.Sunrise.Format("15:04"))
		fmt.Printf("Sunset: %s\n", times.Sunset.Format("15:04"))
	} else {
		fmt.Println("Sunrise/Sunset: N/A (polar region)")
	}
	fmt.Printf("Sun elevation: %.1f degrees\n\n", sp.Elevation)

	wd, hasWeather := config.LoadWeatherCache(paths)
	if hasWeather && !wd.HasError {
		fmt.Printf("Weather: %s\n", wd.Forecast)
		fmt.Printf("Cloud cover: %d%%\n", wd.CloudCover)
		fmt.Printf("Last updated: %s\n", wd.FetchedAt.Format("2006-01-02 15:04:05"))
	} else {
		fmt.Println("Weather: Not available")
	}
	fmt.Println()

	if ovr, ok := config.LoadOverride(paths); ok && ovr.Active {
		fmt.Printf("Mode: %s\n", color.CyanString("MANUAL OVERRIDE"))
		fmt.Printf("Target: %dK over %d min\n", ovr.TargetTemp, ovr.DurationMinutes)
		fmt.Printf("Issued: %s\n", ovr.IssuedAt.Format("2006-01-02 15:04:05"))
		return nil
	}

	isDark := hasWeather && !wd.HasError && wd.CloudCover >= abraxas.CloudThreshold

	var minFromSunrise, minToSunset float64
	if hasTimes {
		minFromSunrise = now.Sub(times.Sunrise).Minutes()
		minToSunset = times.Sunset.Sub(now).Minutes()
	}
	temp := sigmoid.CalculateSolarTemp(minFromSunrise, minToSunset, isDark)

	modeLabel := color.GreenString("CLEAR")
	if isDark {
		modeLabel = color.YellowString("DARK")
	}
	fmt.Printf("Mode: %s\n", bold(modeLabel))
	fmt.Printf("Target temperature: %dK\n", temp)
	return nil
}
