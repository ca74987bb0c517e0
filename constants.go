// Package abraxas adjusts display gamma ramps to track a
// time-and-weather-dependent color temperature curve.
package abraxas

import "time"

// Temperature bounds, in Kelvin.
const (
	TempMin = 1000
	TempMax = 25000
)

// Temperature targets, in Kelvin.
const (
	TempDayClear = 6500
	TempDayDark  = 4500
	TempNight    = 2900
)

// CloudThreshold is the cloud-cover percentage at or above which daytime
// color temperature drops into dark mode.
const CloudThreshold = 75

// Refresh/update intervals.
const (
	WeatherRefreshInterval = 900 * time.Second
	TickInterval           = 60 * time.Second
)

// Sigmoid transition windows, in minutes, and the dusk centering offset.
const (
	DawnDurationMinutes = 90.0
	DuskDurationMinutes = 120.0
	DuskOffsetMinutes   = 20.0
	SigmoidSteepness    = 6.0
)

// Gamma backend init retry policy: how long the reactor keeps retrying
// backend detection on startup before giving up.
const (
	GammaInitRetries  = 60
	GammaInitInterval = 500 * time.Millisecond
)

// Persisted-file size ceilings, enforced when reading override and
// weather cache files back off disk.
const (
	MaxOverrideFileBytes = 4096
	MaxWeatherCacheBytes = 8192
)

// Weather fetcher subprocess deadline.
const WeatherFetchDeadline = 5 * time.Second
