// Package config resolves daemon filesystem paths under
// ~/.config/abraxas and persists location, override, and weather-cache
// state: an INI file for location, JSON files for the rest.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	abraxas "github.com/wllclngn/ABRAXAS"
)

// Paths holds the resolved filesystem locations this daemon reads and
// writes under the user's config directory.
type Paths struct {
	ConfigFile   string
	CacheFile    string
	OverrideFile string
	PIDFile      string
}

// InitPaths resolves and creates ~/.config/abraxas if missing.
func InitPaths() (Paths, error) {
	home := os.Getenv("HOME")
	if home == "" {
		return Paths{}, fmt.Errorf("config: HOME not set")
	}

	dir := filepath.Join(home, ".config", "abraxas")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Paths{}, fmt.Errorf("config: create config dir: %w", err)
	}

	return Paths{
		ConfigFile:   filepath.Join(dir, "config.ini"),
		CacheFile:    filepath.Join(dir, "weather_cache.json"),
		OverrideFile: filepath.Join(dir, "override.json"),
		PIDFile:      filepath.Join(dir, "daemon.pid"),
	}, nil
}

// Location is a geographic coordinate pair.
type Location struct {
	Lat float64
	Lon float64
}

// LoadLocation parses the [location] section of config.ini. Returns
// false if the file is missing, unreadable, or missing either key.
func LoadLocation(p Paths) (Location, bool) {
	content, err := os.ReadFile(p.ConfigFile)
	if err != nil {
		return Location{}, false
	}

	var lat, lon *float64
	inLocation := false

	for _, line := range strings.Split(string(content), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, ";") {
			continue
		}
		if strings.HasPrefix(trimmed, "[") {
			inLocation = trimmed == "[location]"
			continue
		}
		if !inLocation {
			continue
		}
		key, value, ok := strings.Cut(trimmed, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		switch key {
		case "latitude":
			if v, err := strconv.ParseFloat(value, 64); err == nil {
				lat = &v
			}
		case "longitude":
			if v, err := strconv.ParseFloat(value, 64); err == nil {
				lon = &v
			}
		}
	}

	if lat == nil || lon == nil {
		return Location{}, false
	}
	return Location{Lat: *lat, Lon: *lon}, true
}

// SaveLocation writes a fresh config.ini with a single [location]
// section, overwriting anything previously there.
func SaveLocation(p Paths, lat, lon float64) error {
	content := fmt.Sprintf("[location]\nlatitude = %.6f\nlongitude = %.6f\n", lat, lon)
	return os.WriteFile(p.ConfigFile, []byte(content), 0o644)
}

// OverrideState is a manual color-temperature override in progress.
type OverrideState struct {
	Active          bool
	TargetTemp      int
	DurationMinutes int
	IssuedAt        time.Time
	StartTemp       int
}

// overrideJSON is the on-disk shape of override.json: issued_at is an
// epoch-seconds int, matching spec.md §6's documented wire format (and
// the Rust original's i64), not Go's default RFC3339 time.Time encoding.
type overrideJSON struct {
	Active          bool  `json:"active"`
	TargetTemp      int   `json:"target_temp"`
	DurationMinutes int   `json:"duration_minutes"`
	IssuedAt        int64 `json:"issued_at"`
	StartTemp       int   `json:"start_temp"`
}

// LoadOverride reads override.json, rejecting files over the size
// ceiling and treating any parse failure as "no active override".
func LoadOverride(p Paths) (OverrideState, bool) {
	info, err := os.Stat(p.OverrideFile)
	if err != nil || info.Size() > abraxas.MaxOverrideFileBytes {
		return OverrideState{}, false
	}
	content, err := os.ReadFile(p.OverrideFile)
	if err != nil {
		return OverrideState{}, false
	}
	var raw overrideJSON
	if err := json.Unmarshal(content, &raw); err != nil {
		return OverrideState{}, false
	}
	return OverrideState{
		Active:          raw.Active,
		TargetTemp:      raw.TargetTemp,
		DurationMinutes: raw.DurationMinutes,
		IssuedAt:        time.Unix(raw.IssuedAt, 0),
		StartTemp:       raw.StartTemp,
	}, true
}

// SaveOverride writes override.json.
func SaveOverride(p Paths, ovr OverrideState) error {
	raw := overrideJSON{
		Active:          ovr.Active,
		TargetTemp:      ovr.TargetTemp,
		DurationMinutes: ovr.DurationMinutes,
		IssuedAt:        ovr.IssuedAt.Unix(),
		StartTemp:       ovr.StartTemp,
	}
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("config: marshal override: %w", err)
	}
	return os.WriteFile(p.OverrideFile, data, 0o644)
}

// ClearOverride removes override.json; a missing file is not an error.
func ClearOverride(p Paths) {
	os.Remove(p.OverrideFile)
}

// WeatherData is the daemon's last-known weather observation.
type WeatherData struct {
	CloudCover  int
	Forecast    string
	Temperature float64
	IsDay       bool
	FetchedAt   time.Time
	HasError    bool
}

// weatherCacheJSON is the on-disk shape of weather_cache.json.
type weatherCacheJSON struct {
	CloudCover  int    `json:"cloud_cover"`
	Forecast    string `json:"forecast,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
	IsDay       bool   `json:"is_day,omitempty"`
	FetchedAt   int64  `json:"fetched_at,omitempty"`
	Error       string `json:"error,omitempty"`
}

// LoadWeatherCache reads weather_cache.json, rejecting files over the
// size ceiling.
func LoadWeatherCache(p Paths) (WeatherData, bool) {
	info, err := os.Stat(p.CacheFile)
	if err != nil || info.Size() > abraxas.MaxWeatherCacheBytes {
		return WeatherData{}, false
	}
	content, err := os.ReadFile(p.CacheFile)
	if err != nil {
		return WeatherData{}, false
	}
	var cached weatherCacheJSON
	if err := json.Unmarshal(content, &cached); err != nil {
		return WeatherData{}, false
	}

	hasError := cached.Error != "" || cached.FetchedAt == 0
	return WeatherData{
		CloudCover:  cached.CloudCover,
		Forecast:    cached.Forecast,
		Temperature: cached.Temperature,
		IsDay:       cached.IsDay,
		FetchedAt:   time.Unix(cached.FetchedAt, 0),
		HasError:    hasError,
	}, true
}

// SaveWeatherCache writes weather_cache.json. A HasError observation
// is persisted as a zeroed-out record plus an error string, matching
// the original daemon's "don't cache stale numeric data on failure"
// behavior.
func SaveWeatherCache(p Paths, wd WeatherData) error {
	var cached weatherCacheJSON
	if wd.HasError {
		cached = weatherCacheJSON{IsDay: true, FetchedAt: wd.FetchedAt.Unix(), Error: "fetch failed"}
	} else {
		cached = weatherCacheJSON{
			CloudCover:  wd.CloudCover,
			Forecast:    wd.Forecast,
			Temperature: wd.Temperature,
			IsDay:       wd.IsDay,
			FetchedAt:   wd.FetchedAt.Unix(),
		}
	}

	data, err := json.MarshalIndent(cached, "", "  ")
	if err != nil {
		return fmt.Errorf("config: marshal weather cache: %w", err)
	}
	return os.WriteFile(p.CacheFile, data, 0o644)
}

// WeatherNeedsRefresh reports whether wd is missing, errored, or past
// the refresh interval.
func WeatherNeedsRefresh(wd WeatherData) bool {
	if wd.HasError || wd.FetchedAt.IsZero() {
		return true
	}
	return time.Since(wd.FetchedAt) > abraxas.WeatherRefreshInterval
}

// CheckDaemonAlive reads the PID file and sends that PID signal 0 (a
// no-op liveness probe) to test whether a daemon instance is already running.
func CheckDaemonAlive(p Paths) bool {
	content, err := os.ReadFile(p.PIDFile)
	if err != nil {
		return false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(content)))
	if err != nil || pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}

// WritePID writes the current process's PID to the PID file.
func WritePID(p Paths) error {
	return os.WriteFile(p.PIDFile, []byte(fmt.Sprintf("%d\n", os.Getpid())), 0o644)
}

// RemovePID removes the PID file; a missing file is not an error.
func RemovePID(p Paths) {
	os.Remove(p.PIDFile)
}
