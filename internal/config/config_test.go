package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testPaths(t *testing.T) Paths {
	t.Helper()
	dir := t.TempDir()
	return Paths{
		ConfigFile:   filepath.Join(dir, "config.ini"),
		CacheFile:    filepath.Join(dir, "weather_cache.json"),
		OverrideFile: filepath.Join(dir, "override.json"),
		PIDFile:      filepath.Join(dir, "daemon.pid"),
	}
}

func TestSaveAndLoadLocation(t *testing.T) {
	p := testPaths(t)
	if err := SaveLocation(p, 40.712776, -74.005974); err != nil {
		t.Fatalf("SaveLocation: %v", err)
	}
	loc, ok := LoadLocation(p)
	if !ok {
		t.Fatal("LoadLocation reported not-found after SaveLocation")
	}
	if loc.Lat != 40.712776 || loc.Lon != -74.005974 {
		t.Errorf("loaded location = %+v, want 40.712776,-74.005974", loc)
	}
}

func TestLoadLocationMissingFile(t *testing.T) {
	p := testPaths(t)
	if _, ok := LoadLocation(p); ok {
		t.Error("expected not-found for a missing config file")
	}
}

func TestSaveAndLoadOverride(t *testing.T) {
	p := testPaths(t)
	want := OverrideState{
		Active:          true,
		TargetTemp:      4000,
		DurationMinutes: 30,
		IssuedAt:        time.Now().Truncate(time.Second),
		StartTemp:       6500,
	}
	if err := SaveOverride(p, want); err != nil {
		t.Fatalf("SaveOverride: %v", err)
	}
	got, ok := LoadOverride(p)
	if !ok {
		t.Fatal("LoadOverride reported not-found after SaveOverride")
	}
	if got != want {
		t.Errorf("loaded override = %+v, want %+v", got, want)
	}
}

func TestLoadOverrideRejectsOversizedFile(t *testing.T) {
	p := testPaths(t)
	big := make([]byte, 5000)
	for i := range big {
		big[i] = ' '
	}
	if err := os.WriteFile(p.OverrideFile, big, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok := LoadOverride(p); ok {
		t.Error("expected LoadOverride to reject a file over the size ceiling")
	}
}

func TestClearOverride(t *testing.T) {
	p := testPaths(t)
	SaveOverride(p, OverrideState{Active: true})
	ClearOverride(p)
	if _, ok := LoadOverride(p); ok {
		t.Error("expected no override after ClearOverride")
	}
}

func TestSaveAndLoadWeatherCache(t *testing.T) {
	p := testPaths(t)
	want := WeatherData{
		CloudCover:  40,
		Forecast:    "partly cloudy",
		Temperature: 18.5,
		IsDay:       true,
		FetchedAt:   time.Now().Truncate(time.Second),
	}
	if err := SaveWeatherCache(p, want); err != nil {
		t.Fatalf("SaveWeatherCache: %v", err)
	}
	got, ok := LoadWeatherCache(p)
	if !ok {
		t.Fatal("LoadWeatherCache reported not-found after save")
	}
	if got.CloudCover != want.CloudCover || got.Forecast != want.Forecast || got.HasError {
		t.Errorf("loaded weather cache = %+v, want %+v", got, want)
	}
}

func TestWeatherCacheErrorRoundtrip(t *testing.T) {
	p := testPaths(t)
	wd := WeatherData{HasError: true, FetchedAt: time.Now()}
	if err := SaveWeatherCache(p, wd); err != nil {
		t.Fatalf("SaveWeatherCache: %v", err)
	}
	got, ok := LoadWeatherCache(p)
	if !ok {
		t.Fatal("LoadWeatherCache reported not-found")
	}
	if !got.HasError {
		t.Error("expected HasError true for an errored cache entry")
	}
}

func TestWeatherNeedsRefresh(t *testing.T) {
	fresh := WeatherData{FetchedAt: time.Now()}
	if WeatherNeedsRefresh(fresh) {
		t.Error("freshly-fetched weather should not need refresh")
	}

	stale := WeatherData{FetchedAt: time.Now().Add(-2 * time.Hour)}
	if !WeatherNeedsRefresh(stale) {
		t.Error("2-hour-old weather should need refresh")
	}

	errored := WeatherData{HasError: true, FetchedAt: time.Now()}
	if !WeatherNeedsRefresh(errored) {
		t.Error("errored weather should always need refresh")
	}
}

func TestWritePIDAndCheckDaemonAlive(t *testing.T) {
	p := testPaths(t)
	if err := WritePID(p); err != nil {
		t.Fatalf("WritePID: %v", err)
	}
	if !CheckDaemonAlive(p) {
		t.Error("expected CheckDaemonAlive to report true for our own PID")
	}
	RemovePID(p)
	if CheckDaemonAlive(p) {
		t.Error("expected CheckDaemonAlive to report false after RemovePID")
	}
}
