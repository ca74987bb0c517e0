package reactor

import (
	"testing"
	"time"

	"github.com/wllclngn/ABRAXAS/internal/config"
)

func TestSolarTemperatureClearNoon(t *testing.T) {
	s := New(config.Location{Lat: 41.88, Lon: -87.63}, config.Paths{})
	s.hasWeather = true
	s.weather = config.WeatherData{CloudCover: 10, HasError: false}

	noon := time.Date(2026, 6, 21, 12, 0, 0, 0, time.UTC)
	if got := s.solarTemperature(noon); got != 6500 {
		t.Errorf("solarTemperature at clear noon = %d, want 6500", got)
	}
}

func TestSolarTemperatureOvercastNoon(t *testing.T) {
	s := New(config.Location{Lat: 41.88, Lon: -87.63}, config.Paths{})
	s.hasWeather = true
	s.weather = config.WeatherData{CloudCover: 90, HasError: false}

	noon := time.Date(2026, 6, 21, 12, 0, 0, 0, time.UTC)
	if got := s.solarTemperature(noon); got != 4500 {
		t.Errorf("solarTemperature at overcast noon = %d, want 4500", got)
	}
}

func TestComputeTargetTempManualModeRamps(t *testing.T) {
	s := New(config.Location{Lat: 41.88, Lon: -87.63}, config.Paths{})
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.manualMode = true
	s.manualStartTemp = 3000
	s.manualTargetTemp = 6000
	s.manualStartTime = start
	s.manualDurationMin = 30
	s.manualResumeTime = start.Add(48 * time.Hour)

	got := s.computeTargetTemp(start)
	if got != 3000 {
		t.Errorf("computeTargetTemp at t=0 = %d, want start temp 3000", got)
	}
	if !s.manualMode {
		t.Error("expected manual mode to remain on before resume window")
	}
}

func TestComputeTargetTempAutoResumesAfterWindow(t *testing.T) {
	s := New(config.Location{Lat: 41.88, Lon: -87.63}, config.Paths{})
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.manualMode = true
	s.manualStartTemp = 3000
	s.manualTargetTemp = 6000
	s.manualStartTime = start
	s.manualDurationMin = 30
	s.manualResumeTime = start.Add(31 * time.Minute)

	now := start.Add(32 * time.Minute)
	s.computeTargetTemp(now)
	if s.manualMode {
		t.Error("expected manual mode to end once elapsed >= duration and now >= resumeTime")
	}
}
