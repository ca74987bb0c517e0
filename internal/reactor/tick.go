package reactor

import (
	"time"

	abraxas "github.com/wllclngn/ABRAXAS"
	"github.com/wllclngn/ABRAXAS/internal/config"
	"github.com/wllclngn/ABRAXAS/internal/logging"
	"github.com/wllclngn/ABRAXAS/internal/sigmoid"
	"github.com/wllclngn/ABRAXAS/internal/solar"
)

// recoverOverride adopts an override file left over from before a
// restart. A completed-but-unremoved override is discarded; an
// in-progress one is adopted wholesale, back-patching start_temp if the
// file never recorded one.
func (s *State) recoverOverride() {
	ovr, ok := config.LoadOverride(s.paths)
	if !ok || !ovr.Active {
		return
	}

	now := time.Now()
	elapsedMin := now.Sub(ovr.IssuedAt).Minutes()
	if elapsedMin >= float64(ovr.DurationMinutes) {
		config.ClearOverride(s.paths)
		logging.Default().Infof("[manual] Cleared stale override (completed %.0f min ago)", elapsedMin-float64(ovr.DurationMinutes))
		return
	}

	s.manualMode = true
	s.manualTargetTemp = ovr.TargetTemp
	s.manualDurationMin = ovr.DurationMinutes
	s.manualIssuedAt = ovr.IssuedAt
	s.manualStartTime = ovr.IssuedAt

	if ovr.StartTemp != 0 {
		s.manualStartTemp = ovr.StartTemp
	} else {
		temp := s.solarTemperature(now)
		s.manualStartTemp = temp
		ovr.StartTemp = temp
		if err := config.SaveOverride(s.paths, ovr); err != nil {
			logging.Default().Warn("failed to back-patch override start_temp", "error", err)
		}
	}

	s.manualResumeTime = sigmoid.NextTransitionResume(now, s.location.Lat, s.location.Lon)
	logging.Default().Infof("[manual] Recovered override: -> %dK (%d min)", s.manualTargetTemp, s.manualDurationMin)
}

// solarTemperature evaluates the solar color-temperature curve for now,
// using the reactor's current cached weather to decide dark mode.
func (s *State) solarTemperature(now time.Time) int {
	times, ok := solar.SunriseSunset(now, s.location.Lat, s.location.Lon)

	isDark := s.hasWeather && !s.weather.HasError && s.weather.CloudCover >= abraxas.CloudThreshold

	var minFromSunrise, minToSunset float64
	if ok {
		minFromSunrise = now.Sub(times.Sunrise).Minutes()
		minToSunset = times.Sunset.Sub(now).Minutes()
	}

	return sigmoid.CalculateSolarTemp(minFromSunrise, minToSunset, isDark)
}

// tick is the one function the event loop calls every iteration: it
// reacts to file changes observed by inotify, recomputes the target
// Kelvin value, and applies it to the gamma backend if it moved.
func (s *State) tick(flags eventFlags) {
	now := time.Now()

	if flags.override {
		s.reconcileOverrideFile(now)
	}

	if flags.config {
		if loc, ok := config.LoadLocation(s.paths); ok {
			s.location = loc
			logging.Default().Infof("[config] Location updated: %.4f, %.4f", loc.Lat, loc.Lon)
			if wd, ok := config.LoadWeatherCache(s.paths); ok {
				s.weather = wd
				s.hasWeather = true
			}
		}
	}

	targetTemp := s.computeTargetTemp(now)

	if s.lastTempValid && targetTemp == s.lastTemp {
		return
	}

	s.logTarget(now, targetTemp)

	if err := s.gammaState.SetTemperature(targetTemp, 1.0); err != nil {
		s.metrics.RecordGammaApply(false)
		logging.Default().Warn("gamma set_temperature failed", "error", err)
		return
	}
	s.metrics.RecordGammaApply(true)
	s.lastTemp = targetTemp
	s.lastTempValid = true
}

// reconcileOverrideFile re-reads override.json after inotify reported a
// change and folds it into manual-mode state.
func (s *State) reconcileOverrideFile(now time.Time) {
	ovr, ok := config.LoadOverride(s.paths)
	if !ok {
		return
	}

	if ovr.Active {
		if !s.manualMode || !ovr.IssuedAt.Equal(s.manualIssuedAt) {
			s.manualMode = true
			s.manualTargetTemp = ovr.TargetTemp
			s.manualDurationMin = ovr.DurationMinutes
			s.manualStartTime = ovr.IssuedAt
			s.manualIssuedAt = ovr.IssuedAt

			if s.lastTempValid {
				s.manualStartTemp = s.lastTemp
			} else {
				s.manualStartTemp = ovr.TargetTemp
			}

			if ovr.StartTemp == 0 {
				ovr.StartTemp = s.manualStartTemp
				if err := config.SaveOverride(s.paths, ovr); err != nil {
					logging.Default().Warn("failed to back-patch override start_temp", "error", err)
				}
			}

			s.manualResumeTime = sigmoid.NextTransitionResume(now, s.location.Lat, s.location.Lon)
			s.metrics.RecordOverrideAdoption()

			if s.manualDurationMin > 0 {
				logging.Default().Infof("[manual] Override: %dK -> %dK over %d min", s.manualStartTemp, s.manualTargetTemp, s.manualDurationMin)
			} else {
				logging.Default().Infof("[manual] Override: -> %dK (instant)", s.manualTargetTemp)
			}
		}
	} else if s.manualMode {
		s.manualMode = false
		s.manualIssuedAt = time.Time{}
		config.ClearOverride(s.paths)
		logging.Default().Info("[manual] Override cleared, resuming solar control")
	}
}

// computeTargetTemp evaluates manual or solar control, auto-resuming
// solar control once a completed manual transition reaches its resume
// time, 15 minutes before the next dawn/dusk window starts.
func (s *State) computeTargetTemp(now time.Time) int {
	if !s.manualMode {
		return s.solarTemperature(now)
	}

	temp := sigmoid.CalculateManualTemp(s.manualStartTemp, s.manualTargetTemp, s.manualStartTime, s.manualDurationMin, now)

	elapsedMin := now.Sub(s.manualStartTime).Minutes()
	if elapsedMin >= float64(s.manualDurationMin) && !s.manualResumeTime.IsZero() && !now.Before(s.manualResumeTime) {
		s.manualMode = false
		s.manualIssuedAt = time.Time{}
		config.ClearOverride(s.paths)
		logging.Default().Info("[manual] Auto-resuming solar control (transition window approaching)")
		return s.solarTemperature(now)
	}

	return temp
}

func (s *State) logTarget(now time.Time, targetTemp int) {
	ts := now.Format("15:04:05")

	if s.manualMode {
		elapsedMin := now.Sub(s.manualStartTime).Minutes()
		if s.manualDurationMin > 0 && elapsedMin < float64(s.manualDurationMin) {
			pct := int(elapsedMin / float64(s.manualDurationMin) * 100)
			if pct > 100 {
				pct = 100
			}
			logging.Default().Infof("[%s] Manual: %dK (%d%%)", ts, targetTemp, pct)
		} else {
			logging.Default().Infof("[%s] Manual: %dK (holding)", ts, targetTemp)
		}
		return
	}

	sp := solar.Position(now, s.location.Lat, s.location.Lon)
	cloudCover := 0
	if s.hasWeather {
		cloudCover = s.weather.CloudCover
	}
	logging.Default().Infof("[%s] Solar: %dK (sun: %.1f, clouds: %d%%)", ts, targetTemp, sp.Elevation, cloudCover)
}
