// Package sigmoid computes the smooth day/night color-temperature
// transition curve. Dusk is canonical — day to night over
// DuskDurationMinutes centered on sunset, offset by DuskOffsetMinutes
// to front-load the transition before the sun actually sets. Dawn is
// its inverse: night to day over DawnDurationMinutes centered on
// sunrise. Manual overrides ramp over the same normalized sigmoid on
// [0, duration].
package sigmoid

import (
	"math"
	"time"

	abraxas "github.com/wllclngn/ABRAXAS"
	"github.com/wllclngn/ABRAXAS/internal/solar"
)

func sigmoidRaw(x, steepness float64) float64 {
	return 1.0 / (1.0 + math.Exp(-steepness*x))
}

// Norm rescales sigmoidRaw so that x=-1 maps to 0 and x=1 maps to 1,
// giving a clean [0,1] transition factor over a fixed-width window.
func Norm(x, steepness float64) float64 {
	raw := sigmoidRaw(x, steepness)
	low := sigmoidRaw(-1.0, steepness)
	high := sigmoidRaw(1.0, steepness)
	return (raw - low) / (high - low)
}

// CalculateSolarTemp returns the target Kelvin temperature for a point
// in time expressed as minutes from sunrise and minutes to sunset.
func CalculateSolarTemp(minutesFromSunrise, minutesToSunset float64, isDarkMode bool) int {
	dayTemp := abraxas.TempDayClear
	if isDarkMode {
		dayTemp = abraxas.TempDayDark
	}
	nightTemp := abraxas.TempNight

	dawnHalf := abraxas.DawnDurationMinutes / 2.0
	duskHalf := abraxas.DuskDurationMinutes / 2.0

	if math.Abs(minutesFromSunrise) < dawnHalf {
		x := minutesFromSunrise / dawnHalf
		factor := Norm(x, abraxas.SigmoidSteepness)
		return int(float64(nightTemp) + float64(dayTemp-nightTemp)*factor)
	}

	duskShifted := minutesToSunset - abraxas.DuskOffsetMinutes
	if math.Abs(duskShifted) < duskHalf {
		x := duskShifted / duskHalf
		factor := Norm(x, abraxas.SigmoidSteepness)
		return int(float64(nightTemp) + float64(dayTemp-nightTemp)*factor)
	}

	if minutesFromSunrise >= dawnHalf && duskShifted >= duskHalf {
		return dayTemp
	}

	return nightTemp
}

// CalculateManualTemp ramps from startTemp to targetTemp over
// durationMin minutes starting at startTime, evaluated at now.
func CalculateManualTemp(startTemp, targetTemp int, startTime time.Time, durationMin int, now time.Time) int {
	if durationMin <= 0 {
		return targetTemp
	}

	elapsedMin := now.Sub(startTime).Minutes()
	if elapsedMin >= float64(durationMin) {
		return targetTemp
	}

	x := 2.0*(elapsedMin/float64(durationMin)) - 1.0
	factor := Norm(x, abraxas.SigmoidSteepness)
	return int(float64(startTemp) + float64(targetTemp-startTemp)*factor)
}

// NextTransitionResume computes the next time solar control should
// automatically resume after a manual override: 15 minutes before the
// next dawn or dusk transition window, whichever comes first. Falls
// back to a 24-hour retry when sunrise/sunset cannot be computed
// (polar day/night).
func NextTransitionResume(now time.Time, lat, lon float64) time.Time {
	st, ok := solar.SunriseSunset(now, lat, lon)
	if !ok {
		return now.Add(24 * time.Hour)
	}

	dawnWindowStart := st.Sunrise.Add(-time.Duration(abraxas.DawnDurationMinutes/2.0*60) * time.Second)
	duskWindowStart := st.Sunset.Add(-time.Duration((abraxas.DuskDurationMinutes/2.0+abraxas.DuskOffsetMinutes)*60) * time.Second)

	resumeDawn := dawnWindowStart.Add(-15 * time.Minute)
	resumeDusk := duskWindowStart.Add(-15 * time.Minute)

	var best time.Time
	if resumeDawn.After(now) {
		best = resumeDawn
	}
	if resumeDusk.After(now) && (best.IsZero() || resumeDusk.Before(best)) {
		best = resumeDusk
	}

	if !best.IsZero() {
		return best
	}

	tomorrow := now.Add(24 * time.Hour)
	st2, ok := solar.SunriseSunset(tomorrow, lat, lon)
	if !ok {
		return now.Add(24 * time.Hour)
	}
	return st2.Sunrise.Add(-time.Duration((abraxas.DawnDurationMinutes/2.0+15.0)*60) * time.Second)
}
