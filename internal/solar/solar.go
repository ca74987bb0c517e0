// Package solar computes sun elevation and sunrise/sunset times using
// the NOAA solar position equations: Julian day to Julian century,
// geometric mean longitude/anomaly, equation of center, apparent
// longitude, declination, then hour angle.
package solar

import (
	"math"
	"time"
)

// SunPosition is the instantaneous sun position at a given time and
// location, as returned by Position.
type SunPosition struct {
	Elevation float64 // degrees above the horizon
}

// Times is the sunrise/sunset pair for a given day and location.
type Times struct {
	Sunrise time.Time
	Sunset  time.Time
}

func deg2rad(d float64) float64 { return d * math.Pi / 180.0 }
func rad2deg(r float64) float64 { return r * 180.0 / math.Pi }

// params holds the shared NOAA intermediate quantities derived from a
// Julian century value, reused by both Position and SunriseSunset.
type params struct {
	l0        float64 // geometric mean longitude, degrees
	m         float64 // geometric mean anomaly, degrees
	e         float64 // eccentricity of Earth's orbit
	sunDeclin float64 // solar declination, degrees
	eqTime    float64 // equation of time, minutes
}

func julianDay(year, month, day int, hourFrac float64) float64 {
	y, m := year, month
	if month <= 2 {
		y, m = year-1, month+12
	}
	a := y / 100
	b := 2 - a + a/4

	jd := float64(int(365.25*float64(y+4716))) +
		float64(int(30.6001*float64(m+1))) +
		float64(day) + float64(b) - 1524.5
	return jd + hourFrac/24.0
}

func computeParams(jc float64) params {
	l0 := math.Mod(280.46646+jc*(36000.76983+0.0003032*jc), 360.0)
	m := 357.52911 + jc*(35999.05029-0.0001537*jc)
	mRad := deg2rad(m)
	e := 0.016708634 - jc*(0.000042037+0.0000001267*jc)

	c := math.Sin(mRad)*(1.914602-jc*(0.004817+0.000014*jc)) +
		math.Sin(2.0*mRad)*(0.019993-0.000101*jc) +
		math.Sin(3.0*mRad)*0.000289

	sunLon := l0 + c
	omega := 125.04 - 1934.136*jc
	sunApparentLon := sunLon - 0.00569 - 0.00478*math.Sin(deg2rad(omega))

	obliqMean := 23.0 + (26.0+(21.448-jc*(46.815+jc*(0.00059-jc*0.001813)))/60.0)/60.0
	obliqCorr := obliqMean + 0.00256*math.Cos(deg2rad(omega))
	obliqCorrRad := deg2rad(obliqCorr)

	sunDeclin := rad2deg(math.Asin(math.Sin(obliqCorrRad) * math.Sin(deg2rad(sunApparentLon))))

	varY := math.Pow(math.Tan(obliqCorrRad/2.0), 2)
	eqTime := 4.0 * rad2deg(
		varY*math.Sin(2.0*deg2rad(l0))-
			2.0*e*math.Sin(mRad)+
			4.0*e*varY*math.Sin(mRad)*math.Cos(2.0*deg2rad(l0))-
			0.5*varY*varY*math.Sin(4.0*deg2rad(l0))-
			1.25*e*e*math.Sin(2.0*mRad),
	)

	return params{l0: l0, m: m, e: e, sunDeclin: sunDeclin, eqTime: eqTime}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Position computes the sun's elevation angle at the given instant
// and geographic location, in the instant's local timezone.
func Position(when time.Time, lat, lon float64) SunPosition {
	lt := when.Local()
	hourFrac := float64(lt.Hour()) + float64(lt.Minute())/60.0 + float64(lt.Second())/3600.0
	jd := julianDay(lt.Year(), int(lt.Month()), lt.Day(), hourFrac)
	jc := (jd - 2451545.0) / 36525.0

	p := computeParams(jc)

	_, tzOffsetSec := lt.Zone()
	tzOffsetHours := float64(tzOffsetSec) / 3600.0

	timeOffset := p.eqTime + 4.0*lon - 60.0*tzOffsetHours
	tst := float64(lt.Hour())*60.0 + float64(lt.Minute()) + float64(lt.Second())/60.0 + timeOffset

	hourAngle := tst/4.0 - 180.0
	if hourAngle < -180.0 {
		hourAngle += 360.0
	}

	latRad := deg2rad(lat)
	declinRad := deg2rad(p.sunDeclin)
	haRad := deg2rad(hourAngle)

	cosZenith := clamp(
		math.Sin(latRad)*math.Sin(declinRad)+math.Cos(latRad)*math.Cos(declinRad)*math.Cos(haRad),
		-1.0, 1.0,
	)
	zenith := rad2deg(math.Acos(cosZenith))

	return SunPosition{Elevation: 90.0 - zenith}
}

// SunriseSunset computes sunrise and sunset for the given day (in its
// own local timezone) and location. Returns false for the ok result in
// polar day/night, where the sun never crosses the horizon.
func SunriseSunset(when time.Time, lat, lon float64) (Times, bool) {
	lt := when.Local()
	jd := julianDay(lt.Year(), int(lt.Month()), lt.Day(), 12.0)
	jc := (jd - 2451545.0) / 36525.0

	p := computeParams(jc)

	const zenith = 90.833
	latRad := deg2rad(lat)
	declinRad := deg2rad(p.sunDeclin)

	cosHA := math.Cos(deg2rad(zenith))/(math.Cos(latRad)*math.Cos(declinRad)) -
		math.Tan(latRad)*math.Tan(declinRad)
	if cosHA < -1.0 || cosHA > 1.0 {
		return Times{}, false
	}

	ha := rad2deg(math.Acos(cosHA))
	_, tzOffsetSec := lt.Zone()
	tzOffsetHours := float64(tzOffsetSec) / 3600.0

	sunriseMin := 720.0 - 4.0*(lon+ha) - p.eqTime + tzOffsetHours*60.0
	sunsetMin := 720.0 - 4.0*(lon-ha) - p.eqTime + tzOffsetHours*60.0

	midnight := time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, lt.Location())

	return Times{
		Sunrise: midnight.Add(time.Duration(sunriseMin * float64(time.Minute))),
		Sunset:  midnight.Add(time.Duration(sunsetMin * float64(time.Minute))),
	}, true
}
