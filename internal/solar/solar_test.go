package solar

import (
	"testing"
	"time"
)

func TestPositionNoonIsHigherThanMidnight(t *testing.T) {
	loc := time.UTC
	day := time.Date(2026, 6, 21, 0, 0, 0, 0, loc)

	noon := Position(day.Add(12*time.Hour), 40.0, -74.0)
	midnight := Position(day, 40.0, -74.0)

	if noon.Elevation <= midnight.Elevation {
		t.Errorf("expected noon elevation (%.2f) > midnight elevation (%.2f)",
			noon.Elevation, midnight.Elevation)
	}
}

func TestSunriseBeforeSunset(t *testing.T) {
	day := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	times, ok := SunriseSunset(day, 40.0, -74.0)
	if !ok {
		t.Fatal("expected ok for a mid-latitude equinox day")
	}
	if !times.Sunrise.Before(times.Sunset) {
		t.Errorf("sunrise %v not before sunset %v", times.Sunrise, times.Sunset)
	}
}

func TestPolarNightReturnsNotOK(t *testing.T) {
	day := time.Date(2026, 12, 21, 0, 0, 0, 0, time.UTC)
	_, ok := SunriseSunset(day, 89.0, 0.0)
	if ok {
		t.Error("expected polar night at latitude 89 on the winter solstice to report no sunrise/sunset")
	}
}

func TestElevationSymmetricAroundNoonApprox(t *testing.T) {
	// Solar noon at longitude -74 falls near 16:58 UTC.
	day := time.Date(2026, 6, 21, 0, 0, 0, 0, time.UTC)
	before := Position(day.Add(15*time.Hour), 40.0, -74.0)
	after := Position(day.Add(19*time.Hour), 40.0, -74.0)

	diff := before.Elevation - after.Elevation
	if diff < -5 || diff > 5 {
		t.Errorf("expected roughly symmetric elevation around solar noon, got %.2f vs %.2f", before.Elevation, after.Elevation)
	}
}
