package sigmoid

import (
	"testing"
	"time"
)

func TestNormEndpoints(t *testing.T) {
	if got := Norm(-1.0, 6.0); got < -0.001 || got > 0.001 {
		t.Errorf("Norm(-1) = %v, want ~0", got)
	}
	if got := Norm(1.0, 6.0); got < 0.999 || got > 1.001 {
		t.Errorf("Norm(1) = %v, want ~1", got)
	}
}

func TestCalculateSolarTempDaytime(t *testing.T) {
	got := CalculateSolarTemp(200, 200, false)
	if got != 6500 {
		t.Errorf("daytime temp = %d, want 6500 (TempDayClear)", got)
	}
}

func TestCalculateSolarTempNight(t *testing.T) {
	got := CalculateSolarTemp(-500, -500, false)
	if got != 2900 {
		t.Errorf("night temp = %d, want 2900 (TempNight)", got)
	}
}

func TestCalculateSolarTempDarkModeUsesDarkDayTemp(t *testing.T) {
	got := CalculateSolarTemp(200, 200, true)
	if got != 4500 {
		t.Errorf("dark-mode daytime temp = %d, want 4500 (TempDayDark)", got)
	}
}

func TestCalculateManualTempRampsMonotonically(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := CalculateManualTemp(3000, 6000, start, 30, start)
	b := CalculateManualTemp(3000, 6000, start, 30, start.Add(15*time.Minute))
	c := CalculateManualTemp(3000, 6000, start, 30, start.Add(30*time.Minute))

	if !(a <= b && b <= c) {
		t.Errorf("expected monotonic ramp, got %d, %d, %d", a, b, c)
	}
	if c != 6000 {
		t.Errorf("at/after duration elapsed, want exactly target temp, got %d", c)
	}
}

func TestCalculateManualTempZeroDurationJumpsImmediately(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	got := CalculateManualTemp(3000, 6000, start, 0, start)
	if got != 6000 {
		t.Errorf("zero-duration override = %d, want target 6000 immediately", got)
	}
}

func TestNextTransitionResumeIsInFuture(t *testing.T) {
	now := time.Date(2026, 6, 21, 12, 0, 0, 0, time.UTC)
	resume := NextTransitionResume(now, 40.0, -74.0)
	if !resume.After(now) {
		t.Errorf("expected resume time %v to be after now %v", resume, now)
	}
}
