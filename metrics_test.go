package abraxas

import (
	"testing"
	"time"
)

func TestMetricsInitialState(t *testing.T) {
	m := NewMetrics()
	snap := m.Snapshot()
	if snap.Ticks != 0 {
		t.Errorf("Expected 0 initial ticks, got %d", snap.Ticks)
	}
}

func TestMetricsTicksAndGamma(t *testing.T) {
	m := NewMetrics()

	m.RecordTick(1_000_000)
	m.RecordTick(2_000_000)
	m.RecordGammaApply(true)
	m.RecordGammaApply(false)

	snap := m.Snapshot()
	if snap.Ticks != 2 {
		t.Errorf("Expected 2 ticks, got %d", snap.Ticks)
	}
	if snap.GammaApplies != 2 {
		t.Errorf("Expected 2 gamma applies, got %d", snap.GammaApplies)
	}
	if snap.GammaFailures != 1 {
		t.Errorf("Expected 1 gamma failure, got %d", snap.GammaFailures)
	}
	if snap.GammaFailureRate < 49 || snap.GammaFailureRate > 51 {
		t.Errorf("Expected ~50%% gamma failure rate, got %.1f%%", snap.GammaFailureRate)
	}
}

func TestMetricsWeatherAndOverride(t *testing.T) {
	m := NewMetrics()

	m.RecordWeatherFetch(true)
	m.RecordWeatherFetch(false)
	m.RecordOverrideAdoption()

	snap := m.Snapshot()
	if snap.WeatherFetchesOK != 1 {
		t.Errorf("Expected 1 successful weather fetch, got %d", snap.WeatherFetchesOK)
	}
	if snap.WeatherFetchesErr != 1 {
		t.Errorf("Expected 1 failed weather fetch, got %d", snap.WeatherFetchesErr)
	}
	if snap.OverrideAdoptions != 1 {
		t.Errorf("Expected 1 override adoption, got %d", snap.OverrideAdoptions)
	}
}

func TestMetricsRingCompletions(t *testing.T) {
	m := NewMetrics()

	m.RecordRingCompletion(false)
	m.RecordRingCompletion(false)
	m.RecordRingCompletion(true)

	snap := m.Snapshot()
	if snap.RingCompletions != 3 {
		t.Errorf("Expected 3 ring completions, got %d", snap.RingCompletions)
	}
	if snap.RingCancellations != 1 {
		t.Errorf("Expected 1 ring cancellation, got %d", snap.RingCancellations)
	}
}

func TestMetricsLatency(t *testing.T) {
	m := NewMetrics()

	m.RecordTick(1_000_000)
	m.RecordTick(2_000_000)

	snap := m.Snapshot()
	expectedAvgNs := uint64(1_500_000)
	if snap.AvgTickLatencyNs != expectedAvgNs {
		t.Errorf("Expected avg latency %d ns, got %d ns", expectedAvgNs, snap.AvgTickLatencyNs)
	}
}

func TestMetricsUptime(t *testing.T) {
	m := NewMetrics()

	time.Sleep(10 * time.Millisecond)

	snap := m.Snapshot()
	if snap.UptimeNs < 10*1_000_000 {
		t.Errorf("Expected uptime >= 10ms, got %d ns", snap.UptimeNs)
	}

	m.Stop()
	time.Sleep(5 * time.Millisecond)

	snap2 := m.Snapshot()
	if snap2.UptimeNs > snap.UptimeNs+10*1_000_000 {
		t.Errorf("Uptime increased too much after stop: %d -> %d", snap.UptimeNs, snap2.UptimeNs)
	}
}

func TestMetricsReset(t *testing.T) {
	m := NewMetrics()

	m.RecordTick(1_000_000)
	m.RecordGammaApply(true)

	snap := m.Snapshot()
	if snap.Ticks == 0 {
		t.Error("Expected some ticks before reset")
	}

	m.Reset()

	snap = m.Snapshot()
	if snap.Ticks != 0 {
		t.Errorf("Expected 0 ticks after reset, got %d", snap.Ticks)
	}
	if snap.GammaApplies != 0 {
		t.Errorf("Expected 0 gamma applies after reset, got %d", snap.GammaApplies)
	}
}

func TestMetricsHistogramPercentiles(t *testing.T) {
	m := NewMetrics()

	for i := 0; i < 50; i++ {
		m.RecordTick(500_000) // 500us
	}
	for i := 0; i < 49; i++ {
		m.RecordTick(5_000_000) // 5ms
	}
	m.RecordTick(50_000_000) // 50ms, roughly P99

	snap := m.Snapshot()

	if snap.Ticks != 100 {
		t.Errorf("Expected 100 total ticks, got %d", snap.Ticks)
	}

	if snap.LatencyP50Ns < 100_000 || snap.LatencyP50Ns > 1_000_000 {
		t.Errorf("Expected P50 in 100us-1ms range, got %d ns", snap.LatencyP50Ns)
	}
	if snap.LatencyP99Ns < 5_000_000 || snap.LatencyP99Ns > 100_000_000 {
		t.Errorf("Expected P99 in 5ms-100ms range, got %d ns", snap.LatencyP99Ns)
	}

	totalInBuckets := uint64(0)
	for i := 0; i < len(snap.LatencyHistogram); i++ {
		totalInBuckets += snap.LatencyHistogram[i]
	}
	if totalInBuckets == 0 {
		t.Error("Expected histogram buckets to be populated")
	}
}
