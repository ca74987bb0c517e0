package abraxas

import (
	"sync/atomic"
	"time"
)

// LatencyBuckets defines the tick-latency histogram buckets in
// nanoseconds, log-spaced from 1us to 10s.
var LatencyBuckets = []uint64{
	1_000,
	10_000,
	100_000,
	1_000_000,
	10_000_000,
	100_000_000,
	1_000_000_000,
	10_000_000_000,
}

const numLatencyBuckets = 8

// Metrics tracks reactor operational statistics.
type Metrics struct {
	Ticks             atomic.Uint64
	GammaApplies      atomic.Uint64
	GammaFailures     atomic.Uint64
	WeatherFetchesOK  atomic.Uint64
	WeatherFetchesErr atomic.Uint64
	OverrideAdoptions atomic.Uint64
	RingCompletions   atomic.Uint64
	RingCancellations atomic.Uint64

	TotalTickLatencyNs atomic.Uint64
	TickCount          atomic.Uint64
	LatencyBuckets     [numLatencyBuckets]atomic.Uint64

	StartTime atomic.Int64
	StopTime  atomic.Int64
}

// NewMetrics creates a new metrics instance.
func NewMetrics() *Metrics {
	m := &Metrics{}
	m.StartTime.Store(time.Now().UnixNano())
	return m
}

// RecordTick records one reactor tick and its latency.
func (m *Metrics) RecordTick(latencyNs uint64) {
	m.Ticks.Add(1)
	m.TotalTickLatencyNs.Add(latencyNs)
	m.TickCount.Add(1)
	for i, bucket := range LatencyBuckets {
		if latencyNs <= bucket {
			m.LatencyBuckets[i].Add(1)
		}
	}
}

// RecordGammaApply records the result of a gamma backend set_temperature call.
func (m *Metrics) RecordGammaApply(success bool) {
	m.GammaApplies.Add(1)
	if !success {
		m.GammaFailures.Add(1)
	}
}

// RecordWeatherFetch records the outcome of an async weather fetch.
func (m *Metrics) RecordWeatherFetch(success bool) {
	if success {
		m.WeatherFetchesOK.Add(1)
	} else {
		m.WeatherFetchesErr.Add(1)
	}
}

// RecordOverrideAdoption records a manual override being adopted by the reactor.
func (m *Metrics) RecordOverrideAdoption() {
	m.OverrideAdoptions.Add(1)
}

// RecordRingCompletion records one drained completion, tagging whether it
// was the inert cancellation completion.
func (m *Metrics) RecordRingCompletion(cancelled bool) {
	m.RingCompletions.Add(1)
	if cancelled {
		m.RingCancellations.Add(1)
	}
}

// Stop marks the reactor as stopped.
func (m *Metrics) Stop() {
	m.StopTime.Store(time.Now().UnixNano())
}

// MetricsSnapshot is a point-in-time snapshot of Metrics.
type MetricsSnapshot struct {
	Ticks             uint64
	GammaApplies      uint64
	GammaFailures     uint64
	WeatherFetchesOK  uint64
	WeatherFetchesErr uint64
	OverrideAdoptions uint64
	RingCompletions   uint64
	RingCancellations uint64

	AvgTickLatencyNs uint64
	UptimeNs         uint64

	LatencyP50Ns uint64
	LatencyP99Ns uint64

	LatencyHistogram [numLatencyBuckets]uint64

	GammaFailureRate float64
}

// Snapshot returns a consistent point-in-time snapshot of the metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		Ticks:             m.Ticks.Load(),
		GammaApplies:      m.GammaApplies.Load(),
		GammaFailures:     m.GammaFailures.Load(),
		WeatherFetchesOK:  m.WeatherFetchesOK.Load(),
		WeatherFetchesErr: m.WeatherFetchesErr.Load(),
		OverrideAdoptions: m.OverrideAdoptions.Load(),
		RingCompletions:   m.RingCompletions.Load(),
		RingCancellations: m.RingCancellations.Load(),
	}

	totalLatencyNs := m.TotalTickLatencyNs.Load()
	tickCount := m.TickCount.Load()
	if tickCount > 0 {
		snap.AvgTickLatencyNs = totalLatencyNs / tickCount
	}

	startTime := m.StartTime.Load()
	stopTime := m.StopTime.Load()
	if stopTime > 0 {
		snap.UptimeNs = uint64(stopTime - startTime)
	} else {
		snap.UptimeNs = uint64(time.Now().UnixNano() - startTime)
	}

	if snap.GammaApplies > 0 {
		snap.GammaFailureRate = float64(snap.GammaFailures) / float64(snap.GammaApplies) * 100.0
	}

	for i := 0; i < numLatencyBuckets; i++ {
		snap.LatencyHistogram[i] = m.LatencyBuckets[i].Load()
	}

	if tickCount > 0 {
		snap.LatencyP50Ns = m.calculatePercentile(0.50)
		snap.LatencyP99Ns = m.calculatePercentile(0.99)
	}

	return snap
}

// calculatePercentile estimates the latency at the given percentile (0.0-1.0)
// using linear interpolation between histogram buckets.
func (m *Metrics) calculatePercentile(percentile float64) uint64 {
	total := m.TickCount.Load()
	if total == 0 {
		return 0
	}

	targetCount := uint64(float64(total) * percentile)

	prevBucket := uint64(0)
	for i, bucket := range LatencyBuckets {
		bucketCount := m.LatencyBuckets[i].Load()
		if bucketCount >= targetCount {
			prevCount := uint64(0)
			if i > 0 {
				prevCount = m.LatencyBuckets[i-1].Load()
			}
			if bucketCount == prevCount {
				return bucket
			}
			fraction := float64(targetCount-prevCount) / float64(bucketCount-prevCount)
			return prevBucket + uint64(fraction*float64(bucket-prevBucket))
		}
		prevBucket = bucket
	}

	return LatencyBuckets[numLatencyBuckets-1]
}

// Reset zeroes all counters. Useful for testing.
func (m *Metrics) Reset() {
	m.Ticks.Store(0)
	m.GammaApplies.Store(0)
	m.GammaFailures.Store(0)
	m.WeatherFetchesOK.Store(0)
	m.WeatherFetchesErr.Store(0)
	m.OverrideAdoptions.Store(0)
	m.RingCompletions.Store(0)
	m.RingCancellations.Store(0)
	m.TotalTickLatencyNs.Store(0)
	m.TickCount.Store(0)
	for i := 0; i < numLatencyBuckets; i++ {
		m.LatencyBuckets[i].Store(0)
	}
	m.StartTime.Store(time.Now().UnixNano())
	m.StopTime.Store(0)
}
