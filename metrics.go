package goStrength

import (
	"sync/atomic"
	"time"
)

// MetricID identifies a counter or histogram tracked by [Metrics].
type MetricID uint16

const (
	// MetricLoadStarted counts fetches started by the loader.
	MetricLoadStarted MetricID = iota
	// MetricLoadSucceeded counts loads whose capability was confirmed.
	MetricLoadSucceeded
	// MetricLoadFailed counts fetch or bundle failures.
	MetricLoadFailed
	// MetricLoadTimeout counts loads whose capability never appeared.
	MetricLoadTimeout
	// MetricConfigError counts triggers rejected for a missing source.
	MetricConfigError
	// MetricCallbackQueued counts readiness callbacks deferred until load.
	MetricCallbackQueued
	// MetricCallbackImmediate counts readiness callbacks run synchronously.
	MetricCallbackImmediate
	// MetricCallbackFailed counts readiness callbacks that panicked.
	MetricCallbackFailed
	// MetricEstimate counts engine estimates.
	MetricEstimate
	// MetricEstimateUnknown counts estimates that returned the unknown sentinel.
	MetricEstimateUnknown
	// MetricEstimateNotReady counts estimates requested before the engine loaded.
	MetricEstimateNotReady
	// MetricMeterEngine counts meter calls served by the loaded engine.
	MetricMeterEngine
	// MetricMeterFallback counts meter calls served by the fallback scorer.
	MetricMeterFallback
	// MetricMeterMismatch counts meter calls whose confirmation differed.
	MetricMeterMismatch
	// MetricRateLimited counts requests denied by the HTTP rate limiter.
	MetricRateLimited
	// MetricLoadLatency is the histogram of fetch-to-confirmation durations.
	MetricLoadLatency
	// MetricEstimateLatency is the histogram of engine estimate durations.
	MetricEstimateLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds lock-free counters and fixed-bucket latency histograms.
//
// A nil or disabled Metrics ignores all updates.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time copy of all metrics.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics describes the newmetrics operation and its observable behavior.
//
// Histograms are only recorded when both Enabled and EnableLatencyHistograms are set.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether counters are recorded.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// LatencyEnabled reports whether histograms are recorded.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc adds one to the counter id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records d in the histogram id. Only latency metrics accept observations.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= metricIDCount {
		return
	}
	if !isHistogram(id) {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

// Value returns the current value of counter id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot describes the snapshot operation and its observable behavior.
//
// A disabled Metrics returns empty, non-nil maps.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 2),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		if isHistogram(id) {
			continue
		}
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		for _, id := range []MetricID{MetricLoadLatency, MetricEstimateLatency} {
			buckets := make([]uint64, histBucketCount)
			for i := 0; i < histBucketCount; i++ {
				buckets[i] = atomic.LoadUint64(&m.histograms[id].buckets[i])
			}
			s.Histograms[id] = buckets
		}
	}

	return s
}

func isHistogram(id MetricID) bool {
	return id == MetricLoadLatency || id == MetricEstimateLatency
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}
