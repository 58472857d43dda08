package internaldefs

import (
	goStrength "github.com/MrEthical07/goStrength"
)

// CounterDef names one counter for exporters.
type CounterDef struct {
	ID   goStrength.MetricID
	Name string
	Help string
}

// HistogramDef names one latency histogram for exporters.
type HistogramDef struct {
	ID   goStrength.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in render order.
var CounterDefs = []CounterDef{
	{ID: goStrength.MetricLoadStarted, Name: "gostrength_load_started_total", Help: "Bundle fetches started."},
	{ID: goStrength.MetricLoadSucceeded, Name: "gostrength_load_succeeded_total", Help: "Bundle loads whose engine was confirmed."},
	{ID: goStrength.MetricLoadFailed, Name: "gostrength_load_failed_total", Help: "Bundle fetches or verifications that failed."},
	{ID: goStrength.MetricLoadTimeout, Name: "gostrength_load_timeout_total", Help: "Bundle loads whose engine never appeared."},
	{ID: goStrength.MetricConfigError, Name: "gostrength_config_error_total", Help: "Load triggers rejected for a missing source."},
	{ID: goStrength.MetricCallbackQueued, Name: "gostrength_callback_queued_total", Help: "Readiness callbacks deferred until load."},
	{ID: goStrength.MetricCallbackImmediate, Name: "gostrength_callback_immediate_total", Help: "Readiness callbacks run synchronously."},
	{ID: goStrength.MetricCallbackFailed, Name: "gostrength_callback_failed_total", Help: "Readiness callbacks that panicked."},
	{ID: goStrength.MetricEstimate, Name: "gostrength_estimate_total", Help: "Engine estimates served."},
	{ID: goStrength.MetricEstimateUnknown, Name: "gostrength_estimate_unknown_total", Help: "Estimates that returned the unknown result."},
	{ID: goStrength.MetricEstimateNotReady, Name: "gostrength_estimate_not_ready_total", Help: "Estimates requested before the engine loaded."},
	{ID: goStrength.MetricMeterEngine, Name: "gostrength_meter_engine_total", Help: "Meter calls scored by the loaded engine."},
	{ID: goStrength.MetricMeterFallback, Name: "gostrength_meter_fallback_total", Help: "Meter calls scored by the fallback heuristic."},
	{ID: goStrength.MetricMeterMismatch, Name: "gostrength_meter_mismatch_total", Help: "Meter calls whose confirmation differed."},
	{ID: goStrength.MetricRateLimited, Name: "gostrength_rate_limited_total", Help: "HTTP requests denied by the rate limiter."},
}

// HistogramDefs lists every exported histogram in render order.
var HistogramDefs = []HistogramDef{
	{ID: goStrength.MetricLoadLatency, Name: "gostrength_load_latency_seconds", Help: "Fetch-to-confirmation latency histogram."},
	{ID: goStrength.MetricEstimateLatency, Name: "gostrength_estimate_latency_seconds", Help: "Engine estimate latency histogram."},
}

// AuditDroppedName is the counter name for audit events dropped under backpressure.
const AuditDroppedName = "gostrength_audit_dropped_total"

// AuditDroppedHelp describes AuditDroppedName.
const AuditDroppedHelp = "Dropped audit events due to dispatcher backpressure."

// HistogramBounds are the upper bounds, in seconds, of the fixed histogram buckets.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// NormalizeBuckets copies raw into a fixed-size bucket array, padding with zeros.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
