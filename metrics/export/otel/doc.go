// Package otel publishes goStrength engine metrics through OpenTelemetry observable
// instruments.
//
// [NewOTelExporter] registers one collection callback that reads
// [goStrength.Engine.MetricsSnapshot], the loader state, the pending readiness queue and
// the per-type audit drop counts. Latency histograms are exported as cumulative gauges
// keyed by an "le" attribute. The loader state is a state-set gauge keyed by "state".
//
// The caller owns the MeterProvider. The exporter never mutates the engine.
package otel
