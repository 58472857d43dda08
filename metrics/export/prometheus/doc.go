// Package prometheus renders goStrength metrics in the Prometheus text format.
//
// [NewPrometheusExporter] accepts a [goStrength.Engine] and exposes an [http.Handler]
// that renders all counters and both latency histograms. Counter names are prefixed
// gostrength_*_total; histograms are gostrength_load_latency_seconds and
// gostrength_estimate_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry; callers mount the Handler.
//   - Mutate engine state.
package prometheus
