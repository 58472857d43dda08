// Package goStrength provides a lazily loaded password-strength estimation engine with an
// always-available fallback meter.
//
// The estimation bundle is fetched at most once, on first demand, and verified before its
// engine is installed. Callers register readiness callbacks with [Engine.OnReady]; they
// run in registration order once the engine is live, or synchronously when it already is.
// The legacy meter ([Engine.Meter]) never waits: it scores with the heuristic fallback
// until the engine arrives.
//
// Engine methods are safe to call from multiple goroutines after [Builder.Build].
//
// # Architecture boundaries
//
// goStrength is the public surface. It exposes [Engine], [Builder], [Config], and value
// types (MetricsSnapshot, VerificationReport). The load state machine lives in loader,
// bundle verification in bundle, scoring in strength, and the legacy contract in compat.
// Audit dispatch and report assembly live under internal/.
//
// # What this package must NOT do
//
//   - Log, audit, or export passwords or estimation inputs.
//   - Perform I/O before the first demand unless the loader is configured as eager.
//   - Panic into callers; every failure is reported and contained.
package goStrength
