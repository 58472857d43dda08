// Package httpapi serves the strength engine over HTTP.
//
// # Routes
//
//   - POST /meter: legacy meter score and label.
//   - POST /estimate: full estimation result, 503 until the engine is loaded.
//   - GET /ready: load state and pending callback count.
//   - GET /report: deployment verification report.
//
// Scoring routes are wrapped in [middleware.RateLimit] when Options.Limiter is set.
//
// # What this package must NOT do
//
//   - Log request bodies or passwords.
//   - Block a request on the bundle load.
package httpapi
