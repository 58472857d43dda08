// Package middleware exposes HTTP middleware for the strength service.
//
// # Adapters
//
//   - [RateLimit]: fixed-window request budget keyed by client address.
//   - [RequestID]: stamps every request with an X-Request-ID.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into limiter calls. It does NOT score
// passwords and does not read request bodies.
//
// # What this package must NOT do
//
//   - Log or inspect request bodies (they carry passwords).
//   - Reject requests because Redis is unavailable; the limiter fails open.
package middleware
