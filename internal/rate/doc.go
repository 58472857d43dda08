// Package rate provides a Redis-backed fixed-window request limiter for the HTTP
// surface of the strength service.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on first hit. Keys are
// <prefix>:<client key>, with the prefix taken from RateLimitConfig.KeyPrefix.
//
// # What this package must NOT do
//
//   - Decide how clients are identified (the middleware supplies the key).
//   - Be imported outside the goStrength module.
package rate
