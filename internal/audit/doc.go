// Package audit implements async dispatching of loader lifecycle events.
//
// # Components
//
//   - [Sink]: interface for event consumers (channel, JSON writer, no-op).
//   - [Dispatcher]: buffered async relay with drop-if-full or block-if-full semantics.
//   - [Event]: structured record carrying the load ID, source, outcome, and duration.
//
// # Architecture boundaries
//
// This package owns event buffering and sink delivery. It does NOT decide which events
// to emit; the Engine translates loader events into audit records.
//
// # What this package must NOT do
//
//   - Carry passwords or estimation inputs in any field.
//   - Import goStrength or any sibling internal package.
//   - Perform network I/O beyond what a caller-supplied Sink does.
package audit
