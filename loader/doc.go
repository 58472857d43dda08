// Package loader implements the lazy, at-most-once loading core for the strength engine.
//
// # Components
//
//   - [Queue]: FIFO of zero-argument callbacks drained exactly once each.
//   - [Loader]: load state machine (unstarted, loading, loaded, failed) and the
//     readiness gate [Loader.OnReady].
//   - [Fetcher] / [Future]: asynchronous resource acquisition with a single-resolution
//     completion signal. [HTTPFetcher] is the network implementation.
//   - [Slot]: write-once capability slot populated by the fetched resource.
//   - [Document]: in-process document readiness observer for the re-trigger hook.
//
// # Architecture boundaries
//
// The loader never writes the capability slot; only the resource executor does. The loader
// observes it through [Capability] and transitions state from its own goroutines.
//
// # What this package must NOT do
//
//   - Block callers of OnReady or TriggerLoad on network I/O.
//   - Invoke a callback more than once, or re-panic a callback failure into a caller.
//   - Import goStrength or any sibling package besides the standard stack.
package loader
