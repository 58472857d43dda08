// Package strength defines password-strength results, estimation engines, and the
// heuristic fallback scorer.
//
// # Result shapes
//
// Engines return [Estimate], whose JSON uses the engine-native camelCase names
// (guessesLog10, crackTimesSeconds). Callers consume [Result], the compatibility shape
// with snake_case names (guesses_log10, crack_times_seconds). [FromEstimate] converts
// between them without touching values.
//
// # Architecture boundaries
//
// This package owns scoring only. Loading an engine lazily is the loader package's job;
// the legacy meter contract lives in compat.
//
// # What this package must NOT do
//
//   - Log or retain passwords.
//   - Let an engine failure escape [Wrap] as a panic or error.
package strength
