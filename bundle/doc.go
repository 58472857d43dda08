// Package bundle decodes and verifies the estimation bundle fetched by the loader and
// installs the engine it selects.
//
// # Bundle format
//
// A bundle is a manifest naming the engine, its version, and extra dictionary words.
// It is delivered either as raw JSON or as a compact JWT whose claims carry the manifest
// (HS256 or Ed25519). An optional integrity pin of the form "blake2b-256:<hex>" is
// checked against the raw response body before anything is parsed.
//
// # Install model
//
// [Runner] implements loader.Executor. Decoding and verification happen synchronously,
// so a bad bundle fails the fetch. The engine is installed into the capability slot on
// a separate goroutine, which is why the loader confirms readiness by polling.
package bundle
