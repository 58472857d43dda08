// Package security builds the deployment verification report: which protections are
// configured for the bundle fetch and whether the engine is live.
package security
