// Package compat exposes the legacy password-meter contract: a meter that is always
// callable, the user-input disallowed list, and score labels.
//
// The meter uses the loaded estimation engine when one is installed and the heuristic
// scorer otherwise, so callers never wait for a load to finish.
package compat
