package rate

import "errors"

var (
	// ErrRedisUnavailable wraps every Redis failure so callers can fail open.
	ErrRedisUnavailable = errors.New("redis unavailable")
	// ErrInvalidConfig is returned by New for non-positive limits or an empty prefix.
	ErrInvalidConfig = errors.New("invalid rate limit config")
)
