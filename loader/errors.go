package loader

import "errors"

var (
	// ErrMissingSource is reported when the resource descriptor has no source locator.
	ErrMissingSource = errors.New("loader: resource source not configured")
	// ErrFetchFailed is reported when the resource could not be acquired.
	ErrFetchFailed = errors.New("loader: resource fetch failed")
	// ErrCapabilityTimeout is reported when the fetched resource never populated the slot.
	ErrCapabilityTimeout = errors.New("loader: capability not populated before poll limit")
	// ErrCallbackPanic is reported when a readiness callback panics.
	ErrCallbackPanic = errors.New("loader: readiness callback panicked")
	// ErrInvalidTransition is returned for a state change outside the transition table.
	ErrInvalidTransition = errors.New("loader: invalid state transition")
	// ErrClosed is returned once the loader has been closed.
	ErrClosed = errors.New("loader: closed")
)
