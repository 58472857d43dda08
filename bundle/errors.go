package bundle

import "errors"

var (
	// ErrMalformed is returned when the body is neither a manifest nor a token.
	ErrMalformed = errors.New("bundle: malformed manifest")
	// ErrUnsigned is returned for a raw manifest when signatures are required.
	ErrUnsigned = errors.New("bundle: unsigned manifest rejected")
	// ErrSignature is returned when a signed manifest fails verification.
	ErrSignature = errors.New("bundle: signature verification failed")
	// ErrDigestMismatch is returned when the body does not match the integrity pin.
	ErrDigestMismatch = errors.New("bundle: integrity digest mismatch")
	// ErrUnknownEngine is returned when the manifest selects an unregistered engine.
	ErrUnknownEngine = errors.New("bundle: unknown engine")
	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("bundle: invalid configuration")
)
