package goStrength

import (
	"errors"

	"github.com/MrEthical07/goStrength/bundle"
	"github.com/MrEthical07/goStrength/loader"
	"github.com/MrEthical07/goStrength/strength"
)

var (
	// ErrEngineNotReady is returned by Estimate until the estimation engine is loaded.
	ErrEngineNotReady = errors.New("estimation engine not loaded")
	// ErrBuilderUsed is returned when Build is called twice on one Builder.
	ErrBuilderUsed = errors.New("builder already used")
	// ErrEngineClosed is returned once Close has been called.
	ErrEngineClosed = errors.New("engine closed")

	// ErrMissingSource reports a trigger without a bundle source.
	ErrMissingSource = loader.ErrMissingSource
	// ErrFetchFailed reports a transport or bundle failure.
	ErrFetchFailed = loader.ErrFetchFailed
	// ErrCapabilityTimeout reports a bundle that never installed its engine.
	ErrCapabilityTimeout = loader.ErrCapabilityTimeout
	// ErrCallbackPanic reports a readiness callback that panicked.
	ErrCallbackPanic = loader.ErrCallbackPanic
	// ErrEstimation reports an engine failure replaced by the unknown result.
	ErrEstimation = strength.ErrEstimation
	// ErrBundleSignature reports a bundle that failed signature verification.
	ErrBundleSignature = bundle.ErrSignature
	// ErrBundleDigest reports a bundle that does not match its integrity pin.
	ErrBundleDigest = bundle.ErrDigestMismatch
)
