package goStrength

import (
	"strings"

	"github.com/MrEthical07/goStrength/internal/security"
)

// VerificationReport summarizes the deployment: which bundle protections are configured,
// whether the engine is live, and any issues worth surfacing to an operator.
type VerificationReport = security.Report

// Report builds the verification report from the current configuration and state.
func (e *Engine) Report() VerificationReport {
	if e == nil {
		return VerificationReport{}
	}

	src := strings.TrimSpace(e.config.Loader.Src)
	if src == "" && e.sourceProvider {
		src = "provider"
	}

	input := security.ReportInput{
		Src:               src,
		SigningMethod:     e.config.Bundle.SigningMethod,
		RequireSignature:  e.config.Bundle.RequireSignature,
		Digest:            e.config.Bundle.Digest,
		State:             e.loader.State().String(),
		EngineInstalled:   e.slot.Ready(),
		PollInterval:      e.config.Loader.PollInterval,
		MaxPollAttempts:   e.config.Loader.MaxPollAttempts,
		RearmOnFailure:    e.config.Loader.RearmOnFailure,
		Eager:             e.config.Loader.Eager,
		RateLimitEnabled:  e.config.RateLimit.Enabled,
		RateLimitRequests: e.config.RateLimit.MaxRequests,
		RateLimitWindow:   e.config.RateLimit.Window,
	}
	if m, ok := e.runner.Manifest(); ok {
		input.Engine = m.Engine
		input.EngineVersion = m.Version
	}

	return security.BuildReport(input)
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() Config {
	return cloneConfig(e.config)
}
