package security

import "time"

// Report summarizes whether the strength engine is deployed safely.
type Report struct {
	SourceConfigured  bool
	SigningMethod     string
	SignatureRequired bool
	IntegrityPinned   bool
	State             string
	EngineInstalled   bool
	Engine            string
	EngineVersion     string
	FallbackActive    bool
	PollInterval      time.Duration
	MaxPollAttempts   int
	BoundedPolling    bool
	RearmOnFailure    bool
	Eager             bool
	RateLimitActive   bool
	Issues            []string
}

// ReportInput is the raw engine state a Report is derived from.
type ReportInput struct {
	Src               string
	SigningMethod     string
	RequireSignature  bool
	Digest            string
	State             string
	EngineInstalled   bool
	Engine            string
	EngineVersion     string
	PollInterval      time.Duration
	MaxPollAttempts   int
	RearmOnFailure    bool
	Eager             bool
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// BuildReport derives the report and lists configuration issues worth surfacing.
func BuildReport(input ReportInput) Report {
	r := Report{
		SourceConfigured:  input.Src != "",
		SigningMethod:     input.SigningMethod,
		SignatureRequired: input.RequireSignature,
		IntegrityPinned:   input.Digest != "",
		State:             input.State,
		EngineInstalled:   input.EngineInstalled,
		Engine:            input.Engine,
		EngineVersion:     input.EngineVersion,
		FallbackActive:    !input.EngineInstalled,
		PollInterval:      input.PollInterval,
		MaxPollAttempts:   input.MaxPollAttempts,
		BoundedPolling:    input.MaxPollAttempts > 0,
		RearmOnFailure:    input.RearmOnFailure,
		Eager:             input.Eager,
		RateLimitActive:   input.RateLimitEnabled && input.RateLimitRequests > 0 && input.RateLimitWindow > 0,
		Issues:            []string{},
	}

	if !r.SourceConfigured {
		r.Issues = append(r.Issues, "no bundle source configured; the fallback scorer is used until one is provided")
	}
	if !r.SignatureRequired && !r.IntegrityPinned {
		r.Issues = append(r.Issues, "bundle is neither signature-verified nor integrity-pinned")
	}
	if !r.BoundedPolling {
		r.Issues = append(r.Issues, "capability polling is unbounded")
	}
	if !r.RearmOnFailure {
		r.Issues = append(r.Issues, "callbacks queued before a failed load are not retried")
	}

	return r
}
