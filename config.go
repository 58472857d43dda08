package goStrength

import (
	"errors"
	"strings"
	"time"

	"github.com/MrEthical07/goStrength/bundle"
	"github.com/MrEthical07/goStrength/loader"
)

// Config is the complete engine configuration.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Loader    LoaderConfig
	Bundle    BundleConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
	RateLimit RateLimitConfig
}

// LoaderConfig controls how and when the estimation bundle is fetched.
//
// Src may be left empty and supplied later through a source provider. A missing
// source is reported at trigger time, not at build time.
type LoaderConfig struct {
	Src             string
	FetchTimeout    time.Duration
	MaxBodyBytes    int64
	PollInterval    time.Duration
	MaxPollAttempts int
	RearmOnFailure  bool
	Eager           bool
}

// BundleConfig controls bundle verification.
type BundleConfig struct {
	SigningMethod      string
	PrivateKey         []byte
	PublicKey          []byte
	Issuer             string
	Digest             string
	RequireSignature   bool
	MaxDictionaryWords int
}

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull sheds successful lifecycle records when the buffer is full. Failure
	// records are never shed.
	DropIfFull bool
}

// MetricsConfig toggles counters and latency histograms.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// RateLimitConfig is consumed by the HTTP middleware.
type RateLimitConfig struct {
	Enabled     bool
	MaxRequests int
	Window      time.Duration
	KeyPrefix   string
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the configuration used by New.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Loader: LoaderConfig{
			FetchTimeout:    15 * time.Second,
			MaxBodyBytes:    4 << 20,
			PollInterval:    loader.DefaultPollInterval,
			MaxPollAttempts: loader.DefaultMaxPollAttempts,
			RearmOnFailure:  true,
			Eager:           false,
		},
		Bundle: BundleConfig{
			MaxDictionaryWords: 10000,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
		RateLimit: RateLimitConfig{
			Enabled:     false,
			MaxRequests: 60,
			Window:      time.Minute,
			KeyPrefix:   "gs:rl",
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Bundle.PrivateKey = cloneBytes(cfg.Bundle.PrivateKey)
	out.Bundle.PublicKey = cloneBytes(cfg.Bundle.PublicKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func (c *Config) bundleConfig() bundle.Config {
	return bundle.Config{
		SigningMethod:      bundle.SigningMethod(strings.ToLower(strings.TrimSpace(c.Bundle.SigningMethod))),
		PrivateKey:         cloneBytes(c.Bundle.PrivateKey),
		PublicKey:          cloneBytes(c.Bundle.PublicKey),
		Issuer:             c.Bundle.Issuer,
		Digest:             c.Bundle.Digest,
		RequireSignature:   c.Bundle.RequireSignature,
		MaxDictionaryWords: c.Bundle.MaxDictionaryWords,
	}
}

/*
====================================
VALIDATION
====================================
*/

// Validate returns the first configuration violation found.
func (c *Config) Validate() error {
	// Loader
	if c.Loader.FetchTimeout <= 0 {
		return errors.New("Loader FetchTimeout must be > 0")
	}
	if c.Loader.MaxBodyBytes <= 0 {
		return errors.New("Loader MaxBodyBytes must be > 0")
	}
	if c.Loader.PollInterval <= 0 {
		return errors.New("Loader PollInterval must be > 0")
	}
	if c.Loader.MaxPollAttempts < 0 {
		return errors.New("Loader MaxPollAttempts must be >= 0")
	}
	if src := strings.TrimSpace(c.Loader.Src); src != "" &&
		!strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") {
		return errors.New("Loader Src must be an http or https URL")
	}

	// Bundle
	if err := c.bundleConfig().Validate(); err != nil {
		return err
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when enabled")
	}

	// Metrics
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}

	// Rate limit
	if c.RateLimit.Enabled {
		if c.RateLimit.MaxRequests <= 0 {
			return errors.New("RateLimit MaxRequests must be > 0")
		}
		if c.RateLimit.Window <= 0 {
			return errors.New("RateLimit Window must be > 0")
		}
		if strings.TrimSpace(c.RateLimit.KeyPrefix) == "" {
			return errors.New("RateLimit KeyPrefix must not be empty")
		}
	}

	return nil
}
