package goStrength

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"k8s.io/utils/clock"

	"github.com/MrEthical07/goStrength/bundle"
	"github.com/MrEthical07/goStrength/compat"
	"github.com/MrEthical07/goStrength/internal/audit"
	"github.com/MrEthical07/goStrength/loader"
	"github.com/MrEthical07/goStrength/strength"
)

// SourceProvider returns the bundle source at trigger time. It replaces Config.Loader.Src
// for deployments where the locator becomes known after Build.
type SourceProvider func() (string, error)

// Builder assembles an [Engine].
//
// Builder instances are single use: Build may succeed only once.
type Builder struct {
	config Config

	source     SourceProvider
	httpClient *http.Client
	engines    map[string]strength.Engine
	fallback   compat.Scorer
	clock      clock.Clock
	logger     *logr.Logger
	auditSink  AuditSink

	built bool
}

// New returns a Builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the configuration. It is validated by Build.
//
// The config is copied; later changes to cfg do not affect the builder.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithSourceProvider sets a lazily evaluated bundle source.
func (b *Builder) WithSourceProvider(p SourceProvider) *Builder {
	b.source = p
	return b
}

// WithHTTPClient sets the client used to fetch the bundle.
func (b *Builder) WithHTTPClient(c *http.Client) *Builder {
	b.httpClient = c
	return b
}

// WithEngines replaces the engines a bundle manifest may select.
func (b *Builder) WithEngines(engines map[string]strength.Engine) *Builder {
	b.engines = engines
	return b
}

// WithFallback replaces the heuristic scorer used by the meter before load.
func (b *Builder) WithFallback(s compat.Scorer) *Builder {
	b.fallback = s
	return b
}

// WithClock sets the clock driving capability polling.
func (b *Builder) WithClock(c clock.Clock) *Builder {
	b.clock = c
	return b
}

// WithLogger sets the structured logger.
func (b *Builder) WithLogger(l logr.Logger) *Builder {
	b.logger = &l
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// The sink only receives events when Config.Audit.Enabled is set.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles load and estimate latency histograms.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and wires the engine. No network I/O happens here
// unless Config.Loader.Eager is set.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := defaultLogger()
	if b.logger != nil {
		logger = *b.logger
	}
	clk := b.clock
	if clk == nil {
		clk = clock.RealClock{}
	}

	e := &Engine{
		config:  cfg,
		logger:  logger,
		clock:   clk,
		slot:    loader.NewSlot[strength.EstimateFunc](),
		doc:     loader.NewDocument(),
		metrics: NewMetrics(cfg.Metrics),
		audit: audit.NewDispatcher(audit.Config{
			Enabled:    cfg.Audit.Enabled,
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
			Clock:      clk,
		}, b.auditSink),
	}

	runner, err := bundle.NewRunner(cfg.bundleConfig(), e.slot, bundle.RunnerOptions{
		Engines: b.engines,
		Report:  e.reportEstimation,
		Logger:  logger.WithName("bundle"),
	})
	if err != nil {
		e.audit.Close()
		return nil, err
	}
	e.runner = runner

	fetcher := loader.NewHTTPFetcher(b.httpClient, runner, loader.HTTPOptions{
		Timeout:      cfg.Loader.FetchTimeout,
		MaxBodyBytes: cfg.Loader.MaxBodyBytes,
	})

	source := loader.StaticSource(cfg.Loader.Src)
	if b.source != nil {
		source = loader.Descriptor(b.source)
		e.sourceProvider = true
	}

	l, err := loader.New(loader.Config{
		PollInterval:    cfg.Loader.PollInterval,
		MaxPollAttempts: cfg.Loader.MaxPollAttempts,
		RearmOnFailure:  cfg.Loader.RearmOnFailure,
		Eager:           cfg.Loader.Eager,
	}, source, fetcher, e.slot, loader.Options{
		Clock:    clk,
		Logger:   logger.WithName("loader"),
		Observer: e.observe,
	})
	if err != nil {
		e.audit.Close()
		return nil, err
	}
	e.loader = l
	e.meter = compat.NewMeter(e.slot, b.fallback)

	l.AttachDocument(e.doc)
	b.built = true

	if err := l.Start(); err != nil {
		logger.V(1).Info("eager load deferred", "reason", err.Error())
	}

	return e, nil
}

func defaultLogger() logr.Logger {
	return stdr.New(log.New(os.Stderr, "goStrength: ", log.LstdFlags))
}

func durationMS(d time.Duration) int64 {
	return d.Milliseconds()
}
