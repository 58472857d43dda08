package bundle

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/go-logr/logr"

	"github.com/MrEthical07/goStrength/loader"
	"github.com/MrEthical07/goStrength/strength"
)

// DefaultEngines returns the engines a manifest may select.
func DefaultEngines() map[string]strength.Engine {
	return map[string]strength.Engine{
		"zxcvbn":    strength.Zxcvbn(),
		"heuristic": strength.HeuristicEngine(),
	}
}

// RunnerOptions carries the Runner's collaborators.
type RunnerOptions struct {
	// Engines overrides DefaultEngines. Keys are matched case-insensitively.
	Engines map[string]strength.Engine
	// Report receives estimation failures of the installed engine.
	Report func(error)
	Logger logr.Logger
}

// Runner decodes fetched bundles and installs the selected engine into a slot.
type Runner struct {
	cfg     Config
	slot    *loader.Slot[strength.EstimateFunc]
	engines map[string]strength.Engine
	report  func(error)
	logger  logr.Logger

	wg       sync.WaitGroup
	mu       sync.Mutex
	manifest *Manifest
}

var _ loader.Executor = (*Runner)(nil)

// NewRunner validates cfg and returns a Runner that installs into slot.
func NewRunner(cfg Config, slot *loader.Slot[strength.EstimateFunc], opts RunnerOptions) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if slot == nil {
		return nil, fmt.Errorf("%w: slot required", ErrInvalidConfig)
	}

	engines := opts.Engines
	if engines == nil {
		engines = DefaultEngines()
	}
	normalized := make(map[string]strength.Engine, len(engines))
	for name, e := range engines {
		normalized[normalizeName(name)] = e
	}
	if opts.Logger.GetSink() == nil {
		opts.Logger = logr.Discard()
	}

	return &Runner{
		cfg:     cfg,
		slot:    slot,
		engines: normalized,
		report:  opts.Report,
		logger:  opts.Logger,
	}, nil
}

// Execute verifies body and schedules the engine install. It returns once the bundle is
// accepted; the slot is populated shortly after.
func (r *Runner) Execute(ctx context.Context, src string, body []byte) error {
	m, err := Decode(body, r.cfg)
	if err != nil {
		return err
	}

	engine, ok := r.engines[m.Engine]
	if !ok || engine == nil {
		return fmt.Errorf("%w: %q", ErrUnknownEngine, m.Engine)
	}

	fn := strength.Wrap(engine, r.report, m.Dictionary)

	if err := ctx.Err(); err != nil {
		return err
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if ctx.Err() != nil {
			return
		}
		// The manifest is stored under r.mu together with the install, so a reader that
		// observed the slot sees the manifest of the engine actually installed.
		r.mu.Lock()
		installed := r.slot.Install(fn)
		if installed {
			r.manifest = &m
		}
		r.mu.Unlock()

		if installed {
			r.logger.V(1).Info("estimation engine installed", "src", src, "engine", m.Engine, "version", m.Version, "dictionary", len(m.Dictionary))
		}
	}()

	return nil
}

// Manifest returns the manifest of the installed engine. Bundles accepted after the slot
// was filled do not replace it.
func (r *Runner) Manifest() (Manifest, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.manifest == nil {
		return Manifest{}, false
	}
	return *r.manifest, true
}

// Wait blocks until scheduled installs have finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
