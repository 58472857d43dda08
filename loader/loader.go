package loader

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"k8s.io/utils/clock"
)

const (
	// DefaultPollInterval is the fixed delay between capability checks.
	DefaultPollInterval = 50 * time.Millisecond
	// DefaultMaxPollAttempts bounds confirmation to roughly ten seconds at the default interval.
	DefaultMaxPollAttempts = 200
)

// Descriptor returns the source locator of the resource. It is read on every trigger,
// so a locator that becomes available later is picked up by the next trigger.
type Descriptor func() (string, error)

// StaticSource returns a Descriptor for a fixed locator.
func StaticSource(src string) Descriptor {
	return func() (string, error) { return src, nil }
}

// Config controls polling and retry behavior.
type Config struct {
	PollInterval time.Duration
	// MaxPollAttempts bounds capability confirmation. Zero polls forever.
	MaxPollAttempts int
	// RearmOnFailure lets the next OnReady after a failure trigger a fresh load.
	RearmOnFailure bool
	// Eager starts loading from Start instead of waiting for the first OnReady.
	Eager bool
}

// EventKind classifies loader events.
type EventKind int

const (
	EventConfigError EventKind = iota
	EventLoadStarted
	EventFetchFailed
	EventLoaded
	EventTimeout
	EventCallbackFailed
	EventReadyImmediate
	EventReadyQueued
)

func (k EventKind) String() string {
	switch k {
	case EventConfigError:
		return "loader_config_error"
	case EventLoadStarted:
		return "loader_load_started"
	case EventFetchFailed:
		return "loader_fetch_failed"
	case EventLoaded:
		return "loader_loaded"
	case EventTimeout:
		return "loader_timeout"
	case EventCallbackFailed:
		return "loader_callback_failed"
	case EventReadyImmediate:
		return "loader_ready_immediate"
	case EventReadyQueued:
		return "loader_ready_queued"
	default:
		return fmt.Sprintf("loader_event_%d", int(k))
	}
}

// Event is passed to the Observer on every observable step.
type Event struct {
	Kind     EventKind
	LoadID   string
	Source   string
	Err      error
	Duration time.Duration
}

// Observer receives loader events. It is called synchronously and must not block.
type Observer func(Event)

// Options carries the loader's collaborators.
type Options struct {
	Clock    clock.Clock
	Logger   logr.Logger
	Observer Observer
}

// Loader owns the load state machine and the readiness gate.
type Loader struct {
	cfg        Config
	source     Descriptor
	fetcher    Fetcher
	capability Capability
	clock      clock.Clock
	logger     logr.Logger
	observe    Observer

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	state    State
	draining bool
	closed   bool
	loadID   string

	queue   Queue
	fetches atomic.Uint64
}

// New creates a loader in StateUnstarted. No fetch happens until TriggerLoad, OnReady,
// or Start with Eager set.
func New(cfg Config, source Descriptor, fetcher Fetcher, capability Capability, opts Options) (*Loader, error) {
	if fetcher == nil {
		return nil, errors.New("loader: fetcher required")
	}
	if capability == nil {
		return nil, errors.New("loader: capability required")
	}
	if cfg.MaxPollAttempts < 0 {
		return nil, errors.New("loader: MaxPollAttempts must be >= 0")
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if source == nil {
		source = StaticSource("")
	}
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}
	if opts.Logger.GetSink() == nil {
		opts.Logger = logr.Discard()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Loader{
		cfg:        cfg,
		source:     source,
		fetcher:    fetcher,
		capability: capability,
		clock:      opts.Clock,
		logger:     opts.Logger,
		observe:    opts.Observer,
		ctx:        ctx,
		cancel:     cancel,
	}, nil
}

// Start triggers the load right away when the loader is configured as eager.
func (l *Loader) Start() error {
	if !l.cfg.Eager {
		return nil
	}
	return l.TriggerLoad()
}

// State returns the current load state.
func (l *Loader) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Pending returns the number of callbacks waiting for the capability.
func (l *Loader) Pending() int {
	return l.queue.Len()
}

// Fetches returns how many fetches this loader has started.
func (l *Loader) Fetches() uint64 {
	return l.fetches.Load()
}

// LoadID returns the identifier of the most recent load attempt.
func (l *Loader) LoadID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadID
}

// TriggerLoad starts fetching the resource unless a load is in flight or done.
// A missing source is reported and returned; the state is left untouched.
func (l *Loader) TriggerLoad() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	if l.state == StateLoading || l.state == StateLoaded {
		l.mu.Unlock()
		return nil
	}

	src, err := l.readSource()
	if err != nil {
		l.mu.Unlock()
		l.logger.Error(err, "resource descriptor unusable, fetch path halted")
		l.emit(Event{Kind: EventConfigError, Err: err})
		return err
	}

	if err := transition(&l.state, l.state, StateLoading); err != nil {
		l.mu.Unlock()
		return err
	}
	id := uuid.NewString()
	l.loadID = id
	l.wg.Add(1)
	l.mu.Unlock()

	l.fetches.Add(1)
	l.logger.V(1).Info("fetching resource", "loadID", id, "src", src)
	l.emit(Event{Kind: EventLoadStarted, LoadID: id, Source: src})

	started := l.clock.Now()
	fut := l.fetcher.Fetch(l.ctx, src)
	go l.await(id, src, started, fut)

	return nil
}

// RequestLoad starts a load on demand without queueing a callback. It follows the same
// rules as OnReady: it fetches from StateUnstarted, and from StateFailed only when
// RearmOnFailure is set. Loading and loaded states are left alone.
func (l *Loader) RequestLoad() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	rearm := l.state == StateUnstarted || (l.state == StateFailed && l.cfg.RearmOnFailure)
	l.mu.Unlock()

	if !rearm {
		return nil
	}
	return l.TriggerLoad()
}

// OnReady runs fn once the capability is loaded. When it already is, fn runs
// synchronously before OnReady returns; otherwise fn is queued and the first queued
// call starts the load. Panics raised by fn are recovered and reported.
func (l *Loader) OnReady(fn func()) {
	if fn == nil {
		return
	}

	l.mu.Lock()
	if l.state == StateLoaded && !l.draining && l.capability.Ready() {
		l.mu.Unlock()
		l.emit(Event{Kind: EventReadyImmediate})
		safeInvoke(fn, l.reportCallback)
		return
	}

	l.queue.Enqueue(fn)
	rearm := !l.closed &&
		(l.state == StateUnstarted || (l.state == StateFailed && l.cfg.RearmOnFailure))
	l.mu.Unlock()

	l.emit(Event{Kind: EventReadyQueued})
	if rearm {
		_ = l.TriggerLoad()
	}
}

// AttachDocument installs the re-trigger hook. It is a no-op when the document has
// already been parsed.
func (l *Loader) AttachDocument(doc DocumentObserver) {
	if doc == nil || doc.Parsed() {
		return
	}
	doc.OnParsed(l.documentParsed)
}

func (l *Loader) documentParsed() {
	l.mu.Lock()
	retrigger := !l.closed && l.state == StateUnstarted && (l.cfg.Eager || l.queue.Len() > 0)
	l.mu.Unlock()

	if retrigger {
		_ = l.TriggerLoad()
	}
}

// Close stops in-flight fetch and confirmation work and waits for it to exit.
// Queued callbacks are abandoned.
func (l *Loader) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	l.mu.Unlock()

	l.cancel()
	l.wg.Wait()
}

func (l *Loader) readSource() (string, error) {
	src, err := l.source()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMissingSource, err)
	}
	src = strings.TrimSpace(src)
	if src == "" {
		return "", ErrMissingSource
	}
	return src, nil
}

func (l *Loader) await(id, src string, started time.Time, fut *Future) {
	defer l.wg.Done()

	if fut == nil {
		l.fail(id, src, started, EventFetchFailed, fmt.Errorf("%w: fetcher returned no future", ErrFetchFailed))
		return
	}

	select {
	case <-fut.Done():
	case <-l.ctx.Done():
		return
	}

	if err := fut.Err(); err != nil {
		l.fail(id, src, started, EventFetchFailed, fmt.Errorf("%w: %v", ErrFetchFailed, err))
		return
	}

	l.confirm(id, src, started)
}

// confirm waits for the executor to populate the capability. The resource finishes its
// own setup after the fetch resolves, so a single check is not enough.
func (l *Loader) confirm(id, src string, started time.Time) {
	for attempt := 0; ; attempt++ {
		if l.capability.Ready() {
			l.markLoaded(id, src, started)
			return
		}
		if l.cfg.MaxPollAttempts > 0 && attempt >= l.cfg.MaxPollAttempts {
			l.fail(id, src, started, EventTimeout, ErrCapabilityTimeout)
			return
		}

		select {
		case <-l.capability.Installed():
		case <-l.clock.After(l.cfg.PollInterval):
		case <-l.ctx.Done():
			return
		}
	}
}

func (l *Loader) markLoaded(id, src string, started time.Time) {
	l.mu.Lock()
	if err := transition(&l.state, StateLoading, StateLoaded); err != nil {
		l.mu.Unlock()
		l.logger.Error(err, "dropping load confirmation", "loadID", id)
		return
	}
	l.draining = true
	l.mu.Unlock()

	elapsed := l.clock.Since(started)
	l.logger.V(1).Info("resource loaded", "loadID", id, "src", src, "elapsed", elapsed, "pending", l.queue.Len())
	l.emit(Event{Kind: EventLoaded, LoadID: id, Source: src, Duration: elapsed})

	l.drain()
}

// drain empties the queue. OnReady enqueues under l.mu while draining is set, so the
// final emptiness check under the same lock cannot strand a late callback.
func (l *Loader) drain() {
	for {
		l.queue.DrainAll(l.reportCallback)

		l.mu.Lock()
		if l.queue.Len() == 0 {
			l.draining = false
			l.mu.Unlock()
			return
		}
		l.mu.Unlock()
	}
}

func (l *Loader) fail(id, src string, started time.Time, kind EventKind, cause error) {
	l.mu.Lock()
	err := transition(&l.state, StateLoading, StateFailed)
	l.mu.Unlock()
	if err != nil {
		l.logger.Error(err, "dropping load failure", "loadID", id)
		return
	}

	l.logger.Error(cause, "resource load failed", "loadID", id, "src", src, "pending", l.queue.Len())
	l.emit(Event{Kind: kind, LoadID: id, Source: src, Err: cause, Duration: l.clock.Since(started)})
}

func (l *Loader) reportCallback(recovered any) {
	err := fmt.Errorf("%w: %v", ErrCallbackPanic, recovered)
	l.logger.Error(err, "readiness callback failed")
	l.emit(Event{Kind: EventCallbackFailed, Err: err})
}

func (l *Loader) emit(ev Event) {
	if l.observe != nil {
		l.observe(ev)
	}
}
