package loader

import "sync"

// DocumentObserver reports whether the host environment finished initial parsing and
// lets the loader hook the moment it does.
type DocumentObserver interface {
	Parsed() bool
	OnParsed(fn func())
}

// Document is an in-process DocumentObserver.
type Document struct {
	mu     sync.Mutex
	parsed bool
	hooks  []func()
}

// NewDocument returns a document that is still being parsed.
func NewDocument() *Document {
	return &Document{}
}

func (d *Document) Parsed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.parsed
}

// OnParsed registers fn to run when the document is marked parsed. If it already is,
// fn runs immediately.
func (d *Document) OnParsed(fn func()) {
	if fn == nil {
		return
	}
	d.mu.Lock()
	if d.parsed {
		d.mu.Unlock()
		fn()
		return
	}
	d.hooks = append(d.hooks, fn)
	d.mu.Unlock()
}

// MarkParsed flips the document to parsed and runs pending hooks once.
func (d *Document) MarkParsed() {
	d.mu.Lock()
	if d.parsed {
		d.mu.Unlock()
		return
	}
	d.parsed = true
	hooks := d.hooks
	d.hooks = nil
	d.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
}
