package loader

import "sync"

// Future is a single-resolution completion signal for one fetch.
// A nil error is the success signal; anything else is the error signal.
type Future struct {
	once sync.Once
	done chan struct{}
	err  error
}

// NewFuture returns an unresolved future.
func NewFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Resolved returns a future already resolved with err.
func Resolved(err error) *Future {
	f := NewFuture()
	f.Resolve(err)
	return f
}

// Resolve settles the future. Only the first call has any effect; it reports whether
// this call was the one that settled it.
func (f *Future) Resolve(err error) bool {
	settled := false
	f.once.Do(func() {
		f.err = err
		close(f.done)
		settled = true
	})
	return settled
}

// Done is closed once the future is resolved.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Err returns the resolution error. It is only meaningful after Done is closed.
func (f *Future) Err() error {
	select {
	case <-f.done:
		return f.err
	default:
		return nil
	}
}
