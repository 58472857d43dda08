package loader

import "fmt"

// State is the lifecycle position of the external resource.
type State int32

const (
	// StateUnstarted means no fetch has been requested yet.
	StateUnstarted State = iota
	// StateLoading means a fetch or its confirmation is in flight.
	StateLoading
	// StateLoaded means the capability slot is confirmed populated.
	StateLoaded
	// StateFailed means the last fetch or confirmation failed.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnstarted:
		return "unstarted"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

func isAllowedTransition(from, to State) bool {
	switch from {
	case StateUnstarted:
		return to == StateLoading
	case StateLoading:
		return to == StateLoaded || to == StateFailed
	case StateFailed:
		return to == StateLoading
	default:
		return false
	}
}

// transition validates from->to against the table and the current value.
func transition(cur *State, from, to State) error {
	if *cur != from {
		return fmt.Errorf("%w: expected %s, got %s", ErrInvalidTransition, from, *cur)
	}
	if !isAllowedTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	*cur = to
	return nil
}
