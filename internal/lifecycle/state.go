package lifecycle

import "errors"

// ErrInProgress is returned by Execute while an attempt is in flight.
var ErrInProgress = errors.New("operation already in progress")

// State of a component.
type State int

const (
	StateIdle State = iota
	StateInProgress
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInProgress:
		return "in_progress"
	default:
		return "unknown"
	}
}

// canTransition reports whether the state machine allows from -> to.
func canTransition(from, to State) bool {
	switch from {
	case StateIdle:
		return to == StateInProgress
	case StateInProgress:
		return to == StateIdle
	default:
		return false
	}
}
