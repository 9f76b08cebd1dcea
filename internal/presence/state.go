package presence

import "fmt"

// State is the lifecycle position of one connection.
type State int32

const (
	StateConnecting State = iota
	StateAuthenticated
	StateActive
	StateDisconnecting
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAuthenticated:
		return "authenticated"
	case StateActive:
		return "active"
	case StateDisconnecting:
		return "disconnecting"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// transitions lists the legal edges. Connecting goes straight to Closed when authentication fails.
var transitions = map[State][]State{
	StateConnecting:    {StateAuthenticated, StateClosed},
	StateAuthenticated: {StateActive},
	StateActive:        {StateDisconnecting},
	StateDisconnecting: {StateClosed},
}

func canTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
