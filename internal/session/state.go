package session

import "fmt"

// State is the authoritative lifecycle of one recording session. It is owned
// by the session loop; nothing else mutates it.
type State int

const (
	StateIdle State = iota
	StateRecording
	StateStopping
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateStopping:
		return "stopping"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Terminal reports whether no further transitions can leave s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

var validTransitions = map[State][]State{
	StateIdle:      {StateRecording, StateFailed},
	StateRecording: {StateStopping, StateFailed},
	StateStopping:  {StateDone, StateFailed},
}

// CanTransition reports whether from → to is a legal state change.
func CanTransition(from, to State) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// MicState tracks the live microphone gate, independent of State.
type MicState int

const (
	MicUnmuted MicState = iota
	MicMuted
)

func (m MicState) String() string {
	if m == MicMuted {
		return "muted"
	}
	return "unmuted"
}

// Toggled returns the opposite gate position.
func (m MicState) Toggled() MicState {
	if m == MicMuted {
		return MicUnmuted
	}
	return MicMuted
}

// Command is a control-plane instruction consumed exactly once by the
// session loop, in arrival order.
type Command int

const (
	// CommandStop requests a graceful end of the session.
	CommandStop Command = iota
	// CommandToggleMic flips the live mic gate.
	CommandToggleMic
	// CommandMark inserts a timestamped bookmark.
	CommandMark
)

func (c Command) String() string {
	switch c {
	case CommandStop:
		return "stop"
	case CommandToggleMic:
		return "toggle-mic"
	case CommandMark:
		return "mark"
	default:
		return fmt.Sprintf("unknown(%d)", int(c))
	}
}
