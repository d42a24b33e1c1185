// Package supervisor manages the lifecycle of one capture subprocess per track.
package supervisor

// State represents the current lifecycle state of a supervised track.
type State int

const (
	// StateIdle is the initial state before the track has started.
	StateIdle State = iota

	// StateStarting indicates the capture subprocess is being spawned.
	StateStarting

	// StateRecording indicates the capture subprocess is actively recording.
	StateRecording

	// StateStopping indicates the shutdown ladder is running.
	StateStopping

	// StateStopped indicates the subprocess exited and the track completed.
	StateStopped

	// StateFailed indicates the track failed to launch or exited with an error.
	StateFailed
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateRecording:
		return "recording"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IsTerminal returns true if the state is a terminal state.
func (s State) IsTerminal() bool {
	return s == StateStopped || s == StateFailed
}

// Outcome is the final disposition of a track.
type Outcome int

const (
	// OutcomeStopped means the track ended cleanly and its file is usable.
	OutcomeStopped Outcome = iota

	// OutcomeFailed means the track failed to launch or its subprocess
	// exited with an error before a stop was requested.
	OutcomeFailed
)

// String returns a human-readable name for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeStopped:
		return "stopped"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}
