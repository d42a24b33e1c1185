package supervisor

import "testing"

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateIdle, "idle"},
		{StateStarting, "starting"},
		{StateRecording, "recording"},
		{StateStopping, "stopping"},
		{StateStopped, "stopped"},
		{StateFailed, "failed"},
		{State(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestStateIsTerminal(t *testing.T) {
	terminal := map[State]bool{
		StateIdle:      false,
		StateStarting:  false,
		StateRecording: false,
		StateStopping:  false,
		StateStopped:   true,
		StateFailed:    true,
	}

	for state, want := range terminal {
		if got := state.IsTerminal(); got != want {
			t.Errorf("%s.IsTerminal() = %v, want %v", state, got, want)
		}
	}
}

func TestOutcomeString(t *testing.T) {
	if got := OutcomeStopped.String(); got != "stopped" {
		t.Errorf("OutcomeStopped.String() = %q, want %q", got, "stopped")
	}
	if got := OutcomeFailed.String(); got != "failed" {
		t.Errorf("OutcomeFailed.String() = %q, want %q", got, "failed")
	}
}
