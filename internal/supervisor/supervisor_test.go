package supervisor

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// shellBuilder runs an arbitrary shell snippet instead of a real encoder.
type shellBuilder struct {
	script string
	err    error
}

func (b *shellBuilder) BuildCommand(selector string, extraArgs []string, outputPath string) (*exec.Cmd, error) {
	if b.err != nil {
		return nil, b.err
	}
	return exec.Command("sh", "-c", b.script), nil
}

func (b *shellBuilder) Name() string { return "sh" }

// recordingLines keeps every diagnostic line for assertions.
type recordingLines struct {
	lines []string
}

func (r *recordingLines) HandleReader(reader io.Reader) {
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		r.lines = append(r.lines, scanner.Text())
	}
}

func (r *recordingLines) LastError() string {
	if len(r.lines) == 0 {
		return ""
	}
	return r.lines[len(r.lines)-1]
}

func shortTimeouts() StopTimeouts {
	return StopTimeouts{
		Quit:      100 * time.Millisecond,
		Interrupt: 100 * time.Millisecond,
		Terminate: 100 * time.Millisecond,
	}
}

func TestRunCleanSelfExit(t *testing.T) {
	sup := New(Config{
		Label:    "mic",
		Builder:  &shellBuilder{script: "exit 0"},
		Logger:   testLogger(),
		Timeouts: shortTimeouts(),
	})

	res := sup.Run(context.Background())

	if res.Outcome != OutcomeStopped {
		t.Errorf("Outcome = %s, want stopped", res.Outcome)
	}
	if res.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", res.ExitCode)
	}
	if res.Err != nil {
		t.Errorf("Err = %v, want nil", res.Err)
	}
	if sup.State() != StateStopped {
		t.Errorf("State() = %s, want stopped", sup.State())
	}
}

func TestRunFailedSelfExit(t *testing.T) {
	lines := &recordingLines{}
	sup := New(Config{
		Label:    "mic",
		Builder:  &shellBuilder{script: "echo 'device busy' >&2; exit 1"},
		Logger:   testLogger(),
		Lines:    lines,
		Timeouts: shortTimeouts(),
	})

	res := sup.Run(context.Background())

	if res.Outcome != OutcomeFailed {
		t.Errorf("Outcome = %s, want failed", res.Outcome)
	}
	if res.ExitCode != 1 {
		t.Errorf("ExitCode = %d, want 1", res.ExitCode)
	}
	if res.Err == nil {
		t.Fatal("Err = nil, want error")
	}
	if !strings.Contains(res.Err.Error(), "device busy") {
		t.Errorf("Err = %v, want it to contain the last diagnostic line", res.Err)
	}
	if sup.State() != StateFailed {
		t.Errorf("State() = %s, want failed", sup.State())
	}
}

func TestRunBuildError(t *testing.T) {
	sup := New(Config{
		Label:   "mic",
		Builder: &shellBuilder{err: errors.New("no destination")},
		Logger:  testLogger(),
	})

	res := sup.Run(context.Background())

	if res.Outcome != OutcomeFailed {
		t.Errorf("Outcome = %s, want failed", res.Outcome)
	}
	if res.Err == nil {
		t.Error("Err = nil, want error")
	}
	if sup.State() != StateFailed {
		t.Errorf("State() = %s, want failed", sup.State())
	}
}

type missingBinaryBuilder struct{}

func (missingBinaryBuilder) BuildCommand(selector string, extraArgs []string, outputPath string) (*exec.Cmd, error) {
	return exec.Command("/nonexistent/encoder-binary"), nil
}

func (missingBinaryBuilder) Name() string { return "missing" }

func TestRunLaunchFailure(t *testing.T) {
	sup := New(Config{
		Label:   "mic",
		Builder: missingBinaryBuilder{},
		Logger:  testLogger(),
	})

	res := sup.Run(context.Background())

	if res.Outcome != OutcomeFailed {
		t.Errorf("Outcome = %s, want failed", res.Outcome)
	}
	if res.Err == nil {
		t.Error("Err = nil, want launch error")
	}
}

func TestRunCooperativeQuit(t *testing.T) {
	// The script blocks on stdin and exits cleanly when it reads the
	// quit byte, so the ladder should settle at step one.
	sup := New(Config{
		Label:    "mic",
		Builder:  &shellBuilder{script: "read line; exit 0"},
		Logger:   testLogger(),
		Timeouts: DefaultStopTimeouts(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	res := sup.Run(ctx)
	elapsed := time.Since(start)

	if res.Outcome != OutcomeStopped {
		t.Errorf("Outcome = %s, want stopped", res.Outcome)
	}
	if elapsed > 2*time.Second {
		t.Errorf("settled in %v, want well under the quit timeout", elapsed)
	}
}

func TestRunInterruptStep(t *testing.T) {
	// The script ignores stdin, so the ladder must escalate past the quit
	// step and settle on the interrupt signal.
	var steps []string
	sup := New(Config{
		Label:    "mic",
		Builder:  &shellBuilder{script: "exec sleep 30 <&-"},
		Logger:   testLogger(),
		Timeouts: shortTimeouts(),
		Callbacks: Callbacks{
			OnShutdownStep: func(label, step string) {
				steps = append(steps, step)
			},
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	res := sup.Run(ctx)

	if res.Outcome != OutcomeStopped {
		t.Errorf("Outcome = %s, want stopped", res.Outcome)
	}
	if res.ExitCode != 130 {
		t.Errorf("ExitCode = %d, want 130 (interrupt)", res.ExitCode)
	}
	if len(steps) < 2 || steps[0] != "quit" || steps[1] != "interrupt" {
		t.Errorf("steps = %v, want quit then interrupt", steps)
	}
}

func TestRunKillStep(t *testing.T) {
	// The script shields itself from the cooperative steps, forcing the
	// ladder all the way to the unconditional kill.
	var steps []string
	sup := New(Config{
		Label:    "mic",
		Builder:  &shellBuilder{script: `trap "" INT TERM; sleep 30`},
		Logger:   testLogger(),
		Timeouts: shortTimeouts(),
		Callbacks: Callbacks{
			OnShutdownStep: func(label, step string) {
				steps = append(steps, step)
			},
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(200 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	res := sup.Run(ctx)
	elapsed := time.Since(start)

	if res.Outcome != OutcomeStopped {
		t.Errorf("Outcome = %s, want stopped (requested stop)", res.Outcome)
	}
	if res.ExitCode != 137 {
		t.Errorf("ExitCode = %d, want 137 (kill)", res.ExitCode)
	}
	want := []string{"quit", "interrupt", "terminate", "kill"}
	if len(steps) != len(want) {
		t.Fatalf("steps = %v, want %v", steps, want)
	}
	for i := range want {
		if steps[i] != want[i] {
			t.Errorf("steps[%d] = %q, want %q", i, steps[i], want[i])
		}
	}
	// 200ms pre-cancel + 3 x 100ms steps leaves slack before one second.
	if elapsed > 3*time.Second {
		t.Errorf("settled in %v, want bounded by the ladder total", elapsed)
	}
}

func TestRunStateTransitions(t *testing.T) {
	var transitions []State
	sup := New(Config{
		Label:    "mic",
		Builder:  &shellBuilder{script: "exit 0"},
		Logger:   testLogger(),
		Timeouts: shortTimeouts(),
		Callbacks: Callbacks{
			OnStateChange: func(label string, oldState, newState State) {
				transitions = append(transitions, newState)
			},
		},
	})

	sup.Run(context.Background())

	want := []State{StateStarting, StateRecording, StateStopping, StateStopped}
	if len(transitions) != len(want) {
		t.Fatalf("transitions = %v, want %v", transitions, want)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("transitions[%d] = %s, want %s", i, transitions[i], want[i])
		}
	}
}

func TestStopTimeoutsTotal(t *testing.T) {
	tt := StopTimeouts{Quit: 5 * time.Second, Interrupt: 5 * time.Second, Terminate: 2 * time.Second}
	if got := tt.Total(); got != 12*time.Second {
		t.Errorf("Total() = %v, want 12s", got)
	}
}

func TestExtractExitCode(t *testing.T) {
	if got := extractExitCode(nil); got != 0 {
		t.Errorf("extractExitCode(nil) = %d, want 0", got)
	}
	if got := extractExitCode(errors.New("boom")); got != 1 {
		t.Errorf("extractExitCode(plain error) = %d, want 1", got)
	}

	err := exec.Command("sh", "-c", "exit 3").Run()
	if got := extractExitCode(err); got != 3 {
		t.Errorf("extractExitCode(exit 3) = %d, want 3", got)
	}
}
