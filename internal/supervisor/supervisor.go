package supervisor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sync"
	"syscall"
	"time"
)

// ProcessBuilder creates executable capture commands for tracks.
// This interface decouples the supervisor from FFmpeg specifics.
type ProcessBuilder interface {
	// BuildCommand returns a ready-to-start command capturing from the
	// device selector into outputPath.
	BuildCommand(selector string, extraArgs []string, outputPath string) (*exec.Cmd, error)

	// Name returns a human-readable name for this process type.
	Name() string
}

// LineHandler consumes the subprocess diagnostic channel.
type LineHandler interface {
	// HandleReader reads lines until the reader is exhausted.
	HandleReader(r io.Reader)

	// LastError returns the most recent error-like line seen, or "".
	LastError() string
}

// Callbacks contains optional callback functions for supervisor events.
type Callbacks struct {
	// OnStateChange is called when the track lifecycle state changes.
	OnStateChange func(label string, oldState, newState State)

	// OnStart is called when the capture subprocess starts.
	OnStart func(label string, pid int)

	// OnShutdownStep is called as each ladder step is attempted
	// ("quit", "interrupt", "terminate", "kill").
	OnShutdownStep func(label, step string)
}

// StopTimeouts bounds each step of the shutdown escalation ladder.
type StopTimeouts struct {
	// Quit is how long to wait after sending the cooperative quit byte.
	Quit time.Duration

	// Interrupt is how long to wait after the interrupt signal.
	Interrupt time.Duration

	// Terminate is how long to wait after the terminate request.
	// The final kill is unconditional and is not waited on beyond
	// reaping the exit status.
	Terminate time.Duration
}

// DefaultStopTimeouts returns the default ladder bounds.
func DefaultStopTimeouts() StopTimeouts {
	return StopTimeouts{
		Quit:      5 * time.Second,
		Interrupt: 5 * time.Second,
		Terminate: 2 * time.Second,
	}
}

// Total returns the worst-case ladder duration for one track.
func (t StopTimeouts) Total() time.Duration {
	return t.Quit + t.Interrupt + t.Terminate
}

// Result is the final report of one track, collected by the orchestrator
// after the supervisor goroutine has exited.
type Result struct {
	Label       string
	OutputPath  string
	DeviceIndex int
	DeviceName  string
	Outcome     Outcome
	ExitCode    int
	Duration    time.Duration
	Err         error
}

// Config holds configuration for creating a new Supervisor.
type Config struct {
	Label       string
	DeviceIndex int
	DeviceName  string
	Selector    string
	ExtraArgs   []string
	OutputPath  string

	Builder   ProcessBuilder
	Logger    *slog.Logger
	Lines     LineHandler // optional
	Timeouts  StopTimeouts
	Callbacks Callbacks
}

// Supervisor owns the full lifecycle of exactly one capture subprocess:
// start, monitor, graceful-then-forceful stop. The process handle is touched
// only from the Run goroutine, so no two code paths race on it.
type Supervisor struct {
	cfg Config

	state     State
	stateMu   sync.RWMutex
	startTime time.Time
}

// New creates a Supervisor for one resolved track. Zero timeouts are
// replaced with the defaults.
func New(cfg Config) *Supervisor {
	if cfg.Timeouts == (StopTimeouts{}) {
		cfg.Timeouts = DefaultStopTimeouts()
	}
	return &Supervisor{
		cfg:   cfg,
		state: StateIdle,
	}
}

// Run launches the capture subprocess and supervises it until it reaches a
// terminal state. It blocks until the track settles and returns its Result.
// Cancelling ctx is the single stop request; once observed, the shutdown
// ladder guarantees settlement within Timeouts.Total().
func (s *Supervisor) Run(ctx context.Context) Result {
	res := Result{
		Label:       s.cfg.Label,
		OutputPath:  s.cfg.OutputPath,
		DeviceIndex: s.cfg.DeviceIndex,
		DeviceName:  s.cfg.DeviceName,
	}

	s.setState(StateStarting)

	cmd, err := s.cfg.Builder.BuildCommand(s.cfg.Selector, s.cfg.ExtraArgs, s.cfg.OutputPath)
	if err != nil {
		return s.fail(res, fmt.Errorf("build capture command: %w", err))
	}

	// Keep stdin open so the cooperative quit byte can be sent later.
	// A backend that cannot provide a pipe just loses ladder step 1.
	stdin, err := cmd.StdinPipe()
	if err != nil {
		stdin = nil
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return s.fail(res, fmt.Errorf("create diagnostic pipe: %w", err))
	}
	// Stdout stays nil: the encoder writes to the destination file, so its
	// standard output is discarded.

	start := time.Now()
	if err := cmd.Start(); err != nil {
		s.cfg.Logger.Error("track_launch_failed",
			"label", s.cfg.Label,
			"error", err,
		)
		return s.fail(res, fmt.Errorf("launch capture: %w", err))
	}

	s.stateMu.Lock()
	s.startTime = start
	s.stateMu.Unlock()

	pid := cmd.Process.Pid
	s.setState(StateRecording)

	s.cfg.Logger.Info("track_recording",
		"label", s.cfg.Label,
		"pid", pid,
		"device_index", s.cfg.DeviceIndex,
		"output", s.cfg.OutputPath,
	)

	if s.cfg.Callbacks.OnStart != nil {
		s.cfg.Callbacks.OnStart(s.cfg.Label, pid)
	}

	// Forward diagnostic lines until the pipe closes.
	linesDone := make(chan struct{})
	go func() {
		defer close(linesDone)
		if s.cfg.Lines != nil {
			s.cfg.Lines.HandleReader(stderr)
		} else {
			io.Copy(io.Discard, stderr)
		}
	}()

	waitCh := make(chan error, 1)
	go func() {
		waitCh <- cmd.Wait()
	}()

	var waitErr error
	stopRequested := false

	select {
	case <-ctx.Done():
		stopRequested = true
		s.setState(StateStopping)
		waitErr = s.escalate(cmd, stdin, waitCh)
	case waitErr = <-waitCh:
		// Subprocess ended on its own.
		s.setState(StateStopping)
	}

	<-linesDone

	res.Duration = time.Since(start)
	res.ExitCode = extractExitCode(waitErr)

	switch {
	case stopRequested:
		// A requested stop is a clean end regardless of the exit code:
		// interrupt and terminate produce signal exit statuses by design.
		res.Outcome = OutcomeStopped
	case res.ExitCode == 0:
		res.Outcome = OutcomeStopped
	default:
		res.Outcome = OutcomeFailed
		res.Err = s.exitError(res.ExitCode, waitErr)
	}

	if res.Outcome == OutcomeStopped {
		s.setState(StateStopped)
	} else {
		s.setState(StateFailed)
	}

	s.cfg.Logger.Info("track_settled",
		"label", s.cfg.Label,
		"outcome", res.Outcome.String(),
		"exit_code", res.ExitCode,
		"duration", res.Duration.String(),
	)

	return res
}

// escalate runs the shutdown ladder: cooperative quit, interrupt, terminate,
// kill. Each step is skipped when an earlier step already confirmed exit, and
// the final kill cannot fail at the OS level, so escalate always returns
// within Timeouts.Total().
func (s *Supervisor) escalate(cmd *exec.Cmd, stdin io.WriteCloser, waitCh <-chan error) error {
	t := s.cfg.Timeouts

	if stdin != nil {
		s.ladderStep("quit")
		// Errors are irrelevant here: if the process is already gone the
		// write fails and the wait below returns immediately.
		_, _ = stdin.Write([]byte("q"))
		_ = stdin.Close()
		if err, exited := awaitExit(waitCh, t.Quit); exited {
			return err
		}
		s.logStepTimeout("quit", t.Quit)
	}

	s.ladderStep("interrupt")
	_ = interruptProcess(cmd.Process)
	if err, exited := awaitExit(waitCh, t.Interrupt); exited {
		return err
	}
	s.logStepTimeout("interrupt", t.Interrupt)

	s.ladderStep("terminate")
	_ = terminateProcess(cmd.Process)
	if err, exited := awaitExit(waitCh, t.Terminate); exited {
		return err
	}
	s.logStepTimeout("terminate", t.Terminate)

	s.ladderStep("kill")
	_ = cmd.Process.Kill()
	return <-waitCh
}

// ladderStep logs and reports one escalation step.
func (s *Supervisor) ladderStep(step string) {
	s.cfg.Logger.Debug("shutdown_step",
		"label", s.cfg.Label,
		"step", step,
	)
	if s.cfg.Callbacks.OnShutdownStep != nil {
		s.cfg.Callbacks.OnShutdownStep(s.cfg.Label, step)
	}
}

// logStepTimeout records that a ladder step expired and escalation continues.
func (s *Supervisor) logStepTimeout(step string, timeout time.Duration) {
	s.cfg.Logger.Warn("shutdown_step_timeout",
		"label", s.cfg.Label,
		"step", step,
		"timeout", timeout.String(),
	)
}

// awaitExit waits up to d for the subprocess to be reaped.
func awaitExit(waitCh <-chan error, d time.Duration) (err error, exited bool) {
	select {
	case err := <-waitCh:
		return err, true
	case <-time.After(d):
		return nil, false
	}
}

// fail marks the track Failed without a monitor loop ever starting.
func (s *Supervisor) fail(res Result, err error) Result {
	res.Outcome = OutcomeFailed
	res.Err = err
	s.setState(StateFailed)
	return res
}

// exitError builds the failure error for a self-exited subprocess, folding in
// the last diagnostic error line when one was captured.
func (s *Supervisor) exitError(exitCode int, waitErr error) error {
	if s.cfg.Lines != nil {
		if line := s.cfg.Lines.LastError(); line != "" {
			return fmt.Errorf("capture exited with code %d: %s", exitCode, line)
		}
	}
	if waitErr != nil {
		return fmt.Errorf("capture exited with code %d: %w", exitCode, waitErr)
	}
	return fmt.Errorf("capture exited with code %d", exitCode)
}

// State returns the current lifecycle state of the track.
func (s *Supervisor) State() State {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

// setState updates the state and calls the callback if registered.
func (s *Supervisor) setState(newState State) {
	s.stateMu.Lock()
	oldState := s.state
	s.state = newState
	s.stateMu.Unlock()

	if s.cfg.Callbacks.OnStateChange != nil && oldState != newState {
		s.cfg.Callbacks.OnStateChange(s.cfg.Label, oldState, newState)
	}
}

// Label returns the track label.
func (s *Supervisor) Label() string {
	return s.cfg.Label
}

// DeviceIndex returns the resolved device index.
func (s *Supervisor) DeviceIndex() int {
	return s.cfg.DeviceIndex
}

// DeviceName returns the resolved device name.
func (s *Supervisor) DeviceName() string {
	return s.cfg.DeviceName
}

// OutputPath returns the track's destination file.
func (s *Supervisor) OutputPath() string {
	return s.cfg.OutputPath
}

// Uptime returns the elapsed recording time, or 0 before launch.
func (s *Supervisor) Uptime() time.Duration {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	if s.startTime.IsZero() {
		return 0
	}
	return time.Since(s.startTime)
}

// extractExitCode extracts the exit code from a Wait() error.
func extractExitCode(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
			if status.Signaled() {
				// Signal exit: 128 + signal number
				return 128 + int(status.Signal())
			}
			return status.ExitStatus()
		}
	}

	// Unknown error, assume exit code 1
	return 1
}
