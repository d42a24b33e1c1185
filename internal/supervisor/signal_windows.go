//go:build windows

package supervisor

import "os"

// interruptProcess is a no-op on Windows: there is no per-process SIGINT
// delivery, so the ladder falls through to terminate after the step timeout.
func interruptProcess(p *os.Process) error {
	return nil
}

// terminateProcess force-stops the process. Windows has no graceful
// terminate for console children, so this collapses into the kill step.
func terminateProcess(p *os.Process) error {
	return p.Kill()
}
