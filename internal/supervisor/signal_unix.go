//go:build !windows

package supervisor

import (
	"os"
	"syscall"
)

// interruptProcess delivers SIGINT, the same signal an interactive ^C sends.
func interruptProcess(p *os.Process) error {
	return p.Signal(syscall.SIGINT)
}

// terminateProcess delivers SIGTERM.
func terminateProcess(p *os.Process) error {
	return p.Signal(syscall.SIGTERM)
}
