package process

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrToolNotFound is returned when the capture tool is not available.
var ErrToolNotFound = errors.New("capture tool not found")

// Probe verifies the capture tool is present and runnable, returning its
// version string. This runs before any device enumeration or directory
// creation so a missing tool fails fast with a clear remediation hint.
func Probe(binaryPath string) (string, error) {
	cmd := exec.Command(binaryPath, "-version")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("%w at %q: install ffmpeg (apt install ffmpeg / brew install ffmpeg)", ErrToolNotFound, binaryPath)
	}

	return parseVersion(string(output)), nil
}

// parseVersion extracts the version token from the tool's banner line
// ("ffmpeg version 6.1 Copyright ...").
func parseVersion(output string) string {
	lines := strings.Split(output, "\n")
	if len(lines) == 0 {
		return "unknown"
	}

	parts := strings.Fields(lines[0])
	if len(parts) >= 3 && parts[1] == "version" {
		return parts[2]
	}
	return "unknown"
}
