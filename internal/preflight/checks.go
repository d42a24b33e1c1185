// Package preflight provides startup validation checks.
package preflight

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Check represents the result of a single preflight check.
type Check struct {
	Name     string // Name of the check
	Required int    // Required value (if applicable)
	Actual   int    // Actual value found
	Passed   bool   // Whether the check passed
	Warning  bool   // True if it's a warning (non-fatal)
	Message  string // Additional context
}

// Result holds the results of all preflight checks.
type Result struct {
	Checks []Check
	Passed bool
}

// String returns a human-readable summary of the check.
func (c Check) String() string {
	status := "✓"
	if !c.Passed {
		status = "✗"
	} else if c.Warning {
		status = "⚠"
	}

	if c.Required > 0 {
		return fmt.Sprintf("  %s %s: %d available (need %d)", status, c.Name, c.Actual, c.Required)
	}
	return fmt.Sprintf("  %s %s: %s", status, c.Name, c.Message)
}

// RunAll executes all preflight checks for the given track count.
func RunAll(tracks int, ffmpegPath, outputDir string) *Result {
	result := &Result{
		Checks: make([]Check, 0, 4),
		Passed: true,
	}

	ffmpegCheck := checkFFmpeg(ffmpegPath)
	result.Checks = append(result.Checks, ffmpegCheck)
	if !ffmpegCheck.Passed {
		result.Passed = false
	}

	dirCheck := checkOutputDir(outputDir)
	result.Checks = append(result.Checks, dirCheck)
	if !dirCheck.Passed {
		result.Passed = false
	}

	fdCheck := checkFileDescriptors(tracks)
	result.Checks = append(result.Checks, fdCheck)
	if !fdCheck.Passed {
		result.Passed = false
	}

	// Disk space is a warning only: a capture that fills the disk fails
	// on its own terms, it should not block startup.
	result.Checks = append(result.Checks, checkDiskSpace(outputDir))

	return result
}

// checkFFmpeg verifies FFmpeg is available and working.
func checkFFmpeg(path string) Check {
	cmd := exec.Command(path, "-version")
	output, err := cmd.Output()

	if err != nil {
		return Check{
			Name:    "ffmpeg",
			Passed:  false,
			Message: fmt.Sprintf("not found at %s: %v", path, err),
		}
	}

	// Extract version from first line
	lines := strings.Split(string(output), "\n")
	version := "unknown"
	if len(lines) > 0 {
		// "ffmpeg version 6.1 Copyright ..."
		parts := strings.Fields(lines[0])
		if len(parts) >= 3 {
			version = parts[2]
		}
	}

	return Check{
		Name:    "ffmpeg",
		Passed:  true,
		Message: fmt.Sprintf("found at %s (version %s)", path, version),
	}
}

// checkOutputDir verifies the destination directory exists (or can be
// created) and is writable.
func checkOutputDir(dir string) Check {
	if dir == "" {
		return Check{
			Name:    "output_dir",
			Passed:  false,
			Message: "no output directory configured",
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Check{
			Name:    "output_dir",
			Passed:  false,
			Message: fmt.Sprintf("cannot create %s: %v", dir, err),
		}
	}

	probe := filepath.Join(dir, ".preflight-probe")
	f, err := os.Create(probe)
	if err != nil {
		return Check{
			Name:    "output_dir",
			Passed:  false,
			Message: fmt.Sprintf("%s is not writable: %v", dir, err),
		}
	}
	f.Close()
	os.Remove(probe)

	return Check{
		Name:    "output_dir",
		Passed:  true,
		Message: fmt.Sprintf("%s is writable", dir),
	}
}

// PrintResults prints the preflight check results to stdout.
func PrintResults(result *Result) {
	fmt.Println("Preflight checks:")
	for _, check := range result.Checks {
		fmt.Println(check.String())
		if !check.Passed {
			fmt.Printf("    Fix: %s\n", suggestFix(check.Name))
		}
	}
	fmt.Println()
}

// suggestFix returns a suggestion for fixing a failed check.
func suggestFix(name string) string {
	switch name {
	case "ffmpeg":
		return "install ffmpeg (apt install ffmpeg / brew install ffmpeg)"
	case "output_dir":
		return "pick a writable directory with -output-dir"
	case "file_descriptors":
		return "ulimit -n 4096 (or edit /etc/security/limits.conf)"
	default:
		return "see documentation"
	}
}
