// Package device discovers the audio input devices the capture tool can see.
//
// The capture tool (FFmpeg) reports devices on its diagnostic channel when
// invoked in list mode. The output contains one or more sections; audio
// devices appear under a recognized section header as "[<index>] <name>"
// lines. Enumeration order is preserved because name resolution deliberately
// returns the first match: catalogs commonly enumerate a device's logical
// sub-interfaces consecutively and the first is conventionally the usable one.
package device

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// ErrToolUnavailable is returned when the enumeration command cannot run
// because the capture tool is missing from the execution environment.
var ErrToolUnavailable = errors.New("capture tool not found on PATH")

// ErrEmptyListing is returned when the enumeration command ran but produced
// no usable output at all.
var ErrEmptyListing = errors.New("device listing produced no output")

// Device describes one entry in the capture tool's device inventory.
type Device struct {
	// Index is the device's position in the enumeration output, used as the
	// capture input selector.
	Index int

	// Name is the device display name as reported by the tool.
	Name string
}

// Catalog is the ordered inventory of currently available capture devices.
// Order matches the enumeration output.
type Catalog []Device

// audioSectionHeaders are the substrings that open the audio device section.
// The set covers the list formats of the capture backends cluck drives.
var audioSectionHeaders = []string{
	"AVFoundation audio devices",
	"DirectShow audio devices",
	"audio input devices",
}

// videoSectionHeaders close the audio section if a video section follows it.
// No explicit end marker is required; end of input also ends the section.
var videoSectionHeaders = []string{
	"AVFoundation video devices",
	"DirectShow video devices",
	"video input devices",
}

// devicePattern matches "[<index>] <name>" within a section line. Listing
// lines carry a logging prefix such as "[AVFoundation indev @ 0x...]", which
// never matches because its bracket content is not purely numeric.
var devicePattern = regexp.MustCompile(`\[(\d+)\]\s*(.+)`)

// Enumerate invokes the capture tool in device-listing mode and parses the
// result. Listing mode writes to the diagnostic channel and exits non-zero by
// design, so the exit status is ignored as long as output was produced.
func Enumerate(binaryPath string) (Catalog, error) {
	spec := platformBackend()

	cmd := exec.Command(binaryPath, spec.ListArgs...)
	out, err := cmd.CombinedOutput()
	if err != nil && len(out) == 0 {
		var execErr *exec.Error
		if errors.As(err, &execErr) && errors.Is(execErr.Err, exec.ErrNotFound) {
			return nil, fmt.Errorf("%w: %q", ErrToolUnavailable, binaryPath)
		}
		return nil, fmt.Errorf("list devices: %w", err)
	}

	if len(bytes.TrimSpace(out)) == 0 {
		return nil, ErrEmptyListing
	}

	return Parse(string(out)), nil
}

// Parse extracts the audio device inventory from raw listing text.
//
// Only lines after a recognized audio section header are considered; within
// the section, lines matching "[<index>] <name>" contribute entries in the
// order encountered and everything else is ignored. Parse is deterministic
// and idempotent, and an empty or absent section yields an empty catalog.
func Parse(raw string) Catalog {
	var catalog Catalog

	inSection := false
	for _, line := range strings.Split(raw, "\n") {
		if containsAny(line, audioSectionHeaders) {
			inSection = true
			continue
		}
		if containsAny(line, videoSectionHeaders) {
			inSection = false
			continue
		}
		if !inSection {
			continue
		}

		matches := devicePattern.FindStringSubmatch(line)
		if matches == nil {
			continue
		}

		index, err := strconv.Atoi(matches[1])
		if err != nil {
			continue
		}

		catalog = append(catalog, Device{
			Index: index,
			Name:  strings.TrimSpace(matches[2]),
		})
	}

	return catalog
}

// Resolve returns the first catalog entry whose name contains pattern as a
// case-insensitive substring. The second return value reports whether a
// match was found; no match is not an error.
func (c Catalog) Resolve(pattern string) (Device, bool) {
	needle := strings.ToLower(pattern)
	for _, d := range c {
		if strings.Contains(strings.ToLower(d.Name), needle) {
			return d, true
		}
	}
	return Device{}, false
}

// containsAny reports whether line contains any of the given substrings.
func containsAny(line string, subs []string) bool {
	for _, s := range subs {
		if strings.Contains(line, s) {
			return true
		}
	}
	return false
}
