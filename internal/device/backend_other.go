//go:build !darwin && !windows

package device

import "strconv"

// PulseAudio capture. Listing support varies by FFmpeg build; when the
// listing yields nothing the catalog is simply empty and every track
// resolution reports "not found", which the orchestrator treats as a skip.
func platformBackend() Backend {
	return Backend{
		InputFormat: "pulse",
		ListArgs:    []string{"-hide_banner", "-f", "pulse", "-list_devices", "true", "-i", "default"},
		Selector: func(d Device) string {
			return strconv.Itoa(d.Index)
		},
	}
}
