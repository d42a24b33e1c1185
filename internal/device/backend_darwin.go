//go:build darwin

package device

import "strconv"

// AVFoundation lists devices with -list_devices and addresses audio inputs
// as ":<index>" (the leading colon selects audio-only capture).
func platformBackend() Backend {
	return Backend{
		InputFormat: "avfoundation",
		ListArgs:    []string{"-hide_banner", "-f", "avfoundation", "-list_devices", "true", "-i", ""},
		Selector: func(d Device) string {
			return ":" + strconv.Itoa(d.Index)
		},
	}
}
