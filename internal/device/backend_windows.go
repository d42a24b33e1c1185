//go:build windows

package device

// DirectShow addresses devices by display name rather than index; the index
// recorded in the catalog still identifies the enumeration position.
func platformBackend() Backend {
	return Backend{
		InputFormat: "dshow",
		ListArgs:    []string{"-hide_banner", "-f", "dshow", "-list_devices", "true", "-i", "dummy"},
		Selector: func(d Device) string {
			return "audio=" + d.Name
		},
	}
}
