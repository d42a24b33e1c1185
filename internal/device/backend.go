package device

// Backend describes how the current platform's capture backend lists devices
// and how a catalog entry is addressed on the capture command line.
type Backend struct {
	// InputFormat is the capture tool's input format flag value
	// (e.g. "avfoundation", "dshow").
	InputFormat string

	// ListArgs are the arguments that put the capture tool in
	// device-listing mode.
	ListArgs []string

	// Selector renders the input selector for a resolved device.
	Selector func(Device) string
}

// CurrentBackend returns the capture backend for the running platform.
func CurrentBackend() Backend {
	return platformBackend()
}
