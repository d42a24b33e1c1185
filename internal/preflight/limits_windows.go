//go:build windows

package preflight

// checkFileDescriptors passes unconditionally: Windows handle limits are
// far above anything a handful of capture subprocesses needs.
func checkFileDescriptors(tracks int) Check {
	return Check{
		Name:    "file_descriptors",
		Passed:  true,
		Warning: true,
		Message: "not checked on this platform",
	}
}

// checkDiskSpace is not implemented on Windows.
func checkDiskSpace(dir string) Check {
	return Check{
		Name:    "disk_space",
		Passed:  true,
		Warning: true,
		Message: "not checked on this platform",
	}
}
