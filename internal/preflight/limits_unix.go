//go:build !windows

package preflight

import (
	"fmt"
	"syscall"
)

// checkFileDescriptors verifies sufficient file descriptors are available.
func checkFileDescriptors(tracks int) Check {
	var limit syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &limit); err != nil {
		return Check{
			Name:    "file_descriptors",
			Passed:  true,
			Warning: true,
			Message: fmt.Sprintf("unable to read limit: %v", err),
		}
	}

	// Each capture needs pipes, the destination file, and encoder
	// internals. Plus orchestrator overhead (metrics server, logging).
	required := tracks*20 + 64
	actual := int(limit.Cur)

	return Check{
		Name:     "file_descriptors",
		Required: required,
		Actual:   actual,
		Passed:   actual >= required,
		Message:  fmt.Sprintf("ulimit -n %d (need %d for %d tracks)", actual, required, tracks),
	}
}

// checkDiskSpace warns when the destination filesystem is nearly full.
func checkDiskSpace(dir string) Check {
	var st syscall.Statfs_t
	if err := syscall.Statfs(dir, &st); err != nil {
		return Check{
			Name:    "disk_space",
			Passed:  true,
			Warning: true,
			Message: fmt.Sprintf("unable to stat %s: %v", dir, err),
		}
	}

	freeMB := st.Bavail * uint64(st.Bsize) / (1024 * 1024)
	// ~60 MB/hour per track at 128 kbps, so half a gigabyte covers a
	// long session comfortably.
	const recommendedMB = 512

	return Check{
		Name:    "disk_space",
		Passed:  true,
		Warning: freeMB < recommendedMB,
		Message: fmt.Sprintf("%d MB free on %s (recommend %d MB)", freeMB, dir, recommendedMB),
	}
}
