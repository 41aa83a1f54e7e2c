//go:build !windows
// +build !windows

package benchmark

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// SetMaxResources raises the open file limit to the hard maximum. The
// workload is serial, but long runs churn through thousands of short
// network connections and result files; a low soft NOFILE limit would
// surface as spurious backend errors mid-run.
func SetMaxResources() error {
	rLimit := unix.Rlimit{}
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &rLimit); err != nil {
		return fmt.Errorf("unable to get rlimit: %v", err)
	}
	rLimit.Cur = rLimit.Max
	if err := unix.Setrlimit(unix.RLIMIT_NOFILE, &rLimit); err != nil {
		return fmt.Errorf("unable to set open file limit: %v", err)
	}
	return nil
}
