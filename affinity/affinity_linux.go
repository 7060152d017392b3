//go:build linux
// +build linux

// File: affinity/affinity_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux-specific implementation for setting thread CPU affinity.

package affinity

import (
	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

// setAffinityPlatform sets the calling thread's affinity to a given CPU.
func setAffinityPlatform(cpuID int) error {
	if cpuID < 0 {
		return errors.Newf("affinity: invalid cpu %d", cpuID)
	}
	var set unix.CPUSet
	set.Zero()
	set.Set(cpuID)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return errors.Wrapf(err, "affinity: sched_setaffinity cpu %d", cpuID)
	}
	return nil
}
