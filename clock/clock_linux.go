//go:build linux
// +build linux

// File: clock/clock_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux CLOCK_MONOTONIC via clock_gettime. The source is chosen once at init;
// a process without clock_gettime runs on the Go runtime monotonic clock.

package clock

import (
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"
)

var (
	runtimeBase = time.Now()
	haveMonotonic = clockGettime() >= 0
	// lastTick is the latest clock_gettime reading, returned when a later
	// call fails so ticks never go backwards.
	lastTick atomic.Int64
)

func clockGettime() int64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return -1
	}
	return ts.Nano()
}

func platformNanotime() int64 {
	if !haveMonotonic {
		return int64(time.Since(runtimeBase))
	}
	now := clockGettime()
	for {
		last := lastTick.Load()
		if now < last {
			return last
		}
		if lastTick.CompareAndSwap(last, now) {
			return now
		}
	}
}
