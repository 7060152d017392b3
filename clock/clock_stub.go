//go:build !linux
// +build !linux

// File: clock/clock_stub.go
// Author: momentics <momentics@gmail.com>
//
// Portable fallback using the runtime monotonic reading carried by time.Time.

package clock

import "time"

var base = time.Now()

func platformNanotime() int64 {
	return int64(time.Since(base))
}
