// File: clock/clock.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Monotonic tick sources for deadline-bounded work. Ticks are nanoseconds.

package clock

import (
	"sync/atomic"
	"time"

	"github.com/momentics/hioload-segpool/api"
)

// Monotonic reads the platform monotonic clock.
type Monotonic struct{}

// ElapsedCounter returns monotonic nanoseconds.
func (Monotonic) ElapsedCounter() int64 {
	return platformNanotime()
}

// Default is the process-wide monotonic clock.
var Default api.Clock = Monotonic{}

// Deadline returns the absolute tick d from now on clk. It saturates at
// Never.
func Deadline(clk api.Clock, d time.Duration) int64 {
	now := clk.ElapsedCounter()
	if d > 0 && now > Never-int64(d) {
		return Never
	}
	return now + int64(d)
}

// Expired is a deadline that is already past for any clock reading >= 0.
const Expired = int64(-1)

// Never is a deadline no clock reaches.
const Never = int64(^uint64(0) >> 1)

// Manual is a test clock. Every ElapsedCounter call returns the current tick
// and then advances it by Step.
type Manual struct {
	now  atomic.Int64
	Step int64
}

// NewManual returns a clock starting at start that advances by step per read.
func NewManual(start, step int64) *Manual {
	m := &Manual{Step: step}
	m.now.Store(start)
	return m
}

func (m *Manual) ElapsedCounter() int64 {
	return m.now.Add(m.Step) - m.Step
}

// Set moves the clock to tick.
func (m *Manual) Set(tick int64) {
	m.now.Store(tick)
}

// Now returns the current tick without advancing.
func (m *Manual) Now() int64 {
	return m.now.Load()
}

var _ api.Clock = (*Manual)(nil)
