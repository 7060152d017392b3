package clock

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMonotonic_NonDecreasing(t *testing.T) {
	var clk Monotonic
	prev := clk.ElapsedCounter()
	for i := 0; i < 1000; i++ {
		now := clk.ElapsedCounter()
		require.GreaterOrEqual(t, now, prev)
		prev = now
	}
}

func TestDeadline(t *testing.T) {
	m := NewManual(100, 0)
	require.Equal(t, int64(100)+int64(time.Millisecond), Deadline(m, time.Millisecond))
	require.Equal(t, int64(100)-5, Deadline(m, -5))
}

func TestDeadline_SaturatesAtNever(t *testing.T) {
	require.Equal(t, Never, Deadline(NewManual(100, 0), time.Duration(math.MaxInt64)))
	require.Equal(t, Never, Deadline(NewManual(Never-10, 0), 11))
	require.Equal(t, Never-1, Deadline(NewManual(Never-10, 0), 9))
}

func TestManual_Step(t *testing.T) {
	m := NewManual(10, 5)
	require.Equal(t, int64(10), m.ElapsedCounter())
	require.Equal(t, int64(15), m.ElapsedCounter())
	require.Equal(t, int64(20), m.Now())

	m.Set(0)
	require.Equal(t, int64(0), m.ElapsedCounter())
}

func TestExpiredAndNever(t *testing.T) {
	m := NewManual(0, 1)
	require.Greater(t, m.ElapsedCounter(), Expired)
	require.Less(t, Default.ElapsedCounter(), Never)
}
