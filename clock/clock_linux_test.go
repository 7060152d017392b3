//go:build linux
// +build linux

package clock

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestPlatformNanotime_MatchesClockMonotonic(t *testing.T) {
	require.True(t, haveMonotonic)
	var ts unix.Timespec
	before := platformNanotime()
	require.NoError(t, unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts))
	after := platformNanotime()
	require.LessOrEqual(t, before, ts.Nano())
	require.LessOrEqual(t, ts.Nano(), after)
}

func TestPlatformNanotime_NeverBeforeLastTick(t *testing.T) {
	ahead := platformNanotime() + int64(1<<40)
	lastTick.Store(ahead)
	defer lastTick.Store(0)
	require.Equal(t, ahead, platformNanotime())
}
