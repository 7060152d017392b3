package control

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMetricsRegistry_Basic(t *testing.T) {
	reg := NewMetricsRegistry()
	require.True(t, reg.Updated().IsZero())
	reg.Set("reclaim.last_cycle", int64(42))
	reg.Set("reclaim.state", "inactive")

	metrics := reg.GetSnapshot()
	require.Equal(t, int64(42), metrics["reclaim.last_cycle"])
	require.Equal(t, "inactive", metrics["reclaim.state"])
	require.False(t, reg.Updated().IsZero())
}

func TestMetricsRegistry_Add(t *testing.T) {
	reg := NewMetricsRegistry()
	require.Equal(t, int64(3), reg.Add("reclaim.cycles", 3))
	require.Equal(t, int64(5), reg.Add("reclaim.cycles", 2))
	require.Equal(t, int64(5), reg.GetSnapshot()["reclaim.cycles"])
}

func TestMetricsRegistry_SnapshotIsCopy(t *testing.T) {
	reg := NewMetricsRegistry()
	reg.Add("reclaim.vm.bytes", 10)
	snap := reg.GetSnapshot()
	reg.Add("reclaim.vm.bytes", 5)
	snap["reclaim.vm.bytes"] = int64(0)

	require.Equal(t, int64(15), reg.GetSnapshot()["reclaim.vm.bytes"])
}
