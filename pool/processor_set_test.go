package pool

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-segpool/clock"
)

func fillPool(t *testing.T, fp *FreePool, typ, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		s, err := fp.NewSegment(typ)
		require.NoError(t, err)
		fp.Release(s)
	}
}

func TestProcessorSet_FullCycle(t *testing.T) {
	fp, alloc := newTestPool(t)
	fillPool(t, fp, 0, 5) // 50 bytes
	fillPool(t, fp, 1, 3) // 300 bytes

	set := NewReturnMemoryProcessorSet([]int64{20, 200}, clock.NewManual(0, 1))
	require.Equal(t, 2, set.Len())
	set.VisitAll(fp)
	require.Zero(t, fp.MemSize())
	require.False(t, set.FinishedReturnToVM())

	require.False(t, set.ReturnToVM(clock.Never))
	require.True(t, set.FinishedReturnToVM())
	require.False(t, set.FinishedReturnToOS())
	require.Equal(t, int64(130), fp.MemSize())

	require.False(t, set.ReturnToOS(clock.Never))
	require.True(t, set.FinishedReturnToOS())
	require.Equal(t, int64(4), alloc.Live())

	require.Equal(t, ReturnStats{VMSegments: 4, VMBytes: 130, OSSegments: 4, OSBytes: 220}, set.Returned())
}

func TestProcessorSet_StopsAtFirstUnfinished(t *testing.T) {
	fp, _ := newTestPool(t)
	fillPool(t, fp, 0, 5)
	fillPool(t, fp, 1, 5)

	clk := clock.NewManual(0, 1)
	set := NewReturnMemoryProcessorSet([]int64{10, 100}, clk)
	set.VisitAll(fp)

	// Deadline 0 admits one segment per slice.
	clk.Set(0)
	require.True(t, set.ReturnToVM(0))
	require.Equal(t, int64(1), fp.FreeList(0).NumSegments())
	require.Zero(t, fp.FreeList(1).NumSegments())

	for set.ReturnToVM(clock.Never) {
	}
	require.Equal(t, int64(4), fp.FreeList(0).NumSegments())
	require.Equal(t, int64(4), fp.FreeList(1).NumSegments())

	clk.Set(0)
	require.True(t, set.ReturnToOS(-1))
	require.False(t, set.ReturnToOS(clock.Never))
	require.True(t, set.FinishedReturnToOS())
}

func TestProcessorSet_MismatchedTypes(t *testing.T) {
	fp, _ := newTestPool(t)
	set := NewReturnMemoryProcessorSet([]int64{10}, nil)
	requireAssertion(t, func() { set.VisitAll(fp) })
	requireAssertion(t, func() { set.At(1) })
}

func TestProcessorSet_NothingToReturn(t *testing.T) {
	fp, _ := newTestPool(t)
	fillPool(t, fp, 0, 2)
	set := NewReturnMemoryProcessorSet([]int64{0, 0}, nil)
	set.VisitAll(fp)
	require.True(t, set.FinishedReturnToVM())
	require.True(t, set.FinishedReturnToOS())
	require.False(t, set.ReturnToVM(clock.Never))
	require.False(t, set.ReturnToOS(clock.Never))
	require.Equal(t, int64(20), fp.MemSize())
}

func TestProcessorSet_SkipsProcessorsDrivenDirectly(t *testing.T) {
	fp, alloc := newTestPool(t)
	fillPool(t, fp, 0, 5)
	fillPool(t, fp, 1, 2)

	set := NewReturnMemoryProcessorSet([]int64{20, 100}, nil)
	set.VisitAll(fp)

	require.False(t, set.At(0).ReturnToVM(clock.Never))
	require.NotPanics(t, func() { require.False(t, set.ReturnToVM(clock.Never)) })
	require.True(t, set.FinishedReturnToVM())
	require.Equal(t, int64(3), fp.FreeList(0).NumSegments())
	require.Equal(t, int64(1), fp.FreeList(1).NumSegments())

	require.False(t, set.At(1).ReturnToOS(clock.Never))
	require.NotPanics(t, func() { require.False(t, set.ReturnToOS(clock.Never)) })
	require.True(t, set.FinishedReturnToOS())
	require.Equal(t, int64(4), alloc.Live())
}

func TestProcessorSet_ReturnToOSBeforeVM(t *testing.T) {
	fp, _ := newTestPool(t)
	fillPool(t, fp, 0, 3)
	set := NewReturnMemoryProcessorSet([]int64{10, 0}, nil)
	set.VisitAll(fp)
	requireAssertion(t, func() { set.ReturnToOS(clock.Never) })
}
